// Package dataset executes stored aggregation pipelines against the raw data
// collection.
package dataset

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/steamdash/insightd/internal/domain"
)

// Repo runs aggregations on the MongoDB data collection.
type Repo struct {
	col *mongo.Collection
}

// New creates an aggregation executor over the given collection.
func New(db *mongo.Database, collection string) *Repo {
	return &Repo{col: db.Collection(collection)}
}

// Aggregate runs the given stages in order and returns every resulting
// document. An empty result is a valid outcome and comes back as an empty
// slice; only execution failures produce a domain.DataQueryError.
func (r *Repo) Aggregate(ctx context.Context, stages []domain.Stage) ([]domain.Record, error) {
	cursor, err := r.col.Aggregate(ctx, stages)
	if err != nil {
		return nil, &domain.DataQueryError{Err: err}
	}
	defer func() { _ = cursor.Close(ctx) }()

	records := make([]domain.Record, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, &domain.DataQueryError{Err: err}
	}
	return records, nil
}
