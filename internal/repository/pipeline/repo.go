// Package pipeline reads stored aggregation pipeline definitions from MongoDB.
package pipeline

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/steamdash/insightd/internal/domain"
)

// Repo is the MongoDB-backed pipeline definition store.
type Repo struct {
	col *mongo.Collection
}

// New creates a pipeline store over the given collection.
func New(db *mongo.Database, collection string) *Repo {
	return &Repo{col: db.Collection(collection)}
}

// ListNames returns the distinct names of all stored definitions in
// store-native order.
func (r *Repo) ListNames(ctx context.Context) ([]string, error) {
	res := r.col.Distinct(ctx, "name", bson.D{})

	names := make([]string, 0)
	if err := res.Decode(&names); err != nil {
		return nil, &domain.DataQueryError{Err: err}
	}
	return names, nil
}

// Find returns the first definition whose name matches exactly. A miss is a
// domain.NotFoundError; store failures are domain.DataQueryError so callers
// can tell the two apart.
func (r *Repo) Find(ctx context.Context, name string) (*domain.Pipeline, error) {
	var p domain.Pipeline
	err := r.col.FindOne(ctx, bson.D{{Key: "name", Value: name}}).Decode(&p)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, &domain.NotFoundError{Name: name}
	case err != nil:
		return nil, &domain.DataQueryError{Err: err}
	}
	return &p, nil
}
