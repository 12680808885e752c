package insight

import (
	"context"

	"github.com/steamdash/insightd/internal/domain"
)

// PipelineStore reads stored pipeline definitions.
type PipelineStore interface {
	ListNames(ctx context.Context) ([]string, error)
	Find(ctx context.Context, name string) (*domain.Pipeline, error)
}

// AggregationRunner executes pipeline stages against the data collection.
type AggregationRunner interface {
	Aggregate(ctx context.Context, stages []domain.Stage) ([]domain.Record, error)
}

// Summarizer produces a natural-language summary for a prompt. In production
// this is the cached decorator around the Gemini client.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}
