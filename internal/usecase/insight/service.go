// Package insight orchestrates a pipeline run: definition lookup, aggregation,
// prompt construction and summarization.
package insight

import (
	"context"

	"github.com/steamdash/insightd/internal/domain"
)

// Service composes the pipeline store, the aggregation runner and the
// summarizer into the two externally visible operations.
type Service struct {
	pipelines  PipelineStore
	data       AggregationRunner
	summarizer Summarizer
}

// New creates a Service.
func New(pipelines PipelineStore, data AggregationRunner, summarizer Summarizer) *Service {
	return &Service{
		pipelines:  pipelines,
		data:       data,
		summarizer: summarizer,
	}
}

// ListPipelines returns the names of every stored pipeline definition.
func (s *Service) ListPipelines(ctx context.Context) ([]string, error) {
	return s.pipelines.ListNames(ctx)
}

// Run executes the named pipeline and assembles the insight. Stages run in
// strict order: lookup, aggregate, prompt, summarize. The first failure
// terminates the run; nothing is retried at this layer.
func (s *Service) Run(ctx context.Context, name string) (*domain.Insight, error) {
	def, err := s.pipelines.Find(ctx, name)
	if err != nil {
		return nil, err
	}

	records, err := s.data.Aggregate(ctx, def.Stages)
	if err != nil {
		return nil, err
	}

	prompt := domain.BuildPrompt(def.Name, def.Description, records)

	summary, err := s.summarizer.Summarize(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &domain.Insight{
		Title:       def.Name,
		Description: def.Description,
		Data:        records,
		Summary:     summary,
	}, nil
}
