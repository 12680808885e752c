// Package gemini wraps the Google generative language API behind the
// summarizer contract of insightd.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/steamdash/insightd/internal/domain"
	"github.com/steamdash/insightd/internal/metrics"
)

// Client is the Gemini summarization provider.
type Client struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// Config holds the provider settings.
type Config struct {
	APIKey string
	Model  string
	Logger *zap.Logger
}

// NewClient creates a Gemini API client using API-key auth.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	cl, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{client: cl, model: cfg.Model, logger: logger}, nil
}

// Summarize issues one blocking generation call with the fixed model and
// returns the text of the first candidate. Network, auth, provider and
// empty-response failures all surface as a domain.SummarizationError; retry
// policy belongs to the caller.
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)

	duration := time.Since(start)

	if err != nil {
		metrics.SummaryRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", &domain.SummarizationError{Err: err}
	}

	metrics.SummaryRequestsTotal.WithLabelValues(c.model, "success").Inc()
	metrics.SummaryRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())
	c.logger.Debug("generated summary",
		zap.String("model", c.model),
		zap.Duration("duration", duration),
	)

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &domain.SummarizationError{Err: errors.New("empty response from model")}
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			out.WriteString(part.Text)
		}
	}
	if out.Len() == 0 {
		return "", &domain.SummarizationError{Err: errors.New("no text in model response")}
	}

	return out.String(), nil
}
