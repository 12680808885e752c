// Package sumcache memoizes summarization calls by exact prompt text so that
// repeated dashboard requests do not re-charge the Gemini API.
package sumcache

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/steamdash/insightd/internal/cache"
)

// Summarizer is the consumer interface for the wrapped provider client.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// CachedSummarizer is an LRU-caching decorator around a Summarizer.
type CachedSummarizer struct {
	inner      Summarizer
	cache      *cache.LRU
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates the caching decorator. cacheTotal is a counter vec with label
// "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Summarizer,
	c *cache.LRU,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSummarizer {
	return &CachedSummarizer{
		inner:      inner,
		cache:      c,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Summarize returns a cached summary or calls the inner client. A failed call
// is never cached; the next request with the same prompt retries the provider.
func (c *CachedSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	summary, hit, err := c.cache.GetOrCompute(prompt, func() (string, error) {
		c.logger.Info("Gemini API call (cache miss)")
		return c.inner.Summarize(ctx, prompt)
	})
	if err != nil {
		return "", err
	}

	if hit {
		c.incCache("hit")
	} else {
		c.incCache("miss")
	}
	return summary, nil
}

func (c *CachedSummarizer) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
