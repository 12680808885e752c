// Package metrics holds the Prometheus instrumentation for insightd.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Summarization Prometheus metrics.
var (
	SummaryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insightd",
			Name:      "summary_requests_total",
			Help:      "Total number of Gemini summarization requests",
		},
		[]string{"model", "status"},
	)

	SummaryRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "insightd",
			Name:      "summary_request_duration_seconds",
			Help:      "Gemini summarization request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	SummaryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insightd",
			Name:      "summary_cache_total",
			Help:      "Summary cache lookups by result",
		},
		[]string{"result"},
	)
)

// RegisterSummaryMetrics registers the summarization metrics. Called once
// from the composition root (no init()).
func RegisterSummaryMetrics() {
	prometheus.MustRegister(SummaryRequestsTotal)
	prometheus.MustRegister(SummaryRequestDuration)
	prometheus.MustRegister(SummaryCacheTotal)
}
