// Package telemetry exposes Prometheus metrics for the analysis pipeline.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics for TokenSentry.
type Registry struct {
	AnalysisDuration *prometheus.HistogramVec
	AnalysisTotal    *prometheus.CounterVec
	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	AIRequests       *prometheus.CounterVec
}

// NewRegistry creates and registers all TokenSentry metrics.
func NewRegistry() *Registry {
	r := &Registry{
		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tokensentry_analysis_duration_seconds",
				Help:    "Duration of token analyses in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"type", "outcome"},
		),
		AnalysisTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokensentry_analyses_total",
				Help: "Total number of token analyses by type and decision",
			},
			[]string{"type", "decision"},
		),
		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokensentry_provider_requests_total",
				Help: "Total provider fetches by source and status",
			},
			[]string{"source", "status"},
		),
		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tokensentry_provider_latency_seconds",
				Help:    "Provider fetch latency in seconds",
				Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"source"},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tokensentry_cache_hits_total",
				Help: "Total analysis cache hits",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tokensentry_cache_misses_total",
				Help: "Total analysis cache misses",
			},
		),
		AIRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokensentry_ai_requests_total",
				Help: "Total LLM enrichment calls by outcome",
			},
			[]string{"outcome"},
		),
	}

	prometheus.MustRegister(
		r.AnalysisDuration,
		r.AnalysisTotal,
		r.ProviderRequests,
		r.ProviderLatency,
		r.CacheHits,
		r.CacheMisses,
		r.AIRequests,
	)

	return r
}

// ObserveProvider records one provider fetch.
func (r *Registry) ObserveProvider(source, status string, elapsed time.Duration) {
	r.ProviderRequests.WithLabelValues(source, status).Inc()
	r.ProviderLatency.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveAnalysis records one completed analysis.
func (r *Registry) ObserveAnalysis(typ, outcome, decision string, elapsed time.Duration) {
	r.AnalysisDuration.WithLabelValues(typ, outcome).Observe(elapsed.Seconds())
	r.AnalysisTotal.WithLabelValues(typ, decision).Inc()
}

// Handler returns the Prometheus scrape handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.Handler()
}
