// Package metrics exposes Prometheus collectors for model calls, analyses and
// the simplification cache.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "clausewise"

// Metrics holds the service collectors on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	llmCalls    *prometheus.CounterVec
	llmDuration *prometheus.HistogramVec
	analyses    *prometheus.CounterVec
	analysisDur *prometheus.HistogramVec
	cacheLookup *prometheus.CounterVec
}

// New registers the collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "Model gateway calls by provider and success.",
		}, []string{"provider", "ok"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "Model gateway call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"provider"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Document analyses by input format and outcome.",
		}, []string{"format", "outcome"}),
		analysisDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end document analysis latency.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"format"}),
		cacheLookup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simplify_cache_lookups_total",
			Help:      "Simplification cache lookups by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.llmCalls, m.llmDuration, m.analyses, m.analysisDur, m.cacheLookup,
	)
	return m
}

// ObserveLLMCall records one gateway call.
func (m *Metrics) ObserveLLMCall(provider string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.llmCalls.WithLabelValues(provider, strconv.FormatBool(ok)).Inc()
	m.llmDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveAnalysis records one analysis attempt.
func (m *Metrics) ObserveAnalysis(format, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if format == "" {
		format = "none"
	}
	m.analyses.WithLabelValues(format, outcome).Inc()
	m.analysisDur.WithLabelValues(format).Observe(elapsed.Seconds())
}

// ObserveCacheLookup records a simplification cache hit, miss or error.
func (m *Metrics) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookup.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
