package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects orchestration metrics.
type Metrics interface {
	// RecordAttempt is called once per physical provider call. kind is empty on success.
	RecordAttempt(provider, kind string, latency time.Duration)

	// RecordExecution is called once per orchestrated request.
	RecordExecution(labels ExecutionLabels, duration time.Duration)
}

// ExecutionLabels contains metric dimensions for a finished request.
type ExecutionLabels struct {
	Action       string
	Model        string
	Status       string
	FallbackUsed bool
}

const (
	StatusSuccess  = "success"
	StatusFailed   = "failed"
	StatusDegraded = "degraded"
	StatusAborted  = "aborted"
)

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordAttempt(string, string, time.Duration)    {}
func (NopMetrics) RecordExecution(ExecutionLabels, time.Duration) {}

// PrometheusMetrics exports metrics on a private registry.
type PrometheusMetrics struct {
	registry   *prometheus.Registry
	attempts   *prometheus.CounterVec
	attemptDur *prometheus.HistogramVec
	executions *prometheus.CounterVec
	execDur    *prometheus.HistogramVec
}

// NewPrometheusMetrics registers all collectors under the given namespace.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &PrometheusMetrics{
		registry: reg,
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Physical provider calls by outcome.",
		}, []string{"provider", "outcome"}),
		attemptDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_attempt_duration_seconds",
			Help:      "Latency of a single provider call.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"provider"}),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executions_total",
			Help:      "Orchestrated requests by final status.",
		}, []string{"action", "model", "status", "fallback_used"}),
		execDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "execution_duration_seconds",
			Help:      "End to end orchestration latency including retries and backoff.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"action", "status"}),
	}

	reg.MustRegister(m.attempts, m.attemptDur, m.executions, m.execDur)
	return m
}

func (m *PrometheusMetrics) RecordAttempt(provider, kind string, latency time.Duration) {
	outcome := kind
	if outcome == "" {
		outcome = "success"
	}
	m.attempts.WithLabelValues(provider, outcome).Inc()
	m.attemptDur.WithLabelValues(provider).Observe(latency.Seconds())
}

func (m *PrometheusMetrics) RecordExecution(labels ExecutionLabels, duration time.Duration) {
	m.executions.WithLabelValues(labels.Action, labels.Model, labels.Status, strconv.FormatBool(labels.FallbackUsed)).Inc()
	m.execDur.WithLabelValues(labels.Action, labels.Status).Observe(duration.Seconds())
}

// Registry exposes the underlying registry, mostly for tests.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
