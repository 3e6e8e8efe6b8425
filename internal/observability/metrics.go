package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the service registry and the evaluation collectors.
type Metrics struct {
	registry *prometheus.Registry

	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	evaluationRetries  *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prediction_evaluations_total",
				Help: "Evaluation actions by category and outcome status",
			},
			[]string{"category", "status"},
		),
		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prediction_evaluation_duration_seconds",
				Help:    "Wall time of evaluation actions including retries",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"category"},
		),
		evaluationRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prediction_evaluation_retries_total",
				Help: "Evaluation attempts repeated after a serialization conflict",
			},
			[]string{"category"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prediction_http_requests_total",
				Help: "HTTP requests by route pattern and status class",
			},
			[]string{"method", "route", "status"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.evaluationsTotal,
		m.evaluationDuration,
		m.evaluationRetries,
		m.httpRequests,
	)
	return m
}

func (m *Metrics) ObserveEvaluation(category, status string, duration time.Duration) {
	m.evaluationsTotal.WithLabelValues(category, status).Inc()
	m.evaluationDuration.WithLabelValues(category).Observe(duration.Seconds())
}

func (m *Metrics) IncEvaluationRetry(category string) {
	m.evaluationRetries.WithLabelValues(category).Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int) {
	m.httpRequests.WithLabelValues(method, route, statusClass(status)).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
