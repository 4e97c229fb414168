package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "travelguard"

// Metrics holds the Prometheus collectors for the validation pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	validations        *prometheus.CounterVec
	classifierDuration prometheus.Histogram
	classifierFailures *prometheus.CounterVec
	incidents          *prometheus.CounterVec
	incidentFailures   prometheus.Counter
}

// NewMetrics creates collectors on a private registry so tests and
// multiple instances never collide on the global one.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Validation requests by deciding stage and outcome.",
		}, []string{"stage", "outcome"}),
		classifierDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classifier_duration_seconds",
			Help:      "Latency of semantic classifier round trips.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		}),
		classifierFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_failures_total",
			Help:      "Classifier calls that failed closed, by failure kind.",
		}, []string{"kind"}),
		incidents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "incidents_total",
			Help:      "Incident records dispatched, by category and severity.",
		}, []string{"category", "severity"}),
		incidentFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "incident_write_failures_total",
			Help:      "Incident records that could not be persisted.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.validations,
		m.classifierDuration,
		m.classifierFailures,
		m.incidents,
		m.incidentFailures,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveValidation(stage, outcome string) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(stage, outcome).Inc()
}

// ObserveClassifier records one classifier round trip. failure is empty
// on success.
func (m *Metrics) ObserveClassifier(d time.Duration, failure string) {
	if m == nil {
		return
	}
	m.classifierDuration.Observe(d.Seconds())
	if failure != "" {
		m.classifierFailures.WithLabelValues(failure).Inc()
	}
}

func (m *Metrics) ObserveIncident(category, severity string) {
	if m == nil {
		return
	}
	m.incidents.WithLabelValues(category, severity).Inc()
}

func (m *Metrics) IncidentWriteFailed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.incidentFailures.Add(float64(n))
}
