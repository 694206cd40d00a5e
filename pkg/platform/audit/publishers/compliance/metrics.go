package compliance

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EventsEmitted   *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	PersistDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regsync_audit_events_emitted_total",
			Help: "Audit events persisted, by action",
		}, []string{"action"}),
		PersistFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regsync_audit_persist_failures_total",
			Help: "Audit events that could not be persisted, by action",
		}, []string{"action"}),
		PersistDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "regsync_audit_persist_duration_seconds",
			Help:    "Time spent persisting an audit event",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncEventsEmitted(action string) {
	if m == nil {
		return
	}
	m.EventsEmitted.WithLabelValues(action).Inc()
}

func (m *Metrics) IncPersistFailures(action string) {
	if m == nil {
		return
	}
	m.PersistFailures.WithLabelValues(action).Inc()
}

func (m *Metrics) ObservePersistDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.PersistDuration.Observe(d.Seconds())
}
