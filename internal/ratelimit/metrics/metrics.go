package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions     *prometheus.CounterVec
	StoreErrors   prometheus.Counter
	DegradedState prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regsync_ratelimit_decisions_total",
			Help: "Rate limit decisions by endpoint class and outcome",
		}, []string{"class", "outcome"}), // outcome: "allowed", "denied"
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "regsync_ratelimit_store_errors_total",
			Help: "Errors returned by the primary rate limit store",
		}),
		DegradedState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "regsync_ratelimit_degraded",
			Help: "1 while the in-memory fallback store is in use",
		}),
	}
}

func (m *Metrics) IncrementDecision(class string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.Decisions.WithLabelValues(class, outcome).Inc()
}

func (m *Metrics) IncrementStoreErrors() {
	if m != nil {
		m.StoreErrors.Inc()
	}
}

func (m *Metrics) SetDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.DegradedState.Set(1)
		return
	}
	m.DegradedState.Set(0)
}
