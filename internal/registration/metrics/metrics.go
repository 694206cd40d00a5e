package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration module.
type Metrics struct {
	// Source fetch latencies and outcomes by source kind
	FetchLatency *prometheus.HistogramVec
	FetchOutcome *prometheus.CounterVec

	// Records removed per pipeline stage
	RecordsDropped *prometheus.CounterVec

	// Records returned per run
	RecordsReturned prometheus.Histogram

	// Full reconciliation latency including the fan-out
	ReconcileLatency prometheus.Histogram

	// Status mutations forwarded upstream by outcome
	StatusUpdates *prometheus.CounterVec
}

// New registers the registration metrics with the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FetchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regsync_source_fetch_duration_seconds",
			Help:    "Duration of registration source fetches by source",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source"}),

		FetchOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regsync_source_fetch_total",
			Help: "Total registration source fetches by source and outcome",
		}, []string{"source", "outcome"}), // outcome: "ok" or an error category

		RecordsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regsync_records_dropped_total",
			Help: "Records removed by the reconciliation pipeline by stage",
		}, []string{"stage"}),

		RecordsReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "regsync_records_returned",
			Help:    "Number of records returned per reconciliation",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		ReconcileLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "regsync_reconcile_duration_seconds",
			Help:    "Duration of a full reconciliation including source fetches",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		StatusUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regsync_status_updates_total",
			Help: "Status updates forwarded to the services backend by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveFetch records one source fetch.
func (m *Metrics) ObserveFetch(source, outcome string, d time.Duration) {
	if m != nil {
		m.FetchLatency.WithLabelValues(source).Observe(d.Seconds())
		m.FetchOutcome.WithLabelValues(source, outcome).Inc()
	}
}

// AddDropped records records removed at a pipeline stage.
func (m *Metrics) AddDropped(stage string, n int) {
	if m != nil && n > 0 {
		m.RecordsDropped.WithLabelValues(stage).Add(float64(n))
	}
}

// ObserveReconcile records the total run duration and output size.
func (m *Metrics) ObserveReconcile(d time.Duration, returned int) {
	if m != nil {
		m.ReconcileLatency.Observe(d.Seconds())
		m.RecordsReturned.Observe(float64(returned))
	}
}

// IncrementStatusUpdate records a forwarded status update.
func (m *Metrics) IncrementStatusUpdate(outcome string) {
	if m != nil {
		m.StatusUpdates.WithLabelValues(outcome).Inc()
	}
}
