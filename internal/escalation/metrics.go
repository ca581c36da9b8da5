package escalation

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the escalation inbox.
type Metrics struct {
	TransitionsTotal *prometheus.CounterVec
	BulkSize         prometheus.Histogram
	NotFoundTotal    prometheus.Counter
	SelectionToggles prometheus.Counter
}

// NewMetrics registers and returns escalation metrics on the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ward_escalation_transitions_total",
			Help: "Total escalation status transitions by target status.",
		}, []string{"status"}),
		BulkSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ward_escalation_bulk_size",
			Help:    "Items applied per bulk transition.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8), // 1 .. 128
		}),
		NotFoundTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ward_escalation_not_found_total",
			Help: "Transition requests against unknown escalation ids.",
		}),
		SelectionToggles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ward_escalation_selection_toggles_total",
			Help: "Select-all toggles against the filtered view.",
		}),
	}

	reg.MustRegister(
		m.TransitionsTotal,
		m.BulkSize,
		m.NotFoundTotal,
		m.SelectionToggles,
	)

	return m
}
