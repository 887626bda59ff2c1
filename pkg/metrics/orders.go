package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics records status transition activity.
type OrderMetrics struct {
	transitions *prometheus.CounterVec
	conflicts   prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Applied order status transitions by from/to status.",
	}, []string{"from", "to"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_status_conflicts_total",
		Help: "Status updates rejected because the order changed concurrently.",
	})
	reg.MustRegister(transitions, conflicts)
	return &OrderMetrics{transitions: transitions, conflicts: conflicts}
}

// IncTransition counts an applied transition.
func (o *OrderMetrics) IncTransition(from, to string) {
	if o == nil || o.transitions == nil {
		return
	}
	o.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncConflict counts a lost optimistic-concurrency race.
func (o *OrderMetrics) IncConflict() {
	if o == nil || o.conflicts == nil {
		return
	}
	o.conflicts.Inc()
}
