package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout transaction outcomes and timings.
type CheckoutMetrics struct {
	duration            *prometheus.HistogramVec
	outcomes            *prometheus.CounterVec
	compensationFailure prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_outcomes_total",
		Help: "Checkout transactions by outcome.",
	}, []string{"outcome"})
	compensationFailure := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_compensation_failures_total",
		Help: "Compensating header deletes that themselves failed, leaving an orphaned order header.",
	})
	reg.MustRegister(duration, outcomes, compensationFailure)
	return &CheckoutMetrics{
		duration:            duration,
		outcomes:            outcomes,
		compensationFailure: compensationFailure,
	}
}

// ObserveDuration records how long a checkout attempt took.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncOutcome increments the counter for the given checkout outcome.
func (c *CheckoutMetrics) IncOutcome(outcome string) {
	if c == nil || c.outcomes == nil {
		return
	}
	c.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncCompensationFailure increments the orphaned-header counter.
func (c *CheckoutMetrics) IncCompensationFailure() {
	if c == nil || c.compensationFailure == nil {
		return
	}
	c.compensationFailure.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
