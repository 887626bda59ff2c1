package metrics

import "github.com/prometheus/client_golang/prometheus"

// RealtimeMetrics tracks the cache-invalidation bridge.
type RealtimeMetrics struct {
	invalidations  *prometheus.CounterVec
	decodeFailures prometheus.Counter
	subscriptions  prometheus.Gauge
}

// NewRealtimeMetrics registers the bridge metrics on the provided registerer.
func NewRealtimeMetrics(reg prometheus.Registerer) *RealtimeMetrics {
	if reg == nil {
		return &RealtimeMetrics{}
	}
	invalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_invalidations_total",
		Help: "Change events dispatched to view-cache invalidation callbacks.",
	}, []string{"table", "change"})
	decodeFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realtime_decode_failures_total",
		Help: "Change-feed messages that could not be decoded and were dropped.",
	})
	subscriptions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_active_subscriptions",
		Help: "Live bridge subscriptions.",
	})
	reg.MustRegister(invalidations, decodeFailures, subscriptions)
	return &RealtimeMetrics{
		invalidations:  invalidations,
		decodeFailures: decodeFailures,
		subscriptions:  subscriptions,
	}
}

// IncInvalidation counts one dispatched change event.
func (r *RealtimeMetrics) IncInvalidation(table, change string) {
	if r == nil || r.invalidations == nil {
		return
	}
	r.invalidations.WithLabelValues(normalizeLabel(table), normalizeLabel(change)).Inc()
}

// IncDecodeFailure counts one dropped feed message.
func (r *RealtimeMetrics) IncDecodeFailure() {
	if r == nil || r.decodeFailures == nil {
		return
	}
	r.decodeFailures.Inc()
}

// SubscriptionOpened bumps the live-subscription gauge.
func (r *RealtimeMetrics) SubscriptionOpened() {
	if r == nil || r.subscriptions == nil {
		return
	}
	r.subscriptions.Inc()
}

// SubscriptionClosed drops the live-subscription gauge.
func (r *RealtimeMetrics) SubscriptionClosed() {
	if r == nil || r.subscriptions == nil {
		return
	}
	r.subscriptions.Dec()
}
