package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsOutcomesAndDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)

	metrics.ObserveDuration("committed", 120*time.Millisecond)
	metrics.IncOutcome("committed")
	metrics.IncOutcome("rolled_back")
	metrics.IncCompensationFailure()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_outcomes_total", "outcome", "committed"); err != nil {
		t.Fatalf("fetch committed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected committed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_outcomes_total", "outcome", "rolled_back"); err != nil {
		t.Fatalf("fetch rolled_back: %v", err)
	} else if got != 1 {
		t.Fatalf("expected rolled_back=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "checkout_duration_seconds", "outcome", "committed"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	mf := findMetricFamily(mfs, "checkout_compensation_failures_total")
	if mf == nil {
		t.Fatal("compensation failure metric not found")
	}
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected compensation failures=1, got %f", got)
	}
}

func TestOrderMetricsExportsTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOrderMetrics(reg)

	metrics.IncTransition("New", "Cooking")
	metrics.IncConflict()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "order_status_transitions_total", "from", "New"); err != nil {
		t.Fatalf("fetch transition: %v", err)
	} else if got != 1 {
		t.Fatalf("expected transition=1, got %f", got)
	}

	mf := findMetricFamily(mfs, "order_status_conflicts_total")
	if mf == nil {
		t.Fatal("conflict metric not found")
	}
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected conflicts=1, got %f", got)
	}
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var checkout *CheckoutMetrics
	checkout.IncOutcome("committed")
	checkout.ObserveDuration("committed", time.Second)
	checkout.IncCompensationFailure()

	var orders *OrderMetrics
	orders.IncTransition("New", "Cooking")
	orders.IncConflict()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
