package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCatalogMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCatalogMetrics(reg)
	m.ObserveFetch("ok", 250*time.Millisecond)
	m.ObserveFetch("error", 10*time.Millisecond)
	m.IncDemoResponse()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "catalog_fetch_total", "outcome", "ok"); err != nil {
		t.Fatalf("fetch ok counter: %v", err)
	} else if got != 1 {
		t.Fatalf("expected ok=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "catalog_fetch_total", "outcome", "error"); err != nil {
		t.Fatalf("fetch error counter: %v", err)
	} else if got != 1 {
		t.Fatalf("expected error=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "catalog_fetch_duration_seconds", "outcome", "ok"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	mf := findMetricFamily(mfs, "catalog_demo_responses_total")
	if mf == nil {
		t.Fatal("demo counter not registered")
	}
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected demo=1, got %f", got)
	}
}

func TestCatalogMetricsNilSafe(t *testing.T) {
	var m *CatalogMetrics
	m.ObserveFetch("ok", time.Second)
	m.IncDemoResponse()

	empty := NewCatalogMetrics(nil)
	empty.ObserveFetch("", time.Second)
	empty.IncDemoResponse()
}

func TestFulfillmentMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewFulfillmentMetrics(reg)
	m.IncPromotion("picked")
	m.IncPromotion("picked")
	m.IncPromotion("approved")
	m.IncVersionConflict()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "fulfillment_promotions_total", "stage", "picked"); err != nil {
		t.Fatalf("fetch picked counter: %v", err)
	} else if got != 2 {
		t.Fatalf("expected picked=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "fulfillment_promotions_total", "stage", "approved"); err != nil {
		t.Fatalf("fetch approved counter: %v", err)
	} else if got != 1 {
		t.Fatalf("expected approved=1, got %f", got)
	}

	mf := findMetricFamily(mfs, "fulfillment_version_conflicts_total")
	if mf == nil {
		t.Fatal("conflict counter not registered")
	}
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected conflicts=1, got %f", got)
	}
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
