package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestShoppingMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewShoppingMetrics(reg)
	metrics.IncMutation("add_to_cart")
	metrics.IncMutation("add_to_cart")
	metrics.IncPersistFailure("cart")
	metrics.IncConflict("wishlist")
	metrics.IncLoadFallback("cart", "corrupt")
	metrics.ObserveQuery("price_asc", 3*time.Millisecond, 7)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "freshcart_engine_mutations_total", "op", "add_to_cart"); err != nil {
		t.Fatalf("fetch mutations: %v", err)
	} else if got != 2 {
		t.Fatalf("expected mutations=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "freshcart_engine_persist_failures_total", "collection", "cart"); err != nil {
		t.Fatalf("fetch persist failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected persist failures=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "freshcart_engine_persist_conflicts_total", "collection", "wishlist"); err != nil {
		t.Fatalf("fetch conflicts: %v", err)
	} else if got != 1 {
		t.Fatalf("expected conflicts=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "freshcart_engine_load_fallbacks_total", "reason", "corrupt"); err != nil {
		t.Fatalf("fetch load fallbacks: %v", err)
	} else if got != 1 {
		t.Fatalf("expected load fallbacks=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "freshcart_catalog_query_duration_seconds", "sort", "price_asc"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestShoppingMetricsNilSafe(t *testing.T) {
	var metrics *ShoppingMetrics
	metrics.IncMutation("x")
	metrics.IncConflict("cart")
	metrics.ObserveQuery("", time.Millisecond, 0)

	unregistered := NewShoppingMetrics(nil)
	unregistered.IncPersistFailure("cart")
	unregistered.IncLoadFallback("cart", "missing")
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

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	httpMetrics := NewHTTPMetrics(reg)
	httpMetrics.Observe("/api/v1/cart", "GET", 200, 5*time.Millisecond)
	httpMetrics.Observe("", "GET", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "freshcart_http_requests_total", "route", "/api/v1/cart"); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 1 {
		t.Fatalf("expected requests=1, got %f", got)
	}
	if _, err := fetchCounterValue(mfs, "freshcart_http_requests_total", "route", "unknown"); err != nil {
		t.Fatalf("expected unmatched route to be labelled unknown: %v", err)
	}

	var nilMetrics *HTTPMetrics
	nilMetrics.Observe("/", "GET", 200, time.Millisecond)
}
