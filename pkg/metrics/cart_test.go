package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCartMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCartMetrics(reg)

	metrics.IncOperation("add_item", "ok")
	metrics.IncOperation("add_item", "ok")
	metrics.IncOperation("add_item", "rejected")
	metrics.IncPersistFailure()
	metrics.IncReload("external_change")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "cart_operations_total", map[string]string{"op": "add_item", "result": "ok"}); err != nil {
		t.Fatalf("fetch operations: %v", err)
	} else if got != 2 {
		t.Fatalf("expected operations=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "cart_persist_failures_total", nil); err != nil {
		t.Fatalf("fetch persist failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected persist failures=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "cart_reloads_total", map[string]string{"trigger": "external_change"}); err != nil {
		t.Fatalf("fetch reloads: %v", err)
	} else if got != 1 {
		t.Fatalf("expected reloads=1, got %f", got)
	}
}

func TestCartMetricsNilReceiverIsSafe(t *testing.T) {
	var metrics *CartMetrics
	metrics.IncOperation("add_item", "ok")
	metrics.IncPersistFailure()
	metrics.IncReload("resync")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric, labels) {
				return metric.GetCounter().GetValue(), nil
			}
		}
	}
	return 0, fmt.Errorf("metric %q with labels %v not found", name, labels)
}

func matchesLabels(metric *dto.Metric, labels map[string]string) bool {
	for k, v := range labels {
		found := false
		for _, pair := range metric.GetLabel() {
			if pair.GetName() == k && pair.GetValue() == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
