package httpapi

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("writing metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("writing metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestNewMetricsRegistersEveryCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewMetrics(registry)
	if err != nil {
		t.Fatalf("NewMetrics returned error: %v", err)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gathering metrics: %v", err)
	}
	if len(families) != 4 {
		t.Fatalf("expected 4 registered metric families, got %d", len(families))
	}

	m.DetectionsTotal.WithLabelValues("true").Inc()
	m.SegmentsDropped.WithLabelValues("silent").Inc()
	m.ClassifierInvokes.WithLabelValues("success").Inc()
	m.QueuePending.Set(3)

	if got := counterValue(t, m.DetectionsTotal.WithLabelValues("true")); got != 1 {
		t.Fatalf("detections_total = %v, want 1", got)
	}
	if got := counterValue(t, m.SegmentsDropped.WithLabelValues("silent")); got != 1 {
		t.Fatalf("segments_dropped = %v, want 1", got)
	}
	if got := counterValue(t, m.ClassifierInvokes.WithLabelValues("success")); got != 1 {
		t.Fatalf("classifier_invocations = %v, want 1", got)
	}
	if got := gaugeValue(t, m.QueuePending); got != 3 {
		t.Fatalf("queue_pending = %v, want 3", got)
	}
}

func TestNewMetricsRejectsDoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	if _, err := NewMetrics(registry); err != nil {
		t.Fatalf("first NewMetrics returned error: %v", err)
	}
	if _, err := NewMetrics(registry); err == nil {
		t.Fatal("expected second NewMetrics against the same registry to fail")
	}
}
