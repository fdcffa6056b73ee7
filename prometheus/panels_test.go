package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"nanogrid/influx"
	"nanogrid/storage"
)

func gatherMap(t *testing.T, exporter *NanogridExporter) map[string]float64 {
	t.Helper()

	registry := prometheus.NewPedanticRegistry()
	if err := registry.Register(exporter); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	metrics := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetGauge() != nil:
				metrics[family.GetName()] = metric.GetGauge().GetValue()
			case metric.GetCounter() != nil:
				metrics[family.GetName()] = metric.GetCounter().GetValue()
			}
		}
	}
	return metrics
}

func TestPanelExporter(t *testing.T) {
	engine, err := storage.GetMemorySnapEngine("")
	if err != nil {
		t.Fatalf("GetMemorySnapEngine failed: %v", err)
	}

	err = engine.Save(storage.Snapshot{
		ID:      "id",
		Panel:   "grid_power",
		Unit:    "W",
		Query:   "grid_power",
		TakenAt: 1700000000,
		Points: []influx.Point{
			{Timestamp: "2024-01-01T00:00:00Z", Value: 900},
			{Timestamp: "2024-01-01T01:00:00Z", Value: 1200},
		},
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	exporter := NewNanogridExporter(engine)
	exporter.Panels.ObserveRefresh("grid_power")
	exporter.Panels.ObserveRefresh("grid_power")
	exporter.Panels.ObserveFailure("grid_power")

	metrics := gatherMap(t, exporter)

	if value := metrics["nanogrid_panel_last_value"]; value != 1200 {
		t.Errorf("last value: expected 1200, got %f", value)
	}
	if count := metrics["nanogrid_panel_points"]; count != 2 {
		t.Errorf("point count: expected 2, got %f", count)
	}
	if takenAt := metrics["nanogrid_panel_taken_at_seconds"]; takenAt != 1700000000 {
		t.Errorf("taken at: expected 1700000000, got %f", takenAt)
	}
	if refreshes := metrics["nanogrid_panel_refreshes_total"]; refreshes != 2 {
		t.Errorf("refreshes: expected 2, got %f", refreshes)
	}
	if failures := metrics["nanogrid_panel_refresh_failures_total"]; failures != 1 {
		t.Errorf("failures: expected 1, got %f", failures)
	}
}

func TestPanelExporterEmptyEngine(t *testing.T) {
	engine, err := storage.GetMemorySnapEngine("")
	if err != nil {
		t.Fatalf("GetMemorySnapEngine failed: %v", err)
	}

	metrics := gatherMap(t, NewNanogridExporter(engine))
	if _, isExist := metrics["nanogrid_panel_last_value"]; isExist {
		t.Error("empty engine must not export panel values")
	}
}
