package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"nanogrid/storage"
)

// PanelExporter exposes the latest snapshot of every panel: its most recent
// value, the number of points it carries, and when it was refreshed.
type PanelExporter struct {
	engine storage.SnapEngine

	lastValue  *prometheus.GaugeVec
	pointCount *prometheus.GaugeVec
	takenAt    *prometheus.GaugeVec

	refreshes *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

func NewPanelExporter(namespace string, engine storage.SnapEngine) *PanelExporter {
	return &PanelExporter{
		engine: engine,
		lastValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "panel_last_value",
			Help:      "the newest sample in the panel's latest snapshot",
		},
			[]string{"panel", "unit"},
		),
		pointCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "panel_points",
			Help:      "the number of points in the panel's latest snapshot",
		},
			[]string{"panel"},
		),
		takenAt: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "panel_taken_at_seconds",
			Help:      "unix time of the panel's latest refresh",
		},
			[]string{"panel"},
		),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panel_refreshes_total",
			Help:      "the total number of panel refreshes",
		},
			[]string{"panel"},
		),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panel_refresh_failures_total",
			Help:      "the total number of failed panel refreshes",
		},
			[]string{"panel"},
		),
	}
}

// ObserveRefresh is wired as the runner's notify hook.
func (exporter *PanelExporter) ObserveRefresh(panelName string) {
	exporter.refreshes.With(prometheus.Labels{"panel": panelName}).Inc()
}

// ObserveFailure is wired as the runner's error hook.
func (exporter *PanelExporter) ObserveFailure(panelName string) {
	exporter.failures.With(prometheus.Labels{"panel": panelName}).Inc()
}

func (exporter *PanelExporter) Describe(ch chan<- *prometheus.Desc) {
	exporter.lastValue.Describe(ch)
	exporter.pointCount.Describe(ch)
	exporter.takenAt.Describe(ch)
	exporter.refreshes.Describe(ch)
	exporter.failures.Describe(ch)
}

func (exporter *PanelExporter) Collect(ch chan<- prometheus.Metric) {
	snapshots, err := exporter.engine.Load()
	if err != nil {
		logrus.Errorf("Failed to load snapshots, err [%s]", err)
	}

	for panelName, snapshot := range snapshots {
		labels := prometheus.Labels{"panel": panelName}
		exporter.pointCount.With(labels).Set(float64(len(snapshot.Points)))
		exporter.takenAt.With(labels).Set(float64(snapshot.TakenAt))
		if len(snapshot.Points) > 0 {
			last := snapshot.Points[len(snapshot.Points)-1]
			exporter.lastValue.With(prometheus.Labels{"panel": panelName, "unit": snapshot.Unit}).Set(last.Value)
		}
	}

	exporter.lastValue.Collect(ch)
	exporter.pointCount.Collect(ch)
	exporter.takenAt.Collect(ch)
	exporter.refreshes.Collect(ch)
	exporter.failures.Collect(ch)
}
