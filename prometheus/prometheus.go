package prometheus

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nanogrid/storage"
)

const PREFIX = "nanogrid"

func NanogridPrometheusHandler(reg prometheus.Gatherer) gin.HandlerFunc {
	h := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Overarching exporter, with 'sub exporters'
type NanogridExporter struct {
	Panels *PanelExporter
}

func NewNanogridExporter(engine storage.SnapEngine) *NanogridExporter {
	return &NanogridExporter{
		Panels: NewPanelExporter(PREFIX, engine),
	}
}

func (exporter *NanogridExporter) Collect(ch chan<- prometheus.Metric) {
	exporter.Panels.Collect(ch)
}

func (exporter *NanogridExporter) Describe(ch chan<- *prometheus.Desc) {
	exporter.Panels.Describe(ch)
}
