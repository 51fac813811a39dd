package httpapi

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters/gauges the pipeline's components update as
// they process segments; constructed once against a dedicated registry
// so tests can assert against a fresh one instead of the global default.
type Metrics struct {
	DetectionsTotal   *prometheus.CounterVec
	SegmentsDropped   *prometheus.CounterVec
	ClassifierInvokes *prometheus.CounterVec
	QueuePending      prometheus.Gauge
}

// NewMetrics registers every metric against registry and returns the
// handle components use to record observations.
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		DetectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feather_front_detections_total",
			Help: "Detections recorded, labeled by whether they cleared the confidence threshold.",
		}, []string{"above_threshold"}),
		SegmentsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feather_front_segments_dropped_total",
			Help: "Segments dropped before classification, labeled by reason.",
		}, []string{"reason"}),
		ClassifierInvokes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feather_front_classifier_invocations_total",
			Help: "Classifier subprocess invocations, labeled by outcome.",
		}, []string{"outcome"}),
		QueuePending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feather_front_segment_queue_pending",
			Help: "Segment files currently waiting in the Segment Directory.",
		}),
	}
	for _, c := range []prometheus.Collector{m.DetectionsTotal, m.SegmentsDropped, m.ClassifierInvokes, m.QueuePending} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// registerMetrics mounts /metrics on e against registry, kept separate
// from the default global registry so client library internals never
// bleed into the exported set.
func registerMetrics(e *echo.Echo, registry *prometheus.Registry) {
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}
