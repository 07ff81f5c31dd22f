package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	Requests          *prometheus.CounterVec
	Uploads           *prometheus.CounterVec
	RejectedFiles     prometheus.Counter
	ProcessorFailures *prometheus.CounterVec
	ChartsRendered    *prometheus.CounterVec
	RenderSeconds     *prometheus.HistogramVec
	RangeSelections   prometheus.Counter
	ChartSessions     prometheus.Gauge
	EventSubscribers  prometheus.Gauge
}

// NewMetrics registers the collectors on a fresh registry together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spectra",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spectra",
			Name:      "uploads_total",
			Help:      "Upload requests by outcome.",
		}, []string{"outcome"}),
		RejectedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spectra",
			Name:      "upload_rejected_files_total",
			Help:      "Uploaded files rejected before processing.",
		}),
		ProcessorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spectra",
			Name:      "processor_failures_total",
			Help:      "Processor calls that failed, by error code.",
		}, []string{"code"}),
		ChartsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spectra",
			Name:      "charts_rendered_total",
			Help:      "Rendered charts by output format.",
		}, []string{"format"}),
		RenderSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "spectra",
			Name:      "chart_render_seconds",
			Help:      "Chart render latency by output format.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"format"}),
		RangeSelections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spectra",
			Name:      "range_selections_total",
			Help:      "Range selection notifications sent to chart sessions.",
		}),
		ChartSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spectra",
			Name:      "chart_sessions",
			Help:      "Open interactive chart sessions.",
		}),
		EventSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spectra",
			Name:      "event_subscribers",
			Help:      "Connected result event subscribers.",
		}),
	}

	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.Requests,
		m.Uploads,
		m.RejectedFiles,
		m.ProcessorFailures,
		m.ChartsRendered,
		m.RenderSeconds,
		m.RangeSelections,
		m.ChartSessions,
		m.EventSubscribers,
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
