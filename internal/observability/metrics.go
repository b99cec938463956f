package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "artsfront"

// Metrics is nil-safe: every method is a no-op on a nil receiver so
// components can run without instrumentation in tests.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpLatencyMS  *prometheus.HistogramVec
	artworkLookups *prometheus.CounterVec
	imageFetches   *prometheus.CounterVec
	imageHandles   prometheus.Gauge
	sessionsOpen   prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpLatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"method", "route"}),
		artworkLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artwork_lookups_total",
			Help:      "Artwork detail lookups by result.",
		}, []string{"result"}),
		imageFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_fetches_total",
			Help:      "Per-item image fetches by result.",
		}, []string{"result"}),
		imageHandles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "image_handles_live",
			Help:      "Image handles currently held in the handle store.",
		}),
		sessionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "summary_sessions_open",
			Help:      "Order summary views currently mounted.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpLatencyMS,
		m.artworkLookups,
		m.imageFetches,
		m.imageHandles,
		m.sessionsOpen,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpLatencyMS.WithLabelValues(method, route).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) ObserveArtworkLookup(result string) {
	if m == nil {
		return
	}
	m.artworkLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveImageFetch(result string) {
	if m == nil {
		return
	}
	m.imageFetches.WithLabelValues(result).Inc()
}

func (m *Metrics) SetImageHandlesLive(n int) {
	if m == nil {
		return
	}
	m.imageHandles.Set(float64(n))
}

func (m *Metrics) SetSessionsOpen(n int) {
	if m == nil {
		return
	}
	m.sessionsOpen.Set(float64(n))
}
