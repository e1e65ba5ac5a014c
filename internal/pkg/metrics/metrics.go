// Package metrics holds the Prometheus collectors exported by the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pageshell"

// Collector owns a private registry and every metric the server records.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	pageRendersTotal    *prometheus.CounterVec
	pageCacheTotal      *prometheus.CounterVec
	rateLimitRejections prometheus.Counter
	routesRegistered    prometheus.Gauge
}

// New creates a Collector with Go runtime and process collectors attached.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests by method, matched route and status.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by method and matched route.",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		),
		pageRendersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "page",
				Name:      "renders_total",
				Help:      "Pages rendered from templates by layout and render mode.",
			},
			[]string{"layout", "mode"},
		),
		pageCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "page",
				Name:      "cache_lookups_total",
				Help:      "Rendered page cache lookups by result.",
			},
			[]string{"result"},
		),
		rateLimitRejections: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "ratelimit_rejections_total",
				Help:      "Requests rejected by the per-client rate limiter.",
			},
		),
		routesRegistered: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "routes_registered",
				Help:      "Number of page routes in the route table.",
			},
		),
	}
}

// ObserveRequest records one finished HTTP request. route is the matched
// route pattern, not the raw path, to keep label cardinality bounded.
func (m *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncPageRender counts a page rendered from templates.
func (m *Collector) IncPageRender(layout, mode string) {
	if m == nil {
		return
	}
	m.pageRendersTotal.WithLabelValues(layout, mode).Inc()
}

// IncPageCache counts a page cache lookup.
func (m *Collector) IncPageCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.pageCacheTotal.WithLabelValues(result).Inc()
}

// IncRateLimited counts a rejected request.
func (m *Collector) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimitRejections.Inc()
}

// SetRoutes records the size of the route table.
func (m *Collector) SetRoutes(n int) {
	if m == nil {
		return
	}
	m.routesRegistered.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Collector) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
