// Package metrics exposes simulation and HTTP metrics on a private
// Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application.
type Registry struct {
	// Simulation
	TicksTotal   prometheus.Counter
	TickDuration prometheus.Histogram
	Alpha        prometheus.Gauge
	Nodes        prometheus.Gauge
	Links        prometheus.Gauge
	ReseedsTotal *prometheus.CounterVec

	// Transport
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SSEClients          prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r.initSimulationMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initSimulationMetrics() {
	f := promauto.With(r.registry)
	r.TicksTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "notegraph_ticks_total",
		Help: "Layout ticks executed while the simulation was active",
	})
	r.TickDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "notegraph_tick_duration_seconds",
		Help:    "Time spent in one layout tick",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	})
	r.Alpha = f.NewGauge(prometheus.GaugeOpts{
		Name: "notegraph_alpha",
		Help: "Current simulation temperature",
	})
	r.Nodes = f.NewGauge(prometheus.GaugeOpts{
		Name: "notegraph_nodes",
		Help: "Nodes in the current graph",
	})
	r.Links = f.NewGauge(prometheus.GaugeOpts{
		Name: "notegraph_links",
		Help: "Similarity links in the current graph",
	})
	r.ReseedsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "notegraph_reseeds_total",
		Help: "Note set updates applied to the layout",
	}, []string{"status"})
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)
	r.HTTPRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "notegraph_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	r.HTTPRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notegraph_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
	r.SSEClients = f.NewGauge(prometheus.GaugeOpts{
		Name: "notegraph_sse_clients",
		Help: "Connected event stream clients",
	})
}

// ObserveTick records one active tick.
func (r *Registry) ObserveTick(d time.Duration, alpha float64) {
	r.TicksTotal.Inc()
	r.TickDuration.Observe(d.Seconds())
	r.Alpha.Set(alpha)
}

// ObserveGraph records the size of the current graph.
func (r *Registry) ObserveGraph(nodes, links int) {
	r.Nodes.Set(float64(nodes))
	r.Links.Set(float64(links))
}

// ObserveReseed counts an update by outcome.
func (r *Registry) ObserveReseed(err error) {
	status := "success"
	if err != nil {
		status = "rejected"
	}
	r.ReseedsTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer returns the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }
