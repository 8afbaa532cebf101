package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the onboarding service. Each
// instance owns its registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Upstream        *prometheus.CounterVec
	StatusStreams   prometheus.Gauge
	Workspaces      prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboard_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "onboard_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Upstream: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onboard_upstream_requests_total",
				Help: "Calls to the remote auth/KYC API by endpoint and outcome.",
			},
			[]string{"endpoint", "outcome"},
		),
		StatusStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "onboard_kyc_status_streams",
			Help: "Open KYC status event streams.",
		}),
		Workspaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "onboard_workspaces",
			Help: "Visitor workspaces held in memory.",
		}),
	}
	m.registry.MustRegister(
		m.RequestCount,
		m.RequestDuration,
		m.Upstream,
		m.StatusStreams,
		m.Workspaces,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestCount.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveUpstream counts one remote API call. It matches authapi.Options.Observe.
func (m *Metrics) ObserveUpstream(endpoint, outcome string) {
	m.Upstream.WithLabelValues(endpoint, outcome).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
