// Package metrics owns the process-wide Prometheus registry. One Registry is
// built at startup and handed to every component that records metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vyla"

// Registry holds the service collectors. All methods are safe for concurrent
// use and are no-ops on a nil receiver.
type Registry struct {
	reg       *prometheus.Registry
	startedAt time.Time

	httpRequests *prometheus.CounterVec
	httpErrors   *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec

	breakerState *prometheus.GaugeVec
	breakerTrips *prometheus.CounterVec

	imageResponses *prometheus.CounterVec
}

// Option customises a Registry.
type Option func(*Registry)

// WithStartTime overrides the process start time reported by Uptime.
func WithStartTime(t time.Time) Option {
	return func(r *Registry) { r.startedAt = t }
}

// WithRuntimeCollectors registers the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(r *Registry) {
		r.reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// New builds a Registry with every service collector registered.
func New(opts ...Option) *Registry {
	r := &Registry{
		reg:       prometheus.NewRegistry(),
		startedAt: time.Now(),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),

		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Total error responses by error kind",
		}, []string{"kind"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		}),

		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total upstream provider calls by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),

		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream provider latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"endpoint"}),

		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state by component (active state=1; others 0)",
		}, []string{"component", "state"}),

		breakerTrips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_trips_total",
			Help:      "Total number of circuit breaker trips (transitions to open state)",
		}, []string{"component", "reason"}),

		imageResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_proxy_responses_total",
			Help:      "Image proxy responses by source (tmdb|fallback)",
		}, []string{"source"}),
	}

	r.reg.MustRegister(
		r.httpRequests,
		r.httpErrors,
		r.httpDuration,
		r.httpInFlight,
		r.upstreamRequests,
		r.upstreamDuration,
		r.breakerState,
		r.breakerTrips,
		r.imageResponses,
	)

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Gatherer exposes the underlying registry for exposition and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the Prometheus text exposition of this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// StartedAt returns the time the registry was created.
func (r *Registry) StartedAt() time.Time {
	if r == nil {
		return time.Time{}
	}
	return r.startedAt
}

// Uptime returns the time elapsed since the registry was created.
func (r *Registry) Uptime() time.Duration {
	if r == nil {
		return 0
	}
	return time.Since(r.startedAt)
}

// ObserveRequest records one served HTTP request.
func (r *Registry) ObserveRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RequestStarted increments the in-flight gauge; the returned func decrements it.
func (r *Registry) RequestStarted() func() {
	if r == nil {
		return func() {}
	}
	r.httpInFlight.Inc()
	return r.httpInFlight.Dec
}

// RecordError counts one error response of the given kind.
func (r *Registry) RecordError(kind string) {
	if r == nil {
		return
	}
	r.httpErrors.WithLabelValues(kind).Inc()
}

// ObserveUpstream records one upstream call.
func (r *Registry) ObserveUpstream(endpoint, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	r.upstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordImage counts one image proxy response by source.
func (r *Registry) RecordImage(source string) {
	if r == nil {
		return
	}
	r.imageResponses.WithLabelValues(source).Inc()
}
