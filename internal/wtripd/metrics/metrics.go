// Package metrics provides Prometheus metrics for the trips web server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's collectors and the registry they belong to
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequestsTotal counts served requests by route pattern and status
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTPRequestDuration observes serve latency by route pattern
	HTTPRequestDuration *prometheus.HistogramVec
	// BackendRequestsTotal counts calls to the trips backend by method and status
	BackendRequestsTotal *prometheus.CounterVec
	// BackendRequestDuration observes backend call latency by method
	BackendRequestDuration *prometheus.HistogramVec
	// PriceValidationsTotal counts price checks by outcome
	PriceValidationsTotal *prometheus.CounterVec
	// TripListCacheTotal counts trip list loads by result (hit, miss, shared)
	TripListCacheTotal *prometheus.CounterVec
}

// New creates the collectors and registers them with a fresh registry that
// also carries the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wtripd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wtripd_http_request_duration_seconds",
				Help:    "HTTP request latencies",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"route"},
		),
		BackendRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wtripd_backend_requests_total",
				Help: "Total number of requests sent to the trips backend",
			},
			[]string{"method", "status"},
		),
		BackendRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wtripd_backend_request_duration_seconds",
				Help:    "Trips backend request latencies",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		PriceValidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wtripd_price_validations_total",
				Help: "Total number of price validations by outcome",
			},
			[]string{"outcome"},
		),
		TripListCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wtripd_trip_list_loads_total",
				Help: "Trip list loads by cache result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BackendRequestsTotal,
		m.BackendRequestDuration,
		m.PriceValidationsTotal,
		m.TripListCacheTotal,
	)
	return m
}

// Registry returns the registry the collectors are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveBackend records one backend call. It matches the client observer
// signature; the endpoint is not used as a label to keep cardinality bounded.
func (m *Metrics) ObserveBackend(method, _ string, status int, elapsed time.Duration) {
	m.BackendRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.BackendRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObservePriceValidation records the outcome of one price check
func (m *Metrics) ObservePriceValidation(valid bool) {
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	m.PriceValidationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveTripListLoad records how a trip list was obtained
func (m *Metrics) ObserveTripListLoad(result string) {
	m.TripListCacheTotal.WithLabelValues(result).Inc()
}
