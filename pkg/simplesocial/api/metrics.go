package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/simple-social/pkg/simplesocial"
)

// PrometheusMetrics collects HTTP and store event metrics on its own registry.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	responseSize *prometheus.HistogramVec
	events       *prometheus.CounterVec
}

var _ MetricsCollector = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers the metrics, plus the Go and process collectors,
// on a fresh registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simplesocial_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simplesocial_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		responseSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simplesocial_http_response_size_bytes",
			Help:    "HTTP response body size in bytes",
			Buckets: prometheus.ExponentialBuckets(64, 4, 6),
		}, []string{"method", "route"}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simplesocial_store_events_total",
			Help: "Total number of applied store mutations by event type",
		}, []string{"type"}),
	}
}

// RecordRequest implements MetricsCollector
func (m *PrometheusMetrics) RecordRequest(method, route string, statusCode int, duration time.Duration, size int64) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.duration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.responseSize.WithLabelValues(method, route).Observe(float64(size))
}

// EventSink returns a sink that counts store events by type.
func (m *PrometheusMetrics) EventSink() simplesocial.EventSink {
	return simplesocial.NewFuncEventSink(func(ctx context.Context, e simplesocial.Event) error {
		m.events.WithLabelValues(string(e.Type)).Inc()
		return nil
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}
