// Package metrics registers the process-wide Prometheus collectors and the
// exposition handler mounted at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wiretapper_http_requests_total",
		Help: "Total HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})
	HTTPRequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wiretapper_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"route"})
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wiretapper_provider_requests_total",
		Help: "Total upstream provider requests",
	}, []string{"provider"})
	ProviderFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wiretapper_provider_failures_total",
		Help: "Total upstream provider failures (degraded or surfaced)",
	}, []string{"provider"})
	RateLimitRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wiretapper_rate_limit_rejections_total",
		Help: "Total requests rejected by the per-client rate limiter",
	}, []string{"endpoint"})
	ErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wiretapper_errors_total",
		Help: "Total error responses by envelope code",
	}, []string{"code"})
	PanicsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wiretapper_panics_recovered_total",
		Help: "Total panics recovered by the HTTP middleware",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDurationMs)
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderFailuresTotal)
	prometheus.MustRegister(RateLimitRejectionsTotal)
	prometheus.MustRegister(ErrorsTotal)
	prometheus.MustRegister(PanicsTotal)
}

func RecordPanic() {
	PanicsTotal.Inc()
}

func RecordProviderRequest(provider string) {
	ProviderRequestsTotal.WithLabelValues(provider).Inc()
}

func RecordProviderFailure(provider string) {
	ProviderFailuresTotal.WithLabelValues(provider).Inc()
}

func RecordRateLimitRejection(endpoint string) {
	RateLimitRejectionsTotal.WithLabelValues(endpoint).Inc()
}

func RecordError(code string) {
	ErrorsTotal.WithLabelValues(code).Inc()
}

// Handler serves the Prometheus exposition format for the default registry.
func Handler() http.Handler { return promhttp.Handler() }
