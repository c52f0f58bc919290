// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registry served by Handler.
var Registry = prometheus.NewRegistry()

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "userhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "userhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "userhub_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)

	TokenVerifyFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "userhub_token_verify_failures_total",
			Help: "Bearer tokens that failed verification",
		},
		[]string{"reason"},
	)

	UsersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "userhub_users",
			Help: "Registered users",
		},
	)

	FailedLoginAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "userhub_failed_login_attempts_total",
			Help: "Logins rejected for bad credentials",
		},
	)
)

func init() {
	Registry.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		RateLimitHits,
		TokenVerifyFailures,
		FailedLoginAttempts,
		UsersTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves Registry in the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordRequest(method, route string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordRateLimitHit(route string) {
	RateLimitHits.WithLabelValues(route).Inc()
}

func RecordTokenVerifyFailure(reason string) {
	TokenVerifyFailures.WithLabelValues(reason).Inc()
}

func RecordFailedLogin() {
	FailedLoginAttempts.Inc()
}
