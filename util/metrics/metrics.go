// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is private to folio so tests and repeated server restarts never
// hit duplicate registration in the global default registry.
var Registry = prometheus.NewRegistry()

var (
	HTTPRequestsTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "folio_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.With(Registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "folio_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	FailedLoginAttempts = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "folio_failed_login_attempts_total",
		Help: "Rejected logins by reason.",
	}, []string{"reason"})

	ProjectMutations = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "folio_project_mutations_total",
		Help: "Applied project changes by action.",
	}, []string{"action"})

	ForbiddenRequests = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "folio_forbidden_requests_total",
		Help: "Requests rejected by the admin guard.",
	})

	CSRFRejections = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "folio_csrf_rejections_total",
		Help: "State-changing requests without a valid form token.",
	})

	RateLimited = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "folio_rate_limited_total",
		Help: "Requests refused by the rate limiter, by route.",
	}, []string{"route"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
