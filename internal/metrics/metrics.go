package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"path", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_login_attempts_total",
		Help: "Login attempts by requested role and outcome.",
	}, []string{"role", "outcome"})

	UploadURLsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_upload_urls_issued_total",
		Help: "Signed upload URLs issued, by the operation that issued them.",
	}, []string{"source"})

	ContentOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_content_operations_total",
		Help: "Content handler operations by action and outcome.",
	}, []string{"action", "outcome"})
)

// Outcome buckets an HTTP status into a low-cardinality label.
func Outcome(status int) string {
	switch {
	case status >= 500:
		return "error"
	case status >= 400:
		return "rejected"
	default:
		return "ok"
	}
}
