package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/northwind/salesportal/internal/metrics"
)

// Instrument records request count and latency under a fixed route label,
// so arbitrary URLs never become label values.
func Instrument(route string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrap(w)

			next(rw, r)

			metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		}
	}
}
