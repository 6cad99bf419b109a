package middleware

import (
	"net/http"
	"time"

	"construct-hq/loom/pkg/telemetry/metrics"
)

// unmatchedRoute labels requests no route pattern matched.
const unmatchedRoute = "unmatched"

// Metrics records request counts and durations on c, labelled by the
// mux's matched pattern so unknown paths cannot grow label cardinality. It
// must wrap the *http.ServeMux directly. A nil collector disables it.
func Metrics(c *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if c == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			route := r.Pattern
			if route == "" {
				route = unmatchedRoute
			}
			c.RecordHTTPRequest(r.Method, route, rw.statusCode, time.Since(start))
		})
	}
}
