package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Harshitk-cp/causalchain/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// Metrics returns middleware that records request counts and latency by
// route pattern, so /v1/nodes/{id} is one series rather than one per node.
func Metrics(c *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status
			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			c.RecordHTTPRequest(r.Method, route, strconv.Itoa(rw.statusCode), time.Since(start))
		})
	}
}
