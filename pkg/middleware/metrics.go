package middleware

import (
	"net/http"
	"time"

	"book-recommendation/pkg/metrics"

	"github.com/go-chi/chi/v5"
)

// Metrics records request counts and latency labelled by route pattern, so
// ids in the path do not blow up label cardinality.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metrics.TrackInFlight(true)
			defer metrics.TrackInFlight(false)

			rw := wrapResponseWriter(w)
			next.ServeHTTP(rw, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			metrics.RecordHTTPRequest(r.Method, route, rw.statusCode, time.Since(start))
		})
	}
}
