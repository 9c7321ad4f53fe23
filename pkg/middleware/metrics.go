// Package middleware provides reusable HTTP middleware for request IDs,
// Prometheus metrics, CORS, rate limiting and request timeouts.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/metrics"
)

// unmatchedRoute labels every path outside the known API surface, so
// scanners probing random URLs cannot grow the label set.
const unmatchedRoute = "unmatched"

// parameterRoutes maps path prefixes that carry user input to the label
// recorded for them.
var parameterRoutes = []struct {
	prefix string
	label  string
}{
	{"/api/v1/verses/", "/api/v1/verses/{sura}/{aya}"},
	{"/api/v1/ontology/", "/api/v1/ontology/{concept}"},
}

var staticRoutes = map[string]bool{
	"/api/v1/search":              true,
	"/api/v1/answer":              true,
	"/api/v1/analyze":             true,
	"/api/v1/stats":               true,
	"/api/v1/cache":               true,
	"/api/v1/cache/stats":         true,
	"/api/v1/analytics":           true,
	"/api/v1/analytics/snapshots": true,
	"/health/live":                true,
	"/health/ready":               true,
}

// Metrics records request count, latency and the in-flight gauge, labelled
// by route rather than raw path.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			route := routeLabel(r.URL.Path)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.Status())).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// statusRecorder remembers the first status code written. A handler that
// writes a body without calling WriteHeader reports 200.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Status() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

func routeLabel(path string) string {
	if staticRoutes[path] {
		return path
	}
	for _, r := range parameterRoutes {
		if strings.HasPrefix(path, r.prefix) && len(path) > len(r.prefix) {
			return r.label
		}
	}
	return unmatchedRoute
}
