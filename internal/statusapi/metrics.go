package statusapi

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// apiMetrics are the status API's own Prometheus series, registered
// against a private registry (not the global DefaultRegisterer) so
// constructing more than one Server in a process — as the test suite
// does — never panics on duplicate registration.
type apiMetrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newAPIMetrics() *apiMetrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "os_ghost_api_requests_total",
		Help: "Total status API requests by method, path, and status code.",
	}, []string{"method", "path", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "os_ghost_api_request_duration_seconds",
		Help:    "Status API request latency by method and path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	registry.MustRegister(requests, duration)

	return &apiMetrics{registry: registry, requests: requests, duration: duration}
}

func (m *apiMetrics) observe(method, path string, status int, dur time.Duration) {
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, path).Observe(dur.Seconds())
}
