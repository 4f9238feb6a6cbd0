package api

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts and times the requests sent upstream.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avien_admin",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Requests sent to the backend and the image host.",
		}, []string{"resource", "method", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "avien_admin",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Latency of requests sent to the backend and the image host.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "method"}),
	}
}

func (m *Metrics) observe(path, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	resource := resourceOf(path)
	m.requests.WithLabelValues(resource, method, status).Inc()
	m.duration.WithLabelValues(resource, method).Observe(d.Seconds())
}

// resourceOf keeps the first path segment so record ids never become labels.
func resourceOf(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}
