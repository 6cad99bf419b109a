package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"construct-hq/loom/pkg/config"
)

// HTTPMetrics tracks inbound HTTP requests.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics creates and registers HTTP metrics.
func NewHTTPMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HTTPMetrics {
	hm := &HTTPMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of inbound HTTP requests",
			},
			[]string{"method", "route", "status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "Inbound HTTP request duration in seconds",
				Buckets:   defaultLatencyBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(hm.requests, hm.duration)
	return hm
}
