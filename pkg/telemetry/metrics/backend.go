package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"construct-hq/loom/pkg/config"
)

// BackendMetrics tracks completion backend latency, failures and health.
type BackendMetrics struct {
	latency *prometheus.HistogramVec
	errors  *prometheus.CounterVec
	health  *prometheus.GaugeVec
}

// NewBackendMetrics creates and registers backend metrics.
func NewBackendMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BackendMetrics {
	bm := &BackendMetrics{
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_latency_seconds",
				Help:      "Completion backend call latency in seconds",
				Buckets:   defaultLatencyBuckets,
			},
			[]string{"backend", "model"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_errors_total",
				Help:      "Total number of completion backend errors by type",
			},
			[]string{"backend", "error_type"},
		),

		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_health",
				Help:      "Completion backend health (1=healthy, 0=unhealthy)",
			},
			[]string{"backend"},
		),
	}

	registry.MustRegister(bm.latency, bm.errors, bm.health)
	return bm
}
