package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"construct-hq/loom/pkg/config"
)

// CompletionMetrics tracks dispatched completions and prompt sizes.
type CompletionMetrics struct {
	completions    *prometheus.CounterVec
	tokens         *prometheus.CounterVec
	promptTokens   prometheus.Histogram
	fittedMessages prometheus.Histogram
}

// NewCompletionMetrics creates and registers completion metrics.
func NewCompletionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CompletionMetrics {
	cm := &CompletionMetrics{
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "completions_total",
				Help:      "Total number of dispatched completions",
			},
			[]string{"backend", "status"},
		),

		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "completion_tokens_total",
				Help:      "Token usage reported by completion backends",
			},
			[]string{"backend", "model", "type"},
		),

		promptTokens: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "prompt_tokens",
				Help:      "Estimated token count of assembled prompts",
				Buckets:   defaultTokenBuckets,
			},
		),

		fittedMessages: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fitted_messages",
				Help:      "Number of chat messages kept in the context window",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}

	registry.MustRegister(cm.completions, cm.tokens, cm.promptTokens, cm.fittedMessages)
	return cm
}
