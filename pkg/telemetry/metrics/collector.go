package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"construct-hq/loom/pkg/config"
)

// Latency buckets sized for text generation (100ms to 2m).
var defaultLatencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Token buckets sized for context windows up to 32K.
var defaultTokenBuckets = []float64{64, 256, 512, 1024, 2048, 4096, 8192, 16384, 32768}

// Collector owns every Loom metric and the registry they are exposed from.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	completion *CompletionMetrics
	backend    *BackendMetrics
	http       *HTTPMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector registered on registry, or on a fresh
// registry when nil. It returns nil when metrics are disabled.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{}
	}
	if !cfg.MetricsEnabled() {
		return nil
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		config:             *cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000),
	}
	if c.config.Namespace == "" {
		c.config.Namespace = config.DefaultMetricsNamespace
	}

	c.completion = NewCompletionMetrics(&c.config, registry)
	c.backend = NewBackendMetrics(&c.config, registry)
	c.http = NewHTTPMetrics(&c.config, registry)
	return c
}

// model folds a model label into "other" once the cardinality cap is hit.
func (c *Collector) model(kind, backend, model string) string {
	if !c.cardinalityLimiter.Allow(fmt.Sprintf("%s:%s:%s", kind, backend, model)) {
		return "other"
	}
	return model
}

// RecordCompletion counts a dispatched completion. Status is "success" or
// "error".
func (c *Collector) RecordCompletion(backend, status string) {
	if c == nil {
		return
	}
	c.completion.completions.WithLabelValues(backend, status).Inc()
}

// RecordPrompt observes the estimated prompt size and the fitted message
// count of one assembly.
func (c *Collector) RecordPrompt(promptTokens, fittedMessages int) {
	if c == nil {
		return
	}
	c.completion.promptTokens.Observe(float64(promptTokens))
	c.completion.fittedMessages.Observe(float64(fittedMessages))
}

// RecordUsage adds backend-reported token usage.
func (c *Collector) RecordUsage(backend, model string, promptTokens, completionTokens int) {
	if c == nil {
		return
	}
	model = c.model("usage", backend, model)
	if promptTokens > 0 {
		c.completion.tokens.WithLabelValues(backend, model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		c.completion.tokens.WithLabelValues(backend, model, "completion").Add(float64(completionTokens))
	}
}

// RecordBackendLatency observes one backend call.
func (c *Collector) RecordBackendLatency(backend, model string, d time.Duration) {
	if c == nil {
		return
	}
	c.backend.latency.WithLabelValues(backend, c.model("latency", backend, model)).Observe(d.Seconds())
}

// RecordBackendError counts a backend failure by kind (auth, rate_limit,
// timeout, parse, config, status, network).
func (c *Collector) RecordBackendError(backend, errorType string) {
	if c == nil {
		return
	}
	c.backend.errors.WithLabelValues(backend, errorType).Inc()
}

// UpdateBackendHealth sets the health gauge for a backend.
func (c *Collector) UpdateBackendHealth(backend string, healthy bool) {
	if c == nil {
		return
	}
	value := 0.0
	if healthy {
		value = 1.0
	}
	c.backend.health.WithLabelValues(backend).Set(value)
}

// RecordHTTPRequest observes one inbound request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.http.requests.WithLabelValues(method, route, fmt.Sprintf("%d", status)).Inc()
	c.http.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Registry returns the registry the metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// CardinalityLimiter caps the number of distinct label sets.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter allowing maxCardinality label sets.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet is known or still fits under the cap.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the number of tracked label sets.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
