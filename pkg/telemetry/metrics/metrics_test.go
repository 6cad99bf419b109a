package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"construct-hq/loom/pkg/config"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{Namespace: "test"}
}

func TestNewCollector_Disabled(t *testing.T) {
	off := false
	c := NewCollector(&config.MetricsConfig{Enabled: &off}, nil)
	if c != nil {
		t.Fatal("expected nil collector when disabled")
	}

	// Every method tolerates a nil collector.
	c.RecordCompletion("mancer", "success")
	c.RecordPrompt(10, 2)
	c.RecordUsage("mancer", "m", 1, 2)
	c.RecordBackendLatency("mancer", "m", time.Second)
	c.RecordBackendError("mancer", "auth")
	c.UpdateBackendHealth("mancer", true)
	c.RecordHTTPRequest("POST", "/completions", 200, time.Millisecond)
	if c.Registry() != nil {
		t.Error("nil collector should have no registry")
	}

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCollector_RecordCompletion(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(testConfig(), registry)

	tests := []struct {
		backend string
		status  string
		times   int
	}{
		{backend: "mancer", status: "success", times: 3},
		{backend: "generic", status: "error", times: 1},
	}

	for _, tt := range tests {
		for i := 0; i < tt.times; i++ {
			c.RecordCompletion(tt.backend, tt.status)
		}
		got := testutil.ToFloat64(c.completion.completions.WithLabelValues(tt.backend, tt.status))
		if got != float64(tt.times) {
			t.Errorf("completions{%s,%s} = %v, want %d", tt.backend, tt.status, got, tt.times)
		}
	}
}

func TestCollector_BackendMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(testConfig(), registry)

	c.RecordBackendError("mancer", "rate_limit")
	c.RecordBackendError("mancer", "rate_limit")
	if got := testutil.ToFloat64(c.backend.errors.WithLabelValues("mancer", "rate_limit")); got != 2 {
		t.Errorf("errors = %v, want 2", got)
	}

	c.UpdateBackendHealth("mancer", true)
	if got := testutil.ToFloat64(c.backend.health.WithLabelValues("mancer")); got != 1 {
		t.Errorf("health = %v, want 1", got)
	}
	c.UpdateBackendHealth("mancer", false)
	if got := testutil.ToFloat64(c.backend.health.WithLabelValues("mancer")); got != 0 {
		t.Errorf("health = %v, want 0", got)
	}

	c.RecordBackendLatency("mancer", "mythomax", 300*time.Millisecond)
	if n := testutil.CollectAndCount(c.backend.latency); n != 1 {
		t.Errorf("latency series = %d, want 1", n)
	}
}

func TestCollector_RecordUsage(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(testConfig(), registry)

	c.RecordUsage("generic", "llama", 120, 30)
	c.RecordUsage("generic", "llama", 0, 10)

	if got := testutil.ToFloat64(c.completion.tokens.WithLabelValues("generic", "llama", "prompt")); got != 120 {
		t.Errorf("prompt tokens = %v, want 120", got)
	}
	if got := testutil.ToFloat64(c.completion.tokens.WithLabelValues("generic", "llama", "completion")); got != 40 {
		t.Errorf("completion tokens = %v, want 40", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	c.RecordPrompt(512, 4)
	c.RecordHTTPRequest("POST", "/completions", 200, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		"test_prompt_tokens_bucket",
		"test_fitted_messages_sum 4",
		`test_http_requests_total{method="POST",route="/completions",status="200"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("first two label sets should be allowed")
	}
	if !cl.Allow("a") {
		t.Error("known label set should stay allowed")
	}
	if cl.Allow("c") {
		t.Error("third label set should be rejected")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}

func TestCollector_ModelFolding(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	c.cardinalityLimiter = NewCardinalityLimiter(1)

	if got := c.model("latency", "generic", "a"); got != "a" {
		t.Errorf("model = %q, want a", got)
	}
	if got := c.model("latency", "generic", "b"); got != "other" {
		t.Errorf("model = %q, want other", got)
	}
}
