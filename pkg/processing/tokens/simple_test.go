package tokens

import (
	"errors"
	"testing"

	"construct-hq/loom/pkg/config"
)

func TestSimpleEstimator_EstimateText(t *testing.T) {
	cfg := &config.TokensConfig{
		CharsPerToken: 4.0,
		Models: map[string]float64{
			"mythomax":        4.0,
			"mythomax-l2-13b": 2.0,
			"goliath":         3.5,
		},
	}

	estimator := NewSimpleEstimator(cfg)

	tests := []struct {
		name     string
		text     string
		model    string
		expected int
	}{
		{name: "empty text", text: "", model: "mythomax", expected: 0},
		{name: "single char rounds up to one", text: "a", model: "mythomax", expected: 1},
		{name: "exact match", text: "Hello, world!", model: "mythomax", expected: 3},
		{name: "ratio 3.5", text: "Hello, world!", model: "goliath", expected: 4},
		{name: "longest prefix wins", text: "12345678", model: "mythomax-l2-13b-q4", expected: 4},
		{name: "unknown model uses default", text: "12345678", model: "weaver-alpha", expected: 2},
		{name: "runes not bytes", text: "日本語の文", model: "unknown", expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := estimator.EstimateText(tt.text, tt.model)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("EstimateText(%q, %q) = %d, want %d", tt.text, tt.model, got, tt.expected)
			}
		})
	}
}

func TestSimpleEstimator_ZeroConfig(t *testing.T) {
	estimator := NewSimpleEstimator(&config.TokensConfig{})

	got, _ := estimator.EstimateText("abcdefgh", "any")
	if got != 2 {
		t.Errorf("expected built-in ratio of 4, got %d tokens", got)
	}
}

type failingEstimator struct{}

func (failingEstimator) EstimateText(string, string) (int, error) {
	return 0, errors.New("boom")
}

func TestBind(t *testing.T) {
	cfg := &config.TokensConfig{CharsPerToken: 2.0}
	counter := Bind(NewSimpleEstimator(cfg), "m")

	if got := counter.CountTokens("abcd"); got != 2 {
		t.Errorf("CountTokens = %d, want 2", got)
	}

	fallback := Bind(failingEstimator{}, "m")
	if got := fallback.CountTokens("abcdefgh"); got != 2 {
		t.Errorf("fallback CountTokens = %d, want 2", got)
	}
}

func TestNewEstimator(t *testing.T) {
	est, err := NewEstimator(&config.TokensConfig{Estimator: "simple"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := est.(*SimpleEstimator); !ok {
		t.Errorf("expected *SimpleEstimator, got %T", est)
	}

	if _, err := NewEstimator(&config.TokensConfig{Estimator: "exact"}); err == nil {
		t.Error("expected error for unknown estimator")
	}
}
