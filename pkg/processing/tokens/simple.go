package tokens

import (
	"strings"
	"unicode/utf8"

	"construct-hq/loom/pkg/config"
)

// defaultCharsPerToken is used when the configuration carries no ratio.
const defaultCharsPerToken = 4.0

// SimpleEstimator implements character-based token estimation.
// It uses model-specific characters-per-token ratios to estimate token counts.
// The configuration is read-only after construction, so the estimator is
// safe for concurrent use.
type SimpleEstimator struct {
	// config contains token estimation configuration
	config *config.TokensConfig
}

// NewSimpleEstimator creates a new simple character-based token estimator.
// A nil cfg uses four characters per token for every model.
func NewSimpleEstimator(cfg *config.TokensConfig) *SimpleEstimator {
	if cfg == nil {
		cfg = &config.TokensConfig{}
	}
	return &SimpleEstimator{
		config: cfg,
	}
}

// EstimateText estimates tokens for a single text string.
// It uses the model-specific characters-per-token ratio.
func (e *SimpleEstimator) EstimateText(text string, model string) (int, error) {
	if text == "" {
		return 0, nil
	}

	charsPerToken := e.getCharsPerToken(model)
	charCount := utf8.RuneCountInString(text)

	// Estimate tokens with rounding
	tokens := float64(charCount) / charsPerToken
	if tokens < 1.0 {
		tokens = 1.0 // Minimum 1 token for non-empty text
	}

	return int(tokens + 0.5), nil // Round to nearest integer
}

// getCharsPerToken returns the characters-per-token ratio for a model.
// An exact match wins, then the longest configured prefix, then the
// configured default ratio.
func (e *SimpleEstimator) getCharsPerToken(model string) float64 {
	if ratio, ok := e.config.Models[model]; ok {
		return ratio
	}

	// Try model family match (e.g., "mythomax" matches "mythomax-l2-13b")
	best := ""
	bestRatio := 0.0
	for pattern, ratio := range e.config.Models {
		if strings.HasPrefix(model, pattern) && len(pattern) > len(best) {
			best, bestRatio = pattern, ratio
		}
	}
	if best != "" {
		return bestRatio
	}

	if e.config.CharsPerToken > 0 {
		return e.config.CharsPerToken
	}
	return defaultCharsPerToken
}
