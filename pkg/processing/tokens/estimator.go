package tokens

import (
	"fmt"

	"construct-hq/loom/pkg/config"
)

// Estimator estimates token counts for text.
// Implementations may use different algorithms (character-based, BPE, etc.).
type Estimator interface {
	// EstimateText estimates tokens for a single text string.
	EstimateText(text string, model string) (int, error)
}

// Counter counts tokens for a fixed model.
type Counter struct {
	estimator Estimator
	fallback  *SimpleEstimator
	model     string
}

// Bind fixes the model so the estimator can be used where only text is
// known. Estimation errors fall back to the default character ratio.
func Bind(est Estimator, model string) *Counter {
	return &Counter{
		estimator: est,
		fallback:  NewSimpleEstimator(&config.TokensConfig{}),
		model:     model,
	}
}

// CountTokens returns the token count for text under the bound model.
func (c *Counter) CountTokens(text string) int {
	n, err := c.estimator.EstimateText(text, c.model)
	if err != nil {
		n, _ = c.fallback.EstimateText(text, c.model)
	}
	return n
}

// NewEstimator creates the estimator selected by cfg.Estimator.
func NewEstimator(cfg *config.TokensConfig) (Estimator, error) {
	switch cfg.Estimator {
	case "", "simple":
		return NewSimpleEstimator(cfg), nil
	case "tiktoken":
		return NewTiktokenEstimator(cfg.Encoding)
	default:
		return nil, fmt.Errorf("unknown token estimator %q", cfg.Estimator)
	}
}
