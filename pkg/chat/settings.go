package chat

import (
	"encoding/json"
	"fmt"
)

// Settings is a stored generation preset: the token budget, the instruct
// grammar and the sampling parameters forwarded to the backend.
type Settings struct {
	ID   string `json:"_id,omitempty" yaml:"id" toml:"id"`
	Name string `json:"name,omitempty" yaml:"name" toml:"name"`

	// ContextLength is the token budget ceiling for the whole prompt
	ContextLength int `json:"context_length" yaml:"context_length" toml:"context_length"`

	// InstructMode selects the template grammar
	InstructMode InstructMode `json:"instruct_mode" yaml:"instruct_mode" toml:"instruct_mode"`

	MaxLength        int     `json:"max_length" yaml:"max_length" toml:"max_length"`
	MinLength        int     `json:"min_length" yaml:"min_length" toml:"min_length"`
	Temperature      float64 `json:"temperature" yaml:"temperature" toml:"temperature"`
	TopP             float64 `json:"top_p" yaml:"top_p" toml:"top_p"`
	TopK             int     `json:"top_k" yaml:"top_k" toml:"top_k"`
	TopA             float64 `json:"top_a" yaml:"top_a" toml:"top_a"`
	Typical          float64 `json:"typical" yaml:"typical" toml:"typical"`
	TFS              float64 `json:"tfs" yaml:"tfs" toml:"tfs"`
	MinP             float64 `json:"min_p" yaml:"min_p" toml:"min_p"`
	RepPen           float64 `json:"rep_pen" yaml:"rep_pen" toml:"rep_pen"`
	RepPenRange      int     `json:"rep_pen_range" yaml:"rep_pen_range" toml:"rep_pen_range"`
	RepPenSlope      float64 `json:"rep_pen_slope" yaml:"rep_pen_slope" toml:"rep_pen_slope"`
	PresencePenalty  float64 `json:"presence_penalty" yaml:"presence_penalty" toml:"presence_penalty"`
	FrequencyPenalty float64 `json:"frequency_penalty" yaml:"frequency_penalty" toml:"frequency_penalty"`

	// Extra holds backend parameters the core does not model; they are
	// forwarded verbatim by backends that pass settings through.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty" toml:"extra,omitempty"`
}

// Params flattens the settings into a JSON object suitable for merging into
// a request body. The record keys _id and name are dropped and Extra entries
// are lifted to the top level.
func (s Settings) Params() (map[string]any, error) {
	extra := s.Extra
	s.Extra = nil

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	params := make(map[string]any)
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to flatten settings: %w", err)
	}
	delete(params, "_id")
	delete(params, "name")

	for k, v := range extra {
		params[k] = v
	}
	return params, nil
}
