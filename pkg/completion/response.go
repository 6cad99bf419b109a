package completion

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Usage is the token usage a backend reported, when it reported any.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Text returns choices[0].text from an OpenAI-style completion response.
func Text(raw json.RawMessage) (string, bool) {
	if !gjson.ValidBytes(raw) {
		return "", false
	}
	r := gjson.GetBytes(raw, "choices.0.text")
	if !r.Exists() {
		return "", false
	}
	return r.String(), true
}

// ReadUsage returns the usage block of a completion response.
func ReadUsage(raw json.RawMessage) (Usage, bool) {
	if !gjson.ValidBytes(raw) {
		return Usage{}, false
	}
	u := gjson.GetBytes(raw, "usage")
	if !u.IsObject() {
		return Usage{}, false
	}
	usage := Usage{
		PromptTokens:     int(u.Get("prompt_tokens").Int()),
		CompletionTokens: int(u.Get("completion_tokens").Int()),
		TotalTokens:      int(u.Get("total_tokens").Int()),
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	return usage, true
}
