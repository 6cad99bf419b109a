// Package mancer implements the completion backend for the hosted Mancer
// service.
//
// Requests go to one fixed endpoint with the connection key as a bearer
// token. Settings are renamed to the service's sampling parameter names;
// fields the service does not understand are not sent.
package mancer

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"construct-hq/loom/pkg/providers"
)

// DefaultURL is the hosted completion endpoint.
const DefaultURL = "https://neuro.mancer.tech/oai/v1/completions"

// ConnectionType is the connection type served by this backend.
const ConnectionType = "Mancer"

// Provider is the Mancer completion backend.
type Provider struct {
	*providers.HTTPProvider
	url string
}

// NewProvider creates a Mancer backend posting to url, or DefaultURL when
// url is empty.
func NewProvider(config providers.ClientConfig, url string) *Provider {
	if config.Name == "" {
		config.Name = "mancer"
	}
	if url == "" {
		url = DefaultURL
	}

	slog.Info("mancer completion backend initialized",
		"backend", config.Name,
		"url", url,
	)
	return &Provider{
		HTTPProvider: providers.NewHTTPProvider(config),
		url:          url,
	}
}

// URL returns the endpoint requests are sent to.
func (p *Provider) URL() string {
	return p.url
}

// Complete sends req to the hosted endpoint.
func (p *Provider) Complete(ctx context.Context, req *providers.Request) (json.RawMessage, error) {
	if req.Connection == nil {
		return nil, &providers.ConfigError{Provider: p.GetName(), Field: "connection", Message: "connection is required"}
	}
	return p.PostJSON(ctx, p.url, strings.TrimSpace(req.Connection.Key), NewPayload(req))
}

// Payload is the Mancer request body.
type Payload struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Stop   []string `json:"stop"`

	MaxTokens              int     `json:"max_tokens"`
	MinTokens              int     `json:"min_tokens"`
	Temperature            float64 `json:"temperature"`
	TopP                   float64 `json:"top_p"`
	TopK                   int     `json:"top_k"`
	TopA                   float64 `json:"top_a"`
	TypicalP               float64 `json:"typical_p"`
	TFS                    float64 `json:"tfs"`
	MinP                   float64 `json:"min_p"`
	RepetitionPenalty      float64 `json:"repetition_penalty"`
	RepetitionPenaltyRange int     `json:"repetition_penalty_range"`
	PresencePenalty        float64 `json:"presence_penalty"`
	FrequencyPenalty       float64 `json:"frequency_penalty"`
}

// NewPayload maps req onto the Mancer parameter names.
func NewPayload(req *providers.Request) Payload {
	stop := req.Stop
	if stop == nil {
		stop = []string{}
	}

	p := Payload{
		Model:  req.Connection.Model,
		Prompt: req.Prompt,
		Stop:   stop,
	}

	if s := req.Settings; s != nil {
		p.MaxTokens = s.MaxLength
		p.MinTokens = s.MinLength
		p.Temperature = s.Temperature
		p.TopP = s.TopP
		p.TopK = s.TopK
		p.TopA = s.TopA
		p.TypicalP = s.Typical
		p.TFS = s.TFS
		p.MinP = s.MinP
		p.RepetitionPenalty = s.RepPen
		p.RepetitionPenaltyRange = s.RepPenRange
		p.PresencePenalty = s.PresencePenalty
		p.FrequencyPenalty = s.FrequencyPenalty
	}
	return p
}
