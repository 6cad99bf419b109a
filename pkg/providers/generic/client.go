package generic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"construct-hq/loom/pkg/providers"
)

// completionsPath is appended to the connection's origin.
const completionsPath = "/v1/completions"

var errNotAbsolute = errors.New("connection URL must include scheme and host")

// Provider is the generic OpenAI-compatible completion backend.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a generic backend.
func NewProvider(config providers.ClientConfig) *Provider {
	if config.Name == "" {
		config.Name = "generic"
	}

	p := &Provider{
		HTTPProvider: providers.NewHTTPProvider(config),
	}

	slog.Info("generic completion backend initialized",
		"backend", config.Name,
		"timeout", config.Timeout,
		"max_retries", config.MaxRetries,
	)
	return p
}

// Complete sends req to the connection's /v1/completions endpoint.
func (p *Provider) Complete(ctx context.Context, req *providers.Request) (json.RawMessage, error) {
	if req.Connection == nil {
		return nil, &providers.ConfigError{Provider: p.GetName(), Field: "connection", Message: "connection is required"}
	}

	endpoint, err := Endpoint(req.Connection.URL)
	if err != nil {
		return nil, &providers.ConfigError{Provider: p.GetName(), Field: "url", Message: err.Error()}
	}

	payload, err := Payload(req)
	if err != nil {
		return nil, err
	}

	return p.PostJSON(ctx, endpoint, strings.TrimSpace(req.Connection.Key), payload)
}

// Endpoint derives the completions URL from a connection URL. Path, query
// and fragment are discarded; the port is kept when present, even when it
// is the scheme default.
func Endpoint(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%q: %w", raw, errNotAbsolute)
	}

	origin := url.URL{Scheme: u.Scheme, Host: u.Host, Path: completionsPath}
	return origin.String(), nil
}

// Payload builds the request body for req.
func Payload(req *providers.Request) (map[string]any, error) {
	body := make(map[string]any)
	if req.Settings != nil {
		params, err := req.Settings.Params()
		if err != nil {
			return nil, err
		}
		body = params
	}

	stop := req.Stop
	if stop == nil {
		stop = []string{}
	}
	body["model"] = req.Connection.Model
	body["prompt"] = req.Prompt
	body["stop"] = stop
	return body, nil
}
