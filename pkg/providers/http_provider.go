package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// HTTPProvider is the base implementation for HTTP completion backends.
// It provides connection pooling, retry logic, timeout handling, and health
// tracking.
//
// Backend adapters embed this struct and implement Complete.
type HTTPProvider struct {
	// config contains the client configuration
	config ClientConfig

	// client is the HTTP client with connection pooling
	client *http.Client

	// health tracks the backend's health status
	health Health

	// healthMu protects concurrent access to health status
	healthMu sync.RWMutex
}

// NewHTTPProvider creates a new base HTTP provider with connection pooling.
func NewHTTPProvider(config ClientConfig) *HTTPProvider {
	// Create HTTP transport with connection pooling
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	now := time.Now()
	return &HTTPProvider{
		config: config,
		client: client,
		health: Health{
			IsHealthy:             true, // Start optimistic
			LastCheck:             now,
			LastSuccessfulRequest: now,
		},
	}
}

// GetName returns the backend's configured name.
func (p *HTTPProvider) GetName() string {
	return p.config.Name
}

// DoRequest performs an HTTP request with retry logic and timeout handling.
// Transient errors (5xx, network failures) are retried with exponential
// backoff up to MaxRetries times. Any non-2xx final status is an error;
// PostJSON turns the ones carrying a JSON body back into results.
func (p *HTTPProvider) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := p.backoff(attempt)
			slog.Debug("retrying request",
				"backend", p.config.Name,
				"attempt", attempt,
				"max_retries", p.config.MaxRetries,
				"backoff", backoff,
			)

			// Wait with backoff (respect context cancellation)
			select {
			case <-ctx.Done():
				return nil, p.timeoutError(ctx.Err())
			case <-time.After(backoff):
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, &ConfigError{
				Provider: p.config.Name,
				Field:    "url",
				Message:  err.Error(),
			}
		}

		for key, value := range headers {
			req.Header.Set(key, value)
		}
		if req.Header.Get("Content-Type") == "" && body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		slog.Debug("sending request to backend",
			"backend", p.config.Name,
			"method", method,
			"url", url,
		)

		resp, err := p.client.Do(req)
		if err != nil {
			p.recordRequest(false)

			// Context cancelled or deadline exceeded - don't retry
			if ctx.Err() != nil {
				lastErr = p.timeoutError(ctx.Err())
				p.updateHealth(false, lastErr)
				return nil, lastErr
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				lastErr = p.timeoutError(err)
			} else {
				lastErr = &ProviderError{
					Provider: p.config.Name,
					Message:  "request failed",
					Cause:    err,
				}
			}

			slog.Warn("request failed",
				"backend", p.config.Name,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			p.recordRequest(true)
			p.updateHealth(true, nil)
			return resp, nil
		}

		errorBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			// Authentication error - don't retry
			p.recordRequest(false)
			err := &AuthError{
				Provider:   p.config.Name,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}
			p.updateHealth(false, err)
			return nil, err

		case http.StatusTooManyRequests:
			// Rate limit error - don't retry (caller should handle)
			p.recordRequest(false)
			return nil, &RateLimitError{
				Provider:   p.config.Name,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    string(errorBody),
			}

		default:
			lastErr = &ProviderError{
				Provider:   p.config.Name,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}
			p.recordRequest(false)

			// Other client errors - don't retry
			if resp.StatusCode < 500 {
				p.updateHealth(false, lastErr)
				return nil, lastErr
			}

			slog.Warn("request returned error status",
				"backend", p.config.Name,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
		}
	}

	// All retries exhausted
	p.updateHealth(false, lastErr)
	return nil, lastErr
}

// PostJSON marshals payload, POSTs it to url with a bearer key and returns
// the raw JSON response body, whatever the status. An empty key sends no
// Authorization header.
func (p *HTTPProvider) PostJSON(ctx context.Context, url, key string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if key != "" {
		headers["Authorization"] = "Bearer " + key
	}

	resp, err := p.DoRequest(ctx, http.MethodPost, url, body, headers)
	if err != nil {
		if raw, status, ok := statusBody(err); ok {
			slog.Warn("backend returned error status with a JSON body",
				"backend", p.config.Name,
				"status", status,
			)
			return raw, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ParseError{
			Provider: p.config.Name,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}
	if !json.Valid(raw) {
		return nil, &ParseError{
			Provider:    p.config.Name,
			RawResponse: string(raw),
			Cause:       errors.New("response is not valid JSON"),
		}
	}
	return json.RawMessage(raw), nil
}

// statusBody extracts the response body carried by a non-2xx status error.
// ok is false unless the body is valid JSON, which callers pass through.
// Health and request counters have already recorded the failure.
func statusBody(err error) (raw json.RawMessage, status int, ok bool) {
	var (
		authErr *AuthError
		rateErr *RateLimitError
		provErr *ProviderError
		body    string
	)
	switch {
	case errors.As(err, &authErr):
		body, status = authErr.Message, authErr.StatusCode
	case errors.As(err, &rateErr):
		body, status = rateErr.Message, http.StatusTooManyRequests
	case errors.As(err, &provErr) && provErr.StatusCode > 0:
		body, status = provErr.Message, provErr.StatusCode
	default:
		return nil, 0, false
	}
	if !json.Valid([]byte(body)) {
		return nil, 0, false
	}
	return json.RawMessage(body), status, true
}

// Close closes idle connections.
func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	slog.Debug("backend closed", "backend", p.config.Name)
	return nil
}

func (p *HTTPProvider) backoff(attempt int) time.Duration {
	base := p.config.RetryBackoff
	if base <= 0 {
		base = time.Second
	}
	return base << (attempt - 1)
}

func (p *HTTPProvider) timeoutError(cause error) error {
	return &TimeoutError{
		Provider: p.config.Name,
		Timeout:  p.config.Timeout,
		Cause:    cause,
	}
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	// Try parsing as seconds
	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	// Try parsing as HTTP date
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
