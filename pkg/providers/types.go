package providers

import (
	"time"

	"construct-hq/loom/pkg/chat"
)

// Request is one outbound completion call. Prompt and Stop are already
// assembled; the backend only shapes the payload and sends it.
type Request struct {
	// Connection identifies the endpoint, model and credential
	Connection *chat.Connection

	// Settings carries the sampling parameters
	Settings *chat.Settings

	Prompt string
	Stop   []string
}

// ClientConfig contains the HTTP client settings for one backend.
type ClientConfig struct {
	// Name is the backend identifier used in logs, metrics and errors
	Name string

	// Timeout is the request timeout duration. Zero means none.
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts
	MaxRetries int

	// RetryBackoff is the base delay between retries, doubled per attempt.
	// Zero means one second.
	RetryBackoff time.Duration

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration
}

// Health tracks the health status of a backend.
type Health struct {
	// IsHealthy indicates whether the backend is currently healthy
	IsHealthy bool `json:"healthy"`

	// LastCheck is the timestamp of the last request outcome
	LastCheck time.Time `json:"last_check"`

	// LastError is the most recent error encountered (nil if healthy)
	LastError error `json:"-"`

	// ConsecutiveFailures counts sequential failed requests
	ConsecutiveFailures int `json:"consecutive_failures"`

	// LastSuccessfulRequest is the timestamp of the last successful request
	LastSuccessfulRequest time.Time `json:"last_successful_request"`

	// TotalRequests is the total number of requests sent to this backend
	TotalRequests int64 `json:"total_requests"`

	// FailedRequests is the total number of failed requests
	FailedRequests int64 `json:"failed_requests"`
}
