package providers

import (
	"context"
	"encoding/json"
)

// Backend is implemented by every completion backend adapter.
//
// Complete builds the backend-specific payload from req, performs a single
// POST and returns the response body unmodified. It must respect context
// cancellation.
type Backend interface {
	Complete(ctx context.Context, req *Request) (json.RawMessage, error)

	// GetName returns the backend's name (e.g., "mancer", "generic").
	GetName() string

	// GetHealth returns request-outcome health for the backend.
	GetHealth() Health

	// Close releases idle connections.
	Close() error
}
