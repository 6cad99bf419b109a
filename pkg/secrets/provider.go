package secrets

import (
	"context"
	"errors"
)

// ErrSecretNotFound is returned when no provider holds a secret.
var ErrSecretNotFound = errors.New("secret not found")

// Provider retrieves secrets from one source.
type Provider interface {
	// GetSecret returns the named secret. A missing secret yields an error
	// wrapping ErrSecretNotFound.
	GetSecret(ctx context.Context, name string) (string, error)

	// Name identifies the provider in logs (env, file).
	Name() string
}
