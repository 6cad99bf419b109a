package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// DefaultEnvPrefix namespaces secret environment variables.
const DefaultEnvPrefix = "LOOM_SECRET_"

// EnvProvider loads secrets from environment variables.
//
// The secret "mancer-key" is read from LOOM_SECRET_MANCER_KEY with the
// default prefix.
type EnvProvider struct {
	Prefix string
}

// NewEnvProvider creates an environment provider. An empty prefix reads
// variables by bare name.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{Prefix: prefix}
}

// GetSecret reads the variable for name. Empty variables count as missing.
func (p *EnvProvider) GetSecret(_ context.Context, name string) (string, error) {
	envVar := p.envVar(name)
	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("%w: %s (env var %s)", ErrSecretNotFound, name, envVar)
	}
	return value, nil
}

// Name returns "env".
func (p *EnvProvider) Name() string {
	return "env"
}

func (p *EnvProvider) envVar(name string) string {
	return p.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
