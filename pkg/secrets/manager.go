package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// refPattern matches ${secret:name} references.
var refPattern = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// IsReference reports whether s contains a secret reference.
func IsReference(s string) bool {
	return strings.Contains(s, "${secret:")
}

// Manager resolves secrets through an ordered provider list. It is safe for
// concurrent use.
type Manager struct {
	providers []Provider
	cache     *cache
	logger    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithCacheTTL caches resolved secrets for ttl.
func WithCacheTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.cache = newCache(ttl)
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a manager trying providers in order.
func NewManager(providers []Provider, opts ...Option) *Manager {
	m := &Manager{
		providers: providers,
		cache:     newCache(0),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "secrets")
	return m
}

// GetSecret returns the named secret from the first provider holding it.
// A provider failing for a reason other than a miss stops the search.
func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	if value, ok := m.cache.get(name); ok {
		return value, nil
	}

	for _, p := range m.providers {
		value, err := p.GetSecret(ctx, name)
		if err == nil {
			m.cache.set(name, value)
			m.logger.DebugContext(ctx, "secret resolved", "provider", p.Name(), "name", redactName(name))
			return value, nil
		}
		if !errors.Is(err, ErrSecretNotFound) {
			return "", fmt.Errorf("secret %q from %s provider: %w", name, p.Name(), err)
		}
	}
	return "", fmt.Errorf("%w: %q", ErrSecretNotFound, name)
}

// Resolve replaces every ${secret:name} in input with its value. Input
// without references is returned unchanged. All failures are reported
// together.
func (m *Manager) Resolve(ctx context.Context, input string) (string, error) {
	if !IsReference(input) {
		return input, nil
	}

	var errs []error
	out := refPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := strings.TrimSpace(refPattern.FindStringSubmatch(match)[1])
		value, err := m.GetSecret(ctx, name)
		if err != nil {
			errs = append(errs, err)
			return match
		}
		return value
	})
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return out, nil
}

// redactName keeps secret names recognizable in logs without spelling them
// out.
func redactName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
