package providers

import (
	"errors"
	"sort"
	"sync"
)

// Registry maps connection types to backends. Types without an entry use
// the fallback backend.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
	fallback Backend
}

// NewRegistry creates a registry that resolves unknown types to fallback.
func NewRegistry(fallback Backend) *Registry {
	return &Registry{
		backends: make(map[string]Backend),
		fallback: fallback,
	}
}

// Register binds connType to b, replacing any previous binding.
func (r *Registry) Register(connType string, b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[connType] = b
}

// Lookup returns the backend for connType, or the fallback. It returns nil
// only when the type is unknown and no fallback is set.
func (r *Registry) Lookup(connType string) Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.backends[connType]; ok {
		return b
	}
	return r.fallback
}

// Backends returns every distinct backend, fallback included, sorted by
// name.
func (r *Registry) Backends() []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Backend]bool)
	var out []Backend
	add := func(b Backend) {
		if b != nil && !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	for _, b := range r.backends {
		add(b)
	}
	add(r.fallback)

	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// Close closes every backend.
func (r *Registry) Close() error {
	var errs []error
	for _, b := range r.Backends() {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
