package completion

import (
	"construct-hq/loom/pkg/config"
	"construct-hq/loom/pkg/providers"
	"construct-hq/loom/pkg/providers/generic"
	"construct-hq/loom/pkg/providers/mancer"
)

// NewRegistry builds the backend registry: connections of type "Mancer" go
// to the hosted backend and every other type to the generic one.
func NewRegistry(cfg config.BackendsConfig) *providers.Registry {
	client := func(name string) providers.ClientConfig {
		return providers.ClientConfig{
			Name:                name,
			Timeout:             cfg.Timeout,
			MaxRetries:          cfg.MaxRetries,
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.IdleConnTimeout,
		}
	}

	registry := providers.NewRegistry(generic.NewProvider(client("generic")))
	registry.Register(mancer.ConnectionType, mancer.NewProvider(client("mancer"), cfg.Mancer.BaseURL))
	return registry
}
