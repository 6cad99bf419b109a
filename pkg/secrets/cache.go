package secrets

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// cache holds resolved secrets until their TTL passes. A zero TTL disables
// it.
type cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *cache) get(name string) (string, bool) {
	if c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[name]
	if !ok || c.now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

func (c *cache) set(name, value string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// Expired entries are dropped on write so the map only grows with the
	// set of live names.
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[name] = cacheEntry{value: value, expiresAt: now.Add(c.ttl)}
}
