// Package source abstracts the remote read/write layer behind the form
// lifecycle: async read by form id, async write by form id, and a cache of
// the last known server copy.
package source

import (
	"context"
	"sync"
)

// DataSource loads and saves form data keyed by form id. Save returns the
// server-normalized copy of the payload, which becomes the new cache entry.
// Implementations must honour ctx cancellation; the engine never retries on
// its own.
type DataSource interface {
	Load(ctx context.Context, formID string) (map[string]any, error)
	Save(ctx context.Context, formID string, data map[string]any) (map[string]any, error)
}

// Cache mirrors the last server-acknowledged data per form id (the
// query-cache analog). The lifecycle manager updates it after successful
// writes so later readers skip a round trip.
type Cache interface {
	Get(formID string) (map[string]any, bool)
	Set(formID string, data map[string]any)
	Invalidate(formID string)
}

// MemoryCache is a mutex-guarded in-memory Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]map[string]any
}

// NewMemoryCache constructs an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]map[string]any),
	}
}

// Get returns the cached entry for a form id.
func (c *MemoryCache) Get(formID string) (map[string]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[formID]
	if !ok {
		return nil, false
	}
	return cloneData(entry), true
}

// Set replaces the cached entry for a form id.
func (c *MemoryCache) Set(formID string, data map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[formID] = cloneData(data)
}

// Invalidate drops the cached entry for a form id.
func (c *MemoryCache) Invalidate(formID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, formID)
}

func cloneData(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
