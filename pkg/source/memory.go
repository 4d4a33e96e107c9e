package source

import (
	"context"
	"fmt"
	"sync"
)

// MemorySource is an in-process DataSource for tests and examples. Save
// echoes the stored copy back the way a server would.
type MemorySource struct {
	mu      sync.Mutex
	entries map[string]map[string]any

	// Normalize, when set, post-processes saved payloads before they are
	// stored and returned, simulating server-side normalization.
	Normalize func(data map[string]any) map[string]any
}

// NewMemorySource constructs an empty source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		entries: make(map[string]map[string]any),
	}
}

// Seed preloads the stored data for a form id.
func (m *MemorySource) Seed(formID string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[formID] = cloneData(data)
}

// Load returns the stored data for a form id, or ErrNotFound.
func (m *MemorySource) Load(ctx context.Context, formID string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[formID]
	if !ok {
		return nil, fmt.Errorf("source: load form %q: %w", formID, ErrNotFound)
	}
	return cloneData(entry), nil
}

// Save stores the payload and returns the (possibly normalized) stored copy.
func (m *MemorySource) Save(ctx context.Context, formID string, data map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored := cloneData(data)
	if m.Normalize != nil {
		stored = m.Normalize(stored)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[formID] = stored
	return cloneData(stored), nil
}
