package cache

import (
	"context"
	"sync"

	"homerank/internal/domain"
)

// MemoryStore keeps entries in process memory for the lifetime of the store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]domain.CacheEntry)}
}

func (m *MemoryStore) Get(_ context.Context, fingerprint string) (*domain.CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[fingerprint]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *MemoryStore) Put(_ context.Context, entry domain.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[entry.Fingerprint] = entry
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
