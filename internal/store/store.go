// Package store holds chosen cost parameters keyed by tuning request.
//
// Entries never expire and the first value written for a key wins: a later
// PutIfAbsent for the same key leaves the stored value untouched and returns
// it, so every caller observes the same parameters.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/agbru/argontune/internal/params"
)

// ErrUnavailable wraps backend failures.
var ErrUnavailable = errors.New("parameter store unavailable")

// Store is a first-writer-wins mapping from request keys to parameters.
type Store interface {
	// Get returns the parameters stored under key, if any.
	Get(ctx context.Context, key string) (params.CostParameters, bool, error)
	// PutIfAbsent stores p under key unless a value is already present. It
	// returns the value now held for key and whether p was the one stored.
	PutIfAbsent(ctx context.Context, key string, p params.CostParameters) (params.CostParameters, bool, error)
}

// MemoryStore is the process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]params.CostParameters
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]params.CostParameters)}
}

var _ Store = (*MemoryStore)(nil)

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (params.CostParameters, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.entries[key]
	return p, ok, nil
}

// PutIfAbsent implements Store.
func (m *MemoryStore) PutIfAbsent(_ context.Context, key string, p params.CostParameters) (params.CostParameters, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[key]; ok {
		return existing, false, nil
	}
	m.entries[key] = p
	return p, true, nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
