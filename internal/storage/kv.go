// Package storage holds the key/value media that back the local identity state.
package storage

import (
	"context"
	"sync"
)

// KV is a small string key/value medium. Put applies every set and remove as
// one unit: readers observe all of it or none of it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, set map[string]string, remove ...string) error
}

// MemoryKV keeps values in a map. Safe for concurrent use.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) Put(_ context.Context, set map[string]string, remove ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range set {
		m.values[k] = v
	}
	for _, k := range remove {
		delete(m.values, k)
	}
	return nil
}
