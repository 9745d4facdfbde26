// Package kvstore holds an in-process key/value store with the same contract
// as the Redis store, used by tests and local runs without Redis.
package kvstore

import (
	"context"
	"sync"
)

// Memory is a map-backed key/value store safe for concurrent use
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty store
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Load returns the stored value, or nil when the key is absent
func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Save stores value under key
func (m *Memory) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

// Delete removes key
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Set writes raw bytes, letting tests plant corrupt values
func (m *Memory) Set(key string, value []byte) {
	_ = m.Save(context.Background(), key, value)
}
