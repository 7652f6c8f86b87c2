package kv

import (
	"context"
	"sync"
)

// Memory is an in-process Backend. Values are lost when the process exits.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	writes int

	// Error injection for testing
	GetErr error
	SetErr error
}

// NewMemory creates an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get implements Backend.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Backend.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.writes++
	return nil
}

// Writes returns how many successful Set calls the backend has seen.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Close implements Backend.
func (m *Memory) Close() error { return nil }
