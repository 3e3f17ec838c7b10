// Package store provides credential-slot implementations. A store holds one
// named slot with the bearer token; it is read synchronously before any
// network call and cleared only by logout or forced invalidation.
package store

import "sync"

// Memory is an in-process credential slot. Used by tests and ephemeral
// shells that should not persist a session across restarts.
type Memory struct {
	mu    sync.RWMutex
	token string
}

// NewMemory returns an empty in-memory slot.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Memory) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
