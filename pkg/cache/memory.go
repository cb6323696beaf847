package cache

import (
	"sync"
	"time"
)

// Memory is a process-local Backend.
type Memory struct {
	clock
	mu    sync.Mutex
	items map[string]*item
}

// NewMemory creates an empty in-memory backend.
func NewMemory(opts ...Option) *Memory {
	return &Memory{clock: newClock(opts), items: make(map[string]*item)}
}

// Get implements Backend.
func (m *Memory) Get(key string, v any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[key]
	if !ok {
		return false, nil
	}

	if it.expired(m.now()) {
		delete(m.items, key)
		return false, nil
	}

	return true, it.decode(v)
}

// Set implements Backend.
func (m *Memory) Set(key string, v any, ttl time.Duration) error {
	it, err := newItem(key, v, ttl, m.now())
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = it
	return nil
}

// Delete implements Backend.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}
