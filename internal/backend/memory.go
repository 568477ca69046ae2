package backend

import (
	"context"
	"sync"
)

// MemoryBackend keeps examples for the lifetime of the process only. It is
// the default when no durable store is configured. Values come back in the
// order they were first saved.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][]string
	seen   map[string]map[string]struct{}
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		values: make(map[string][]string),
		seen:   make(map[string]map[string]struct{}),
	}
}

// Save records value under key
func (m *MemoryBackend) Save(ctx context.Context, key, value string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seen, ok := m.seen[key]
	if !ok {
		seen = make(map[string]struct{})
		m.seen[key] = seen
	}
	if _, dup := seen[value]; dup {
		return nil
	}
	seen[value] = struct{}{}
	m.values[key] = append(m.values[key], value)
	return nil
}

// Fetch returns the values saved under key
func (m *MemoryBackend) Fetch(ctx context.Context, key string) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	values := m.values[key]
	out := make([]string, len(values))
	copy(out, values)
	return out, nil
}

// Close is a no-op
func (m *MemoryBackend) Close() error {
	return nil
}
