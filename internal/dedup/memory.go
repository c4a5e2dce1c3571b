package dedup

import (
	"context"
	"sync"
)

// Memory is an in-process Filter. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewMemory creates an empty in-memory filter.
func NewMemory() *Memory {
	return &Memory{seen: make(map[string]struct{})}
}

// Seen reports whether url was marked.
func (m *Memory) Seen(_ context.Context, url string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.seen[url]
	return ok, nil
}

// MarkSeen records url.
func (m *Memory) MarkSeen(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[url] = struct{}{}
	return nil
}
