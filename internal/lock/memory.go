package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLock is a Locker for a single process, used when no Redis address
// is configured.
type MemoryLock struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemoryLock() *MemoryLock {
	return &MemoryLock{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *MemoryLock) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if exp, ok := m.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	m.expires[key] = now.Add(ttl)

	return true, nil
}

func (m *MemoryLock) Unlock(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.expires, key)

	return nil
}

func (m *MemoryLock) Close() error { return nil }
