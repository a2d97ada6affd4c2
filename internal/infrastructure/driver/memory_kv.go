package driver

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value    string
	expireAt time.Time
}

// MemoryKV process local KeyValueDB, used when no kv server is configured
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ KeyValueDB = &MemoryKV{}

// NewMemoryKV create an empty MemoryKV
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryKV) live(key string) (memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return e, false
	}
	if !e.expireAt.IsZero() && !m.now().Before(e.expireAt) {
		return e, false
	}
	return e, true
}

// Set implement KeyValueDB
func (m *MemoryKV) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	e := memoryEntry{value: value}
	if expiration > 0 {
		e.expireAt = m.now().Add(expiration)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Get implement KeyValueDB
func (m *MemoryKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.live(key)
	if !ok {
		return "", ErrKeyNotFound
	}
	return e.value, nil
}

// Del implement KeyValueDB
func (m *MemoryKV) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Exists implement KeyValueDB
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.live(key)
	return ok, nil
}

// Ping implement KeyValueDB
func (m *MemoryKV) Ping(ctx context.Context) error {
	return nil
}
