package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Cache backed by a mutex-protected map with per-key
// expiry. It is the default backend for local development and tests, and the
// fallback when no Redis address is configured.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the value for key, or (nil, false) on miss or expiry.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(m.now()) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key with the given TTL. A zero TTL means no expiry.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
}

// GetMany returns present, unexpired entries for the given keys.
func (m *Memory) GetMany(ctx context.Context, keys []string) map[string][]byte {
	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, ok := m.Get(ctx, key); ok {
			result[key] = value
		}
	}
	return result
}

// SetMany stores all items with the given TTL.
func (m *Memory) SetMany(ctx context.Context, items map[string][]byte, ttl time.Duration) {
	for key, value := range items {
		m.Set(ctx, key, value, ttl)
	}
}

// Len returns the number of stored entries, including not-yet-reaped expired
// ones. Used by tests and the worker's health details.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
