// Package cache provides the summary cache: an in-memory TTL cache for a
// single instance, or Redis when REDIS_ADDR is configured.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is the cache-aside contract used by the dashboard service. Values
// are JSON encoded so both backends behave the same.
type Store interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
	Close() error
	Name() string
}

// MemoryStore adapts Cache to Store.
type MemoryStore struct {
	c *Cache
}

func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{c: NewCache(0, cleanupInterval)}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string, dest any) (bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return false, nil
	}
	data, ok := v.([]byte)
	if !ok {
		return false, fmt.Errorf("cache: unexpected value type %T for %q", v, key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	return true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	m.c.SetWithTTL(key, data, ttl)
	return nil
}

func (m *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	m.c.DeletePrefix(prefix)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error {
	m.c.Stop()
	return nil
}
