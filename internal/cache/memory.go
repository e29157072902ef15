package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is the ephemeral key-value backend, a thin wrapper over
// go-cache. Entries expire per-key; the janitor sweeps expired entries.
type MemoryStore struct {
	c *gocache.Cache
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(defaultTTL, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, found := m.c.Get(key)
	if !found {
		return nil, false, nil
	}
	payload, ok := v.([]byte)
	if !ok {
		// Foreign value under our key; treat as absent.
		m.c.Delete(key)
		return nil, false, nil
	}
	return payload, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	m.c.Set(key, payload, ttl)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}
