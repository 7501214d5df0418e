package cache

import (
	"context"
	"sync"
	"time"

	"proofguard/pkg/sentinel"
)

// Cache is the distributed key-value collaborator backing access-token
// revocation. Token validation and revocation must be consistent
// cluster-wide, so production deployments use the Redis implementation;
// the in-memory one exists for tests and single-node development.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// InMemory is a process-local Cache with per-entry expiry.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string]memoryEntry)}
}

func (c *InMemory) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", sentinel.ErrNotFound
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(time.Now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", sentinel.ErrNotFound
	}
	return e.value, nil
}

func (c *InMemory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	return nil
}

func (c *InMemory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
