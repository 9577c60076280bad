package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kontor/backend/internal/application/report"
)

// InMemoryReportCache implements report.ReportCache with a process-local map.
// Suitable for single-instance deployments and tests; entries expire lazily
// on read.
type InMemoryReportCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewInMemoryReportCache creates a new in-memory report cache
func NewInMemoryReportCache() *InMemoryReportCache {
	return &InMemoryReportCache{
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the cached value for the key, or (nil, nil) on a miss
func (c *InMemoryReportCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	return entry.value, nil
}

// Set stores a value under the key with the given TTL
func (c *InMemoryReportCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes the given keys
func (c *InMemoryReportCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

// Ensure InMemoryReportCache implements ReportCache
var _ report.ReportCache = (*InMemoryReportCache)(nil)
