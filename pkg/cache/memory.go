package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryEntries bounds the in-process cache. One run of a large
// monorepo touches a few thousand registry packages at most.
const DefaultMemoryEntries = 4096

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is a bounded in-process LRU cache.
// Entries are evicted when the size limit is reached or their TTL passes.
type MemoryCache struct {
	entries *lru.Cache[string, memoryEntry]
}

// NewMemoryCache creates an LRU cache holding at most size entries.
// A non-positive size uses DefaultMemoryEntries.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{entries: entries}, nil
}

// Get retrieves a value, treating expired entries as misses.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, false, nil
	}
	return entry.data, true, nil
}

// Set stores a value. A zero ttl never expires.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.entries.Add(key, entry)
	return nil
}

// Delete removes a value.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

// Len returns the number of entries currently held.
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}

// Close purges all entries.
func (c *MemoryCache) Close() error {
	c.entries.Purge()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
