package cache

import (
	"context"
	"time"
)

// Scoped wraps a Cache with a key prefix for namespace isolation.
// Registry clients get their own scope so "serde" on crates.io and "serde"
// on npm never collide:
//
//	crates := cache.NewScoped(backend, "crates:")
//	npm := cache.NewScoped(backend, "npm:")
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped creates a cache view whose keys are prefixed with prefix.
// A nil inner cache is replaced by a NullCache.
func NewScoped(inner Cache, prefix string) *Scoped {
	if inner == nil {
		inner = NewNullCache()
	}
	return &Scoped{inner: inner, prefix: prefix}
}

// Get retrieves a prefixed key from the inner cache.
func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Set stores a prefixed key in the inner cache.
func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

// Delete removes a prefixed key from the inner cache.
func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close does nothing; the inner cache is owned by whoever created it.
func (s *Scoped) Close() error {
	return nil
}

var _ Cache = (*Scoped)(nil)
