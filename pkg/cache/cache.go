// Package cache provides the byte-level cache backends used for registry
// lookups.
//
// A [Cache] stores opaque byte slices with a TTL. Registry clients in
// pkg/integrations encode their responses as JSON before storing them, so
// any backend can serve any client:
//
//   - [FileCache]: one JSON file per key under the user cache directory (CLI default)
//   - [RedisCache]: shared cache for machines that run thankstars repeatedly
//   - [MemoryCache]: bounded in-process LRU, usually layered in front of the others
//   - [NullCache]: caching disabled
//
// [Layered] combines a fast front cache with a slower back cache, and
// [Scoped] prefixes every key so unrelated clients can share a backend.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for serialized registry responses.
//
// Get reports a miss with ok=false and a nil error. Implementations must be
// safe for concurrent use: discoverers for different ecosystems share one
// Cache while they run in parallel.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
