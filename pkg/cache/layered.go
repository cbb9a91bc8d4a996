package cache

import (
	"context"
	"errors"
	"time"
)

// Layered reads through a fast front cache to a slower back cache.
// Hits in the back cache are copied to the front with the front TTL.
type Layered struct {
	front    Cache
	back     Cache
	frontTTL time.Duration
}

// NewLayered combines front and back. frontTTL bounds how long promoted
// entries stay in the front cache; zero keeps them until evicted.
func NewLayered(front, back Cache, frontTTL time.Duration) *Layered {
	return &Layered{front: front, back: back, frontTTL: frontTTL}
}

// Get checks the front cache, then the back cache.
func (l *Layered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok, err := l.front.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	data, ok, err := l.back.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = l.front.Set(ctx, key, data, l.frontTTL)
	return data, true, nil
}

// Set writes to both caches.
func (l *Layered) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	frontTTL := l.frontTTL
	if ttl > 0 && (frontTTL == 0 || ttl < frontTTL) {
		frontTTL = ttl
	}
	return errors.Join(
		l.front.Set(ctx, key, data, frontTTL),
		l.back.Set(ctx, key, data, ttl),
	)
}

// Delete removes the key from both caches.
func (l *Layered) Delete(ctx context.Context, key string) error {
	return errors.Join(l.front.Delete(ctx, key), l.back.Delete(ctx, key))
}

// Close closes both caches.
func (l *Layered) Close() error {
	return errors.Join(l.front.Close(), l.back.Close())
}

var _ Cache = (*Layered)(nil)
