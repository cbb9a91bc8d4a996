// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module call the registered hooks at interesting points
// (a discoverer starting or finishing, a star query, a cache hit, an HTTP
// round trip) without depending on any particular backend. The CLI registers
// logging hooks under --verbose; tests register recorders.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetDiscoveryHooks(&myDiscoveryHooks{})
//	    observability.SetHTTPHooks(&myHTTPHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Discovery().OnDiscoverStart(ctx, "node")
//	// ... run the discoverer ...
//	observability.Discovery().OnDiscoverComplete(ctx, "node", len(refs), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Discovery Hooks
// =============================================================================

// DiscoveryHooks receives events from the discovery dispatcher, once per
// ecosystem. Calls may arrive concurrently from different goroutines.
type DiscoveryHooks interface {
	OnDiscoverStart(ctx context.Context, framework string)
	OnDiscoverComplete(ctx context.Context, framework string, refs int, duration time.Duration, err error)
}

// =============================================================================
// Star Hooks
// =============================================================================

// StarHooks receives events from the reconciliation engine.
type StarHooks interface {
	// OnQuery records a viewerHasStarred lookup.
	OnQuery(ctx context.Context, owner, name string, starred bool, err error)

	// OnStar records a star mutation, or its simulation when dryRun is true.
	OnStar(ctx context.Context, owner, name string, dryRun bool, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDiscoveryHooks is a no-op implementation of DiscoveryHooks.
type NoopDiscoveryHooks struct{}

func (NoopDiscoveryHooks) OnDiscoverStart(context.Context, string)                               {}
func (NoopDiscoveryHooks) OnDiscoverComplete(context.Context, string, int, time.Duration, error) {}

// NoopStarHooks is a no-op implementation of StarHooks.
type NoopStarHooks struct{}

func (NoopStarHooks) OnQuery(context.Context, string, string, bool, error) {}
func (NoopStarHooks) OnStar(context.Context, string, string, bool, error)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	discoveryHooks DiscoveryHooks = NoopDiscoveryHooks{}
	starHooks      StarHooks      = NoopStarHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetDiscoveryHooks registers custom discovery hooks.
// This should be called once at application startup before any discovery runs.
func SetDiscoveryHooks(h DiscoveryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		discoveryHooks = h
	}
}

// SetStarHooks registers custom star hooks.
func SetStarHooks(h StarHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		starHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Discovery returns the registered discovery hooks.
func Discovery() DiscoveryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return discoveryHooks
}

// Star returns the registered star hooks.
func Star() StarHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return starHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	discoveryHooks = NoopDiscoveryHooks{}
	starHooks = NoopStarHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
