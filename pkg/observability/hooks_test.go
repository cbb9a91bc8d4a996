package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	d := NoopDiscoveryHooks{}
	d.OnDiscoverStart(ctx, "node")
	d.OnDiscoverComplete(ctx, "node", 3, time.Second, nil)

	s := NoopStarHooks{}
	s.OnQuery(ctx, "octo", "repo", true, nil)
	s.OnStar(ctx, "octo", "repo", false, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "npm")
	c.OnCacheMiss(ctx, "crates")
	c.OnCacheSet(ctx, "pypi", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "registry.npmjs.org", "/left-pad")
	h.OnResponse(ctx, "GET", "registry.npmjs.org", "/left-pad", 200, time.Second)
	h.OnError(ctx, "GET", "registry.npmjs.org", "/left-pad", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Discovery().(NoopDiscoveryHooks); !ok {
		t.Error("Discovery() should return NoopDiscoveryHooks by default")
	}
	if _, ok := Star().(NoopStarHooks); !ok {
		t.Error("Star() should return NoopStarHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customDiscovery := &testDiscoveryHooks{}
	SetDiscoveryHooks(customDiscovery)
	if Discovery() != customDiscovery {
		t.Error("SetDiscoveryHooks should set custom hooks")
	}

	customStar := &testStarHooks{}
	SetStarHooks(customStar)
	if Star() != customStar {
		t.Error("SetStarHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Discovery().(NoopDiscoveryHooks); !ok {
		t.Error("Reset() should restore NoopDiscoveryHooks")
	}
	if _, ok := Star().(NoopStarHooks); !ok {
		t.Error("Reset() should restore NoopStarHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testDiscoveryHooks{}
	SetDiscoveryHooks(custom)
	SetDiscoveryHooks(nil)

	if Discovery() != custom {
		t.Error("SetDiscoveryHooks(nil) should be ignored")
	}
}

type testDiscoveryHooks struct{ NoopDiscoveryHooks }
type testStarHooks struct{ NoopStarHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
