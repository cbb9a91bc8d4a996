package discovery

import (
	"context"
	"slices"
	"sync"
)

// Ref is a raw repository reference found by a discoverer: any string
// [Parse] may recognise, plus the label of the file or registry it came from.
type Ref struct {
	Raw string
	Via string
}

// Discoverer extracts repository references for one ecosystem.
//
// Discover reads files under root (never writes) and may consult registries.
// References that turn out not to point at GitHub are fine to return; the
// dispatcher drops anything [Parse] does not recognise. A dependency missing
// from its registry is not an error.
type Discoverer interface {
	Discover(ctx context.Context, root string) ([]Ref, error)
}

// DiscovererFunc adapts a function to the Discoverer interface.
type DiscovererFunc func(ctx context.Context, root string) ([]Ref, error)

// Discover calls f(ctx, root).
func (f DiscovererFunc) Discover(ctx context.Context, root string) ([]Ref, error) {
	return f(ctx, root)
}

// Registry maps frameworks to their discoverers.
// It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	discoverers map[Framework]Discoverer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{discoverers: make(map[Framework]Discoverer)}
}

// Register sets the discoverer for f, replacing any previous one.
func (r *Registry) Register(f Framework, d Discoverer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discoverers[f] = d
}

// Lookup returns the discoverer registered for f.
func (r *Registry) Lookup(f Framework) (Discoverer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.discoverers[f]
	return d, ok
}

// Frameworks returns the registered frameworks in AllFrameworks order,
// followed by any others sorted by name.
func (r *Registry) Frameworks() []Framework {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out, extra []Framework
	for _, f := range AllFrameworks {
		if _, ok := r.discoverers[f]; ok {
			out = append(out, f)
		}
	}
	for f := range r.discoverers {
		if !slices.Contains(AllFrameworks, f) {
			extra = append(extra, f)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
