package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/thankstars/pkg/observability"
)

// Dispatcher runs the discoverers for a set of frameworks and joins their
// results.
type Dispatcher struct {
	Registry *Registry
	Logger   *log.Logger
}

// NewDispatcher creates a dispatcher over reg.
func NewDispatcher(reg *Registry, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{Registry: reg, Logger: logger}
}

// taskResult is one framework's slot in the join.
type taskResult struct {
	repos    []Repository
	err      error
	panicked bool
	panicVal any
}

// Dispatch discovers repositories for frameworks under root.
//
// No frameworks yields an empty result. A single framework runs on the
// calling goroutine. Several frameworks run concurrently, one goroutine
// each, and Dispatch waits for all of them even when one fails.
//
// The result concatenates each framework's repositories in the order the
// frameworks were given. If any discoverer fails, the error of the earliest
// failing framework in that order is returned as a *DiscoveryError and no
// repositories are returned. A discoverer that panics is a programming
// error: the panic is re-raised on the calling goroutine after the join.
func (d *Dispatcher) Dispatch(ctx context.Context, root string, frameworks []Framework) ([]Repository, error) {
	switch len(frameworks) {
	case 0:
		return nil, nil
	case 1:
		res := d.run(ctx, root, frameworks[0])
		if res.err != nil {
			return nil, res.err
		}
		return res.repos, nil
	}

	results := make([]taskResult, len(frameworks))
	var wg sync.WaitGroup
	for i, f := range frameworks {
		wg.Add(1)
		go func(i int, f Framework) {
			defer wg.Done()
			defer func() {
				if v := recover(); v != nil {
					results[i] = taskResult{panicked: true, panicVal: v}
				}
			}()
			results[i] = d.run(ctx, root, f)
		}(i, f)
	}
	wg.Wait()

	for i, res := range results {
		if res.panicked {
			panic(fmt.Sprintf("discoverer for %s panicked: %v", frameworks[i], res.panicVal))
		}
	}

	var all []Repository
	for _, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		all = append(all, res.repos...)
	}
	return all, nil
}

// run executes one framework's discoverer and normalises its refs.
func (d *Dispatcher) run(ctx context.Context, root string, f Framework) taskResult {
	disc, ok := d.Registry.Lookup(f)
	if !ok {
		return taskResult{err: &DiscoveryError{Framework: f, Err: ErrUnsupported}}
	}

	hooks := observability.Discovery()
	hooks.OnDiscoverStart(ctx, string(f))
	start := time.Now()

	refs, err := disc.Discover(ctx, root)
	hooks.OnDiscoverComplete(ctx, string(f), len(refs), time.Since(start), err)
	if err != nil {
		d.Logger.Debug("discovery failed", "framework", f, "error", err)
		return taskResult{err: &DiscoveryError{Framework: f, Err: err}}
	}

	repos := make([]Repository, 0, len(refs))
	for _, ref := range refs {
		repo, ok := ParseVia(ref.Raw, ref.Via)
		if !ok {
			d.Logger.Debug("skipping non-GitHub reference", "framework", f, "ref", ref.Raw)
			continue
		}
		repos = append(repos, repo)
	}
	d.Logger.Debug("discovered repositories", "framework", f, "refs", len(refs), "repositories", len(repos), "duration", time.Since(start))
	return taskResult{repos: repos}
}
