// Package pipeline wires discovery and reconciliation into one run.
//
// A run has four stages:
//
//  1. Detect: pick the frameworks whose marker files exist in the project
//     root (skipped when frameworks are given explicitly)
//  2. Discover: run each framework's discoverer and merge the results
//  3. Select: deduplicate, then optionally let the user narrow the list
//  4. Reconcile: star what is not starred yet and record the run
//
// Both the run and discover commands go through a [Runner], so detection,
// deduplication and error classification behave the same everywhere.
//
//	runner := pipeline.NewRunner(registry, api, store, logger)
//	result, err := runner.Run(ctx, pipeline.Options{Root: ".", DryRun: true})
package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/thankstars/pkg/discovery"
	"github.com/matzehuels/thankstars/pkg/reconcile"
)

// SelectFunc narrows the deduplicated repositories before reconciliation,
// e.g. through an interactive picker. Returning an empty slice is allowed.
type SelectFunc func(ctx context.Context, repos []discovery.Repository) ([]discovery.Repository, error)

// Options configures one run.
type Options struct {
	Root       string                 // Project root (default ".")
	Frameworks []discovery.Framework  // Explicit frameworks; detected when empty
	DryRun     bool                   // Query starred state but never star
	Handler    reconcile.EventHandler // Progress events (nil ignores them)
	Select     SelectFunc             // Optional filter between discovery and reconciliation
}

// Discovery is the outcome of the detect and discover stages.
type Discovery struct {
	Root         string
	Frameworks   []discovery.Framework
	Repositories []discovery.Repository // deduplicated, first-seen order
	Duration     time.Duration
}

// Result is the outcome of a complete run.
type Result struct {
	RunID string // history record ID (empty when history is disabled)
	Discovery
	Selected []discovery.Repository // repositories passed to reconciliation
	Summary  reconcile.Summary
	Stats    Stats
}

// Stats holds stage timings.
type Stats struct {
	DiscoverTime  time.Duration
	ReconcileTime time.Duration
}
