package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/thankstars/pkg/discovery"
	errs "github.com/matzehuels/thankstars/pkg/errors"
	"github.com/matzehuels/thankstars/pkg/history"
	"github.com/matzehuels/thankstars/pkg/reconcile"
)

// Runner executes runs against one discoverer registry and GitHub API.
//
// The Runner holds no per-run state; concurrent runs with different
// options are safe as long as the API and store are.
type Runner struct {
	Registry *discovery.Registry
	API      reconcile.StarAPI // may be nil for Discover-only use
	History  history.Store     // nil disables run records
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil logger uses log.Default().
func NewRunner(reg *discovery.Registry, api reconcile.StarAPI, store history.Store, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Registry: reg, API: api, History: store, Logger: logger}
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

// Discover detects (when frameworks is empty) and runs discoverers under
// root without contacting GitHub.
//
// Errors: INVALID_INPUT when root is not a directory, NO_FRAMEWORKS when
// nothing is detected, DISCOVERY_FAILED wrapping the first failing
// ecosystem's *discovery.DiscoveryError.
func (r *Runner) Discover(ctx context.Context, root string, frameworks []discovery.Framework) (*Discovery, error) {
	if root == "" {
		root = "."
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "project root %s", root)
	}
	if !info.IsDir() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "project root %s is not a directory", root)
	}

	if len(frameworks) == 0 {
		frameworks = discovery.Detect(root)
		r.logger().Debug("detected frameworks", "root", root, "frameworks", frameworks)
	}
	if len(frameworks) == 0 {
		return nil, errs.New(errs.ErrCodeNoFrameworks, "no supported package managers found in project root %s", displayRoot(root))
	}

	start := time.Now()
	repos, err := discovery.NewDispatcher(r.Registry, r.logger()).Dispatch(ctx, root, frameworks)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.Wrap(errs.ErrCodeDiscovery, err, "discover dependencies")
	}
	repos = discovery.Dedup(repos)

	d := &Discovery{
		Root:         root,
		Frameworks:   frameworks,
		Repositories: repos,
		Duration:     time.Since(start),
	}
	r.logger().Info("discovered repositories",
		"frameworks", len(frameworks),
		"repositories", len(repos),
		"duration", d.Duration)
	return d, nil
}

// Run executes discover, select and reconcile, then records the run.
// Failing to record history is logged, not returned.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if r.API == nil {
		return nil, errs.New(errs.ErrCodeInternal, "pipeline runner has no GitHub API")
	}

	d, err := r.Discover(ctx, opts.Root, opts.Frameworks)
	if err != nil {
		return nil, err
	}
	result := &Result{Discovery: *d}
	result.Stats.DiscoverTime = d.Duration

	selected := d.Repositories
	if opts.Select != nil && len(selected) > 0 {
		selected, err = opts.Select(ctx, selected)
		if err != nil {
			return nil, err
		}
	}
	result.Selected = selected

	var record *history.Record
	if r.History != nil {
		record = history.NewRecord(absRoot(d.Root), opts.DryRun)
		for _, f := range d.Frameworks {
			record.Frameworks = append(record.Frameworks, f.String())
		}
		result.RunID = record.ID
	}

	api := r.API
	if opts.DryRun {
		api = reconcile.DryRunAPI(api)
	}
	engine := reconcile.NewEngine(api, opts.DryRun, opts.Handler, r.logger())

	start := time.Now()
	summary, err := engine.Reconcile(ctx, selected)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.Wrap(errs.ErrCodeGitHubAPI, err, "reconcile stars")
	}
	result.Summary = summary
	result.Stats.ReconcileTime = time.Since(start)

	r.logger().Info("reconciled stars",
		"newly", summary.Newly(),
		"already", summary.Already(),
		"dry_run", opts.DryRun,
		"duration", result.Stats.ReconcileTime)

	if record != nil {
		record.Finish(summary)
		if err := r.History.Save(ctx, record); err != nil {
			r.logger().Warn("failed to record run history", "run", record.ID, "error", err)
		}
	}
	return result, nil
}

func absRoot(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return root
}

// displayRoot keeps relative roots as given, except "." which reads
// better as the absolute path.
func displayRoot(root string) string {
	if root == "." {
		return absRoot(root)
	}
	return root
}
