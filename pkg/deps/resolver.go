package deps

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/thankstars/pkg/discovery"
	errs "github.com/matzehuels/thankstars/pkg/errors"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

// LookupFunc resolves one package to the repository references its
// registry entry names.
type LookupFunc func(ctx context.Context, name string) ([]discovery.Ref, error)

// Lookup resolves names against a registry with at most opts.Workers
// requests in flight and returns the refs in the order of names.
//
// Packages the registry does not know ([integrations.ErrNotFound]) and
// names that are not valid for the registry are skipped. Any other
// failure aborts the lookup: the error of the earliest failing name is
// returned as a *discovery.LookupError.
func Lookup(ctx context.Context, opts Options, registry string, names []string, fn LookupFunc) ([]discovery.Ref, error) {
	opts = opts.WithDefaults()

	results := make([][]discovery.Ref, len(names))
	failures := make([]error, len(names))

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures[i] = err
				return nil
			}
			if err := errs.ValidatePackageName(name); err != nil {
				opts.Logger.Debug("skipping package", "registry", registry, "package", name, "reason", err)
				return nil
			}
			refs, err := fn(ctx, name)
			switch {
			case errors.Is(err, integrations.ErrNotFound):
				opts.Logger.Debug("package not in registry", "registry", registry, "package", name)
			case errs.Is(err, errs.ErrCodeInvalidPackage):
				opts.Logger.Debug("skipping package", "registry", registry, "package", name, "reason", err)
			case err != nil:
				failures[i] = err
			default:
				results[i] = refs
			}
			return nil
		})
	}
	_ = g.Wait()

	var out []discovery.Ref
	for i, refs := range results {
		if err := failures[i]; err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, &discovery.LookupError{Registry: registry, Package: names[i], Err: err}
		}
		out = append(out, refs...)
	}
	return out, nil
}
