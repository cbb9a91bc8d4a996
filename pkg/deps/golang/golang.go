// Package golang discovers the repositories of a Go module's requirements.
//
// Requirements are read from go.mod with golang.org/x/mod/modfile.
// Modules hosted at github.com/<owner>/<repo> map directly to their
// repository; vanity paths (gopkg.in, golang.org/x, ...) are resolved
// through the module proxy's Origin metadata.
package golang

import (
	"context"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/discovery"
	"github.com/matzehuels/thankstars/pkg/integrations/goproxy"
)

const manifest = "go.mod"

// Ecosystem registers the Go discoverer.
var Ecosystem = &deps.Ecosystem{
	Framework: discovery.Go,
	Registry:  "proxy.golang.org",
	New:       func(opts deps.Options) discovery.Discoverer { return New(opts) },
}

// Discoverer reads go.mod.
type Discoverer struct {
	Proxy *goproxy.Client
	opts  deps.Options
}

// New creates a Go discoverer.
func New(opts deps.Options) *Discoverer {
	opts = opts.WithDefaults()
	return &Discoverer{
		Proxy: goproxy.NewClient(opts.Cache, opts.CacheTTL),
		opts:  opts,
	}
}

// Discover implements discovery.Discoverer. Direct and indirect
// requirements are both included, ordered by module path.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]discovery.Ref, error) {
	data, err := deps.ReadFile(root, manifest)
	if err != nil {
		return nil, err
	}
	f, err := modfile.ParseLax(filepath.Join(root, manifest), data, nil)
	if err != nil {
		return nil, &discovery.ParseError{Path: filepath.Join(root, manifest), Err: err}
	}

	versions := make(map[string]string, len(f.Require))
	for _, r := range f.Require {
		versions[r.Mod.Path] = r.Mod.Version
	}
	return deps.Lookup(ctx, d.opts, "proxy.golang.org", deps.SortedKeys(versions), func(ctx context.Context, path string) ([]discovery.Ref, error) {
		if repo, ok := githubModule(path); ok {
			return []discovery.Ref{{Raw: repo.URL, Via: manifest}}, nil
		}
		return d.lookup(ctx, path, versions[path])
	})
}

// lookup asks the proxy where path comes from. The proxy is best effort:
// failures are logged and the module is skipped.
func (d *Discoverer) lookup(ctx context.Context, path, version string) ([]discovery.Ref, error) {
	info, err := d.Proxy.FetchModule(ctx, path, version, d.opts.Refresh)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		d.opts.Logger.Debug("module proxy lookup failed", "module", path, "version", version, "error", err)
		return nil, nil
	}
	if ref, ok := deps.FirstGitHub(manifest, info.Repository); ok {
		return []discovery.Ref{ref}, nil
	}
	return nil, nil
}

// githubModule maps github.com/<owner>/<repo>[/...] to its repository.
func githubModule(path string) (discovery.Repository, bool) {
	rest, ok := strings.CutPrefix(path, "github.com/")
	if !ok {
		return discovery.Repository{}, false
	}
	parts := strings.Split(rest, "/")
	if len(parts) < 2 {
		return discovery.Repository{}, false
	}
	return discovery.New(parts[0], parts[1], manifest)
}
