// Package node discovers the repositories behind a project's npm
// dependencies.
//
// Direct dependencies and devDependencies are read from package.json. Each
// one's source is taken from its installed node_modules/<name>/package.json
// ("repository" as a string or {"url": ...}, else "homepage"). Packages that
// are not installed are looked up in the npm registry.
package node

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/discovery"
	"github.com/matzehuels/thankstars/pkg/integrations/npm"
)

const manifest = "package.json"

// Ecosystem registers the node discoverer.
var Ecosystem = &deps.Ecosystem{
	Framework: discovery.Node,
	Registry:  "npm",
	New:       func(opts deps.Options) discovery.Discoverer { return New(opts) },
}

// Discoverer reads package.json and node_modules.
type Discoverer struct {
	Registry *npm.Client
	opts     deps.Options
}

// New creates a node discoverer.
func New(opts deps.Options) *Discoverer {
	opts = opts.WithDefaults()
	return &Discoverer{
		Registry: npm.NewClient(opts.Cache, opts.CacheTTL),
		opts:     opts,
	}
}

// Discover implements discovery.Discoverer.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]discovery.Ref, error) {
	data, err := deps.ReadFile(root, manifest)
	if err != nil {
		return nil, err
	}
	var pkg packageFile
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, &discovery.ParseError{Path: filepath.Join(root, manifest), Err: err}
	}

	return deps.Lookup(ctx, d.opts, "npm", dependencyNames(pkg), func(ctx context.Context, name string) ([]discovery.Ref, error) {
		return d.resolve(ctx, root, name)
	})
}

// resolve prefers the installed copy of name and falls back to the registry.
func (d *Discoverer) resolve(ctx context.Context, root, name string) ([]discovery.Ref, error) {
	if info, ok := readInstalled(root, name); ok {
		if ref, ok := deps.FirstGitHub(manifest, info.source()); ok {
			return []discovery.Ref{ref}, nil
		}
		return nil, nil
	}

	info, err := d.Registry.FetchPackage(ctx, name, d.opts.Refresh)
	if err != nil {
		return nil, err
	}
	if ref, ok := deps.FirstGitHub(manifest, info.Repository, info.HomePage, info.Bugs); ok {
		return []discovery.Ref{ref}, nil
	}
	return nil, nil
}

// dependencyNames returns the union of dependencies and devDependencies,
// sorted.
func dependencyNames(pkg packageFile) []string {
	names := make(map[string]struct{}, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name := range pkg.Dependencies {
		names[name] = struct{}{}
	}
	for name := range pkg.DevDependencies {
		names[name] = struct{}{}
	}
	return deps.SortedKeys(names)
}

// readInstalled reads node_modules/<name>/package.json. A missing or
// unreadable manifest means the package is not installed.
func readInstalled(root, name string) (installedPackage, bool) {
	parts := append([]string{root, "node_modules"}, strings.Split(name, "/")...)
	data, err := os.ReadFile(filepath.Join(append(parts, manifest)...))
	if err != nil {
		return installedPackage{}, false
	}
	var info installedPackage
	if err := json.Unmarshal(data, &info); err != nil {
		return installedPackage{}, false
	}
	return info, true
}

type packageFile struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

type installedPackage struct {
	Repository any    `json:"repository"`
	HomePage   string `json:"homepage"`
}

// source returns "repository" (string or object url), else "homepage".
func (p installedPackage) source() string {
	if repo := npm.ExtractField(p.Repository, "url"); repo != "" {
		return repo
	}
	return p.HomePage
}
