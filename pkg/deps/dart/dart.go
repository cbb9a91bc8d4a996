// Package dart discovers the repositories of a Dart or Flutter package's
// dependencies listed in pubspec.yaml.
//
// Git dependencies name their repository directly. Hosted dependencies are
// resolved through pub.dev: the first GitHub link among the latest
// pubspec's repository, homepage, issue_tracker and documentation wins.
// SDK and path dependencies are ignored.
package dart

import (
	"context"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/discovery"
	"github.com/matzehuels/thankstars/pkg/integrations/pubdev"
)

const manifest = "pubspec.yaml"

// Ecosystem registers the Dart discoverer.
var Ecosystem = &deps.Ecosystem{
	Framework: discovery.Dart,
	Registry:  "pub.dev",
	New:       func(opts deps.Options) discovery.Discoverer { return New(opts) },
}

// Discoverer reads pubspec.yaml.
type Discoverer struct {
	Registry *pubdev.Client
	opts     deps.Options
}

// New creates a Dart discoverer.
func New(opts deps.Options) *Discoverer {
	opts = opts.WithDefaults()
	return &Discoverer{
		Registry: pubdev.NewClient(opts.Cache, opts.CacheTTL),
		opts:     opts,
	}
}

// Discover implements discovery.Discoverer. Git dependencies come first,
// followed by hosted ones, each group sorted.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]discovery.Ref, error) {
	data, err := deps.ReadFile(root, manifest)
	if err != nil {
		return nil, err
	}
	var spec pubspec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, &discovery.ParseError{Path: filepath.Join(root, manifest), Err: err}
	}

	hosted := make(map[string]struct{})
	gitURLs := make(map[string]struct{})
	for _, section := range []map[string]any{spec.Dependencies, spec.DevDependencies, spec.DependencyOverrides} {
		collect(section, hosted, gitURLs)
	}

	var refs []discovery.Ref
	for _, u := range deps.SortedKeys(gitURLs) {
		if ref, ok := deps.FirstGitHub(manifest, u); ok {
			refs = append(refs, ref)
		}
	}

	remote, err := deps.Lookup(ctx, d.opts, "pub.dev", deps.SortedKeys(hosted), d.lookup)
	if err != nil {
		return nil, err
	}
	return append(refs, remote...), nil
}

func (d *Discoverer) lookup(ctx context.Context, name string) ([]discovery.Ref, error) {
	info, err := d.Registry.FetchPackage(ctx, name, d.opts.Refresh)
	if err != nil {
		return nil, err
	}
	if ref, ok := deps.FirstGitHub(manifest, info.CandidateURLs()...); ok {
		return []discovery.Ref{ref}, nil
	}
	return nil, nil
}

// collect sorts the entries of one dependency section into hosted package
// names and git URLs.
func collect(section map[string]any, hosted, gitURLs map[string]struct{}) {
	for name, detail := range section {
		m, ok := detail.(map[string]any)
		if !ok {
			// Version constraint, or null for "any".
			hosted[name] = struct{}{}
			continue
		}
		if u := gitURL(m["git"]); u != "" {
			gitURLs[u] = struct{}{}
			continue
		}
		_, sdk := m["sdk"]
		_, path := m["path"]
		if sdk || path {
			continue
		}
		hosted[name] = struct{}{}
	}
}

// gitURL reads `git: <url>` or `git: {url: <url>}`.
func gitURL(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case map[string]any:
		u, _ := v["url"].(string)
		return u
	}
	return ""
}

type pubspec struct {
	Name                string         `yaml:"name"`
	Dependencies        map[string]any `yaml:"dependencies"`
	DevDependencies     map[string]any `yaml:"dev_dependencies"`
	DependencyOverrides map[string]any `yaml:"dependency_overrides"`
}
