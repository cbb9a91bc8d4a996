// Package python discovers the repositories of a Python project's
// dependencies.
//
// The dependency list comes from the first of uv.lock (registry packages
// only), Pipfile.lock, requirements.txt, pyproject.toml or Pipfile that
// exists. Each package's
// repository is read from its installed metadata in a project-local
// virtualenv (.venv, venv or any directory holding pyvenv.cfg), falling
// back to the project URLs published on PyPI.
package python

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/discovery"
	"github.com/matzehuels/thankstars/pkg/integrations/pypi"
)

const (
	uvLock       = "uv.lock"
	pipfileLock  = "Pipfile.lock"
	requirements = "requirements.txt"
	pyproject    = "pyproject.toml"
	pipfile      = "Pipfile"
)

// Ecosystem registers the Python discoverer.
var Ecosystem = &deps.Ecosystem{
	Framework: discovery.Python,
	Registry:  "pypi",
	New:       func(opts deps.Options) discovery.Discoverer { return New(opts) },
}

// Discoverer reads Python lockfiles and installed package metadata.
type Discoverer struct {
	Registry *pypi.Client
	opts     deps.Options
}

// New creates a Python discoverer.
func New(opts deps.Options) *Discoverer {
	opts = opts.WithDefaults()
	return &Discoverer{
		Registry: pypi.NewClient(opts.Cache, opts.CacheTTL),
		opts:     opts,
	}
}

// Discover implements discovery.Discoverer.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]discovery.Ref, error) {
	names, via, err := packageNames(root)
	if err != nil || len(names) == 0 {
		return nil, err
	}

	env := findSitePackages(root)
	return deps.Lookup(ctx, d.opts, "pypi", names, func(ctx context.Context, name string) ([]discovery.Ref, error) {
		if urls := env.metadataURLs(name); len(urls) > 0 {
			ref, ok := deps.FirstGitHub(via, urls...)
			if ok {
				return []discovery.Ref{ref}, nil
			}
		}
		return d.lookup(ctx, name, via)
	})
}

func (d *Discoverer) lookup(ctx context.Context, name, via string) ([]discovery.Ref, error) {
	info, err := d.Registry.FetchPackage(ctx, name, d.opts.Refresh)
	if err != nil {
		return nil, err
	}
	if owner, repo, ok := info.GitHubRepo(); ok {
		return []discovery.Ref{{Raw: "https://github.com/" + owner + "/" + repo, Via: via}}, nil
	}
	return nil, nil
}

// sources lists the dependency files in order of preference.
var sources = []struct {
	file  string
	parse func(path string, data []byte) ([]string, error)
}{
	{uvLock, parseUVLock},
	{pipfileLock, parsePipfileLock},
	{requirements, func(_ string, data []byte) ([]string, error) { return parseRequirements(data), nil }},
	{pyproject, parsePyproject},
	{pipfile, parsePipfile},
}

// packageNames returns the sorted dependency names and the file they came
// from. A project with none of the supported files has no dependencies.
func packageNames(root string) ([]string, string, error) {
	for _, src := range sources {
		data, ok, err := deps.ReadOptional(root, src.file)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			continue
		}
		names, err := src.parse(filepath.Join(root, src.file), data)
		return names, src.file, err
	}
	return nil, "", nil
}

// parseUVLock returns the packages uv resolved from a registry. Editable,
// path and git sources (including the project itself) are skipped.
func parseUVLock(path string, data []byte) ([]string, error) {
	var lock struct {
		Packages []struct {
			Name   string `toml:"name"`
			Source struct {
				Registry string `toml:"registry"`
			} `toml:"source"`
		} `toml:"package"`
	}
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, &discovery.ParseError{Path: path, Err: err}
	}

	names := make(map[string]struct{})
	for _, p := range lock.Packages {
		if p.Source.Registry != "" {
			names[p.Name] = struct{}{}
		}
	}
	return deps.SortedKeys(names), nil
}

// parsePyproject reads PEP 621 dependencies and optional dependencies, or
// Poetry's dependency tables.
func parsePyproject(path string, data []byte) ([]string, error) {
	var p struct {
		Project struct {
			Dependencies         []string            `toml:"dependencies"`
			OptionalDependencies map[string][]string `toml:"optional-dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies    map[string]any `toml:"dependencies"`
				DevDependencies map[string]any `toml:"dev-dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, &discovery.ParseError{Path: path, Err: err}
	}

	names := make(map[string]struct{})
	add := func(spec string) {
		if name, ok := requirementName(spec); ok {
			names[name] = struct{}{}
		}
	}
	for _, spec := range p.Project.Dependencies {
		add(spec)
	}
	for _, group := range p.Project.OptionalDependencies {
		for _, spec := range group {
			add(spec)
		}
	}
	for _, table := range []map[string]any{p.Tool.Poetry.Dependencies, p.Tool.Poetry.DevDependencies} {
		for name := range table {
			if name != "python" {
				add(name)
			}
		}
	}
	return deps.SortedKeys(names), nil
}

// parsePipfileLock returns the default and develop packages pipenv locked.
func parsePipfileLock(path string, data []byte) ([]string, error) {
	var lock struct {
		Default map[string]json.RawMessage `json:"default"`
		Develop map[string]json.RawMessage `json:"develop"`
	}
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, &discovery.ParseError{Path: path, Err: err}
	}
	names := make(map[string]struct{})
	for _, section := range []map[string]json.RawMessage{lock.Default, lock.Develop} {
		for name := range section {
			names[name] = struct{}{}
		}
	}
	return deps.SortedKeys(names), nil
}

// parsePipfile reads the [packages] and [dev-packages] tables.
func parsePipfile(path string, data []byte) ([]string, error) {
	var p struct {
		Packages    map[string]any `toml:"packages"`
		DevPackages map[string]any `toml:"dev-packages"`
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, &discovery.ParseError{Path: path, Err: err}
	}
	names := make(map[string]struct{})
	for _, table := range []map[string]any{p.Packages, p.DevPackages} {
		for name := range table {
			names[name] = struct{}{}
		}
	}
	return deps.SortedKeys(names), nil
}
