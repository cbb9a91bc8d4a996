// Package deno discovers repositories referenced by a Deno project.
//
// Every string in deno.lock is inspected for github.com,
// raw.githubusercontent.com and codeload.github.com URLs. JSR packages
// ("jsr:@scope/name" specifiers in deno.lock, deno.json, deno.jsonc or
// jsr.json) are resolved through their jsr.io package page.
package deno

import (
	"context"
	"encoding/json"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/discovery"
	"github.com/matzehuels/thankstars/pkg/integrations/jsr"
)

const (
	lockFile = "deno.lock"
	jsrVia   = "jsr.io"
)

// manifests may declare JSR imports and dependencies.
var manifests = []string{"deno.json", "deno.jsonc", "jsr.json"}

// Ecosystem registers the deno discoverer.
var Ecosystem = &deps.Ecosystem{
	Framework: discovery.Deno,
	Registry:  "jsr",
	New:       func(opts deps.Options) discovery.Discoverer { return New(opts) },
}

// Discoverer reads deno.lock and Deno manifests.
type Discoverer struct {
	Registry *jsr.Client
	opts     deps.Options
}

// New creates a deno discoverer.
func New(opts deps.Options) *Discoverer {
	opts = opts.WithDefaults()
	return &Discoverer{
		Registry: jsr.NewClient(opts.Cache, opts.CacheTTL),
		opts:     opts,
	}
}

// Discover implements discovery.Discoverer. A project without deno.lock
// and without JSR imports yields nothing.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]discovery.Ref, error) {
	w := newWalker()

	data, ok, err := deps.ReadOptional(root, lockFile)
	if err != nil {
		return nil, err
	}
	if ok {
		var lock any
		if err := json.Unmarshal(data, &lock); err != nil {
			return nil, &discovery.ParseError{Path: filepath.Join(root, lockFile), Err: err}
		}
		w.walkLock(lock)
	}

	for _, name := range manifests {
		data, ok, err := deps.ReadOptional(root, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var manifest any
		if err := json.Unmarshal(data, &manifest); err != nil {
			// deno.jsonc may carry comments; its imports are then unknown.
			d.opts.Logger.Debug("skipping unparsable manifest", "file", name, "error", err)
			continue
		}
		w.walkJSR(manifest)
	}

	packages, err := deps.Lookup(ctx, d.opts, "jsr", deps.SortedKeys(w.jsr), d.lookup)
	if err != nil {
		return nil, err
	}
	return append(w.refs, packages...), nil
}

func (d *Discoverer) lookup(ctx context.Context, name string) ([]discovery.Ref, error) {
	info, err := d.Registry.FetchPackage(ctx, name, d.opts.Refresh)
	if err != nil {
		return nil, err
	}
	if ref, ok := deps.FirstGitHub(jsrVia, info.Repository); ok {
		return []discovery.Ref{ref}, nil
	}
	return nil, nil
}

// walker collects lockfile repository refs and JSR package names.
type walker struct {
	refs []discovery.Ref
	seen map[string]bool
	jsr  map[string]struct{}
}

func newWalker() *walker {
	return &walker{seen: make(map[string]bool), jsr: make(map[string]struct{})}
}

// walkLock visits every value of the lockfile in key order.
func (w *walker) walkLock(v any) {
	switch v := v.(type) {
	case string:
		w.addJSR(v)
		if repo, ok := repositoryFromValue(v); ok && !w.seen[repo.Key()] {
			w.seen[repo.Key()] = true
			w.refs = append(w.refs, discovery.Ref{Raw: repo.URL, Via: lockFile})
		}
	case []any:
		for _, item := range v {
			w.walkLock(item)
		}
	case map[string]any:
		for _, key := range deps.SortedKeys(v) {
			w.addJSR(key)
			w.walkLock(v[key])
		}
		// Lockfile v3/v4 list resolved JSR packages as "@scope/name@version" keys.
		if pkgs, ok := v["jsr"].(map[string]any); ok {
			for key := range pkgs {
				w.addName(key)
			}
		}
	}
}

// walkJSR collects JSR names from a manifest: import map entries,
// dependency sections and any "jsr:" string.
func (w *walker) walkJSR(v any) {
	switch v := v.(type) {
	case string:
		w.addJSR(v)
	case []any:
		for _, item := range v {
			w.walkJSR(item)
		}
	case map[string]any:
		for key, child := range v {
			if key == "imports" {
				if imports, ok := child.(map[string]any); ok {
					for spec := range imports {
						w.addJSR(spec)
					}
				}
			}
			if isDependencySection(key) {
				if section, ok := child.(map[string]any); ok {
					for name := range section {
						if strings.HasPrefix(name, "@") {
							w.addName(name)
						}
					}
				}
			}
			w.walkJSR(child)
		}
	}
}

func (w *walker) addJSR(spec string) {
	if name, ok := jsr.ParseSpecifier(spec); ok {
		w.addName(name)
	}
}

func (w *walker) addName(name string) {
	if name, ok := jsr.NormalizeName(strings.TrimLeft(name, "/")); ok && strings.HasPrefix(name, "@") {
		w.jsr[name] = struct{}{}
	}
}

func isDependencySection(key string) bool {
	switch key {
	case "dependencies", "devDependencies", "peerDependencies", "optionalDependencies":
		return true
	}
	return false
}

// repositoryFromValue recognises GitHub repository URLs, including raw
// file and archive download hosts.
func repositoryFromValue(v string) (discovery.Repository, bool) {
	if repo, ok := discovery.Parse(v); ok {
		return repo, true
	}
	u, err := url.Parse(v)
	if err != nil {
		return discovery.Repository{}, false
	}
	switch u.Host {
	case "raw.githubusercontent.com", "codeload.github.com":
		parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
		if len(parts) < 2 {
			return discovery.Repository{}, false
		}
		return discovery.New(parts[0], parts[1], "")
	}
	return discovery.Repository{}, false
}
