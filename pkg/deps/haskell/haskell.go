// Package haskell discovers the repositories of Haskell dependencies named
// in package.yaml (hpack) and *.cabal files.
//
// Package names are resolved through Hackage: the latest .cabal file of
// each dependency is fetched and the first GitHub link among its homepage,
// bug-reports and source-repository locations is reported.
package haskell

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/discovery"
	"github.com/matzehuels/thankstars/pkg/integrations/hackage"
)

const hpackFile = "package.yaml"

// Ecosystem registers the Haskell discoverer.
var Ecosystem = &deps.Ecosystem{
	Framework: discovery.Haskell,
	Registry:  "hackage",
	New:       func(opts deps.Options) discovery.Discoverer { return New(opts) },
}

// Discoverer reads hpack and cabal manifests.
type Discoverer struct {
	Registry *hackage.Client
	opts     deps.Options
}

// New creates a Haskell discoverer.
func New(opts deps.Options) *Discoverer {
	opts = opts.WithDefaults()
	return &Discoverer{
		Registry: hackage.NewClient(opts.Cache, opts.CacheTTL),
		opts:     opts,
	}
}

// Discover implements discovery.Discoverer. Dependency names are looked up
// in sorted order; each result is tagged with the lexically first manifest
// that declared it.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]discovery.Ref, error) {
	vias := make(map[string]string)
	add := func(name, via string) {
		if cur, ok := vias[name]; !ok || via < cur {
			vias[name] = via
		}
	}

	data, ok, err := deps.ReadOptional(root, hpackFile)
	if err != nil {
		return nil, err
	}
	if ok {
		names, err := parseHpack(data)
		if err != nil {
			return nil, &discovery.ParseError{Path: filepath.Join(root, hpackFile), Err: err}
		}
		for _, name := range names {
			add(name, hpackFile)
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &discovery.FileError{Path: root, Err: err}
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".cabal") {
			continue
		}
		data, err := deps.ReadFile(root, e.Name())
		if err != nil {
			return nil, err
		}
		for _, name := range parseCabalDepends(string(data)) {
			add(name, e.Name())
		}
	}

	return deps.Lookup(ctx, d.opts, "hackage", deps.SortedKeys(vias), func(ctx context.Context, name string) ([]discovery.Ref, error) {
		info, err := d.Registry.FetchPackage(ctx, name, d.opts.Refresh)
		if err != nil {
			return nil, err
		}
		if ref, ok := deps.FirstGitHub(vias[name], info.URLs...); ok {
			return []discovery.Ref{ref}, nil
		}
		return nil, nil
	})
}

// parseHpack returns the dependency names of package.yaml's top-level,
// library and per-component dependency lists.
func parseHpack(data []byte) ([]string, error) {
	var manifest struct {
		Dependencies any            `yaml:"dependencies"`
		Library      map[string]any `yaml:"library"`
		Executables  map[string]any `yaml:"executables"`
		Tests        map[string]any `yaml:"tests"`
		Benchmarks   map[string]any `yaml:"benchmarks"`
	}
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}

	var names []string
	collect := func(v any) {
		for _, entry := range dependencyEntries(v) {
			if name, ok := dependencyName(entry); ok {
				names = append(names, name)
			}
		}
	}
	collect(manifest.Dependencies)
	collect(manifest.Library["dependencies"])
	for _, components := range []map[string]any{manifest.Executables, manifest.Tests, manifest.Benchmarks} {
		for _, name := range deps.SortedKeys(components) {
			if c, ok := components[name].(map[string]any); ok {
				collect(c["dependencies"])
			}
		}
	}
	return names, nil
}

// dependencyEntries flattens the accepted shapes of an hpack dependency
// list: a single string, or a sequence of strings and {package|name} maps.
func dependencyEntries(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			switch item := item.(type) {
			case string:
				out = append(out, item)
			case map[string]any:
				if s, ok := item["package"].(string); ok {
					out = append(out, s)
				} else if s, ok := item["name"].(string); ok {
					out = append(out, s)
				}
			}
		}
		return out
	}
	return nil
}

// parseCabalDepends collects build-depends and build-tool-depends entries,
// following continuation lines.
func parseCabalDepends(content string) []string {
	lines := strings.Split(content, "\n")
	var names []string
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, "--") {
			continue
		}
		rest, ok := dependsField(trimmed)
		if !ok {
			continue
		}

		buf := strings.TrimSpace(rest)
	continuation:
		for i+1 < len(lines) {
			next := lines[i+1]
			nextTrimmed := strings.TrimSpace(next)
			indented := strings.HasPrefix(next, " ") || strings.HasPrefix(next, "\t")
			switch {
			case strings.HasPrefix(nextTrimmed, "--"):
			case strings.HasPrefix(nextTrimmed, ","):
				buf += " " + nextTrimmed
			case indented && nextTrimmed != "" && !strings.Contains(nextTrimmed, ":") && !conditional(nextTrimmed):
				buf += ", " + nextTrimmed
			default:
				break continuation
			}
			i++
		}
		for _, entry := range strings.Split(buf, ",") {
			entry, _, _ = strings.Cut(entry, "--")
			if name, ok := dependencyName(entry); ok {
				names = append(names, name)
			}
		}
	}
	return names
}

func conditional(line string) bool {
	return line == "else" || strings.HasPrefix(line, "if ") || strings.HasPrefix(line, "else ")
}

func dependsField(line string) (string, bool) {
	lower := strings.ToLower(line)
	for _, field := range []string{"build-depends:", "build-tool-depends:"} {
		if strings.HasPrefix(lower, field) {
			return line[len(field):], true
		}
	}
	return "", false
}

// dependencyName extracts the package from "name >= 1.0", "name (...)" or
// "pkg:exe" entries. Entries starting with a digit are version fragments.
func dependencyName(entry string) (string, bool) {
	entry = strings.TrimSpace(entry)
	if entry == "" || entry[0] >= '0' && entry[0] <= '9' {
		return "", false
	}
	if i := strings.IndexAny(entry, " \t(:<>=^"); i >= 0 {
		entry = entry[:i]
	}
	return entry, entry != ""
}
