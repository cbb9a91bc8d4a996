// Package cargo discovers the repositories of a Rust workspace's direct
// dependencies.
//
// The dependency graph comes from `cargo metadata --format-version 1`: the
// direct dependencies of every workspace member contribute their
// "repository" field. When cargo is not installed, dependency names are
// read from Cargo.toml and resolved through crates.io instead.
package cargo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/discovery"
	"github.com/matzehuels/thankstars/pkg/integrations/crates"
)

const manifest = "Cargo.toml"

// ErrCargoNotInstalled is returned by [CommandFetcher] when no cargo
// executable is on PATH.
var ErrCargoNotInstalled = errors.New("cargo not installed")

// Ecosystem registers the cargo discoverer.
var Ecosystem = &deps.Ecosystem{
	Framework: discovery.Cargo,
	Registry:  "crates.io",
	New:       func(opts deps.Options) discovery.Discoverer { return New(opts) },
}

// MetadataFetcher produces `cargo metadata` JSON for a project.
type MetadataFetcher interface {
	Fetch(ctx context.Context, root string) ([]byte, error)
}

// CommandFetcher runs the cargo binary.
type CommandFetcher struct {
	Binary string // defaults to "cargo"
}

// Fetch runs `cargo metadata --format-version 1` in root.
func (f CommandFetcher) Fetch(ctx context.Context, root string) ([]byte, error) {
	bin := f.Binary
	if bin == "" {
		bin = "cargo"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, ErrCargoNotInstalled
	}

	cmd := exec.CommandContext(ctx, path, "metadata", "--format-version", "1")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &discovery.CommandError{
			Command: bin + " metadata",
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return stdout.Bytes(), nil
}

// Discoverer resolves Rust dependencies.
type Discoverer struct {
	Fetcher  MetadataFetcher
	Registry *crates.Client
	opts     deps.Options
}

// New creates a cargo discoverer that shells out to cargo.
func New(opts deps.Options) *Discoverer {
	opts = opts.WithDefaults()
	return &Discoverer{
		Fetcher:  CommandFetcher{},
		Registry: crates.NewClient(opts.Cache, opts.CacheTTL),
		opts:     opts,
	}
}

// Discover implements discovery.Discoverer.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]discovery.Ref, error) {
	data, err := d.Fetcher.Fetch(ctx, root)
	if errors.Is(err, ErrCargoNotInstalled) {
		d.opts.Logger.Debug("cargo not installed, reading Cargo.toml", "root", root)
		return d.fromManifest(ctx, root)
	}
	if err != nil {
		return nil, err
	}
	return fromMetadata(data)
}

// fromMetadata returns the repositories of the direct dependencies of all
// workspace members, ordered by package id.
func fromMetadata(data []byte) ([]discovery.Ref, error) {
	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, &discovery.ParseError{Path: "cargo metadata", Err: err}
	}

	nodes := make(map[string][]string, len(meta.Resolve.Nodes))
	for _, n := range meta.Resolve.Nodes {
		for _, dep := range n.Deps {
			nodes[n.ID] = append(nodes[n.ID], dep.Pkg)
		}
	}
	direct := make(map[string]struct{})
	for _, member := range meta.WorkspaceMembers {
		for _, id := range nodes[member] {
			direct[id] = struct{}{}
		}
	}

	repos := make(map[string]string, len(meta.Packages))
	for _, p := range meta.Packages {
		repos[p.ID] = p.Repository
	}

	var refs []discovery.Ref
	for _, id := range deps.SortedKeys(direct) {
		if ref, ok := deps.FirstGitHub(manifest, repos[id]); ok {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// fromManifest resolves the crates named in Cargo.toml through crates.io.
// Path and git dependencies are handled locally.
func (d *Discoverer) fromManifest(ctx context.Context, root string) ([]discovery.Ref, error) {
	data, err := deps.ReadFile(root, manifest)
	if err != nil {
		return nil, err
	}
	var cargo cargoFile
	if err := toml.Unmarshal(data, &cargo); err != nil {
		return nil, &discovery.ParseError{Path: filepath.Join(root, manifest), Err: err}
	}

	var refs []discovery.Ref
	crateNames := make(map[string]struct{})
	for _, table := range cargo.tables() {
		for name, spec := range table {
			detail, _ := spec.(map[string]any)
			if git, _ := detail["git"].(string); git != "" {
				if ref, ok := deps.FirstGitHub(manifest, git); ok {
					refs = append(refs, ref)
				}
				continue
			}
			if _, ok := detail["path"]; ok {
				continue
			}
			if pkg, _ := detail["package"].(string); pkg != "" {
				name = pkg
			}
			crateNames[name] = struct{}{}
		}
	}
	slices.SortFunc(refs, func(a, b discovery.Ref) int { return strings.Compare(a.Raw, b.Raw) })

	remote, err := deps.Lookup(ctx, d.opts, "crates.io", deps.SortedKeys(crateNames), d.lookup)
	if err != nil {
		return nil, err
	}
	return append(refs, remote...), nil
}

func (d *Discoverer) lookup(ctx context.Context, name string) ([]discovery.Ref, error) {
	info, err := d.Registry.FetchCrate(ctx, name, d.opts.Refresh)
	if err != nil {
		return nil, err
	}
	if ref, ok := deps.FirstGitHub(manifest, info.Repository, info.HomePage); ok {
		return []discovery.Ref{ref}, nil
	}
	return nil, nil
}

type metadata struct {
	Packages []struct {
		ID         string `json:"id"`
		Repository string `json:"repository"`
	} `json:"packages"`
	Resolve struct {
		Nodes []struct {
			ID   string `json:"id"`
			Deps []struct {
				Pkg string `json:"pkg"`
			} `json:"deps"`
		} `json:"nodes"`
	} `json:"resolve"`
	WorkspaceMembers []string `json:"workspace_members"`
}

type cargoFile struct {
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
	Workspace         struct {
		Dependencies map[string]any `toml:"dependencies"`
	} `toml:"workspace"`
}

func (c cargoFile) tables() []map[string]any {
	return []map[string]any{c.Dependencies, c.DevDependencies, c.BuildDependencies, c.Workspace.Dependencies}
}
