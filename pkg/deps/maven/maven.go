// Package maven discovers the repositories of the dependencies declared in
// a Maven build.
//
// The root pom.xml and every module it lists (recursively, including
// profile modules) are read. Versions referencing ${properties} are
// expanded; an empty or unresolvable version asks Maven Central for the
// latest release, and version ranges are skipped. Each artifact's POM is
// then fetched and the first GitHub link among its url and scm elements is
// reported, tagged with the pom.xml path that declared it.
package maven

import (
	"context"
	"encoding/xml"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/discovery"
	central "github.com/matzehuels/thankstars/pkg/integrations/maven"
)

const pomFile = "pom.xml"

// Ecosystem registers the Maven discoverer.
var Ecosystem = &deps.Ecosystem{
	Framework: discovery.Maven,
	Registry:  "maven",
	New:       func(opts deps.Options) discovery.Discoverer { return New(opts) },
}

// Discoverer walks a Maven multi-module build.
type Discoverer struct {
	Registry *central.Client
	opts     deps.Options
}

// New creates a Maven discoverer.
func New(opts deps.Options) *Discoverer {
	opts = opts.WithDefaults()
	return &Discoverer{
		Registry: central.NewClient(opts.Cache, opts.CacheTTL),
		opts:     opts,
	}
}

// coordinate is "groupId:artifactId:version" with an optionally empty version.
type coordinate struct {
	group, artifact, version string
}

func (c coordinate) String() string {
	return c.group + ":" + c.artifact + ":" + c.version
}

// Discover implements discovery.Discoverer. Coordinates are looked up in
// sorted order.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]discovery.Ref, error) {
	w := &walker{
		root:    root,
		visited: make(map[string]bool),
		vias:    make(map[coordinate]string),
	}
	if err := w.walk(root); err != nil {
		return nil, err
	}

	coords := make([]coordinate, 0, len(w.vias))
	for c := range w.vias {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, func(a, b coordinate) int { return strings.Compare(a.String(), b.String()) })

	byName := make(map[string]coordinate, len(coords))
	names := make([]string, len(coords))
	for i, c := range coords {
		names[i] = c.String()
		byName[names[i]] = c
	}

	return deps.Lookup(ctx, d.opts, "maven", names, func(ctx context.Context, name string) ([]discovery.Ref, error) {
		c := byName[name]
		project, err := d.Registry.FetchProject(ctx, c.group, c.artifact, c.version, d.opts.Refresh)
		if err != nil {
			return nil, err
		}
		if ref, ok := deps.FirstGitHub(w.vias[c], project.CandidateURLs()...); ok {
			return []discovery.Ref{ref}, nil
		}
		return nil, nil
	})
}

type walker struct {
	root    string
	visited map[string]bool
	vias    map[coordinate]string // first pom.xml declaring each coordinate
}

// walk reads dir/pom.xml and the modules it lists. Missing module POMs are
// ignored; a directory is read at most once.
func (w *walker) walk(dir string) error {
	dir = filepath.Clean(dir)
	if w.visited[dir] {
		return nil
	}
	w.visited[dir] = true

	rel, err := filepath.Rel(w.root, filepath.Join(dir, pomFile))
	if err != nil {
		rel = filepath.Join(dir, pomFile)
	}
	via := filepath.ToSlash(rel)

	data, ok, err := deps.ReadOptional(dir, pomFile)
	if err != nil || !ok {
		return err
	}
	var pom pomProject
	if err := xml.Unmarshal(data, &pom); err != nil {
		return &discovery.ParseError{Path: filepath.Join(dir, pomFile), Err: err}
	}

	for _, dep := range pom.dependencies() {
		c, ok := resolve(&pom, dep)
		if !ok {
			continue
		}
		if _, seen := w.vias[c]; !seen {
			w.vias[c] = via
		}
	}

	for _, module := range pom.modules() {
		module = strings.TrimSpace(module)
		if module == "" {
			continue
		}
		next := module
		if !filepath.IsAbs(next) {
			next = filepath.Join(dir, next)
		}
		if err := w.walk(next); err != nil {
			return err
		}
	}
	return nil
}

// resolve expands a dependency's coordinate. Ranges and coordinates with
// unresolved group or artifact are rejected; an unresolved version becomes
// empty so the latest release is used.
func resolve(pom *pomProject, dep pomDependency) (coordinate, bool) {
	c := coordinate{
		group:    pom.expand(dep.GroupID),
		artifact: pom.expand(dep.ArtifactID),
		version:  pom.expand(dep.Version),
	}
	if c.group == "" || c.artifact == "" || strings.Contains(c.group+c.artifact, "${") {
		return coordinate{}, false
	}
	if strings.ContainsAny(c.version, "[(") {
		return coordinate{}, false
	}
	if strings.Contains(c.version, "${") {
		c.version = ""
	}
	return c, true
}
