// Package composer discovers the repositories of a PHP project's Composer
// packages.
//
// composer.lock is authoritative: each locked package (runtime and dev)
// contributes the first GitHub link among source.url, support.source and
// homepage. Projects without a lockfile fall back to the packages required
// in composer.json, resolved through Packagist.
package composer

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/discovery"
	"github.com/matzehuels/thankstars/pkg/integrations/packagist"
)

const (
	lockFile = "composer.lock"
	manifest = "composer.json"
)

// Ecosystem registers the Composer discoverer.
var Ecosystem = &deps.Ecosystem{
	Framework: discovery.Composer,
	Registry:  "packagist",
	New:       func(opts deps.Options) discovery.Discoverer { return New(opts) },
}

// Discoverer reads composer.lock or composer.json.
type Discoverer struct {
	Registry *packagist.Client
	opts     deps.Options
}

// New creates a Composer discoverer.
func New(opts deps.Options) *Discoverer {
	opts = opts.WithDefaults()
	return &Discoverer{
		Registry: packagist.NewClient(opts.Cache, opts.CacheTTL),
		opts:     opts,
	}
}

// Discover implements discovery.Discoverer.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]discovery.Ref, error) {
	data, ok, err := deps.ReadOptional(root, lockFile)
	if err != nil {
		return nil, err
	}
	if ok {
		return fromLock(root, data)
	}

	data, ok, err = deps.ReadOptional(root, manifest)
	if err != nil || !ok {
		return nil, err
	}
	var m composerJSON
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &discovery.ParseError{Path: filepath.Join(root, manifest), Err: err}
	}

	names := make(map[string]struct{})
	for _, section := range []map[string]string{m.Require, m.RequireDev} {
		for name := range section {
			if isPackage(name) {
				names[strings.ToLower(name)] = struct{}{}
			}
		}
	}
	return deps.Lookup(ctx, d.opts, "packagist", deps.SortedKeys(names), d.lookup)
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

// fromLock returns one ref per locked package, runtime packages first.
func fromLock(root string, data []byte) ([]discovery.Ref, error) {
	var lock composerLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, &discovery.ParseError{Path: filepath.Join(root, lockFile), Err: err}
	}

	var refs []discovery.Ref
	for _, pkg := range append(lock.Packages, lock.PackagesDev...) {
		if ref, ok := deps.FirstGitHub(lockFile, pkg.Source.URL, pkg.Support.Source, pkg.Homepage); ok {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// isPackage excludes platform requirements such as php, ext-json and
// composer-plugin-api.
func isPackage(name string) bool {
	return strings.Contains(name, "/")
}

type composerLock struct {
	Packages    []lockedPackage `json:"packages"`
	PackagesDev []lockedPackage `json:"packages-dev"`
}

type lockedPackage struct {
	Name   string `json:"name"`
	Source struct {
		URL string `json:"url"`
	} `json:"source"`
	Support  supportLinks `json:"support"`
	Homepage string       `json:"homepage"`
}

// supportLinks tolerates the empty JSON array Composer writes for packages
// without support metadata.
type supportLinks struct {
	Source string `json:"source"`
}

func (s *supportLinks) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	s.Source, _ = m["source"].(string)
	return nil
}

type composerJSON struct {
	Require    map[string]string `json:"require"`
	RequireDev map[string]string `json:"require-dev"`
}
