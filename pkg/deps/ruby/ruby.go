// Package ruby discovers the repositories of a Bundler project's gems.
//
// Gemfile.lock is read in two passes: remotes of GIT sections name their
// repository directly, and gems listed under DEPENDENCIES that come from a
// GEM source are resolved through RubyGems (source_code_uri, then
// homepage_uri, then bug_tracker_uri). A project without Gemfile.lock
// yields nothing.
package ruby

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/discovery"
	"github.com/matzehuels/thankstars/pkg/integrations/rubygems"
)

const lockFile = "Gemfile.lock"

// Ecosystem registers the Ruby discoverer.
var Ecosystem = &deps.Ecosystem{
	Framework: discovery.Ruby,
	Registry:  "rubygems",
	New:       func(opts deps.Options) discovery.Discoverer { return New(opts) },
}

// Discoverer reads Gemfile.lock.
type Discoverer struct {
	Registry *rubygems.Client
	opts     deps.Options
}

// New creates a Ruby discoverer.
func New(opts deps.Options) *Discoverer {
	opts = opts.WithDefaults()
	return &Discoverer{
		Registry: rubygems.NewClient(opts.Cache, opts.CacheTTL),
		opts:     opts,
	}
}

// Discover implements discovery.Discoverer.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]discovery.Ref, error) {
	data, ok, err := deps.ReadOptional(root, lockFile)
	if err != nil || !ok {
		return nil, err
	}
	lock := parseLock(data)

	var refs []discovery.Ref
	for _, remote := range lock.gitRemotes {
		if ref, ok := deps.FirstGitHub(lockFile, remote); ok {
			refs = append(refs, ref)
		}
	}

	var gems []string
	for _, name := range lock.dependencies {
		if lock.registryGems[name] {
			gems = append(gems, name)
		}
	}
	remote, err := deps.Lookup(ctx, d.opts, "rubygems", gems, d.lookup)
	if err != nil {
		return nil, err
	}
	return append(refs, remote...), nil
}

func (d *Discoverer) lookup(ctx context.Context, name string) ([]discovery.Ref, error) {
	info, err := d.Registry.FetchGem(ctx, name, d.opts.Refresh)
	if err != nil {
		return nil, err
	}
	if ref, ok := deps.FirstGitHub(lockFile, info.CandidateURLs()...); ok {
		return []discovery.Ref{ref}, nil
	}
	return nil, nil
}

// lockfile is the subset of Gemfile.lock the discoverer needs.
type lockfile struct {
	gitRemotes   []string        // GIT section remotes, in file order
	registryGems map[string]bool // gems resolved from a GEM source
	dependencies []string        // DEPENDENCIES entries, in file order
}

// parseLock reads a Gemfile.lock. Sections start at column 0; GEM specs are
// indented four spaces ("    rack (3.0.8)"), their own dependencies six.
func parseLock(data []byte) lockfile {
	lock := lockfile{registryGems: make(map[string]bool)}
	section := ""

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			section = ""
			continue
		}
		if !strings.HasPrefix(line, " ") {
			section = trimmed
			continue
		}

		switch section {
		case "GIT":
			if remote, ok := strings.CutPrefix(trimmed, "remote:"); ok {
				lock.gitRemotes = append(lock.gitRemotes, strings.TrimSpace(remote))
			}
		case "GEM":
			if indent(line) == 4 {
				lock.registryGems[gemName(trimmed)] = true
			}
		case "DEPENDENCIES":
			if indent(line) == 2 {
				lock.dependencies = append(lock.dependencies, gemName(trimmed))
			}
		}
	}
	return lock
}

// gemName strips the version or constraint and Bundler's "!" marker from
// "rails (~> 7.0)!" style entries.
func gemName(entry string) string {
	name, _, _ := strings.Cut(entry, " ")
	return strings.TrimSuffix(name, "!")
}

func indent(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}
