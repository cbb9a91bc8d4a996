// Package gradle discovers GitHub-hosted artifacts in a Gradle build.
//
// Coordinates are read from gradle.lockfile and from "group:artifact:version"
// string literals in the build and settings scripts (Groovy or Kotlin DSL).
// Only groups that encode a GitHub account map to a repository:
// com.github.<owner>[.*] and io.github.<owner>[.*] become <owner>/<artifact>.
package gradle

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/discovery"
)

const lockFile = "gradle.lockfile"

// buildFiles are scanned for coordinates after the lockfile, in order.
var buildFiles = []string{"build.gradle", "build.gradle.kts", "settings.gradle", "settings.gradle.kts"}

// coordinatePattern matches quoted "group:artifact:version" literals.
var coordinatePattern = regexp.MustCompile(`['"]([^:'"]+):([^:'"]+):[^'"]+['"]`)

// Ecosystem registers the Gradle discoverer.
var Ecosystem = &deps.Ecosystem{
	Framework: discovery.Gradle,
	New:       func(deps.Options) discovery.Discoverer { return Discoverer{} },
}

// Discoverer reads Gradle lockfiles and build scripts. It never contacts a
// registry.
type Discoverer struct{}

// Discover implements discovery.Discoverer.
func (Discoverer) Discover(ctx context.Context, root string) ([]discovery.Ref, error) {
	var refs []discovery.Ref

	data, ok, err := deps.ReadOptional(root, lockFile)
	if err != nil {
		return nil, err
	}
	if ok {
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			coordinate, _, _ := strings.Cut(line, "=")
			group, rest, _ := strings.Cut(coordinate, ":")
			artifact, _, _ := strings.Cut(rest, ":")
			if ref, ok := refFor(group, artifact, lockFile); ok {
				refs = append(refs, ref)
			}
		}
	}

	for _, name := range buildFiles {
		data, ok, err := deps.ReadOptional(root, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, m := range coordinatePattern.FindAllStringSubmatch(string(data), -1) {
			if ref, ok := refFor(m[1], m[2], name); ok {
				refs = append(refs, ref)
			}
		}
	}
	return refs, nil
}

// refFor maps a GitHub-derived Maven group and artifact to a repository.
func refFor(group, artifact, via string) (discovery.Ref, bool) {
	group, artifact = strings.TrimSpace(group), strings.TrimSpace(artifact)
	var rest string
	switch {
	case strings.HasPrefix(group, "com.github."):
		rest = strings.TrimPrefix(group, "com.github.")
	case strings.HasPrefix(group, "io.github."):
		rest = strings.TrimPrefix(group, "io.github.")
	default:
		return discovery.Ref{}, false
	}
	owner, _, _ := strings.Cut(rest, ".")
	repo, ok := discovery.New(owner, artifact, via)
	if !ok {
		return discovery.Ref{}, false
	}
	return discovery.Ref{Raw: repo.URL, Via: via}, true
}
