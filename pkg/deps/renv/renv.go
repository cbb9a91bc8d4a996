// Package renv discovers GitHub-installed R packages recorded in renv.lock.
//
// A package counts as GitHub-hosted when its remote type, source or host
// names GitHub, or when one of its URL fields points at github.com. Packages
// from CRAN or Bioconductor without such a link are ignored; renv.lock is
// the only input and no registry is contacted.
package renv

import (
	"context"
	"encoding/json"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/discovery"
)

const lockFile = "renv.lock"

// Ecosystem registers the renv discoverer.
var Ecosystem = &deps.Ecosystem{
	Framework: discovery.Renv,
	New:       func(deps.Options) discovery.Discoverer { return Discoverer{} },
}

// Discoverer reads renv.lock.
type Discoverer struct{}

// Discover implements discovery.Discoverer. Packages are visited in name
// order.
func (Discoverer) Discover(ctx context.Context, root string) ([]discovery.Ref, error) {
	data, err := deps.ReadFile(root, lockFile)
	if err != nil {
		return nil, err
	}
	var lock lockfile
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, &discovery.ParseError{Path: filepath.Join(root, lockFile), Err: err}
	}

	var refs []discovery.Ref
	for _, name := range deps.SortedKeys(lock.Packages) {
		pkg := lock.Packages[name]
		if !pkg.fromGitHub() {
			continue
		}
		if repo, ok := pkg.repository(); ok {
			refs = append(refs, discovery.Ref{Raw: repo.URL, Via: lockFile})
		}
	}
	return refs, nil
}

type lockfile struct {
	Packages map[string]lockPackage `json:"Packages"`
}

type lockPackage struct {
	Package        string `json:"Package"`
	Source         string `json:"Source"`
	Repository     string `json:"Repository"`
	RemoteType     string `json:"RemoteType"`
	RemoteHost     string `json:"RemoteHost"`
	RemoteRepo     string `json:"RemoteRepo"`
	RemoteUsername string `json:"RemoteUsername"`
	RemoteOwner    string `json:"RemoteOwner"`
	RemoteUser     string `json:"RemoteUser"`
	RemoteURL      string `json:"RemoteUrl"`
	URL            string `json:"URL"`
	BugReports     string `json:"BugReports"`
}

func (p lockPackage) fromGitHub() bool {
	for _, v := range []string{p.RemoteType, p.Source, p.RemoteHost} {
		if strings.Contains(strings.ToLower(v), "github") {
			return true
		}
	}
	for _, v := range []string{p.RemoteURL, p.Repository, p.URL, p.BugReports} {
		if strings.Contains(strings.ToLower(v), "github.com") {
			return true
		}
	}
	return false
}

// repository derives owner/repo from the remote fields first, then the
// remote URL, then the DESCRIPTION links.
func (p lockPackage) repository() (discovery.Repository, bool) {
	repo := strings.TrimSpace(p.RemoteRepo)
	if repo != "" {
		for _, owner := range []string{p.RemoteUsername, p.RemoteOwner, p.RemoteUser} {
			if r, ok := discovery.New(owner, repo, lockFile); ok {
				return r, true
			}
		}
		if owner, name, ok := strings.Cut(repo, "/"); ok {
			if r, ok := discovery.New(owner, name, lockFile); ok {
				return r, true
			}
		}
	}

	for _, raw := range []string{p.RemoteURL, p.Repository} {
		if r, ok := fromURL(raw); ok {
			return r, true
		}
	}

	for _, raw := range []string{p.URL, p.BugReports} {
		for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' }) {
			if r, ok := fromURL(part); ok {
				return r, true
			}
		}
	}
	return discovery.Repository{}, false
}

// fromURL accepts github.com links as well as api.github.com/repos/o/r and
// codeload.github.com/o/r archive URLs.
func fromURL(raw string) (discovery.Repository, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return discovery.Repository{}, false
	}
	if r, ok := discovery.ParseVia(raw, lockFile); ok {
		return r, true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return discovery.Repository{}, false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch strings.ToLower(u.Host) {
	case "api.github.com":
		if len(segments) >= 3 && segments[0] == "repos" {
			return discovery.New(segments[1], segments[2], lockFile)
		}
	case "codeload.github.com":
		if len(segments) >= 2 {
			return discovery.New(segments[0], segments[1], lockFile)
		}
	}
	return discovery.Repository{}, false
}
