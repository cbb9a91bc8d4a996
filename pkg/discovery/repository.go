package discovery

import (
	"net/url"
	"strings"
)

const githubHost = "github.com"

// Repository is a GitHub repository referenced by a project dependency.
// Values are immutable once constructed; identity is [Repository.Key].
type Repository struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Via   string `json:"via,omitempty"` // file or registry that produced the reference
}

// Key returns the identity of r: "owner/name", case-sensitive.
func (r Repository) Key() string {
	return r.Owner + "/" + r.Name
}

// String returns the canonical URL.
func (r Repository) String() string {
	return r.URL
}

// New builds a Repository from an owner and name known to be on GitHub.
// Trailing ".git" suffixes are removed from name. It reports false when
// either part is empty after trimming.
func New(owner, name, via string) (Repository, bool) {
	owner = strings.TrimSpace(owner)
	name = strings.TrimSpace(name)
	for strings.HasSuffix(name, ".git") {
		name = strings.TrimSuffix(name, ".git")
	}
	if owner == "" || name == "" {
		return Repository{}, false
	}
	return Repository{
		Owner: owner,
		Name:  name,
		URL:   "https://github.com/" + owner + "/" + name,
		Via:   via,
	}, true
}

// Parse recognises a GitHub repository reference. Forms are tried in order:
//
//	github:owner/repo
//	git+https://github.com/owner/repo.git   (git+ prefix stripped first)
//	https://github.com/owner/repo/tree/main (host must be github.com)
//	owner/repo
//	git@github.com:owner/repo.git
//
// Anything else, including other hosts and file: URLs, is not a match.
// Parse never returns an error: callers skip candidates that do not match.
func Parse(input string) (Repository, bool) {
	return ParseVia(input, "")
}

// ParseVia is Parse with a provenance label attached to the result.
func ParseVia(input, via string) (Repository, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Repository{}, false
	}

	if rest, ok := strings.CutPrefix(s, "github:"); ok {
		return parseShorthand(rest, via)
	}

	s = strings.TrimPrefix(s, "git+")

	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		return parseURL(u, via)
	}

	if r, ok := parseShorthand(s, via); ok {
		return r, true
	}

	if rest, ok := strings.CutPrefix(s, "git@github.com:"); ok {
		return parsePath(rest, via)
	}

	return Repository{}, false
}

func parseURL(u *url.URL, via string) (Repository, bool) {
	if strings.EqualFold(u.Scheme, "file") {
		return Repository{}, false
	}
	if !strings.EqualFold(u.Hostname(), githubHost) {
		return Repository{}, false
	}
	return parsePath(u.Path, via)
}

// parsePath takes the first two non-empty segments of a github.com path.
func parsePath(path string, via string) (Repository, bool) {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
		if len(segments) == 2 {
			break
		}
	}
	if len(segments) < 2 {
		return Repository{}, false
	}
	return New(segments[0], segments[1], via)
}

// parseShorthand accepts exactly two non-empty segments. Segments that
// could only come from a URL or SSH remote (':' '@' or whitespace) are
// rejected so those forms reach their own parsers.
func parseShorthand(s string, via string) (Repository, bool) {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) != 2 {
		return Repository{}, false
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, ":@ \t\n") {
			return Repository{}, false
		}
	}
	return New(parts[0], parts[1], via)
}
