package integrations

import (
	"maps"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/thankstars/pkg/cache"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = cache.ErrNotFound

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = cache.ErrNetwork
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizePkgName converts a package name to its canonical form.
// Applies lowercase and replaces underscores with hyphens, following PEP 503
// normalization rules used by PyPI and other registries.
func NormalizePkgName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
	"ssh://git@github.com/", "https://github.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS form.
// Handles git@, git://, ssh:// and git+ prefixes, and removes .git suffixes.
// Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	return strings.TrimSuffix(s, ".git")
}

var repoURLKeys = []string{"Source", "Source Code", "Repository", "Code", "Homepage"}

// GitHubURLPattern matches github.com URLs and captures owner (group 1) and
// repository (group 2).
var GitHubURLPattern = regexp.MustCompile(`(?i)github\.com[/:]([^/\s]+)/([^/\s#?]+)`)

// ExtractRepoURL finds a GitHub owner and repo from a registry's project URLs.
// It searches through urls using standard keys (Source, Repository, Code, Homepage),
// then any remaining URL in key order, and falls back to homepage. The re parameter should match
// URLs and capture owner (group 1) and repo name (group 2).
// Returns ok=false if no valid repository URL is found.
func ExtractRepoURL(re *regexp.Regexp, urls map[string]string, homepage string) (owner, repo string, ok bool) {
	match := func(u string) bool {
		if strings.Contains(u, "/sponsors/") {
			return false
		}
		if m := re.FindStringSubmatch(u); len(m) >= 3 {
			owner = m[1]
			repo = strings.TrimSuffix(m[2], ".git")
			ok = true
			return true
		}
		return false
	}

	for _, key := range repoURLKeys {
		if u, exists := urls[key]; exists && match(u) {
			return
		}
	}
	for _, key := range slices.Sorted(maps.Keys(urls)) {
		if match(urls[key]) {
			return
		}
	}
	if homepage != "" {
		match(homepage)
	}
	return
}

// PathEscape percent-encodes a single URL path segment.
func PathEscape(s string) string { return url.PathEscape(s) }
