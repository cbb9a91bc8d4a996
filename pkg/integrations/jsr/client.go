package jsr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/matzehuels/thankstars/pkg/cache"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

// PackageInfo holds the repository link shown on a JSR package page.
type PackageInfo struct {
	Name       string `json:"name"`
	Repository string `json:"repository,omitempty"` // empty when the page links no GitHub repository
}

// Client reads package pages from the JavaScript Registry.
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a JSR client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "jsr:", cacheTTL, map[string]string{"Accept": "text/html,application/xhtml+xml"}),
		baseURL: "https://jsr.io",
	}
}

// WithBaseURL points the client at a different registry (test server).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// FetchPackage loads the package page of pkg ("@scope/name") and extracts
// the "GitHub repository" link.
//
// Returns [integrations.ErrNotFound] if the package does not exist.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = strings.TrimLeft(strings.TrimSpace(pkg), "/")

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		page, err := c.GetText(ctx, c.packageURL(pkg))
		if err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: jsr package %s", err, pkg)
			}
			return err
		}
		info = PackageInfo{Name: pkg, Repository: ExtractGitHubLink(page)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) packageURL(pkg string) string {
	if rest, ok := strings.CutPrefix(pkg, "@"); ok {
		return c.baseURL + "/%40" + rest
	}
	return c.baseURL + "/" + pkg
}

// ExtractGitHubLink returns the href of the first anchor labelled
// "GitHub repository", or "" if the page has none.
func ExtractGitHubLink(page string) string {
	z := html.NewTokenizer(strings.NewReader(page))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "a" {
				continue
			}
			var label, href string
			for _, a := range tok.Attr {
				switch a.Key {
				case "aria-label":
					label = a.Val
				case "href":
					href = a.Val
				}
			}
			if label == "GitHub repository" && href != "" {
				return href
			}
		}
	}
}

// ParseSpecifier extracts the package name from a "jsr:@scope/name@^1.0"
// specifier, dropping the version constraint.
func ParseSpecifier(spec string) (string, bool) {
	rest, ok := strings.CutPrefix(spec, "jsr:")
	if !ok {
		return "", false
	}
	return NormalizeName(rest)
}

// NormalizeName strips a trailing "@version" from a package name. A leading
// "@" (the scope marker) is kept.
func NormalizeName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if idx := strings.LastIndex(name, "@"); idx > 0 && !strings.Contains(name[idx+1:], "/") {
		name = name[:idx]
	}
	return name, true
}
