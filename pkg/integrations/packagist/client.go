package packagist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/thankstars/pkg/cache"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

// PackageInfo holds the source links of a Composer package's latest stable
// version on Packagist.
type PackageInfo struct {
	Name       string `json:"name"`                 // Package name (e.g., "symfony/console")
	Version    string `json:"version"`              // Latest stable version (e.g., "6.3.0")
	Repository string `json:"repository,omitempty"` // Normalized source.url (empty if not provided)
	Support    string `json:"support,omitempty"`    // support.source URL (may be empty)
	HomePage   string `json:"homepage,omitempty"`   // Homepage URL (may be empty)
}

// CandidateURLs returns the package's links in lookup order.
func (p *PackageInfo) CandidateURLs() []string {
	var urls []string
	for _, u := range []string{p.Repository, p.Support, p.HomePage} {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// Client provides access to the Packagist metadata API.
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Packagist client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "packagist:", cacheTTL, nil),
		baseURL: "https://repo.packagist.org",
	}
}

// WithBaseURL points the client at a different Composer repository.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// FetchPackage retrieves metadata for a "vendor/name" package.
//
// Returns [integrations.ErrNotFound] if the package does not exist.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = strings.ToLower(strings.TrimSpace(pkg))

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *PackageInfo) error {
	var data p2Response
	if err := c.Get(ctx, fmt.Sprintf("%s/p2/%s.json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: packagist package %s", err, pkg)
		}
		return err
	}

	versions, ok := data.Packages[pkg]
	if !ok || len(versions) == 0 {
		return fmt.Errorf("%w: no versions found for %s", integrations.ErrNotFound, pkg)
	}

	v := latestStable(expand(versions))
	*info = PackageInfo{
		Name:       v.Name,
		Version:    v.Version,
		Repository: integrations.NormalizeRepoURL(v.Source.URL),
		Support:    v.Support.Source,
		HomePage:   v.Homepage,
	}
	return nil
}

// expand undoes the p2 "minified" encoding, where each entry only lists the
// fields that changed since the previous one.
func expand(raw []p2Version) []p2Version {
	out := make([]p2Version, len(raw))
	var cur p2Version
	for i, v := range raw {
		cur.Name, cur.Version = pick(v.Name, cur.Name), v.Version
		if v.hasHomepage {
			cur.Homepage = v.Homepage
		}
		if v.hasSource {
			cur.Source = v.Source
		}
		if v.hasSupport {
			cur.Support = v.Support
		}
		out[i] = cur
	}
	return out
}

func pick(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func latestStable(versions []p2Version) p2Version {
	for _, v := range versions {
		lv := strings.ToLower(v.Version)
		if strings.Contains(lv, "dev") {
			continue
		}
		if strings.Contains(strings.TrimPrefix(lv, "v"), ".") {
			return v
		}
	}
	return versions[0]
}

type p2Response struct {
	Packages map[string][]p2Version `json:"packages"`
}

type p2Version struct {
	Name     string
	Version  string
	Homepage string
	Source   struct {
		URL string `json:"url"`
	}
	Support struct {
		Source string `json:"source"`
	}

	hasHomepage, hasSource, hasSupport bool
}

func (v *p2Version) UnmarshalJSON(b []byte) error {
	var r map[string]json.RawMessage
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}

	_ = json.Unmarshal(r["name"], &v.Name)
	_ = json.Unmarshal(r["version"], &v.Version)

	// "__unset" marks a field removed since the previous version.
	if raw, ok := r["homepage"]; ok {
		v.hasHomepage = true
		if json.Unmarshal(raw, &v.Homepage) != nil || v.Homepage == "__unset" {
			v.Homepage = ""
		}
	}
	if raw, ok := r["source"]; ok {
		v.hasSource = true
		_ = json.Unmarshal(raw, &v.Source)
	}
	if raw, ok := r["support"]; ok {
		v.hasSupport = true
		_ = json.Unmarshal(raw, &v.Support)
	}
	return nil
}
