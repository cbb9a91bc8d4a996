package npm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/thankstars/pkg/cache"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

// PackageInfo holds the source links of an npm package's latest version.
type PackageInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Repository string `json:"repository,omitempty"` // normalized repository URL
	HomePage   string `json:"homepage,omitempty"`
	Bugs       string `json:"bugs,omitempty"`
}

// Client provides access to the npm registry API.
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates an npm registry client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "npm:", cacheTTL, nil),
		baseURL: "https://registry.npmjs.org",
	}
}

// WithBaseURL points the client at a different registry (mirror or test server).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// FetchPackage retrieves metadata for the latest version of pkg. Scoped
// names ("@scope/name") are supported.
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
	var data registryResponse
	if err := c.Get(ctx, c.baseURL+"/"+escapeName(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	latest := data.DistTags.Latest
	v, ok := data.Versions[latest]
	if !ok {
		// Some packages only carry top-level metadata.
		v = versionDetails{Repository: data.Repository, HomePage: data.HomePage, Bugs: data.Bugs}
	}

	*info = PackageInfo{
		Name:       data.Name,
		Version:    latest,
		Repository: integrations.NormalizeRepoURL(ExtractField(v.Repository, "url")),
		HomePage:   v.HomePage,
		Bugs:       ExtractField(v.Bugs, "url"),
	}
	return nil
}

// ExtractField reads a package.json field that may be either a plain string
// or an object such as {"type": "git", "url": "..."}.
func ExtractField(v any, field string) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val[field].(string); ok {
			return s
		}
	}
	return ""
}

func escapeName(pkg string) string {
	if strings.HasPrefix(pkg, "@") {
		return strings.Replace(pkg, "/", "%2F", 1)
	}
	return pkg
}

type registryResponse struct {
	Name       string                    `json:"name"`
	DistTags   distTags                  `json:"dist-tags"`
	Versions   map[string]versionDetails `json:"versions"`
	Repository any                       `json:"repository"`
	HomePage   string                    `json:"homepage"`
	Bugs       any                       `json:"bugs"`
}

type distTags struct {
	Latest string `json:"latest"`
}

type versionDetails struct {
	Repository any    `json:"repository"`
	HomePage   string `json:"homepage"`
	Bugs       any    `json:"bugs"`
}
