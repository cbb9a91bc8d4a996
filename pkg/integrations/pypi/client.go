package pypi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/thankstars/pkg/cache"
	errs "github.com/matzehuels/thankstars/pkg/errors"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

// PackageInfo holds the project links of a Python package from PyPI.
//
// Package names are normalized following PEP 503 (lowercase, underscores→hyphens).
//
// Zero values: All string fields are empty, ProjectURLs is nil.
// This struct is safe for concurrent reads after construction.
type PackageInfo struct {
	Name        string            `json:"name"`                   // Package name as published (e.g., "Flask")
	Version     string            `json:"version"`                // Latest version (e.g., "3.0.0")
	ProjectURLs map[string]string `json:"project_urls,omitempty"` // Project URLs from metadata (e.g., "Source", "Homepage")
	HomePage    string            `json:"home_page,omitempty"`    // Legacy Home-page field (may be empty)
}

// GitHubRepo returns the GitHub owner and repository named by the package's
// project URLs, preferring Source/Repository/Code links over the homepage.
func (p *PackageInfo) GitHubRepo() (owner, repo string, ok bool) {
	return integrations.ExtractRepoURL(integrations.GitHubURLPattern, p.ProjectURLs, p.HomePage)
}

// Client provides access to the PyPI package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a PyPI client with the given cache backend.
//
// Parameters:
//   - backend: Cache backend for HTTP response caching (use cache.NewNullCache() for no caching)
//   - cacheTTL: How long responses are cached (typical: 1-24 hours)
//
// The returned Client is safe for concurrent use.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "pypi:", cacheTTL, nil),
		baseURL: "https://pypi.org/pypi",
	}
}

// WithBaseURL points the client at a different index (mirror or test server).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// FetchPackage retrieves metadata for a Python package from PyPI.
//
// The pkg parameter is normalized automatically (case-insensitive, underscores→hyphens).
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
// If refresh is false, cached data is returned if available and not expired.
//
// Returns:
//   - PackageInfo populated with metadata on success
//   - [integrations.ErrNotFound] if the package doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//   - Other errors for JSON decoding failures
//
// The returned PackageInfo pointer is never nil if err is nil.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = integrations.NormalizePkgName(pkg)
	if err := errs.ValidatePythonPackageName(pkg); err != nil {
		return nil, err
	}

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
	var data apiResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s", err, pkg)
		}
		return err
	}

	urls := make(map[string]string, len(data.Info.ProjectURLs))
	for k, v := range data.Info.ProjectURLs {
		if s, ok := v.(string); ok {
			urls[k] = s
		}
	}

	*info = PackageInfo{
		Name:        data.Info.Name,
		Version:     data.Info.Version,
		ProjectURLs: urls,
		HomePage:    data.Info.HomePage,
	}
	return nil
}

type apiResponse struct {
	Info apiInfo `json:"info"`
}

type apiInfo struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	ProjectURLs map[string]any `json:"project_urls"`
	HomePage    string         `json:"home_page"`
}
