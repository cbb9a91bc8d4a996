package crates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/thankstars/pkg/buildinfo"
	"github.com/matzehuels/thankstars/pkg/cache"
	errs "github.com/matzehuels/thankstars/pkg/errors"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

// CrateInfo holds the source links of a Rust crate from crates.io.
//
// Zero values: All string fields are empty.
// This struct is safe for concurrent reads after construction.
type CrateInfo struct {
	Name       string `json:"name"`                 // Crate name (e.g., "serde", never empty in valid info)
	Version    string `json:"version"`              // Latest version (e.g., "1.0.193", never empty in valid info)
	Repository string `json:"repository,omitempty"` // Repository URL (may be empty)
	HomePage   string `json:"homepage,omitempty"`   // Homepage URL (may be empty)
}

// Client provides access to the crates.io package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
//
// Note: crates.io requires a User-Agent header; this client sets one automatically.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client with the given cache backend.
//
// Parameters:
//   - backend: Cache backend for HTTP response caching (use cache.NewNullCache() for no caching)
//   - cacheTTL: How long responses are cached (typical: 1-24 hours)
//
// The client includes a User-Agent header as required by crates.io API policy.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	headers := map[string]string{
		"User-Agent": buildinfo.UserAgent(),
	}
	return &Client{
		Client:  integrations.NewClient(backend, "crates:", cacheTTL, headers),
		baseURL: "https://crates.io/api/v1",
	}
}

// WithBaseURL points the client at a different API root (mirror or test server).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// FetchCrate retrieves metadata for a Rust crate from crates.io.
//
// The crate parameter must match the published crate name.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
// If refresh is false, cached data is returned if available and not expired.
//
// Returns:
//   - CrateInfo populated with metadata on success
//   - [integrations.ErrNotFound] if the crate doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//
// The returned CrateInfo pointer is never nil if err is nil.
func (c *Client) FetchCrate(ctx context.Context, crate string, refresh bool) (*CrateInfo, error) {
	if err := errs.ValidateCratesPackageName(crate); err != nil {
		return nil, err
	}
	var info CrateInfo
	err := c.Cached(ctx, crate, refresh, &info, func() error {
		return c.fetch(ctx, crate, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, crate string, info *CrateInfo) error {
	var data crateResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/crates/%s", c.baseURL, crate), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: crate %s", err, crate)
		}
		return err
	}

	*info = CrateInfo{
		Name:       data.Crate.Name,
		Version:    data.Crate.MaxVersion,
		Repository: integrations.NormalizeRepoURL(data.Crate.Repository),
		HomePage:   data.Crate.HomePage,
	}
	return nil
}

type crateResponse struct {
	Crate struct {
		Name       string `json:"name"`
		MaxVersion string `json:"max_version"`
		Repository string `json:"repository"`
		HomePage   string `json:"homepage"`
	} `json:"crate"`
}
