package goproxy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/mod/module"

	"github.com/matzehuels/thankstars/pkg/cache"
	errs "github.com/matzehuels/thankstars/pkg/errors"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

// ModuleInfo holds the origin of one Go module version as reported by the
// module proxy's .info endpoint.
//
// Repository is empty when the proxy does not record an origin, which is the
// case for versions fetched before origin tracking existed.
type ModuleInfo struct {
	Path       string `json:"path"`                 // Module path (e.g., "gopkg.in/yaml.v3")
	Version    string `json:"version"`              // Resolved version (e.g., "v3.0.1")
	VCS        string `json:"vcs,omitempty"`        // Version control system (e.g., "git")
	Repository string `json:"repository,omitempty"` // Normalized source repository URL
}

// Client provides access to the Go module proxy API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Go module proxy client with the given cache backend.
//
// Parameters:
//   - backend: Cache backend for HTTP response caching (use cache.NewNullCache() for no caching)
//   - cacheTTL: How long responses are cached (typical: 1-24 hours)
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "goproxy:", cacheTTL, nil),
		baseURL: "https://proxy.golang.org",
	}
}

// WithBaseURL points the client at a different proxy (GOPROXY mirror or test server).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// FetchModule retrieves the origin of a Go module version.
//
// The mod parameter should be a full module path (e.g., "gopkg.in/yaml.v3").
// Module paths and versions are escaped per the module proxy protocol.
// An empty version asks for @latest.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns:
//   - ModuleInfo on success (Repository may be empty)
//   - [integrations.ErrNotFound] if the module or version doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//   - An error if the module path or version is not valid
func (c *Client) FetchModule(ctx context.Context, mod, version string, refresh bool) (*ModuleInfo, error) {
	mod = strings.TrimSpace(mod)
	if err := errs.ValidateGoModulePath(mod); err != nil {
		return nil, err
	}
	url, err := c.infoURL(mod, version)
	if err != nil {
		return nil, err
	}

	key := mod + "@" + version
	if version == "" {
		key = mod + "@latest"
	}

	var info ModuleInfo
	err = c.Cached(ctx, key, refresh, &info, func() error {
		return c.fetch(ctx, mod, url, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) infoURL(mod, version string) (string, error) {
	escaped, err := module.EscapePath(mod)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidPackage, err, "invalid module path %q", mod)
	}
	if version == "" {
		return fmt.Sprintf("%s/%s/@latest", c.baseURL, escaped), nil
	}
	ev, err := module.EscapeVersion(version)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidPackage, err, "invalid version %q for %s", version, mod)
	}
	return fmt.Sprintf("%s/%s/@v/%s.info", c.baseURL, escaped, ev), nil
}

func (c *Client) fetch(ctx context.Context, mod, url string, info *ModuleInfo) error {
	var data infoResponse
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: go module %s", err, mod)
		}
		return err
	}

	*info = ModuleInfo{
		Path:    mod,
		Version: data.Version,
	}
	if data.Origin != nil {
		info.VCS = data.Origin.VCS
		info.Repository = integrations.NormalizeRepoURL(data.Origin.URL)
	}
	return nil
}

type infoResponse struct {
	Version string `json:"Version"`
	Time    string `json:"Time"`
	Origin  *struct {
		VCS  string `json:"VCS"`
		URL  string `json:"URL"`
		Ref  string `json:"Ref"`
		Hash string `json:"Hash"`
	} `json:"Origin"`
}
