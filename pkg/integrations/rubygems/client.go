package rubygems

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/thankstars/pkg/cache"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

// GemInfo holds the project links of a Ruby gem from RubyGems.
//
// Gem names are normalized to lowercase.
//
// Zero values: All string fields are empty.
// This struct is safe for concurrent reads after construction.
type GemInfo struct {
	Name          string `json:"name"`                      // Gem name, normalized lowercase (e.g., "rails")
	Version       string `json:"version"`                   // Current version (e.g., "7.1.2")
	SourceCodeURI string `json:"source_code_uri,omitempty"` // Source code repository URL (may be empty)
	HomepageURI   string `json:"homepage_uri,omitempty"`    // Homepage URL (may be empty)
	BugTrackerURI string `json:"bug_tracker_uri,omitempty"` // Issue tracker URL (may be empty)
}

// CandidateURLs returns the gem's links in the order they should be tried
// when looking for a source repository.
func (g *GemInfo) CandidateURLs() []string {
	var urls []string
	for _, u := range []string{g.SourceCodeURI, g.HomepageURI, g.BugTrackerURI} {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// Client provides access to the RubyGems package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a RubyGems client with the given cache backend.
//
// Parameters:
//   - backend: Cache backend for HTTP response caching (use cache.NewNullCache() for no caching)
//   - cacheTTL: How long responses are cached (typical: 1-24 hours)
//
// The returned Client is safe for concurrent use.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "rubygems:", cacheTTL, nil),
		baseURL: "https://rubygems.org/api/v1",
	}
}

// WithBaseURL points the client at a different API root (mirror or test server).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// FetchGem retrieves metadata for a Ruby gem from RubyGems.
//
// The gem parameter is normalized to lowercase with whitespace trimmed.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
// If refresh is false, cached data is returned if available and not expired.
//
// Returns:
//   - GemInfo populated with metadata on success
//   - [integrations.ErrNotFound] if the gem doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//   - Other errors for JSON decoding failures
//
// The returned GemInfo pointer is never nil if err is nil.
func (c *Client) FetchGem(ctx context.Context, gem string, refresh bool) (*GemInfo, error) {
	gem = strings.ToLower(strings.TrimSpace(gem))

	var info GemInfo
	err := c.Cached(ctx, gem, refresh, &info, func() error {
		return c.fetch(ctx, gem, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, gem string, info *GemInfo) error {
	var data gemResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/gems/%s.json", c.baseURL, gem), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: gem %s", err, gem)
		}
		return err
	}

	*info = GemInfo{
		Name:          strings.ToLower(data.Name),
		Version:       data.Version,
		SourceCodeURI: integrations.NormalizeRepoURL(data.SourceCodeURI),
		HomepageURI:   data.HomepageURI,
		BugTrackerURI: data.BugTrackerURI,
	}
	return nil
}

type gemResponse struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	SourceCodeURI string `json:"source_code_uri"`
	HomepageURI   string `json:"homepage_uri"`
	BugTrackerURI string `json:"bug_tracker_uri"`
}
