package pubdev

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/thankstars/pkg/cache"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

// PackageInfo holds the links from the latest pubspec of a Dart package.
type PackageInfo struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	Repository    string `json:"repository,omitempty"`
	HomePage      string `json:"homepage,omitempty"`
	IssueTracker  string `json:"issue_tracker,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

// CandidateURLs returns repository, homepage, issue tracker and
// documentation links, trimmed and de-duplicated case-insensitively.
func (p *PackageInfo) CandidateURLs() []string {
	seen := make(map[string]bool)
	var urls []string
	for _, raw := range []string{p.Repository, p.HomePage, p.IssueTracker, p.Documentation} {
		v := strings.TrimSpace(raw)
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		urls = append(urls, v)
	}
	return urls
}

// Client provides access to the pub.dev package API.
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a pub.dev client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "pubdev:", cacheTTL, map[string]string{"Accept": "application/json"}),
		baseURL: "https://pub.dev/api/packages",
	}
}

// WithBaseURL points the client at a different package API (test server).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// FetchPackage retrieves the latest pubspec of a hosted Dart package.
//
// Returns [integrations.ErrNotFound] if the package does not exist.
func (c *Client) FetchPackage(ctx context.Context, name string, refresh bool) (*PackageInfo, error) {
	name = strings.TrimSpace(name)

	var info PackageInfo
	err := c.Cached(ctx, name, refresh, &info, func() error {
		return c.fetch(ctx, name, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, name string, info *PackageInfo) error {
	var data packageResponse
	if err := c.Get(ctx, c.baseURL+"/"+integrations.PathEscape(name), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: pub package %s", err, name)
		}
		return err
	}

	spec := data.Latest.Pubspec
	*info = PackageInfo{
		Name:          data.Name,
		Version:       data.Latest.Version,
		Repository:    spec.Repository,
		HomePage:      spec.Homepage,
		IssueTracker:  spec.IssueTracker,
		Documentation: spec.Documentation,
	}
	return nil
}

type packageResponse struct {
	Name   string `json:"name"`
	Latest struct {
		Version string `json:"version"`
		Pubspec struct {
			Repository    string `json:"repository"`
			Homepage      string `json:"homepage"`
			IssueTracker  string `json:"issue_tracker"`
			Documentation string `json:"documentation"`
		} `json:"pubspec"`
	} `json:"latest"`
}
