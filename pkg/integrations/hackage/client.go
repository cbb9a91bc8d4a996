package hackage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/thankstars/pkg/cache"
	errs "github.com/matzehuels/thankstars/pkg/errors"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

// PackageInfo holds the links found in a package's .cabal file on Hackage.
type PackageInfo struct {
	Name string   `json:"name"`
	URLs []string `json:"urls,omitempty"` // homepage, bug-reports and source-repository locations in file order
}

// Client provides access to Hackage package descriptions.
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Hackage client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "hackage:", cacheTTL, map[string]string{"Accept": "text/plain"}),
		baseURL: "https://hackage.haskell.org/package",
	}
}

// WithBaseURL points the client at a different Hackage mirror or test server.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// FetchPackage downloads <name>.cabal for the latest version and extracts
// its links.
//
// Returns [integrations.ErrNotFound] if the package does not exist.
func (c *Client) FetchPackage(ctx context.Context, name string, refresh bool) (*PackageInfo, error) {
	name = strings.TrimSpace(name)
	if err := errs.ValidateHackagePackageName(name); err != nil {
		return nil, err
	}

	var info PackageInfo
	err := c.Cached(ctx, name, refresh, &info, func() error {
		body, err := c.GetText(ctx, fmt.Sprintf("%s/%s/%s.cabal", c.baseURL, name, name))
		if err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: hackage package %s", err, name)
			}
			return err
		}
		info = PackageInfo{Name: name, URLs: ParseCabalURLs(body)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ParseCabalURLs returns the homepage, bug-reports and source-repository
// location values of a .cabal file, de-duplicated case-insensitively.
func ParseCabalURLs(cabal string) []string {
	var urls []string
	seen := make(map[string]bool)
	push := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[strings.ToLower(v)] {
			return
		}
		seen[strings.ToLower(v)] = true
		urls = append(urls, v)
	}

	inSourceRepo := false
	scanner := bufio.NewScanner(strings.NewReader(cabal))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "--"):
			continue
		case trimmed == "":
			inSourceRepo = false
			continue
		case strings.HasPrefix(strings.ToLower(trimmed), "source-repository "):
			inSourceRepo = true
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			inSourceRepo = false
		}

		if v, ok := field(trimmed, "homepage"); ok {
			push(v)
		} else if v, ok := field(trimmed, "bug-reports"); ok {
			push(v)
		} else if v, ok := field(trimmed, "location"); ok && inSourceRepo {
			push(v)
		}
	}
	return urls
}

// field matches "name: value" with the case-insensitive field names cabal allows.
func field(line, name string) (string, bool) {
	if len(line) <= len(name) || !strings.EqualFold(line[:len(name)], name) {
		return "", false
	}
	rest := strings.TrimLeft(line[len(name):], " \t")
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}
	return rest[1:], true
}
