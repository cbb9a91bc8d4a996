package maven

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/thankstars/pkg/cache"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

// Project holds the links declared by an artifact's POM on Maven Central.
//
// Artifacts are identified by "groupId:artifactId" coordinates.
//
// Zero values: All string fields are empty.
// This struct is safe for concurrent reads after construction.
type Project struct {
	GroupID    string `json:"group_id"`
	ArtifactID string `json:"artifact_id"`
	Version    string `json:"version"`           // Version whose POM was read
	URL        string `json:"url,omitempty"`     // <project><url>
	SCM        SCM    `json:"scm"`               // <project><scm>
	POMURL     string `json:"pom_url,omitempty"` // URL the POM was fetched from
}

// SCM is the <scm> block of a POM.
type SCM struct {
	URL                 string `json:"url,omitempty" xml:"url"`
	Connection          string `json:"connection,omitempty" xml:"connection"`
	DeveloperConnection string `json:"developer_connection,omitempty" xml:"developerConnection"`
}

// Coordinate returns the Maven coordinate string "groupId:artifactId".
// Example: "com.google.guava:guava"
func (p *Project) Coordinate() string {
	return p.GroupID + ":" + p.ArtifactID
}

// CandidateURLs returns the project URL and SCM links with "scm:" and
// "git:" prefixes removed, de-duplicated case-insensitively, in POM order.
func (p *Project) CandidateURLs() []string {
	seen := make(map[string]bool)
	var urls []string
	for _, raw := range []string{p.URL, p.SCM.URL, p.SCM.Connection, p.SCM.DeveloperConnection} {
		v := strings.TrimSpace(raw)
		v = strings.TrimPrefix(v, "scm:")
		v = strings.TrimPrefix(v, "git:")
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		urls = append(urls, v)
	}
	return urls
}

// Client provides access to a Maven repository layout such as Maven Central.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Maven Central client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "maven:", cacheTTL, map[string]string{"Accept": "application/xml"}),
		baseURL: "https://repo1.maven.org/maven2",
	}
}

// WithBaseURL points the client at a different repository (mirror or test server).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// FetchProject retrieves the POM of groupID:artifactID at version.
//
// When version is empty or still contains an unresolved ${property}, the
// release version from maven-metadata.xml is used instead.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns:
//   - Project populated from the POM on success
//   - [integrations.ErrNotFound] if the artifact or version doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//   - Other errors for malformed XML
func (c *Client) FetchProject(ctx context.Context, groupID, artifactID, version string, refresh bool) (*Project, error) {
	if groupID == "" || artifactID == "" {
		return nil, fmt.Errorf("invalid maven coordinate %q", groupID+":"+artifactID)
	}
	if strings.Contains(version, "${") {
		version = ""
	}

	key := groupID + ":" + artifactID + ":" + version

	var info Project
	err := c.Cached(ctx, key, refresh, &info, func() error {
		return c.fetch(ctx, groupID, artifactID, version, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// FetchArtifact is FetchProject for a "groupId:artifactId[:version]" coordinate.
func (c *Client) FetchArtifact(ctx context.Context, coordinate string, refresh bool) (*Project, error) {
	groupID, artifactID, version, err := parseCoordinate(coordinate)
	if err != nil {
		return nil, err
	}
	return c.FetchProject(ctx, groupID, artifactID, version, refresh)
}

func (c *Client) fetch(ctx context.Context, groupID, artifactID, version string, info *Project) error {
	groupPath := strings.ReplaceAll(groupID, ".", "/")

	if version == "" {
		v, err := c.fetchLatest(ctx, groupPath, artifactID)
		if err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: maven artifact %s:%s", err, groupID, artifactID)
			}
			return err
		}
		version = v
	}

	pomURL := fmt.Sprintf("%s/%s/%s/%s/%s-%s.pom", c.baseURL, groupPath, artifactID, version, artifactID, version)
	body, err := c.GetText(ctx, pomURL)
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: maven artifact %s:%s:%s", err, groupID, artifactID, version)
		}
		return err
	}

	var pom pomProject
	if err := xml.Unmarshal([]byte(body), &pom); err != nil {
		return fmt.Errorf("parse pom %s: %w", pomURL, err)
	}

	*info = Project{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Version:    version,
		URL:        strings.TrimSpace(pom.URL),
		SCM:        pom.SCM,
		POMURL:     pomURL,
	}
	return nil
}

func (c *Client) fetchLatest(ctx context.Context, groupPath, artifactID string) (string, error) {
	body, err := c.GetText(ctx, fmt.Sprintf("%s/%s/%s/maven-metadata.xml", c.baseURL, groupPath, artifactID))
	if err != nil {
		return "", err
	}

	var meta metadata
	if err := xml.Unmarshal([]byte(body), &meta); err != nil {
		return "", fmt.Errorf("parse maven-metadata.xml: %w", err)
	}
	switch {
	case meta.Versioning.Release != "":
		return meta.Versioning.Release, nil
	case meta.Versioning.Latest != "":
		return meta.Versioning.Latest, nil
	case len(meta.Versioning.Versions) > 0:
		return meta.Versioning.Versions[len(meta.Versioning.Versions)-1], nil
	}
	return "", fmt.Errorf("%w: no versions listed", integrations.ErrNotFound)
}

func parseCoordinate(coord string) (groupID, artifactID, version string, err error) {
	parts := strings.Split(coord, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("invalid maven coordinate %q (expected groupId:artifactId)", coord)
	}
	if len(parts) > 2 {
		version = parts[2]
	}
	return parts[0], parts[1], version, nil
}

type pomProject struct {
	URL string `xml:"url"`
	SCM SCM    `xml:"scm"`
}

type metadata struct {
	Versioning struct {
		Latest   string   `xml:"latest"`
		Release  string   `xml:"release"`
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}
