package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/matzehuels/thankstars/pkg/buildinfo"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

// DefaultBaseURL is the public GitHub REST and GraphQL API root.
const DefaultBaseURL = "https://api.github.com"

const viewerHasStarredQuery = `query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) { viewerHasStarred }
}`

// Client talks to the GitHub API on behalf of the token's user. Star state
// is never cached: every call reflects the live account.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client authenticated with token.
func NewClient(token string) *Client {
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"User-Agent":           buildinfo.UserAgent(),
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(nil, "github:", 0, headers),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at a GitHub Enterprise API root or a test
// server. GraphQL requests go to <base>/graphql.
func (c *Client) WithBaseURL(u string) *Client {
	if u != "" {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// ViewerHasStarred reports whether the authenticated user has starred
// owner/name. GraphQL errors in the response body are returned as *APIError.
func (c *Client) ViewerHasStarred(ctx context.Context, owner, name string) (bool, error) {
	if err := ValidateRepoRef(owner, name); err != nil {
		return false, err
	}

	req := graphQLRequest{
		Query:     viewerHasStarredQuery,
		Variables: map[string]string{"owner": owner, "name": name},
	}

	var raw json.RawMessage
	if err := c.Send(ctx, http.MethodPost, c.baseURL+"/graphql", nil, req, &raw); err != nil {
		return false, apiError(err)
	}

	var resp graphQLResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return false, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return false, &APIError{Status: http.StatusOK, Body: string(raw)}
	}
	if resp.Data.Repository == nil {
		return false, &APIError{Status: http.StatusOK, Body: fmt.Sprintf("repository %s/%s not found", owner, name)}
	}
	return resp.Data.Repository.ViewerHasStarred, nil
}

// Star stars owner/name for the authenticated user. GitHub answers 204, or
// 304 when the repository is already starred; both count as success.
func (c *Client) Star(ctx context.Context, owner, name string) error {
	if err := ValidateRepoRef(owner, name); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/user/starred/%s/%s", c.baseURL, owner, name)
	if err := c.Send(ctx, http.MethodPut, url, nil, nil, nil); err != nil {
		return apiError(err)
	}
	return nil
}

// Viewer returns the user the token belongs to.
func (c *Client) Viewer(ctx context.Context) (*User, error) {
	var u User
	if err := c.Send(ctx, http.MethodGet, c.baseURL+"/user", nil, nil, &u); err != nil {
		return nil, apiError(err)
	}
	return &u, nil
}

// APIError is a non-success answer from the GitHub API. Status is the HTTP
// status (200 for GraphQL-level errors) and Body the raw response body.
type APIError struct {
	Status int
	Body   string
	err    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API responded with status %d: %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error { return e.err }

// Unauthorized reports whether GitHub rejected the token.
func (e *APIError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// apiError converts HTTP status failures into *APIError and leaves network
// failures as they are.
func apiError(err error) error {
	var se *integrations.StatusError
	if errors.As(err, &se) {
		return &APIError{Status: se.Code, Body: se.Body, err: err}
	}
	return err
}

type graphQLRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		Repository *struct {
			ViewerHasStarred bool `json:"viewerHasStarred"`
		} `json:"repository"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"errors"`
}
