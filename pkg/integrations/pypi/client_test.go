package pypi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/thankstars/pkg/cache"
	errs "github.com/matzehuels/thankstars/pkg/errors"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

func TestClient_FetchPackage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/flask-login/json" {
			resp := apiResponse{
				Info: apiInfo{
					Name:    "Flask-Login",
					Version: "0.6.3",
					ProjectURLs: map[string]any{
						"Documentation": "https://flask-login.readthedocs.io",
						"Source":        "https://github.com/maxcountryman/flask-login",
					},
				},
			}
			json.NewEncoder(w).Encode(resp)
		} else {
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	info, err := c.FetchPackage(context.Background(), "Flask_Login", true)
	if err != nil {
		t.Fatalf("FetchPackage failed: %v", err)
	}

	if info.Name != "Flask-Login" {
		t.Errorf("expected name Flask-Login, got %s", info.Name)
	}
	owner, repo, ok := info.GitHubRepo()
	if !ok || owner != "maxcountryman" || repo != "flask-login" {
		t.Errorf("GitHubRepo() = (%q, %q, %v)", owner, repo, ok)
	}
}

func TestClient_FetchPackage_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testClient(t, server.URL)

	_, err := c.FetchPackage(context.Background(), "missing-pkg", true)
	if err == nil {
		t.Fatal("expected error for missing package")
	}
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_FetchPackage_InvalidName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request for %s", r.URL.Path)
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	for _, name := range []string{"../../etc", "-leading", "name with space"} {
		_, err := c.FetchPackage(context.Background(), name, true)
		if !errs.Is(err, errs.ErrCodeInvalidPackage) {
			t.Errorf("FetchPackage(%q) error = %v, want INVALID_PACKAGE", name, err)
		}
	}
}

func TestPackageInfo_GitHubRepoHomepageFallback(t *testing.T) {
	info := PackageInfo{HomePage: "https://github.com/psf/black"}
	owner, repo, ok := info.GitHubRepo()
	if !ok || owner != "psf" || repo != "black" {
		t.Errorf("GitHubRepo() = (%q, %q, %v)", owner, repo, ok)
	}

	none := PackageInfo{HomePage: "https://example.com"}
	if _, _, ok := none.GitHubRepo(); ok {
		t.Error("GitHubRepo() should fail without a GitHub link")
	}
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClient(cache.NewNullCache(), time.Hour).WithBaseURL(serverURL)
}
