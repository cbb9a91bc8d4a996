package goproxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/thankstars/pkg/cache"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

func TestInfoURL(t *testing.T) {
	c := testClient(t, "https://proxy.example")

	tests := []struct {
		mod, version string
		want         string
	}{
		{"gopkg.in/yaml.v3", "v3.0.1", "https://proxy.example/gopkg.in/yaml.v3/@v/v3.0.1.info"},
		{"github.com/Azure/azure-sdk-for-go", "v1.0.0", "https://proxy.example/github.com/!azure/azure-sdk-for-go/@v/v1.0.0.info"},
		{"golang.org/x/sync", "", "https://proxy.example/golang.org/x/sync/@latest"},
	}

	for _, tt := range tests {
		t.Run(tt.mod, func(t *testing.T) {
			got, err := c.infoURL(tt.mod, tt.version)
			if err != nil {
				t.Fatalf("infoURL() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("infoURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInfoURL_Invalid(t *testing.T) {
	c := testClient(t, "https://proxy.example")
	if _, err := c.infoURL("not a path", "v1.0.0"); err == nil {
		t.Error("expected error for invalid module path")
	}
}

func TestClient_FetchModule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gopkg.in/yaml.v3/@v/v3.0.1.info":
			w.Write([]byte(`{"Version":"v3.0.1","Time":"2022-05-27T08:35:30Z","Origin":{"VCS":"git","URL":"https://github.com/go-yaml/yaml","Ref":"refs/tags/v3.0.1"}}`))
		case "/example.com/legacy/@v/v1.0.0.info":
			w.Write([]byte(`{"Version":"v1.0.0","Time":"2019-01-01T00:00:00Z"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	info, err := c.FetchModule(context.Background(), "gopkg.in/yaml.v3", "v3.0.1", true)
	if err != nil {
		t.Fatalf("FetchModule failed: %v", err)
	}
	if info.Repository != "https://github.com/go-yaml/yaml" {
		t.Errorf("Repository = %q", info.Repository)
	}
	if info.VCS != "git" {
		t.Errorf("VCS = %q, want git", info.VCS)
	}

	legacy, err := c.FetchModule(context.Background(), "example.com/legacy", "v1.0.0", true)
	if err != nil {
		t.Fatalf("FetchModule(legacy) failed: %v", err)
	}
	if legacy.Repository != "" {
		t.Errorf("legacy Repository = %q, want empty", legacy.Repository)
	}
}

func TestClient_FetchModule_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testClient(t, server.URL)

	_, err := c.FetchModule(context.Background(), "github.com/missing/module", "v0.1.0", true)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClient(cache.NewNullCache(), time.Hour).WithBaseURL(serverURL)
}
