package hackage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/thankstars/pkg/cache"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

const projectCabal = `cabal-version: 2.4
name: project
-- homepage: https://example.com/commented
homepage: https://github.com/org/project
bug-reports: https://github.com/org/project/issues

source-repository head
  type: git
  location: https://github.com/org/project.git

library
  location: https://ignored.example.com
`

func TestParseCabalURLs(t *testing.T) {
	want := []string{
		"https://github.com/org/project",
		"https://github.com/org/project/issues",
		"https://github.com/org/project.git",
	}
	if got := ParseCabalURLs(projectCabal); !slices.Equal(got, want) {
		t.Errorf("ParseCabalURLs() = %v, want %v", got, want)
	}
}

func TestParseCabalURLs_Dedup(t *testing.T) {
	cabal := "homepage: https://github.com/a/b\nbug-reports: https://GITHUB.com/a/b\n"
	if got := ParseCabalURLs(cabal); len(got) != 1 {
		t.Errorf("ParseCabalURLs() = %v, want one entry", got)
	}
}

func TestClient_FetchPackage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/project/project.cabal" {
			w.Write([]byte(projectCabal))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := NewClient(cache.NewNullCache(), time.Hour).WithBaseURL(server.URL)

	info, err := c.FetchPackage(context.Background(), "project", true)
	if err != nil {
		t.Fatalf("FetchPackage failed: %v", err)
	}
	if len(info.URLs) != 3 {
		t.Errorf("URLs = %v", info.URLs)
	}

	if _, err := c.FetchPackage(context.Background(), "missing", true); !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
