package renv

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/thankstars/internal/testutil"
	"github.com/matzehuels/thankstars/pkg/discovery"
)

const sampleLock = `{
  "R": {"Version": "4.3.1"},
  "Packages": {
    "zoo": {
      "Package": "zoo",
      "Source": "Repository",
      "Repository": "CRAN"
    },
    "cli": {
      "Package": "cli",
      "Source": "GitHub",
      "RemoteType": "github",
      "RemoteHost": "api.github.com",
      "RemoteUsername": "r-lib",
      "RemoteRepo": "cli"
    },
    "dplyr": {
      "Package": "dplyr",
      "Source": "Repository",
      "Repository": "CRAN",
      "URL": "https://dplyr.tidyverse.org, https://github.com/tidyverse/dplyr",
      "BugReports": "https://github.com/tidyverse/dplyr/issues"
    },
    "pak": {
      "Package": "pak",
      "RemoteType": "github",
      "RemoteRepo": "r-lib/pak"
    },
    "archive": {
      "Package": "archive",
      "Source": "URL",
      "RemoteUrl": "https://codeload.github.com/jimhester/archive/tar.gz/main"
    },
    "api": {
      "Package": "api",
      "Source": "GitHub",
      "Repository": "https://api.github.com/repos/owner/api-pkg"
    }
  }
}`

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"renv.lock": sampleLock})

	refs, err := Discoverer{}.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	want := []string{"owner/api-pkg", "jimhester/archive", "r-lib/cli", "tidyverse/dplyr", "r-lib/pak"}
	if got := testutil.Keys(refs); !slices.Equal(got, want) {
		t.Errorf("repositories = %v, want %v", got, want)
	}
	for _, via := range testutil.Vias(refs) {
		if via != "renv.lock" {
			t.Errorf("via = %q, want renv.lock", via)
		}
	}
}

func TestDiscoverErrors(t *testing.T) {
	t.Run("missing lock", func(t *testing.T) {
		_, err := Discoverer{}.Discover(context.Background(), t.TempDir())
		var fileErr *discovery.FileError
		if !errors.As(err, &fileErr) {
			t.Errorf("error = %v, want *discovery.FileError", err)
		}
	})
	t.Run("invalid json", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteTree(t, root, map[string]string{"renv.lock": "{"})
		_, err := Discoverer{}.Discover(context.Background(), root)
		var parseErr *discovery.ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("error = %v, want *discovery.ParseError", err)
		}
	})
}
