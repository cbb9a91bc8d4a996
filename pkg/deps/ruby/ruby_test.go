package ruby

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/matzehuels/thankstars/internal/testutil"
	"github.com/matzehuels/thankstars/pkg/deps"
)

const sampleLock = `GIT
  remote: https://github.com/rails/rails.git
  revision: 0123456789abcdef
  specs:
    rails (7.2.0.alpha)

GIT
  remote: https://git.example.com/private/gem.git
  revision: fedcba
  specs:
    private (0.1.0)

GEM
  remote: https://rubygems.org/
  specs:
    rack (3.0.8)
    rspec (3.12.0)
      rspec-core (~> 3.12.0)
    rspec-core (3.12.2)
    unknown (1.0.0)

PLATFORMS
  ruby

DEPENDENCIES
  private!
  rack (~> 3.0)
  rails!
  rspec
  unknown

BUNDLED WITH
   2.5.3
`

func TestDiscover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gems/rack.json":
			w.Write([]byte(`{"name":"rack","version":"3.0.8","source_code_uri":"https://github.com/rack/rack"}`))
		case "/gems/rspec.json":
			w.Write([]byte(`{"name":"rspec","version":"3.12.0","homepage_uri":"https://rspec.info","bug_tracker_uri":"https://github.com/rspec/rspec/issues"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"Gemfile.lock": sampleLock})

	d := New(deps.Options{})
	d.Registry.WithBaseURL(server.URL)

	refs, err := d.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	want := []string{"rails/rails", "rack/rack", "rspec/rspec"}
	if got := testutil.Keys(refs); !slices.Equal(got, want) {
		t.Errorf("repositories = %v, want %v", got, want)
	}
	for _, via := range testutil.Vias(refs) {
		if via != "Gemfile.lock" {
			t.Errorf("Via = %q, want Gemfile.lock", via)
		}
	}
}

func TestDiscoverMissingLock(t *testing.T) {
	refs, err := New(deps.Options{}).Discover(context.Background(), t.TempDir())
	if err != nil || len(refs) != 0 {
		t.Errorf("Discover() = %v, %v; want no refs", refs, err)
	}
}

func TestParseLock(t *testing.T) {
	lock := parseLock([]byte(sampleLock))

	if want := []string{"https://github.com/rails/rails.git", "https://git.example.com/private/gem.git"}; !slices.Equal(lock.gitRemotes, want) {
		t.Errorf("gitRemotes = %v, want %v", lock.gitRemotes, want)
	}
	if want := []string{"private", "rack", "rails", "rspec", "unknown"}; !slices.Equal(lock.dependencies, want) {
		t.Errorf("dependencies = %v, want %v", lock.dependencies, want)
	}
	if !lock.registryGems["rspec-core"] || lock.registryGems["rails"] {
		t.Errorf("registryGems = %v", lock.registryGems)
	}
}
