package composer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/matzehuels/thankstars/internal/testutil"
	"github.com/matzehuels/thankstars/pkg/deps"
)

func TestDiscoverLock(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"composer.lock": `{
			"packages": [
				{"name": "monolog/monolog", "source": {"type": "git", "url": "https://github.com/Seldaek/monolog.git"}},
				{"name": "acme/private", "source": {"url": "https://git.example.com/acme/private.git"}, "support": [], "homepage": "https://github.com/acme/private"}
			],
			"packages-dev": [
				{"name": "phpunit/phpunit", "support": {"source": "https://github.com/sebastianbergmann/phpunit/tree/10.0.0"}},
				{"name": "local/none", "dist": {"type": "path"}}
			]
		}`,
		"composer.json": `{"require": {"should/not-be-read": "*"}}`,
	})

	refs, err := New(deps.Options{}).Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	want := []string{"Seldaek/monolog", "acme/private", "sebastianbergmann/phpunit"}
	if got := testutil.Keys(refs); !slices.Equal(got, want) {
		t.Errorf("repositories = %v, want %v", got, want)
	}
	for _, via := range testutil.Vias(refs) {
		if via != "composer.lock" {
			t.Errorf("Via = %q, want composer.lock", via)
		}
	}
}

func TestDiscoverManifestFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/p2/symfony/console.json":
			w.Write([]byte(`{"packages": {"symfony/console": [{"name": "symfony/console", "version": "v7.0.0", "source": {"url": "https://github.com/symfony/console.git"}}]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"composer.json": `{"require": {"php": ">=8.1", "ext-json": "*", "symfony/console": "^7.0"}, "require-dev": {"gone/pkg": "*"}}`,
	})

	d := New(deps.Options{})
	d.Registry.WithBaseURL(server.URL)

	refs, err := d.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	want := []string{"symfony/console"}
	if got := testutil.Keys(refs); !slices.Equal(got, want) {
		t.Errorf("repositories = %v, want %v", got, want)
	}
	if refs[0].Via != "composer.json" {
		t.Errorf("Via = %q, want composer.json", refs[0].Via)
	}
}

func TestDiscoverNothing(t *testing.T) {
	refs, err := New(deps.Options{}).Discover(context.Background(), t.TempDir())
	if err != nil || len(refs) != 0 {
		t.Errorf("Discover() = %v, %v; want no refs", refs, err)
	}
}
