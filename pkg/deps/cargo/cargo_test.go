package cargo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/matzehuels/thankstars/internal/testutil"
	"github.com/matzehuels/thankstars/pkg/deps"
	"github.com/matzehuels/thankstars/pkg/discovery"
)

type fakeFetcher struct {
	data []byte
	err  error
}

func (f fakeFetcher) Fetch(context.Context, string) ([]byte, error) { return f.data, f.err }

const sampleMetadata = `{
	"packages": [
		{"id": "app 0.1.0", "repository": null},
		{"id": "serde 1.0.0", "repository": "https://github.com/serde-rs/serde"},
		{"id": "anyhow 1.0.0", "repository": "https://github.com/dtolnay/anyhow"},
		{"id": "local 0.1.0", "repository": "https://gitlab.com/x/local"},
		{"id": "itoa 1.0.0", "repository": "https://github.com/dtolnay/itoa"}
	],
	"resolve": {
		"nodes": [
			{"id": "app 0.1.0", "deps": [{"pkg": "serde 1.0.0"}, {"pkg": "anyhow 1.0.0"}, {"pkg": "local 0.1.0"}]},
			{"id": "serde 1.0.0", "deps": [{"pkg": "itoa 1.0.0"}]}
		]
	},
	"workspace_members": ["app 0.1.0"]
}`

func TestDiscoverMetadata(t *testing.T) {
	d := New(deps.Options{})
	d.Fetcher = fakeFetcher{data: []byte(sampleMetadata)}

	refs, err := d.Discover(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	want := []string{"dtolnay/anyhow", "serde-rs/serde"}
	if got := testutil.Keys(refs); !slices.Equal(got, want) {
		t.Errorf("repositories = %v, want %v (transitive deps excluded)", got, want)
	}
	for _, via := range testutil.Vias(refs) {
		if via != "Cargo.toml" {
			t.Errorf("Via = %q, want Cargo.toml", via)
		}
	}
}

func TestDiscoverCommandFailure(t *testing.T) {
	d := New(deps.Options{})
	d.Fetcher = fakeFetcher{err: &discovery.CommandError{Command: "cargo metadata", Stderr: "could not find Cargo.toml"}}

	_, err := d.Discover(context.Background(), t.TempDir())
	var cmdErr *discovery.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error = %v, want *discovery.CommandError", err)
	}
}

func TestDiscoverInvalidMetadata(t *testing.T) {
	d := New(deps.Options{})
	d.Fetcher = fakeFetcher{data: []byte("not json")}

	_, err := d.Discover(context.Background(), t.TempDir())
	var parseErr *discovery.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("error = %v, want *discovery.ParseError", err)
	}
}

func TestDiscoverManifestFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/crates/serde":
			w.Write([]byte(`{"crate": {"name": "serde", "max_version": "1.0.0", "repository": "https://github.com/serde-rs/serde"}}`))
		case "/crates/tokio":
			w.Write([]byte(`{"crate": {"name": "tokio", "max_version": "1.0.0", "homepage": "https://tokio.rs"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"Cargo.toml": `
[package]
name = "app"

[dependencies]
serde = "1"
tokio = { version = "1", features = ["full"] }
local = { path = "../local" }
forked = { git = "https://github.com/me/forked" }

[dev-dependencies]
missing = "0.1"
`,
	})

	d := New(deps.Options{})
	d.Fetcher = fakeFetcher{err: ErrCargoNotInstalled}
	d.Registry.WithBaseURL(server.URL)

	refs, err := d.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	want := []string{"me/forked", "serde-rs/serde"}
	if got := testutil.Keys(refs); !slices.Equal(got, want) {
		t.Errorf("repositories = %v, want %v", got, want)
	}
}
