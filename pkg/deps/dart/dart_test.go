package dart

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

const samplePubspec = `name: app
environment:
  sdk: ">=3.0.0 <4.0.0"
dependencies:
  flutter:
    sdk: flutter
  http: ^1.1.0
  local_pkg:
    path: ../local_pkg
  forked:
    git:
      url: https://github.com/me/forked.git
      ref: main
dev_dependencies:
  lints: any
  mocktail:
dependency_overrides:
  quick:
    git: git@github.com:me/quick.git
`

func TestDiscover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/http":
			w.Write([]byte(`{"name":"http","latest":{"version":"1.1.0","pubspec":{"repository":"https://github.com/dart-lang/http/tree/master/pkgs/http"}}}`))
		case "/lints":
			w.Write([]byte(`{"name":"lints","latest":{"version":"3.0.0","pubspec":{"homepage":"https://dart.dev","issue_tracker":"https://github.com/dart-lang/lints/issues"}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"pubspec.yaml": samplePubspec})

	d := New(deps.Options{})
	d.Registry.WithBaseURL(server.URL)

	refs, err := d.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	want := []string{"me/quick", "me/forked", "dart-lang/http", "dart-lang/lints"}
	if got := testutil.Keys(refs); !slices.Equal(got, want) {
		t.Errorf("repositories = %v, want %v", got, want)
	}
}

func TestDiscoverInvalidYAML(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"pubspec.yaml": "dependencies: [unclosed"})

	_, err := New(deps.Options{}).Discover(context.Background(), root)
	var parseErr *discovery.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("error = %v, want *discovery.ParseError", err)
	}
}
