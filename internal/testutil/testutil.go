// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/thankstars/pkg/discovery"
)

// WriteTree creates files under root. Keys are slash-separated paths
// relative to root; parent directories are created as needed.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// Keys parses refs the way the dispatcher does and returns "owner/name"
// for each one that names a GitHub repository.
func Keys(refs []discovery.Ref) []string {
	var keys []string
	for _, ref := range refs {
		if repo, ok := discovery.ParseVia(ref.Raw, ref.Via); ok {
			keys = append(keys, repo.Key())
		}
	}
	return keys
}

// Vias returns the provenance label of each ref.
func Vias(refs []discovery.Ref) []string {
	vias := make([]string, len(refs))
	for i, ref := range refs {
		vias[i] = ref.Via
	}
	return vias
}
