package deps

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/matzehuels/thankstars/pkg/discovery"
)

// ReadFile reads root/name. Failures are reported as *discovery.FileError.
func ReadFile(root, name string) ([]byte, error) {
	path := filepath.Join(root, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &discovery.FileError{Path: path, Err: err}
	}
	return data, nil
}

// ReadOptional reads root/name like [ReadFile] but reports ok=false, and no
// error, when the file does not exist.
func ReadOptional(root, name string) (data []byte, ok bool, err error) {
	data, err = ReadFile(root, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Exists reports whether root/name exists.
func Exists(root, name string) bool {
	_, err := os.Stat(filepath.Join(root, name))
	return err == nil
}

// FirstGitHub returns a ref for the first candidate that names a GitHub
// repository, tagged with via.
func FirstGitHub(via string, candidates ...string) (discovery.Ref, bool) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := discovery.Parse(c); ok {
			return discovery.Ref{Raw: c, Via: via}, true
		}
	}
	return discovery.Ref{}, false
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
