package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Framework identifies a package-manager ecosystem.
type Framework string

// Supported frameworks.
const (
	Node     Framework = "node"
	Deno     Framework = "deno"
	Cargo    Framework = "cargo"
	Go       Framework = "go"
	Dart     Framework = "dart"
	Composer Framework = "composer"
	Ruby     Framework = "ruby"
	Python   Framework = "python"
	Gradle   Framework = "gradle"
	Maven    Framework = "maven"
	Renv     Framework = "renv"
	Haskell  Framework = "haskell"
)

// AllFrameworks lists every framework in detection order.
var AllFrameworks = []Framework{
	Node, Deno, Cargo, Go, Dart, Composer, Ruby, Python, Gradle, Maven, Renv, Haskell,
}

// markers maps each framework to the files whose presence in the project
// root selects it.
var markers = map[Framework][]string{
	Node:     {"package.json"},
	Deno:     {"deno.lock", "deno.json", "deno.jsonc", "jsr.json"},
	Cargo:    {"Cargo.toml"},
	Go:       {"go.mod"},
	Dart:     {"pubspec.yaml"},
	Composer: {"composer.lock", "composer.json"},
	Ruby:     {"Gemfile", "Gemfile.lock"},
	Python:   {"pyproject.toml", "requirements.txt", "Pipfile", "Pipfile.lock", "uv.lock"},
	Gradle:   {"gradle.lockfile", "build.gradle", "build.gradle.kts"},
	Maven:    {"pom.xml"},
	Renv:     {"renv.lock"},
	Haskell:  {"package.yaml", "stack.yaml", "cabal.project"},
}

// String returns the framework identifier.
func (f Framework) String() string {
	return string(f)
}

// Markers returns the files that select f during detection.
func (f Framework) Markers() []string {
	return markers[f]
}

// ParseFramework resolves a user-supplied framework name (case-insensitive).
// "golang", "rust", "npm", "php", "r" and "jsr" are accepted as aliases.
func ParseFramework(s string) (Framework, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := frameworkAliases[name]; ok {
		return alias, nil
	}
	for _, f := range AllFrameworks {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown framework %q", s)
}

var frameworkAliases = map[string]Framework{
	"golang":     Go,
	"rust":       Cargo,
	"npm":        Node,
	"javascript": Node,
	"jsr":        Deno,
	"php":        Composer,
	"r":          Renv,
	"pub":        Dart,
	"flutter":    Dart,
}

// Detect returns the frameworks whose marker files exist in root, in
// AllFrameworks order. Haskell is also selected by any *.cabal file.
func Detect(root string) []Framework {
	var found []Framework
	for _, f := range AllFrameworks {
		if hasAny(root, markers[f]) || (f == Haskell && hasCabalFile(root)) {
			found = append(found, f)
		}
	}
	return found
}

func hasAny(root string, files []string) bool {
	for _, name := range files {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			return true
		}
	}
	return false
}

func hasCabalFile(root string) bool {
	entries, err := os.ReadDir(root)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".cabal") {
			return true
		}
	}
	return false
}
