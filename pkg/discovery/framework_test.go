package discovery

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []Framework
	}{
		{"empty", nil, nil},
		{"node", []string{"package.json"}, []Framework{Node}},
		{"deno json", []string{"deno.jsonc"}, []Framework{Deno}},
		{"composer json only", []string{"composer.json"}, []Framework{Composer}},
		{"python variants", []string{"Pipfile.lock"}, []Framework{Python}},
		{"gradle kts", []string{"build.gradle.kts"}, []Framework{Gradle}},
		{"haskell cabal file", []string{"my-lib.cabal"}, []Framework{Haskell}},
		{"haskell stack", []string{"stack.yaml"}, []Framework{Haskell}},
		{
			"order follows AllFrameworks",
			[]string{"renv.lock", "go.mod", "package.json", "Cargo.toml"},
			[]Framework{Node, Cargo, Go, Renv},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, tt.files...)
			if got := Detect(dir); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectIgnoresCabalDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "dist.cabal"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := Detect(dir); len(got) != 0 {
		t.Errorf("Detect() = %v, want none", got)
	}
}

func TestDetectMissingRoot(t *testing.T) {
	if got := Detect(filepath.Join(t.TempDir(), "missing")); len(got) != 0 {
		t.Errorf("Detect() = %v, want none", got)
	}
}

func TestParseFramework(t *testing.T) {
	tests := []struct {
		in      string
		want    Framework
		wantErr bool
	}{
		{"node", Node, false},
		{"Cargo", Cargo, false},
		{"golang", Go, false},
		{"rust", Cargo, false},
		{" python ", Python, false},
		{"jsr", Deno, false},
		{"cobol", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFramework(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFramework(%q) err = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFramework(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMarkers(t *testing.T) {
	for _, f := range AllFrameworks {
		if len(f.Markers()) == 0 {
			t.Errorf("%s has no marker files", f)
		}
	}
}
