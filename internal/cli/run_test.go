package cli

import (
	"testing"

	"github.com/matzehuels/thankstars/pkg/discovery"
	"github.com/matzehuels/thankstars/pkg/reconcile"
)

func summaryOf(t *testing.T, already ...bool) reconcile.Summary {
	t.Helper()
	var s reconcile.Summary
	for i, a := range already {
		repo, ok := discovery.New("owner", string(rune('a'+i)), "go.mod")
		if !ok {
			t.Fatal("bad repository")
		}
		s.Starred = append(s.Starred, reconcile.StarredRepository{Repository: repo, AlreadyStarred: a})
	}
	return s
}

func TestCompletionLine(t *testing.T) {
	tests := []struct {
		name    string
		already []bool
		dryRun  bool
		want    string
	}{
		{"empty", nil, false, "🌱 No repositories required starring today."},
		{"empty dry run", nil, true, "🌱 No repositories required starring today."},
		{"one new", []bool{false}, false, "✨ Completed! Starred 1 repository."},
		{"many new", []bool{false, false}, false, "✨ Completed! Starred 2 repositories."},
		{"mixed", []bool{false, true, true}, false, "✨ Completed! Starred 1 repository, 2 already starred."},
		{"all already", []bool{true}, false, "✨ Completed! All 1 repository were already starred."},
		{"dry run new", []bool{false}, true, "✨ Dry run complete! 1 repository would be starred."},
		{"dry run mixed", []bool{false, false, true}, true, "✨ Dry run complete! 2 repositories would be starred, 1 already starred."},
		{"dry run all already", []bool{true, true}, true, "✨ Dry run complete! All 2 repositories are already starred."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := completionLine(summaryOf(t, tt.already...), tt.dryRun)
			if got != tt.want {
				t.Errorf("completionLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStarLine(t *testing.T) {
	repo, _ := discovery.New("example", "dep", "package.json")
	noVia, _ := discovery.New("example", "dep", "")

	tests := []struct {
		name    string
		repo    discovery.Repository
		already bool
		dryRun  bool
		want    string
	}{
		{"starred", repo, false, false, "⭐ Starred https://github.com/example/dep via package.json"},
		{"would star", repo, false, true, "⭐ Would star https://github.com/example/dep via package.json"},
		{"already", repo, true, false, "✅ Already starred https://github.com/example/dep (already starred) via package.json"},
		{"already in dry run", repo, true, true, "✅ Already starred https://github.com/example/dep (already starred) via package.json"},
		{"unknown source", noVia, false, false, "⭐ Starred https://github.com/example/dep via unknown source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := starLine(tt.repo, tt.already, tt.dryRun); got != tt.want {
				t.Errorf("starLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFrameworks(t *testing.T) {
	got, err := parseFrameworks([]string{"node", "golang", "Go", "rust"})
	if err != nil {
		t.Fatal(err)
	}
	want := []discovery.Framework{discovery.Node, discovery.Go, discovery.Cargo}
	if len(got) != len(want) {
		t.Fatalf("parseFrameworks() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frameworks[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if _, err := parseFrameworks([]string{"node", "cobol"}); err == nil {
		t.Error("parseFrameworks(cobol) should fail")
	}
}
