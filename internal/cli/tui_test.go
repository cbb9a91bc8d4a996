package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/thankstars/pkg/discovery"
)

func pickerRepos(t *testing.T) []discovery.Repository {
	t.Helper()
	var repos []discovery.Repository
	for _, name := range []string{"one", "two", "three"} {
		r, ok := discovery.New("owner", name, "go.mod")
		if !ok {
			t.Fatal("bad repository")
		}
		repos = append(repos, r)
	}
	return repos
}

func press(m RepoPickerModel, keys ...tea.KeyMsg) RepoPickerModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(RepoPickerModel)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keySpace = tea.KeyMsg{Type: tea.KeySpace}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyAll   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}
)

func keys(sel []discovery.Repository) []string {
	var out []string
	for _, r := range sel {
		out = append(out, r.Key())
	}
	return out
}

func TestRepoPickerDefaultsToAll(t *testing.T) {
	m := press(NewRepoPickerModel(pickerRepos(t)), keyEnter)
	if got := keys(m.Selection()); strings.Join(got, ",") != "owner/one,owner/two,owner/three" {
		t.Errorf("selection = %v", got)
	}
}

func TestRepoPickerToggle(t *testing.T) {
	m := press(NewRepoPickerModel(pickerRepos(t)), keyDown, keySpace, keyUp, keyEnter)
	if got := keys(m.Selection()); strings.Join(got, ",") != "owner/one,owner/three" {
		t.Errorf("selection = %v", got)
	}
}

func TestRepoPickerToggleAll(t *testing.T) {
	m := press(NewRepoPickerModel(pickerRepos(t)), keyAll)
	if m.count() != 0 {
		t.Fatalf("after 'a' with all checked, count = %d, want 0", m.count())
	}
	m = press(m, keyAll, keyEnter)
	if len(m.Selection()) != 3 {
		t.Errorf("selection = %v, want all", keys(m.Selection()))
	}
}

func TestRepoPickerCancel(t *testing.T) {
	m := press(NewRepoPickerModel(pickerRepos(t)), keyEsc)
	if sel := m.Selection(); sel != nil {
		t.Errorf("cancelled picker selected %v", keys(sel))
	}
}

func TestRepoPickerCursorBounds(t *testing.T) {
	m := press(NewRepoPickerModel(pickerRepos(t)), keyUp, keyDown, keyDown, keyDown, keyDown)
	if m.Cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.Cursor)
	}
}

func TestRepoPickerView(t *testing.T) {
	view := NewRepoPickerModel(pickerRepos(t)).View()
	for _, want := range []string{"owner/one", "go.mod", "3 of 3 selected"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
