package discovery

import (
	"reflect"
	"testing"
)

func repo(owner, name, via string) Repository {
	r, _ := New(owner, name, via)
	return r
}

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	in := []Repository{
		repo("a", "one", "package.json"),
		repo("b", "two", "package.json"),
		repo("a", "one", "deno.lock"),
		repo("c", "three", "go.mod"),
		repo("b", "two", "go.mod"),
	}
	want := []Repository{
		repo("a", "one", "package.json"),
		repo("b", "two", "package.json"),
		repo("c", "three", "go.mod"),
	}

	got := Dedup(in)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedup() = %v, want %v", got, want)
	}
}

func TestDedupIdempotent(t *testing.T) {
	inputs := [][]Repository{
		nil,
		{},
		{repo("a", "b", "x")},
		{repo("a", "b", "x"), repo("a", "b", "y"), repo("c", "d", "z"), repo("a", "b", "w")},
	}
	for _, in := range inputs {
		once := Dedup(in)
		twice := Dedup(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Dedup not idempotent for %v: %v vs %v", in, once, twice)
		}
	}
}

func TestDedupIsCaseSensitive(t *testing.T) {
	got := Dedup([]Repository{repo("Octo", "Repo", ""), repo("octo", "repo", "")})
	if len(got) != 2 {
		t.Errorf("Dedup() kept %d, want 2 (identity is case-sensitive)", len(got))
	}
}

func TestDedupDoesNotModifyInput(t *testing.T) {
	in := []Repository{repo("a", "b", "1"), repo("a", "b", "2")}
	_ = Dedup(in)
	if in[1].Via != "2" || len(in) != 2 {
		t.Error("Dedup modified its input")
	}
}
