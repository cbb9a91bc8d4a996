package history

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/matzehuels/thankstars/pkg/discovery"
	"github.com/matzehuels/thankstars/pkg/reconcile"
)

func repo(t *testing.T, owner, name, via string) discovery.Repository {
	t.Helper()
	r, ok := discovery.New(owner, name, via)
	if !ok {
		t.Fatalf("discovery.New(%q, %q) failed", owner, name)
	}
	return r
}

func TestRecordFinish(t *testing.T) {
	r := NewRecord("/project", true)
	if r.ID == "" || r.StartedAt.IsZero() {
		t.Fatalf("NewRecord() = %+v, want ID and StartedAt", r)
	}

	r.Finish(reconcile.Summary{Starred: []reconcile.StarredRepository{
		{Repository: repo(t, "octo", "one", "package.json")},
		{Repository: repo(t, "octo", "two", "go.mod"), AlreadyStarred: true},
		{Repository: repo(t, "octo", "three", "")},
	}})

	if len(r.Entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(r.Entries))
	}
	if r.Newly() != 2 || r.Already() != 1 {
		t.Errorf("Newly/Already = %d/%d, want 2/1", r.Newly(), r.Already())
	}
	if r.Entries[0].URL != "https://github.com/octo/one" || r.Entries[0].Via != "package.json" {
		t.Errorf("Entries[0] = %+v", r.Entries[0])
	}
	if r.FinishedAt.Before(r.StartedAt) {
		t.Error("FinishedAt before StartedAt")
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "history")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	defer store.Close()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		r := &Record{ID: id, Root: "/p", StartedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Save(%s) error: %v", id, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	records, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(records) != 2 || records[0].ID != "c" || records[1].ID != "b" {
		ids := make([]string, len(records))
		for i, r := range records {
			ids[i] = r.ID
		}
		t.Errorf("List(2) ids = %v, want [c b]", ids)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dir, "a.json"))
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("record mode = %o, want 600", perm)
		}
	}
}

func TestFileStoreSaveReplaces(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRecord("/p", false)
	if err := store.Save(ctx, r); err != nil {
		t.Fatal(err)
	}
	r.DryRun = true
	if err := store.Save(ctx, r); err != nil {
		t.Fatal(err)
	}
	records, err := store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || !records[0].DryRun {
		t.Errorf("List() = %+v, want one updated record", records)
	}
}

func TestOpenDefaultsToFileStore(t *testing.T) {
	store, err := Open(context.Background(), Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if _, ok := store.(*FileStore); !ok {
		t.Errorf("Open() = %T, want *FileStore", store)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("THANKS_STARS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("THANKS_STARS_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	store, err := NewMongoStore(ctx, uri, "thankstars_test")
	if err != nil {
		t.Fatalf("NewMongoStore() error: %v", err)
	}
	defer store.Close()

	r := NewRecord("/p", true)
	if err := store.Save(ctx, r); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	records, err := store.List(ctx, 1)
	if err != nil || len(records) != 1 {
		t.Fatalf("List() = %v, %v", records, err)
	}
}
