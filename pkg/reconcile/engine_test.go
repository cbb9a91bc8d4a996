package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/thankstars/pkg/discovery"
)

// fakeAPI is an in-memory GitHub with a starred set.
type fakeAPI struct {
	mu       sync.Mutex
	starred  map[string]bool
	queries  []string
	stars    []string
	queryErr map[string]error
	starErr  map[string]error
}

func newFakeAPI(starred ...string) *fakeAPI {
	f := &fakeAPI{starred: map[string]bool{}, queryErr: map[string]error{}, starErr: map[string]error{}}
	for _, s := range starred {
		f.starred[s] = true
	}
	return f
}

func (f *fakeAPI) ViewerHasStarred(ctx context.Context, owner, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := owner + "/" + name
	f.queries = append(f.queries, key)
	if err := f.queryErr[key]; err != nil {
		return false, err
	}
	return f.starred[key], nil
}

func (f *fakeAPI) Star(ctx context.Context, owner, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := owner + "/" + name
	if err := f.starErr[key]; err != nil {
		return err
	}
	f.stars = append(f.stars, key)
	f.starred[key] = true
	return nil
}

// recorder captures events as strings.
type recorder struct {
	events  []string
	summary *Summary
}

func (r *recorder) OnStart(total int) {
	r.events = append(r.events, fmt.Sprintf("start %d", total))
}

func (r *recorder) OnStarred(repo discovery.Repository, already bool, index, total int) {
	r.events = append(r.events, fmt.Sprintf("starred %s %v %d/%d", repo.Key(), already, index, total))
}

func (r *recorder) OnComplete(s Summary) {
	r.events = append(r.events, fmt.Sprintf("complete %d", s.Len()))
	r.summary = &s
}

func repos(keys ...string) []discovery.Repository {
	var out []discovery.Repository
	for _, k := range keys {
		r, ok := discovery.Parse(k)
		if !ok {
			panic("bad test repo " + k)
		}
		out = append(out, r)
	}
	return out
}

var quiet = log.New(io.Discard)

func TestReconcileStarsOnlyUnstarred(t *testing.T) {
	api := newFakeAPI("b/two")
	rec := &recorder{}
	e := NewEngine(api, false, rec, quiet)

	summary, err := e.Reconcile(context.Background(), repos("a/one", "b/two", "c/three"))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if want := []string{"a/one", "c/three"}; !reflect.DeepEqual(api.stars, want) {
		t.Errorf("stars = %v, want %v", api.stars, want)
	}
	if want := []string{"a/one", "b/two", "c/three"}; !reflect.DeepEqual(api.queries, want) {
		t.Errorf("queries = %v, want %v", api.queries, want)
	}

	wantEvents := []string{
		"start 3",
		"starred a/one false 1/3",
		"starred b/two true 2/3",
		"starred c/three false 3/3",
		"complete 3",
	}
	if !reflect.DeepEqual(rec.events, wantEvents) {
		t.Errorf("events = %v, want %v", rec.events, wantEvents)
	}
	if summary.Newly() != 2 || summary.Already() != 1 {
		t.Errorf("Newly/Already = %d/%d, want 2/1", summary.Newly(), summary.Already())
	}
	if !reflect.DeepEqual(*rec.summary, summary) {
		t.Error("OnComplete summary differs from returned summary")
	}
}

func TestReconcileIdempotent(t *testing.T) {
	api := newFakeAPI("b/two")
	set := repos("a/one", "b/two")
	e := NewEngine(api, false, nil, quiet)

	first, err := e.Reconcile(context.Background(), set)
	if err != nil {
		t.Fatal(err)
	}
	starsAfterFirst := len(api.stars)

	second, err := e.Reconcile(context.Background(), set)
	if err != nil {
		t.Fatal(err)
	}
	if len(api.stars) != starsAfterFirst {
		t.Errorf("second run issued %d star calls, want 0", len(api.stars)-starsAfterFirst)
	}
	for i, s := range second.Starred {
		if !s.AlreadyStarred {
			t.Errorf("second run entry %d not already starred", i)
		}
	}
	if first.Len() != second.Len() {
		t.Errorf("summary lengths differ: %d vs %d", first.Len(), second.Len())
	}
}

func TestReconcileDryRunNeverStars(t *testing.T) {
	api := newFakeAPI("b/two")
	e := NewEngine(api, true, nil, quiet)

	summary, err := e.Reconcile(context.Background(), repos("a/one", "b/two"))
	if err != nil {
		t.Fatal(err)
	}
	if len(api.stars) != 0 {
		t.Errorf("dry run issued star calls: %v", api.stars)
	}
	if len(api.queries) != 2 {
		t.Errorf("dry run should still query, got %v", api.queries)
	}
	want := []bool{false, true}
	for i, s := range summary.Starred {
		if s.AlreadyStarred != want[i] {
			t.Errorf("entry %d AlreadyStarred = %v, want %v", i, s.AlreadyStarred, want[i])
		}
	}
}

func TestReconcileEmpty(t *testing.T) {
	rec := &recorder{}
	e := NewEngine(newFakeAPI(), false, rec, quiet)

	summary, err := e.Reconcile(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Len() != 0 {
		t.Errorf("summary = %v, want empty", summary)
	}
	if want := []string{"start 0", "complete 0"}; !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestReconcileQueryErrorAborts(t *testing.T) {
	boom := errors.New("502 bad gateway")
	api := newFakeAPI()
	api.queryErr["b/two"] = boom
	rec := &recorder{}
	e := NewEngine(api, false, rec, quiet)

	_, err := e.Reconcile(context.Background(), repos("a/one", "b/two", "c/three"))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	var re *RepoError
	if !errors.As(err, &re) || re.Op != "query" || re.Repository.Key() != "b/two" {
		t.Errorf("err = %#v, want query RepoError for b/two", err)
	}
	if reflect.DeepEqual(api.queries, []string{"a/one", "b/two", "c/three"}) {
		t.Error("processing should stop at the failing repository")
	}
	for _, ev := range rec.events {
		if ev == "complete 1" || ev == "complete 0" || ev == "complete 3" {
			t.Errorf("OnComplete must not fire on failure: %v", rec.events)
		}
	}
}

func TestReconcileStarErrorAborts(t *testing.T) {
	boom := errors.New("403 forbidden")
	api := newFakeAPI()
	api.starErr["a/one"] = boom
	e := NewEngine(api, false, nil, quiet)

	_, err := e.Reconcile(context.Background(), repos("a/one", "b/two"))
	var re *RepoError
	if !errors.As(err, &re) || re.Op != "star" {
		t.Fatalf("err = %v, want star RepoError", err)
	}
	if len(api.queries) != 1 {
		t.Errorf("b/two should not be queried after failure, queries = %v", api.queries)
	}
}

func TestReconcileContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := newFakeAPI()
	e := NewEngine(api, false, HandlerFuncs{
		Starred: func(discovery.Repository, bool, int, int) { cancel() },
	}, quiet)

	_, err := e.Reconcile(ctx, repos("a/one", "b/two"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(api.stars) != 1 {
		t.Errorf("stars = %v, want only a/one", api.stars)
	}
}

func TestDryRunAPI(t *testing.T) {
	api := newFakeAPI("a/one")
	dry := DryRunAPI(api)

	if err := dry.Star(context.Background(), "b", "two"); err != nil {
		t.Fatal(err)
	}
	if len(api.stars) != 0 {
		t.Error("DryRunAPI.Star reached the wrapped API")
	}
	ok, err := dry.ViewerHasStarred(context.Background(), "a", "one")
	if err != nil || !ok {
		t.Errorf("ViewerHasStarred = %v, %v; want pass-through true", ok, err)
	}
}

func TestMultiAndNopHandlers(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	h := Multi(a, NopHandler{}, b, HandlerFuncs{})
	e := NewEngine(newFakeAPI(), true, h, quiet)

	if _, err := e.Reconcile(context.Background(), repos("a/one")); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.events, b.events) || len(a.events) != 3 {
		t.Errorf("handlers saw %v and %v", a.events, b.events)
	}
}

func TestSummaryCounts(t *testing.T) {
	s := Summary{Starred: []StarredRepository{
		{AlreadyStarred: true}, {AlreadyStarred: false}, {AlreadyStarred: true},
	}}
	if s.Len() != 3 || s.Already() != 2 || s.Newly() != 1 {
		t.Errorf("Len/Already/Newly = %d/%d/%d", s.Len(), s.Already(), s.Newly())
	}
}
