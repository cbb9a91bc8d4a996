package deps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/thankstars/pkg/discovery"
	errs "github.com/matzehuels/thankstars/pkg/errors"
	"github.com/matzehuels/thankstars/pkg/integrations"
)

func testOptions() Options {
	return Options{Workers: 2, Logger: log.New(io.Discard)}
}

func TestLookupKeepsOrderAndSkips(t *testing.T) {
	names := []string{"alpha", "missing", "../etc", "bad name", "beta"}

	var called []string
	refs, err := Lookup(context.Background(), Options{Workers: 1, Logger: log.New(io.Discard)}, "test", names,
		func(ctx context.Context, name string) ([]discovery.Ref, error) {
			called = append(called, name)
			switch name {
			case "missing":
				return nil, fmt.Errorf("%w: %s", integrations.ErrNotFound, name)
			case "bad name":
				return nil, errs.New(errs.ErrCodeInvalidPackage, "invalid name %q", name)
			}
			return []discovery.Ref{{Raw: "https://github.com/owner/" + name, Via: "registry"}}, nil
		})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	var got []string
	for _, r := range refs {
		got = append(got, r.Raw)
	}
	want := []string{"https://github.com/owner/alpha", "https://github.com/owner/beta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("refs = %v, want %v", got, want)
	}
	for _, name := range called {
		if name == "../etc" {
			t.Error("lookup called for a path traversal name")
		}
	}
}

func TestLookupReportsFirstFailure(t *testing.T) {
	boom := errors.New("registry down")
	_, err := Lookup(context.Background(), testOptions(), "npm", []string{"ok", "first", "second"},
		func(ctx context.Context, name string) ([]discovery.Ref, error) {
			if name == "ok" {
				return nil, nil
			}
			return nil, boom
		})

	var le *discovery.LookupError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want *discovery.LookupError", err)
	}
	if le.Registry != "npm" || le.Package != "first" {
		t.Errorf("LookupError = %+v, want npm/first", le)
	}
	if !errors.Is(err, boom) {
		t.Error("LookupError should unwrap to the registry error")
	}
}

func TestLookupCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Lookup(ctx, testOptions(), "npm", []string{"a", "b"},
		func(ctx context.Context, name string) ([]discovery.Ref, error) {
			return nil, nil
		})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
