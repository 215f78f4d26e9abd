package scan

import (
	"fmt"
	"testing"

	"github.com/tabdock/tabdock/internal/platform"
)

// fakeBackend returns a scripted window list, or an error when failing.
type fakeBackend struct {
	windows []platform.Window
	fail    bool
}

func (f *fakeBackend) ListWindows() ([]platform.Window, error) {
	if f.fail {
		return nil, fmt.Errorf("enumeration failed")
	}
	return append([]platform.Window(nil), f.windows...), nil
}

func (f *fakeBackend) ActiveWindow() (platform.WindowID, error) { return 0, nil }
func (f *fakeBackend) Capture(win, container platform.WindowID, bounds platform.Rect) error {
	return nil
}
func (f *fakeBackend) Release(win platform.WindowID) error                      { return nil }
func (f *fakeBackend) MoveResize(win platform.WindowID, b platform.Rect) error  { return nil }
func (f *fakeBackend) Close(win platform.WindowID) error                        { return nil }
func (f *fakeBackend) Disconnect()                                              {}

func TestListSortsByTitleAndDropsUntitled(t *testing.T) {
	backend := &fakeBackend{windows: []platform.Window{
		{ID: 3, Title: "zsh"},
		{ID: 1, Title: ""},
		{ID: 2, Title: "Browser"},
	}}
	e := NewEnumerator(backend, nil)

	got := e.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(got))
	}
	if got[0].Title != "Browser" || got[1].Title != "zsh" {
		t.Fatalf("expected title-sorted list, got %q then %q", got[0].Title, got[1].Title)
	}
}

func TestListNeverIncludesExcludedIDs(t *testing.T) {
	backend := &fakeBackend{windows: []platform.Window{
		{ID: 10, Title: "Host Window"},
		{ID: 11, Title: "Editor"},
	}}
	e := NewEnumerator(backend, nil)
	e.Exclude(10)

	got := e.List()
	if len(got) != 1 || got[0].ID != 11 {
		t.Fatalf("expected only window 11, got %+v", got)
	}

	e.Unexclude(10)
	got = e.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 windows after unexclude, got %d", len(got))
	}
}

func TestListExcludesByTitleSubstring(t *testing.T) {
	backend := &fakeBackend{windows: []platform.Window{
		{ID: 1, Title: "Secret Dashboard"},
		{ID: 2, Title: "Editor"},
	}}
	e := NewEnumerator(backend, []string{"secret"})

	got := e.List()
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected title exclude to drop window 1, got %+v", got)
	}
}

func TestListReturnsCachedOnFailure(t *testing.T) {
	backend := &fakeBackend{windows: []platform.Window{
		{ID: 1, Title: "Editor"},
	}}
	e := NewEnumerator(backend, nil)

	first := e.List()
	if len(first) != 1 {
		t.Fatalf("expected 1 window, got %d", len(first))
	}

	backend.fail = true
	second := e.List()
	if len(second) != 1 || second[0].ID != 1 {
		t.Fatalf("expected cached listing on failure, got %+v", second)
	}
}

func TestListEmptyOnFailureWithoutCache(t *testing.T) {
	backend := &fakeBackend{fail: true}
	e := NewEnumerator(backend, nil)

	if got := e.List(); len(got) != 0 {
		t.Fatalf("expected empty listing, got %+v", got)
	}
}

func TestSameTitles(t *testing.T) {
	a := []platform.Window{{ID: 1, Title: "x"}, {ID: 2, Title: "y"}}
	b := []platform.Window{{ID: 9, Title: "y"}, {ID: 8, Title: "x"}}
	if !SameTitles(a, b) {
		t.Fatalf("expected equal title sets")
	}

	c := []platform.Window{{ID: 1, Title: "x"}, {ID: 2, Title: "x"}}
	if SameTitles(a, c) {
		t.Fatalf("expected different title multisets")
	}
	if SameTitles(a, c[:1]) {
		t.Fatalf("expected different lengths to compare unequal")
	}
}
