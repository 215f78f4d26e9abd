package tabhost

import (
	"testing"

	"github.com/tabdock/tabdock/internal/platform"
)

func tab(id platform.WindowID, title string) *Tab {
	return &Tab{Window: platform.Window{ID: id, Title: title}}
}

func TestAddSelectsNewTab(t *testing.T) {
	l := NewTabList()
	if l.Selected() != nil {
		t.Fatalf("empty list must have no selection")
	}

	if !l.Add(tab(1, "one")) {
		t.Fatalf("expected add to succeed")
	}
	l.Add(tab(2, "two"))

	if l.SelectedIndex() != 1 {
		t.Fatalf("expected newest tab selected, got index %d", l.SelectedIndex())
	}
}

func TestAddDuplicateFocusesExisting(t *testing.T) {
	l := NewTabList()
	l.Add(tab(1, "one"))
	l.Add(tab(2, "two"))

	if l.Add(tab(1, "one again")) {
		t.Fatalf("duplicate window id must not create a second tab")
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 tabs, got %d", l.Len())
	}
	if l.SelectedIndex() != 0 {
		t.Fatalf("expected existing tab to be focused, got index %d", l.SelectedIndex())
	}
}

func TestRemoveSelectedMovesSelectionLeft(t *testing.T) {
	l := NewTabList()
	l.Add(tab(1, "one"))
	l.Add(tab(2, "two"))
	l.Add(tab(3, "three"))

	removed, ok := l.Remove(3)
	if !ok || removed.Window.ID != 3 {
		t.Fatalf("expected to remove tab 3")
	}
	if l.Selected() == nil || l.Selected().Window.ID != 2 {
		t.Fatalf("expected tab 2 selected after removing last tab")
	}
}

func TestRemoveBeforeSelectedKeepsSelection(t *testing.T) {
	l := NewTabList()
	l.Add(tab(1, "one"))
	l.Add(tab(2, "two"))
	l.Add(tab(3, "three"))
	l.Select(2)

	l.Remove(1)
	if l.Selected() == nil || l.Selected().Window.ID != 3 {
		t.Fatalf("expected selection to follow tab 3, got %+v", l.Selected())
	}
}

func TestRemoveLastTabClearsSelection(t *testing.T) {
	l := NewTabList()
	l.Add(tab(1, "one"))

	l.Remove(1)
	if l.Len() != 0 || l.Selected() != nil || l.SelectedIndex() != -1 {
		t.Fatalf("expected empty list with no selection")
	}
}

func TestRemoveUnknownWindow(t *testing.T) {
	l := NewTabList()
	l.Add(tab(1, "one"))

	if _, ok := l.Remove(99); ok {
		t.Fatalf("expected remove of unknown window to fail")
	}
	if l.Len() != 1 {
		t.Fatalf("expected list unchanged")
	}
}

func TestSelectWindow(t *testing.T) {
	l := NewTabList()
	l.Add(tab(1, "one"))
	l.Add(tab(2, "two"))

	if !l.SelectWindow(1) {
		t.Fatalf("expected select by window id to succeed")
	}
	if l.SelectedIndex() != 0 {
		t.Fatalf("expected index 0 selected")
	}
	if l.SelectWindow(42) {
		t.Fatalf("expected select of unknown window to fail")
	}
}

func TestOwnsContainer(t *testing.T) {
	l := NewTabList()
	l.Add(&Tab{Window: platform.Window{ID: 1, Title: "one"}, Container: 100})
	l.Add(&Tab{Window: platform.Window{ID: 2, Title: "two"}, Container: 200})

	if !l.OwnsContainer(100) || !l.OwnsContainer(200) {
		t.Fatalf("expected container ids to be recognized")
	}
	if l.OwnsContainer(1) || l.OwnsContainer(300) {
		t.Fatalf("window ids and foreign ids are not containers")
	}

	l.Remove(1)
	if l.OwnsContainer(100) {
		t.Fatalf("removed tab's container must no longer be owned")
	}
}

func TestSelectOutOfRange(t *testing.T) {
	l := NewTabList()
	l.Add(tab(1, "one"))

	if l.Select(5) || l.Select(-1) {
		t.Fatalf("expected out-of-range select to fail")
	}
	if l.SelectedIndex() != 0 {
		t.Fatalf("selection must be unchanged")
	}
}
