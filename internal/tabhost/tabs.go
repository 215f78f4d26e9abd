// Package tabhost implements the host shell: a single window that holds
// captured foreign windows as tabs.
package tabhost

import "github.com/tabdock/tabdock/internal/platform"

// Tab is one captured window: its descriptor at capture time and the
// container window it lives in. Err carries the inline placeholder text
// when the embed failed; the tab still exists so the user can close it.
type Tab struct {
	Window    platform.Window
	Container platform.WindowID
	Err       string
}

// TabList is the ordered set of captured tabs plus the selection.
// Not safe for concurrent use; the host serializes access.
type TabList struct {
	tabs     []*Tab
	selected int
}

// NewTabList returns an empty tab list.
func NewTabList() *TabList {
	return &TabList{selected: -1}
}

// Len returns the number of tabs.
func (l *TabList) Len() int { return len(l.tabs) }

// Tabs returns the tabs in strip order.
func (l *TabList) Tabs() []*Tab { return l.tabs }

// SelectedIndex returns the selected tab index, -1 when empty.
func (l *TabList) SelectedIndex() int { return l.selected }

// Selected returns the selected tab, nil when empty.
func (l *TabList) Selected() *Tab {
	if l.selected < 0 || l.selected >= len(l.tabs) {
		return nil
	}
	return l.tabs[l.selected]
}

// IndexOf returns the index of the tab holding the given window, or -1.
func (l *TabList) IndexOf(id platform.WindowID) int {
	for i, tab := range l.tabs {
		if tab.Window.ID == id {
			return i
		}
	}
	return -1
}

// Add appends a tab and selects it. A window id is never captured twice:
// adding a duplicate selects the existing tab and reports false.
func (l *TabList) Add(tab *Tab) bool {
	if i := l.IndexOf(tab.Window.ID); i >= 0 {
		l.selected = i
		return false
	}
	l.tabs = append(l.tabs, tab)
	l.selected = len(l.tabs) - 1
	return true
}

// Select sets the selection by index. Out-of-range is ignored.
func (l *TabList) Select(i int) bool {
	if i < 0 || i >= len(l.tabs) {
		return false
	}
	l.selected = i
	return true
}

// SelectWindow selects the tab holding the given window.
func (l *TabList) SelectWindow(id platform.WindowID) bool {
	if i := l.IndexOf(id); i >= 0 {
		l.selected = i
		return true
	}
	return false
}

// OwnsContainer reports whether the given window is one of the tab
// containers. Containers must never be offered for capture.
func (l *TabList) OwnsContainer(id platform.WindowID) bool {
	for _, tab := range l.tabs {
		if tab.Container == id {
			return true
		}
	}
	return false
}

// Remove deletes the tab holding the given window and returns it. When the
// selected tab is removed, selection moves to the previous tab (or the
// first remaining one).
func (l *TabList) Remove(id platform.WindowID) (*Tab, bool) {
	i := l.IndexOf(id)
	if i < 0 {
		return nil, false
	}

	tab := l.tabs[i]
	l.tabs = append(l.tabs[:i], l.tabs[i+1:]...)

	switch {
	case len(l.tabs) == 0:
		l.selected = -1
	case i < l.selected:
		l.selected--
	case i == l.selected:
		if l.selected >= len(l.tabs) {
			l.selected = len(l.tabs) - 1
		}
	}

	return tab, true
}
