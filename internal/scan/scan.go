// Package scan turns raw backend window lists into the filtered, sorted
// menu of capturable windows the host shows.
package scan

import (
	"sort"
	"strings"
	"sync"

	"github.com/tabdock/tabdock/internal/platform"
)

// Enumerator lists capturable windows. It filters out the host's own
// windows, untitled windows and configured title excludes, sorts by title,
// and keeps the last successful listing so transient enumeration failures
// degrade to slightly stale data instead of an empty menu.
type Enumerator struct {
	backend platform.Backend

	mu            sync.Mutex
	excluded      map[platform.WindowID]bool
	excludeTitles []string
	last          []platform.Window
}

// NewEnumerator creates an enumerator over the given backend.
// excludeTitles are case-insensitive substrings; a window whose title
// contains one of them never appears in the listing.
func NewEnumerator(backend platform.Backend, excludeTitles []string) *Enumerator {
	return &Enumerator{
		backend:       backend,
		excluded:      make(map[platform.WindowID]bool),
		excludeTitles: excludeTitles,
	}
}

// Exclude hides specific window IDs from all future listings. Used for the
// host window and its tab containers.
func (e *Enumerator) Exclude(ids ...platform.WindowID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range ids {
		e.excluded[id] = true
	}
}

// Unexclude re-admits a window ID, e.g. after a container is destroyed.
func (e *Enumerator) Unexclude(ids ...platform.WindowID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range ids {
		delete(e.excluded, id)
	}
}

// List returns the current capturable windows sorted by title. It never
// returns an error: on backend failure the last successful listing (or an
// empty slice) is returned.
func (e *Enumerator) List() []platform.Window {
	windows, err := e.backend.ListWindows()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		return append([]platform.Window(nil), e.last...)
	}

	filtered := make([]platform.Window, 0, len(windows))
	for _, w := range windows {
		if w.Title == "" {
			continue
		}
		if e.excluded[w.ID] {
			continue
		}
		if e.titleExcluded(w.Title) {
			continue
		}
		filtered = append(filtered, w)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Title != filtered[j].Title {
			return filtered[i].Title < filtered[j].Title
		}
		return filtered[i].ID < filtered[j].ID
	})

	e.last = filtered
	return append([]platform.Window(nil), filtered...)
}

func (e *Enumerator) titleExcluded(title string) bool {
	lower := strings.ToLower(title)
	for _, sub := range e.excludeTitles {
		if sub == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// SameTitles reports whether two listings carry the same title multiset.
// The host skips rebuilding its selection menu when this holds.
func SameTitles(a, b []platform.Window) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, w := range a {
		counts[w.Title]++
	}
	for _, w := range b {
		counts[w.Title]--
		if counts[w.Title] < 0 {
			return false
		}
	}
	return true
}
