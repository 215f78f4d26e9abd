package tabhost

import "github.com/tabdock/tabdock/internal/platform"

// Strip metrics in pixels.
const (
	menuButtonWidth = 36
	tabMinWidth     = 80
	tabMaxWidth     = 220
	closeBoxWidth   = 18
	tabGapWidth     = 2
)

// HitKind classifies what a click on the tab strip landed on.
type HitKind int

const (
	HitNone HitKind = iota
	HitMenu
	HitTab
	HitClose
)

// StripLayout is the computed geometry of the tab strip for a given host
// width and tab count. All rects are host-relative with the strip at y=0.
type StripLayout struct {
	Width      int
	Height     int
	MenuButton platform.Rect
	TabRects   []platform.Rect
	CloseRects []platform.Rect
}

// LayoutStrip computes strip geometry: the "+" menu button on the left,
// then evenly sized tabs clamped to [tabMinWidth, tabMaxWidth].
func LayoutStrip(width, barHeight, tabCount int) StripLayout {
	layout := StripLayout{
		Width:  width,
		Height: barHeight,
		MenuButton: platform.Rect{
			X: 0, Y: 0,
			Width:  menuButtonWidth,
			Height: barHeight,
		},
	}

	if tabCount <= 0 {
		return layout
	}

	avail := width - menuButtonWidth - tabCount*tabGapWidth
	if avail < 0 {
		avail = 0
	}
	tabWidth := avail / tabCount
	if tabWidth > tabMaxWidth {
		tabWidth = tabMaxWidth
	}
	if tabWidth < tabMinWidth {
		tabWidth = tabMinWidth
	}

	layout.TabRects = make([]platform.Rect, tabCount)
	layout.CloseRects = make([]platform.Rect, tabCount)

	x := menuButtonWidth + tabGapWidth
	for i := 0; i < tabCount; i++ {
		layout.TabRects[i] = platform.Rect{X: x, Y: 0, Width: tabWidth, Height: barHeight}
		layout.CloseRects[i] = platform.Rect{
			X:      x + tabWidth - closeBoxWidth,
			Y:      0,
			Width:  closeBoxWidth,
			Height: barHeight,
		}
		x += tabWidth + tabGapWidth
	}

	return layout
}

// Hit resolves a strip-relative click to what it landed on. For HitTab and
// HitClose the returned index identifies the tab.
func (s StripLayout) Hit(x, y int) (HitKind, int) {
	if y < 0 || y >= s.Height || x < 0 || x >= s.Width {
		return HitNone, -1
	}
	if rectContains(s.MenuButton, x, y) {
		return HitMenu, -1
	}
	for i := range s.TabRects {
		if rectContains(s.CloseRects[i], x, y) {
			return HitClose, i
		}
		if rectContains(s.TabRects[i], x, y) {
			return HitTab, i
		}
	}
	return HitNone, -1
}

func rectContains(r platform.Rect, x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// truncateLabel shortens a tab title to fit charBudget core-font cells,
// appending an ellipsis marker when cut. Cuts land on rune boundaries so a
// multi-byte title never turns into mojibake.
func truncateLabel(title string, charBudget int) string {
	if charBudget < 1 {
		return ""
	}
	runes := []rune(title)
	if len(runes) <= charBudget {
		return title
	}
	if charBudget <= 2 {
		return string(runes[:charBudget])
	}
	return string(runes[:charBudget-2]) + ".."
}
