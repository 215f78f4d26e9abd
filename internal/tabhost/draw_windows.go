//go:build windows

package tabhost

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"
)

const transparentBk = 1

// colorref converts a 0xRRGGBB pixel to the 0x00BBGGRR COLORREF GDI wants.
func colorref(rgb uint32) uint32 {
	r := (rgb >> 16) & 0xFF
	g := (rgb >> 8) & 0xFF
	b := rgb & 0xFF
	return b<<16 | g<<8 | r
}

// brush returns a cached solid brush for the color. Brushes live until the
// message loop exits.
func (h *Host) brush(rgb uint32) uintptr {
	ref := colorref(rgb)
	if cached, ok := h.brushes[ref]; ok {
		return cached
	}
	brush, _, _ := procCreateSolidBrush.Call(uintptr(ref))
	h.brushes[ref] = brush
	return brush
}

func (h *Host) fillRect(hdc uintptr, x, y, width, height int, rgb uint32) {
	rect := winRect{
		Left:   int32(x),
		Top:    int32(y),
		Right:  int32(x + width),
		Bottom: int32(y + height),
	}
	procFillRect.Call(hdc, uintptr(unsafe.Pointer(&rect)), h.brush(rgb))
}

func (h *Host) textOut(hdc uintptr, x, y int, fg uint32, text string) {
	utf16, err := syscall.UTF16FromString(text)
	if err != nil {
		return
	}
	procSetTextColor.Call(hdc, uintptr(colorref(fg)))
	procTextOutW.Call(hdc, uintptr(x), uintptr(y),
		uintptr(unsafe.Pointer(&utf16[0])), uintptr(len(utf16)-1))
}

// paint repaints the tab strip, status line, and failed-capture placeholder.
func (h *Host) paint(hwnd uintptr) {
	var ps paintStruct
	hdc, _, _ := procBeginPaint.Call(hwnd, uintptr(unsafe.Pointer(&ps)))
	if hdc == 0 {
		return
	}
	defer procEndPaint.Call(hwnd, uintptr(unsafe.Pointer(&ps)))

	// Text draws over freshly filled rects; skip GDI's own background fill.
	procSetBkMode.Call(hdc, transparentBk)

	h.mu.Lock()
	defer h.mu.Unlock()

	bar := h.cfg.TabBarHeight
	h.fillRect(hdc, 0, 0, h.width, bar, colorBarBg)

	layout := LayoutStrip(h.width, bar, h.tabs.Len())
	textY := bar/2 - 8

	h.fillRect(hdc, layout.MenuButton.X+2, 2, layout.MenuButton.Width-4, bar-4, colorTabIdle)
	h.textOut(hdc, layout.MenuButton.X+layout.MenuButton.Width/2-4, textY, colorText, "+")

	for i, tab := range h.tabs.Tabs() {
		rect := layout.TabRects[i]

		bg := uint32(colorTabIdle)
		if tab.Err != "" {
			bg = colorTabError
		}
		if i == h.tabs.SelectedIndex() {
			bg = colorTabSelected
		}
		h.fillRect(hdc, rect.X, 2, rect.Width, bar-4, bg)

		budget := (rect.Width - closeBoxWidth - 8) / fontCharWidth
		h.textOut(hdc, rect.X+4, textY, colorText, truncateLabel(tab.Window.Title, budget))

		closeBox := layout.CloseRects[i]
		h.textOut(hdc, closeBox.X+closeBox.Width/2-4, textY, colorTextDim, "x")
	}

	content := h.contentRectLocked()
	selected := h.tabs.Selected()
	switch {
	case h.tabs.Len() == 0:
		h.fillRect(hdc, content.X, content.Y, content.Width, content.Height, colorContentBg)
		h.textOut(hdc, content.X+12, content.Y+12, colorTextDim,
			"No tabs. Click + to capture a window.")
	case selected != nil && selected.Err != "":
		h.fillRect(hdc, content.X, content.Y, content.Width, content.Height, colorContentBg)
		h.textOut(hdc, content.X+12, content.Y+12, colorText, selected.Err)
		h.textOut(hdc, content.X+12, content.Y+32, colorTextDim, "Close this tab to dismiss.")
	}

	if h.cfg.StatusBarHeight > 0 {
		y := h.height - h.cfg.StatusBarHeight
		h.fillRect(hdc, 0, y, h.width, h.cfg.StatusBarHeight, colorStatusBg)

		text := h.statusText
		if text == "" || time.Now().After(h.statusUntil) {
			text = fmt.Sprintf("%d tabs | %d windows available", h.tabs.Len(), len(h.lastScan))
		}
		h.textOut(hdc, 6, y+h.cfg.StatusBarHeight/2-8, colorTextDim, text)
	}
}
