//go:build linux

package tabhost

import (
	"fmt"
	"time"

	"github.com/BurntSushi/xgb/xproto"
)

// redrawLocked repaints the tab strip, the status line, and the selected
// tab's placeholder when its capture failed.
func (h *Host) redrawLocked() {
	h.drawStripLocked()
	h.drawStatusLocked()
	if tab := h.tabs.Selected(); tab != nil && tab.Err != "" {
		h.drawPlaceholderLocked(tab)
	}
}

func (h *Host) drawStripLocked() {
	bar := h.cfg.TabBarHeight
	h.conn.FillRect(h.window, h.tc, 0, 0, h.width, bar, colorBarBg)

	layout := LayoutStrip(h.width, bar, h.tabs.Len())
	baseline := bar/2 + 4

	// "+" opens the selection menu.
	h.conn.FillRect(h.window, h.tc, layout.MenuButton.X+2, 2,
		layout.MenuButton.Width-4, bar-4, colorTabIdle)
	h.conn.DrawText(h.window, h.tc, layout.MenuButton.X+layout.MenuButton.Width/2-3,
		baseline, colorText, colorTabIdle, "+")

	for i, tab := range h.tabs.Tabs() {
		rect := layout.TabRects[i]

		bg := uint32(colorTabIdle)
		if tab.Err != "" {
			bg = colorTabError
		}
		if i == h.tabs.SelectedIndex() {
			bg = colorTabSelected
		}
		h.conn.FillRect(h.window, h.tc, rect.X, 2, rect.Width, bar-4, bg)

		budget := (rect.Width - closeBoxWidth - 8) / fontCharWidth
		label := truncateLabel(tab.Window.Title, budget)
		h.conn.DrawText(h.window, h.tc, rect.X+4, baseline, colorText, bg, label)

		closeBox := layout.CloseRects[i]
		h.conn.DrawText(h.window, h.tc, closeBox.X+closeBox.Width/2-3, baseline,
			colorTextDim, bg, "x")
	}

	if h.tabs.Len() == 0 {
		content := h.contentRectLocked()
		h.conn.FillRect(h.window, h.tc, content.X, content.Y,
			content.Width, content.Height, colorContentBg)
		h.conn.DrawText(h.window, h.tc, content.X+12, content.Y+24,
			colorTextDim, colorContentBg, "No tabs. Click + to capture a window.")
	}
}

func (h *Host) drawStatusLocked() {
	if h.cfg.StatusBarHeight <= 0 {
		return
	}

	y := h.height - h.cfg.StatusBarHeight
	h.conn.FillRect(h.window, h.tc, 0, y, h.width, h.cfg.StatusBarHeight, colorStatusBg)

	text := h.statusText
	if text == "" || time.Now().After(h.statusUntil) {
		text = fmt.Sprintf("%d tabs | %d windows available", h.tabs.Len(), len(h.lastScan))
	}

	baseline := y + h.cfg.StatusBarHeight/2 + 4
	h.conn.DrawText(h.window, h.tc, 6, baseline, colorTextDim, colorStatusBg, text)
}

// drawPlaceholderLocked paints the capture-failure text inside a tab's
// container. Containers with a live embedded window never expose, so this
// only ever shows for failed captures.
func (h *Host) drawPlaceholderLocked(tab *Tab) {
	if tab.Err == "" {
		return
	}
	content := h.contentRectLocked()
	container := xproto.Window(tab.Container)
	h.conn.FillRect(container, h.tc, 0, 0, content.Width, content.Height, colorContentBg)
	h.conn.DrawText(container, h.tc, 12, 24, colorText, colorContentBg, tab.Err)
	h.conn.DrawText(container, h.tc, 12, 44, colorTextDim, colorContentBg,
		"Close this tab to dismiss.")
}
