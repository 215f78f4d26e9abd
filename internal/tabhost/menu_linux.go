//go:build linux

package tabhost

import (
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/tabdock/tabdock/internal/platform"
	"github.com/tabdock/tabdock/internal/x11"
)

const (
	menuRowHeight = 22
	menuMinWidth  = 180
	menuMaxWidth  = 480
	menuPadding   = 8
)

// selectionMenu is the popup listing capturable windows. It is an
// override-redirect window so the window manager neither decorates nor
// focuses it; it hides itself when the pointer leaves.
type selectionMenu struct {
	conn    *x11.Connection
	tc      *x11.TextContext
	onPick  func(platform.Window)
	window  xproto.Window

	mu      sync.Mutex
	rows    []platform.Window
	visible bool
	width   int
}

func newSelectionMenu(conn *x11.Connection, tc *x11.TextContext, onPick func(platform.Window)) (*selectionMenu, error) {
	window, err := conn.CreateOverrideRedirectWindow(colorBarBg)
	if err != nil {
		return nil, err
	}

	m := &selectionMenu{
		conn:   conn,
		tc:     tc,
		onPick: onPick,
		window: window,
	}

	xu := conn.XUtil
	xevent.ExposeFun(func(_ *xgbutil.XUtil, _ xevent.ExposeEvent) {
		m.redraw()
	}).Connect(xu, window)

	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		m.handleClick(int(ev.EventY))
	}).Connect(xu, window)

	xevent.LeaveNotifyFun(func(_ *xgbutil.XUtil, _ xevent.LeaveNotifyEvent) {
		m.Hide()
	}).Connect(xu, window)

	return m, nil
}

// Visible reports whether the menu is mapped.
func (m *selectionMenu) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

// SetRows replaces the menu content. A visible menu is resized and repainted
// in place.
func (m *selectionMenu) SetRows(rows []platform.Window) {
	m.mu.Lock()
	m.rows = rows
	m.width = m.rowWidth()
	width := m.width
	height := m.heightLocked()
	visible := m.visible
	m.mu.Unlock()

	if visible {
		m.conn.Resize(m.window, width, height)
		m.redraw()
	}
}

// ShowAt maps the menu at the given root coordinates.
func (m *selectionMenu) ShowAt(x, y int) {
	m.mu.Lock()
	m.visible = true
	m.width = m.rowWidth()
	height := m.heightLocked()
	width := m.width
	m.mu.Unlock()

	m.conn.MoveResizeWithin(m.window, x, y, width, height)
	m.conn.MapWindow(m.window)
	m.redraw()
}

// Hide unmaps the menu.
func (m *selectionMenu) Hide() {
	m.mu.Lock()
	if !m.visible {
		m.mu.Unlock()
		return
	}
	m.visible = false
	m.mu.Unlock()

	m.conn.UnmapWindow(m.window)
}

// Destroy releases the menu window.
func (m *selectionMenu) Destroy() {
	m.conn.DestroyWindow(m.window)
}

func (m *selectionMenu) handleClick(y int) {
	m.mu.Lock()
	index := y / menuRowHeight
	var picked *platform.Window
	if index >= 0 && index < len(m.rows) {
		w := m.rows[index]
		picked = &w
	}
	m.mu.Unlock()

	m.Hide()
	if picked != nil && m.onPick != nil {
		m.onPick(*picked)
	}
}

func (m *selectionMenu) redraw() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.visible {
		return
	}

	height := m.heightLocked()
	m.conn.FillRect(m.window, m.tc, 0, 0, m.width, height, colorBarBg)

	if len(m.rows) == 0 {
		m.conn.DrawText(m.window, m.tc, menuPadding, menuRowHeight/2+4,
			colorTextDim, colorBarBg, "(no capturable windows)")
		return
	}

	budget := (m.width - 2*menuPadding) / fontCharWidth
	for i, row := range m.rows {
		baseline := i*menuRowHeight + menuRowHeight/2 + 4
		m.conn.DrawText(m.window, m.tc, menuPadding, baseline,
			colorText, colorBarBg, truncateLabel(row.Title, budget))
	}
}

func (m *selectionMenu) heightLocked() int {
	n := len(m.rows)
	if n == 0 {
		n = 1
	}
	return n * menuRowHeight
}

func (m *selectionMenu) rowWidth() int {
	width := menuMinWidth
	for _, row := range m.rows {
		w := len(row.Title)*fontCharWidth + 2*menuPadding
		if w > width {
			width = w
		}
	}
	if width > menuMaxWidth {
		width = menuMaxWidth
	}
	return width
}
