//go:build linux

package tabhost

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/tabdock/tabdock/internal/config"
	"github.com/tabdock/tabdock/internal/ipc"
	"github.com/tabdock/tabdock/internal/platform"
	"github.com/tabdock/tabdock/internal/scan"
	"github.com/tabdock/tabdock/internal/x11"
)

// Host is the X11 tab host: one top-level window whose content area shows the
// selected captured window, with a tab strip on top and a status line below.
//
// Methods are safe to call from any goroutine; the X event loop, the poll
// ticker and IPC connections all funnel through one mutex.
type Host struct {
	cfg     *config.Config
	backend *platform.LinuxBackend
	conn    *x11.Connection
	enum    *scan.Enumerator
	logger  *slog.Logger

	mu          sync.Mutex
	window      xproto.Window
	width       int
	height      int
	tabs        *TabList
	tc          *x11.TextContext
	menu        *selectionMenu
	lastScan    []platform.Window
	statusText  string
	statusUntil time.Time

	stopPoll chan struct{}
	pollDone chan struct{}
}

// New creates the host window and wires its event handlers. The window is
// mapped before New returns.
func New(cfg *config.Config, backend *platform.LinuxBackend, enum *scan.Enumerator) (*Host, error) {
	conn := backend.Connection()

	window, err := conn.CreateTopLevelWindow(cfg.HostTitle, cfg.InitialWidth, cfg.InitialHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to create host window: %w", err)
	}

	tc, err := conn.NewTextContext(window)
	if err != nil {
		conn.DestroyWindow(window)
		return nil, fmt.Errorf("failed to set up drawing: %w", err)
	}

	h := &Host{
		cfg:      cfg,
		backend:  backend,
		conn:     conn,
		enum:     enum,
		logger:   slog.New(slog.NewTextHandler(os.Stderr, nil)),
		window:   window,
		width:    cfg.InitialWidth,
		height:   cfg.InitialHeight,
		tabs:     NewTabList(),
		tc:       tc,
		stopPoll: make(chan struct{}),
		pollDone: make(chan struct{}),
	}

	menu, err := newSelectionMenu(conn, tc, h.captureFromMenu)
	if err != nil {
		tc.Free(conn)
		conn.DestroyWindow(window)
		return nil, fmt.Errorf("failed to create selection menu: %w", err)
	}
	h.menu = menu

	// The host window itself shows up in the EWMH client list; never offer
	// it for capture.
	enum.Exclude(platform.WindowID(window))

	h.attachHandlers()
	conn.MapWindow(window)

	return h, nil
}

// Window returns the host's top-level window ID.
func (h *Host) Window() xproto.Window {
	return h.window
}

// Run starts the poll ticker and enters the X event loop. It blocks until
// Shutdown is called or the host window is closed, then disconnects.
func (h *Host) Run() {
	go h.pollLoop()
	h.conn.EventLoop()
	close(h.stopPoll)
	<-h.pollDone
	h.backend.Disconnect()
}

// Shutdown releases every captured window back to the desktop and stops the
// event loop. Safe to call more than once.
func (h *Host) Shutdown() {
	h.mu.Lock()
	for _, tab := range h.tabs.Tabs() {
		h.releaseTabLocked(tab)
	}
	h.tabs = NewTabList()
	h.mu.Unlock()

	xevent.Quit(h.conn.XUtil)
}

func (h *Host) attachHandlers() {
	xu := h.conn.XUtil

	xevent.ExposeFun(func(_ *xgbutil.XUtil, _ xevent.ExposeEvent) {
		h.mu.Lock()
		h.redrawLocked()
		h.mu.Unlock()
	}).Connect(xu, h.window)

	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		h.handleButtonPress(int(ev.EventX), int(ev.EventY), ev.Detail)
	}).Connect(xu, h.window)

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		h.handleResize(int(ev.Width), int(ev.Height))
	}).Connect(xu, h.window)

	xevent.ClientMessageFun(func(_ *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		deleteAtom, err := xprop.Atm(xu, "WM_DELETE_WINDOW")
		if err != nil {
			return
		}
		if xproto.Atom(ev.Data.Data32[0]) == deleteAtom {
			log.Printf("Host window closed, releasing captured windows")
			h.Shutdown()
		}
	}).Connect(xu, h.window)
}

// pollLoop re-enumerates capturable windows on the configured interval.
func (h *Host) pollLoop() {
	defer close(h.pollDone)

	ticker := time.NewTicker(h.cfg.PollInterval())
	defer ticker.Stop()

	h.logger.Info("refresh loop started", "interval", h.cfg.PollInterval())

	h.refresh()
	for {
		select {
		case <-ticker.C:
			h.refresh()
		case <-h.stopPoll:
			return
		}
	}
}

// refresh pulls a fresh window listing. The selection menu is only rebuilt
// when the set of titles actually changed, so an open menu doesn't flicker
// on every tick.
func (h *Host) refresh() {
	windows := h.enum.List()

	h.mu.Lock()
	defer h.mu.Unlock()

	changed := !scan.SameTitles(windows, h.lastScan)
	h.lastScan = windows

	if changed {
		h.logger.Debug("window list changed", "windows", len(windows))
	}
	if changed && h.menu.Visible() {
		h.menu.SetRows(windows)
	}
	h.drawStatusLocked()
}

func (h *Host) handleButtonPress(x, y int, button xproto.Button) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if y >= h.cfg.TabBarHeight {
		return
	}

	layout := LayoutStrip(h.width, h.cfg.TabBarHeight, h.tabs.Len())
	kind, index := layout.Hit(x, y)

	switch kind {
	case HitMenu:
		h.toggleMenuLocked()
	case HitTab:
		tab := h.tabs.Tabs()[index]
		if button == xproto.ButtonIndex2 {
			// Middle click detaches the tab without selecting it first.
			h.removeTabLocked(tab, true)
		} else {
			h.tabs.Select(index)
			h.applyLayoutLocked()
		}
		h.redrawLocked()
	case HitClose:
		h.removeTabLocked(h.tabs.Tabs()[index], true)
		h.redrawLocked()
	}
}

func (h *Host) handleResize(width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if width == h.width && height == h.height {
		return
	}
	h.width = width
	h.height = height
	h.applyLayoutLocked()
	h.redrawLocked()
}

func (h *Host) toggleMenuLocked() {
	if h.menu.Visible() {
		h.menu.Hide()
		return
	}

	hostX, hostY, _, _, ok := h.conn.WindowGeometry(h.window)
	if !ok {
		hostX, hostY = 0, 0
	}
	h.menu.SetRows(h.lastScan)
	h.menu.ShowAt(hostX, hostY+h.cfg.TabBarHeight)
}

// captureFromMenu is the menu's row-click callback.
func (h *Host) captureFromMenu(win platform.Window) {
	if err := h.CaptureWindow(win.ID); err != nil {
		log.Printf("Capture of %q failed: %v", win.Title, err)
	}
}

// contentRectLocked is the area between tab strip and status line, in host
// window coordinates.
func (h *Host) contentRectLocked() platform.Rect {
	height := h.height - h.cfg.TabBarHeight - h.cfg.StatusBarHeight
	if height < 1 {
		height = 1
	}
	return platform.Rect{
		X:      0,
		Y:      h.cfg.TabBarHeight,
		Width:  h.width,
		Height: height,
	}
}

// applyLayoutLocked sizes every container to the content area, maps the
// selected one, and fits the captured windows inside.
func (h *Host) applyLayoutLocked() {
	content := h.contentRectLocked()
	selected := h.tabs.SelectedIndex()

	for i, tab := range h.tabs.Tabs() {
		container := xproto.Window(tab.Container)
		h.conn.MoveResizeWithin(container, content.X, content.Y, content.Width, content.Height)
		if i == selected {
			h.conn.MapWindow(container)
		} else {
			h.conn.UnmapWindow(container)
		}
		if tab.Err == "" {
			h.backend.MoveResize(tab.Window.ID, platform.Rect{Width: content.Width, Height: content.Height})
		}
	}
}

// setStatusLocked puts a transient message on the status line.
func (h *Host) setStatusLocked(format string, args ...interface{}) {
	h.statusText = fmt.Sprintf(format, args...)
	h.statusUntil = time.Now().Add(statusDuration)
	h.drawStatusLocked()
}

// CapturableWindows implements ipc.Host.
func (h *Host) CapturableWindows() []platform.Window {
	return h.enum.List()
}

// Tabs implements ipc.Host.
func (h *Host) Tabs() []ipc.TabInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	infos := make([]ipc.TabInfo, h.tabs.Len())
	for i, tab := range h.tabs.Tabs() {
		infos[i] = ipc.TabInfo{
			WindowID: uint32(tab.Window.ID),
			Title:    tab.Window.Title,
			Selected: i == h.tabs.SelectedIndex(),
		}
	}
	return infos
}

// CaptureWindow reparents the given top-level window into a fresh container
// tab and selects it. Capturing a window that is already a tab just focuses
// its tab. Implements ipc.Host.
func (h *Host) CaptureWindow(id platform.WindowID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.captureLocked(id)
}

func (h *Host) captureLocked(id platform.WindowID) error {
	// The hotkey fires on whatever window holds focus, which is the host
	// itself when its strip was just clicked; reparenting the host under
	// its own child would unmap the whole UI.
	if id == platform.WindowID(h.window) || h.tabs.OwnsContainer(id) {
		return fmt.Errorf("window 0x%x is the host's own window", uint32(id))
	}

	if h.tabs.SelectWindow(id) {
		h.applyLayoutLocked()
		h.redrawLocked()
		return nil
	}

	win := h.describeWindowLocked(id)
	content := h.contentRectLocked()

	container, err := h.conn.CreateChildWindow(h.window, content.X, content.Y,
		content.Width, content.Height, colorContentBg)
	if err != nil {
		return fmt.Errorf("failed to create tab container: %w", err)
	}

	tab := &Tab{Window: win, Container: platform.WindowID(container)}

	err = h.backend.Capture(id, tab.Container,
		platform.Rect{Width: content.Width, Height: content.Height})
	if err != nil {
		// Keep the tab so the failure is visible and closable; the
		// container shows the placeholder instead of the window.
		tab.Err = fmt.Sprintf("could not embed %q: %v", win.Title, err)
		log.Printf("Capture failed for window 0x%x: %v", uint32(id), err)
	} else {
		h.watchCapturedWindow(id)
	}

	h.tabs.Add(tab)
	h.attachContainerHandlers(tab)
	h.applyLayoutLocked()
	h.redrawLocked()
	if tab.Err != "" {
		h.setStatusLocked("capture of %q failed", win.Title)
	} else {
		h.setStatusLocked("captured %q", win.Title)
	}

	return nil
}

// describeWindowLocked resolves a window ID to its descriptor, preferring the
// last scan so the tab title matches what the menu showed.
func (h *Host) describeWindowLocked(id platform.WindowID) platform.Window {
	for _, w := range h.lastScan {
		if w.ID == id {
			return w
		}
	}

	win := platform.Window{ID: id}
	win.Title = h.conn.WindowTitle(xproto.Window(id))
	if win.Title == "" {
		win.Title = fmt.Sprintf("window 0x%x", uint32(id))
	}
	win.AppID = h.conn.WindowClass(xproto.Window(id))
	win.PID = h.conn.WindowPID(xproto.Window(id))
	return win
}

// watchCapturedWindow drops the tab when the captured client exits on its
// own. Reparent subscribed the window to StructureNotify.
func (h *Host) watchCapturedWindow(id platform.WindowID) {
	xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, _ xevent.DestroyNotifyEvent) {
		h.mu.Lock()
		defer h.mu.Unlock()

		tab, ok := h.tabs.Remove(id)
		if !ok {
			return
		}
		h.backend.Forget(id)
		h.conn.DestroyWindow(xproto.Window(tab.Container))
		h.applyLayoutLocked()
		h.redrawLocked()
		h.setStatusLocked("%q closed", tab.Window.Title)
	}).Connect(h.conn.XUtil, xproto.Window(id))
}

func (h *Host) attachContainerHandlers(tab *Tab) {
	xevent.ExposeFun(func(_ *xgbutil.XUtil, _ xevent.ExposeEvent) {
		h.mu.Lock()
		h.drawPlaceholderLocked(tab)
		h.mu.Unlock()
	}).Connect(h.conn.XUtil, xproto.Window(tab.Container))
}

// ReleaseTab gives a captured window back to the desktop and closes its tab.
// id 0 releases the selected tab. Implements ipc.Host.
func (h *Host) ReleaseTab(id platform.WindowID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var tab *Tab
	if id == 0 {
		tab = h.tabs.Selected()
		if tab == nil {
			return fmt.Errorf("no tab selected")
		}
	} else if i := h.tabs.IndexOf(id); i >= 0 {
		tab = h.tabs.Tabs()[i]
	} else {
		return fmt.Errorf("no tab holds window %d", id)
	}

	h.removeTabLocked(tab, true)
	h.redrawLocked()
	return nil
}

// FocusTab selects the tab holding the given window. Implements ipc.Host.
func (h *Host) FocusTab(id platform.WindowID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.tabs.SelectWindow(id) {
		return fmt.Errorf("no tab holds window %d", id)
	}
	h.applyLayoutLocked()
	h.redrawLocked()

	// Focus over IPC usually arrives while another window is active; ask
	// the WM to bring the host forward as well.
	if err := h.conn.FocusWindow(h.window); err != nil {
		log.Printf("Failed to raise host window: %v", err)
	}
	return nil
}

// CloseWindow asks a window's client to close itself via WM_DELETE_WINDOW.
// Works for capturable windows and captured tabs alike; a closing tab is
// cleaned up by its DestroyNotify handler. Implements ipc.Host.
func (h *Host) CloseWindow(id platform.WindowID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if id == platform.WindowID(h.window) || h.tabs.OwnsContainer(id) {
		return fmt.Errorf("window 0x%x is the host's own window", uint32(id))
	}
	return h.backend.Close(id)
}

// removeTabLocked drops a tab from the list, optionally releasing the window
// back to the desktop, and destroys its container.
func (h *Host) removeTabLocked(tab *Tab, release bool) {
	h.tabs.Remove(tab.Window.ID)
	if release {
		h.releaseTabLocked(tab)
	}
	h.conn.DestroyWindow(xproto.Window(tab.Container))
	h.applyLayoutLocked()
	h.setStatusLocked("released %q", tab.Window.Title)
}

// releaseTabLocked hands the window back to the window manager. Release is
// best effort: a window that died while captured just gets forgotten.
func (h *Host) releaseTabLocked(tab *Tab) {
	if tab.Err != "" {
		h.backend.Forget(tab.Window.ID)
		return
	}
	xevent.Detach(h.conn.XUtil, xproto.Window(tab.Window.ID))
	if err := h.backend.Release(tab.Window.ID); err != nil {
		log.Printf("Release of window 0x%x failed: %v", uint32(tab.Window.ID), err)
	}
}
