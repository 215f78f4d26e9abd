//go:build linux

package platform

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/tabdock/tabdock/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection

	mu    sync.Mutex
	saved map[WindowID]Rect // pre-capture geometry, keyed by captured window
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{
		conn:  conn,
		saved: make(map[WindowID]Rect),
	}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn), nil
}

// NewBackend opens the default platform backend for this OS.
func NewBackend() (Backend, error) {
	return NewLinuxBackendFromDisplay()
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Connection returns the wrapped X11 connection.
func (b *LinuxBackend) Connection() *x11.Connection {
	return b.conn
}

// ListWindows lists normal, titled top-level windows on the current desktop.
// Windows already captured by a host are absent: reparenting removes them
// from the EWMH client list.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ListClientWindows()
	if err != nil {
		return nil, err
	}

	// Get current desktop for filtering.
	currentDesktop, desktopErr := ewmh.CurrentDesktopGet(conn.XUtil)
	hasCurrentDesktop := desktopErr == nil

	windows := make([]Window, 0, len(clients))
	for _, windowID := range clients {
		if !conn.IsNormalWindow(windowID) {
			continue
		}

		// Filter by current desktop.
		if hasCurrentDesktop {
			desktop, err := ewmh.WmDesktopGet(conn.XUtil, windowID)
			if err == nil && desktop != uint(0xFFFFFFFF) && desktop != currentDesktop {
				continue
			}
		}

		if b.isHidden(windowID) {
			continue
		}

		title := conn.WindowTitle(windowID)

		x, y, w, h, ok := b.windowRect(windowID)
		var bounds Rect
		if ok {
			bounds = Rect{X: x, Y: y, Width: w, Height: h}
		}

		windows = append(windows, Window{
			ID:     WindowID(windowID),
			PID:    conn.WindowPID(windowID),
			AppID:  conn.WindowClass(windowID),
			Title:  title,
			Bounds: bounds,
		})
	}

	return windows, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// Capture reparents a top-level window into the container and fits it to the
// container-relative bounds. The window's previous root geometry is kept so
// Release can put it back where it came from.
func (b *LinuxBackend) Capture(win, container WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	if x, y, w, h, ok := b.windowRect(xproto.Window(win)); ok {
		b.mu.Lock()
		b.saved[win] = Rect{X: x, Y: y, Width: w, Height: h}
		b.mu.Unlock()
	}

	return conn.Reparent(xproto.Window(win), xproto.Window(container),
		bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

// Release reparents a captured window back to the desktop root, restoring
// its pre-capture geometry when known.
func (b *LinuxBackend) Release(win WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	b.mu.Lock()
	restore, known := b.saved[win]
	delete(b.saved, win)
	b.mu.Unlock()

	if !known {
		// Let the window manager pick a spot.
		return conn.ReleaseToRoot(xproto.Window(win), 0, 0, 0, 0)
	}
	return conn.ReleaseToRoot(xproto.Window(win), restore.X, restore.Y, restore.Width, restore.Height)
}

// Forget drops the saved geometry for a window that no longer exists.
func (b *LinuxBackend) Forget(win WindowID) {
	b.mu.Lock()
	delete(b.saved, win)
	b.mu.Unlock()
}

// MoveResize repositions a window within its current parent.
func (b *LinuxBackend) MoveResize(win WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	conn.MoveResizeWithin(xproto.Window(win), bounds.X, bounds.Y, bounds.Width, bounds.Height)
	return nil
}

// Close requests graceful window close via WM_DELETE_WINDOW.
func (b *LinuxBackend) Close(win WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.CloseWindow(xproto.Window(win))
}

func (b *LinuxBackend) isHidden(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(b.conn.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func (b *LinuxBackend) windowRect(windowID xproto.Window) (x, y, w, h int, ok bool) {
	return b.conn.WindowGeometry(windowID)
}
