package x11

import (
	"github.com/BurntSushi/xgb/xproto"
)

// Reparent moves a foreign top-level window into the given container window
// at the container-relative offset and maps it. The window manager's frame
// is shed as a side effect: reparenting removes the window from the set of
// root children the WM decorates.
func (c *Connection) Reparent(windowID, container xproto.Window, x, y, width, height int) error {
	conn := c.XUtil.Conn()

	// Withdraw first so the WM lets go of the window before we take it.
	xproto.UnmapWindow(conn, windowID)

	if err := xproto.ReparentWindowChecked(conn, windowID, container, int16(x), int16(y)).Check(); err != nil {
		// The unmap above already took effect; put the window back on
		// screen before reporting the failure.
		xproto.MapWindow(conn, windowID)
		return err
	}

	c.resize(windowID, width, height)

	// Deliver DestroyNotify for the captured window so the host can drop
	// its tab when the client exits on its own.
	xproto.ChangeWindowAttributes(conn, windowID,
		xproto.CwEventMask, []uint32{xproto.EventMaskStructureNotify})

	return xproto.MapWindowChecked(conn, windowID).Check()
}

// ReleaseToRoot reparents a captured window back to the root window at the
// given root coordinates and maps it, handing it back to the window manager.
func (c *Connection) ReleaseToRoot(windowID xproto.Window, x, y, width, height int) error {
	conn := c.XUtil.Conn()

	xproto.UnmapWindow(conn, windowID)

	if err := xproto.ReparentWindowChecked(conn, windowID, c.Root, int16(x), int16(y)).Check(); err != nil {
		return err
	}

	if width > 0 && height > 0 {
		c.resize(windowID, width, height)
	}

	return xproto.MapWindowChecked(conn, windowID).Check()
}

// MoveResizeWithin repositions a window inside its current parent.
func (c *Connection) MoveResizeWithin(windowID xproto.Window, x, y, width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	xproto.ConfigureWindow(
		c.XUtil.Conn(),
		windowID,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(x), uint32(y), uint32(width), uint32(height)},
	)
}

// Resize changes a window's size without moving it.
func (c *Connection) Resize(windowID xproto.Window, width, height int) {
	c.resize(windowID, width, height)
}

// MapWindow makes a window visible.
func (c *Connection) MapWindow(windowID xproto.Window) {
	xproto.MapWindow(c.XUtil.Conn(), windowID)
}

// UnmapWindow hides a window without destroying it.
func (c *Connection) UnmapWindow(windowID xproto.Window) {
	xproto.UnmapWindow(c.XUtil.Conn(), windowID)
}

// DestroyWindow destroys a window we created.
func (c *Connection) DestroyWindow(windowID xproto.Window) {
	xproto.DestroyWindow(c.XUtil.Conn(), windowID)
}

func (c *Connection) resize(windowID xproto.Window, width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	xproto.ConfigureWindow(
		c.XUtil.Conn(),
		windowID,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(width), uint32(height)},
	)
}
