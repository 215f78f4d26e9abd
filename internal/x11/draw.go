package x11

import (
	"errors"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
)

var errNoCoreFont = errors.New("no core X font available")

// CreateTopLevelWindow creates a normal, WM-managed top-level window with the
// given title and size, subscribed to the events a host shell needs. The
// window participates in WM_DELETE_WINDOW so closing it is a ClientMessage,
// not a connection kill.
func (c *Connection) CreateTopLevelWindow(title string, width, height int) (xproto.Window, error) {
	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	events := uint32(xproto.EventMaskExposure |
		xproto.EventMaskStructureNotify |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskButtonPress |
		xproto.EventMaskButtonRelease)

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		c.Root,
		0, 0,
		uint16(width), uint16(height),
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		// Value list order follows the bit positions of the mask (low to high).
		[]uint32{0x2b2b2b, events},
	).Check()
	if err != nil {
		return 0, err
	}

	if err := icccm.WmNameSet(c.XUtil, wid, title); err != nil {
		// Title is cosmetic; the window still works without it.
	}
	if err := icccm.WmProtocolsSet(c.XUtil, wid, []string{"WM_DELETE_WINDOW"}); err != nil {
		// Without the protocol the WM may kill the connection on close.
	}

	return wid, nil
}

// CreateChildWindow creates a plain child window of parent. Used for the
// per-tab containers that hold captured windows.
func (c *Connection) CreateChildWindow(parent xproto.Window, x, y, width, height int, background uint32) (xproto.Window, error) {
	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		parent,
		int16(x), int16(y),
		uint16(width), uint16(height),
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{background, uint32(xproto.EventMaskExposure | xproto.EventMaskSubstructureNotify)},
	).Check()
	if err != nil {
		return 0, err
	}

	return wid, nil
}

// CreateOverrideRedirectWindow creates a window that bypasses the window
// manager. Used for the popup selection menu.
func (c *Connection) CreateOverrideRedirectWindow(background uint32) (xproto.Window, error) {
	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	events := uint32(xproto.EventMaskExposure | xproto.EventMaskButtonPress | xproto.EventMaskLeaveWindow)

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		c.Root,
		0, 0,
		1, 1,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{background, 1, events},
	).Check()
	if err != nil {
		return 0, err
	}

	return wid, nil
}

// TextContext bundles a graphics context and a core font for simple
// rectangle/text drawing on windows we own.
type TextContext struct {
	GC   xproto.Gcontext
	Font xproto.Font
}

// NewTextContext opens a core bitmap font and creates a GC bound to it.
// Falls back through a list of ubiquitous font names.
func (c *Connection) NewTextContext(drawable xproto.Window) (*TextContext, error) {
	conn := c.XUtil.Conn()

	font, err := xproto.NewFontId(conn)
	if err != nil {
		return nil, err
	}

	fontNames := []string{"fixed", "9x15", "8x13", "6x13"}
	opened := false
	for _, fontName := range fontNames {
		if err := xproto.OpenFontChecked(conn, font, uint16(len(fontName)), fontName).Check(); err == nil {
			opened = true
			break
		}
	}
	if !opened {
		return nil, errNoCoreFont
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		return nil, err
	}

	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(drawable),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{0xffffff, 0x000000, uint32(font), 0},
	).Check()
	if err != nil {
		xproto.FreeGC(conn, gc)
		xproto.CloseFont(conn, font)
		return nil, err
	}

	return &TextContext{GC: gc, Font: font}, nil
}

// FillRect fills a rectangle on the drawable with a solid color.
func (c *Connection) FillRect(drawable xproto.Window, tc *TextContext, x, y, width, height int, color uint32) {
	if width < 1 || height < 1 {
		return
	}
	conn := c.XUtil.Conn()
	xproto.ChangeGC(conn, tc.GC, xproto.GcForeground, []uint32{color})
	xproto.PolyFillRectangle(conn, xproto.Drawable(drawable), tc.GC, []xproto.Rectangle{{
		X:      int16(x),
		Y:      int16(y),
		Width:  uint16(width),
		Height: uint16(height),
	}})
}

// DrawText draws a single line of latin-1 text at the given baseline.
// Core-protocol ImageText8 caps a request at 255 bytes.
func (c *Connection) DrawText(drawable xproto.Window, tc *TextContext, x, y int, fg, bg uint32, text string) {
	if text == "" {
		return
	}
	if len(text) > 255 {
		text = text[:255]
	}
	conn := c.XUtil.Conn()
	xproto.ChangeGC(conn, tc.GC, xproto.GcForeground|xproto.GcBackground, []uint32{fg, bg})
	xproto.ImageText8(conn, byte(len(text)), xproto.Drawable(drawable), tc.GC, int16(x), int16(y), text)
}

// Free releases the text context's server resources.
func (tc *TextContext) Free(c *Connection) {
	conn := c.XUtil.Conn()
	if tc.GC != 0 {
		xproto.FreeGC(conn, tc.GC)
		tc.GC = 0
	}
	if tc.Font != 0 {
		xproto.CloseFont(conn, tc.Font)
		tc.Font = 0
	}
}
