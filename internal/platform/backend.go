package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Window contains metadata and geometry for a capturable top-level window.
type Window struct {
	ID     WindowID
	PID    int
	AppID  string
	Title  string
	Bounds Rect
}

// Backend abstracts window-system operations across platforms.
//
// Capture reparents a foreign top-level window under the given container at
// the container-relative bounds and makes it visible. Release undoes a
// previous Capture: the window goes back to the desktop with its pre-capture
// geometry where that is known. Both are best-effort; callers surface
// failures on the status line rather than aborting.
type Backend interface {
	ListWindows() ([]Window, error)
	ActiveWindow() (WindowID, error)
	Capture(win, container WindowID, bounds Rect) error
	Release(win WindowID) error
	MoveResize(win WindowID, bounds Rect) error
	Close(win WindowID) error
	Disconnect()
}
