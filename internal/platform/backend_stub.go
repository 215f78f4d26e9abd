//go:build !linux && !windows

package platform

import "fmt"

// NewBackend reports that no window-system backend exists for this OS.
// Capture requires X11 (Linux) or Win32 (Windows).
func NewBackend() (Backend, error) {
	return nil, fmt.Errorf("window capture is not supported on this platform")
}
