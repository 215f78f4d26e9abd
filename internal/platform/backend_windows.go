//go:build windows

package platform

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")
	psapi    = windows.NewLazySystemDLL("psapi.dll")

	procEnumWindows              = user32.NewProc("EnumWindows")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procIsWindow                 = user32.NewProc("IsWindow")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW     = user32.NewProc("GetWindowTextLengthW")
	procGetWindowLongW           = user32.NewProc("GetWindowLongW")
	procSetWindowLongW           = user32.NewProc("SetWindowLongW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetWindowRect            = user32.NewProc("GetWindowRect")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetShellWindow           = user32.NewProc("GetShellWindow")
	procSetParent                = user32.NewProc("SetParent")
	procMoveWindow               = user32.NewProc("MoveWindow")
	procShowWindow               = user32.NewProc("ShowWindow")
	procPostMessageW             = user32.NewProc("PostMessageW")

	procOpenProcess          = kernel32.NewProc("OpenProcess")
	procCloseHandle          = kernel32.NewProc("CloseHandle")
	procGetModuleFileNameExW = psapi.NewProc("GetModuleFileNameExW")
)

const (
	gwlStyle   = ^uintptr(16) + 1 // -16 as uintptr
	gwlExStyle = ^uintptr(20) + 1 // -20 as uintptr

	wsCaption    = 0x00C00000
	wsThickFrame = 0x00040000
	wsChild      = 0x40000000
	wsPopup      = 0x80000000

	wsExToolWindow = 0x00000080

	swHide = 0
	swShow = 5

	wmClose = 0x0010
)

type winRect struct {
	Left, Top, Right, Bottom int32
}

type capturedState struct {
	bounds Rect
	style  uintptr
}

// WindowsBackend implements Backend on top of the Win32 user32 API.
type WindowsBackend struct {
	mu    sync.Mutex
	saved map[WindowID]capturedState
}

var _ Backend = (*WindowsBackend)(nil)

// NewWindowsBackend creates a new Win32 platform backend.
func NewWindowsBackend() *WindowsBackend {
	return &WindowsBackend{saved: make(map[WindowID]capturedState)}
}

// NewBackend opens the default platform backend for this OS.
func NewBackend() (Backend, error) {
	return NewWindowsBackend(), nil
}

// Disconnect is a no-op; user32 needs no teardown.
func (b *WindowsBackend) Disconnect() {}

// ListWindows enumerates visible, non-tool top-level windows.
func (b *WindowsBackend) ListWindows() ([]Window, error) {
	var windowsOut []Window

	shell, _, _ := procGetShellWindow.Call()

	cb := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if hwnd == shell {
			return 1
		}
		if visible, _, _ := procIsWindowVisible.Call(hwnd); visible == 0 {
			return 1
		}
		exStyle, _, _ := procGetWindowLongW.Call(hwnd, gwlExStyle)
		if exStyle&wsExToolWindow != 0 {
			return 1
		}

		title := windowText(hwnd)

		var rect winRect
		bounds := Rect{}
		if ret, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rect))); ret != 0 {
			bounds = Rect{
				X:      int(rect.Left),
				Y:      int(rect.Top),
				Width:  int(rect.Right - rect.Left),
				Height: int(rect.Bottom - rect.Top),
			}
		}

		var pid uint32
		procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))

		windowsOut = append(windowsOut, Window{
			ID:     WindowID(hwnd),
			PID:    int(pid),
			AppID:  processName(pid),
			Title:  title,
			Bounds: bounds,
		})
		return 1
	})

	ret, _, callErr := procEnumWindows.Call(cb, 0)
	if ret == 0 {
		return nil, fmt.Errorf("EnumWindows failed: %v", callErr)
	}
	return windowsOut, nil
}

// ActiveWindow returns the foreground window.
func (b *WindowsBackend) ActiveWindow() (WindowID, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return 0, fmt.Errorf("no foreground window")
	}
	return WindowID(hwnd), nil
}

// Capture embeds a top-level window into the container as a child window,
// saving its style and screen rect for Release.
func (b *WindowsBackend) Capture(win, container WindowID, bounds Rect) error {
	hwnd := uintptr(win)
	if alive, _, _ := procIsWindow.Call(hwnd); alive == 0 {
		return fmt.Errorf("window %#x no longer exists", win)
	}

	style, _, _ := procGetWindowLongW.Call(hwnd, gwlStyle)

	var rect winRect
	state := capturedState{style: style}
	if ret, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rect))); ret != 0 {
		state.bounds = Rect{
			X:      int(rect.Left),
			Y:      int(rect.Top),
			Width:  int(rect.Right - rect.Left),
			Height: int(rect.Bottom - rect.Top),
		}
	}

	// Shed the frame and become a child before reparenting; SetParent on a
	// styled top-level leaves broken non-client areas behind.
	newStyle := (style &^ (wsCaption | wsThickFrame | wsPopup)) | wsChild
	procSetWindowLongW.Call(hwnd, gwlStyle, newStyle)

	if ret, _, callErr := procSetParent.Call(hwnd, uintptr(container)); ret == 0 {
		procSetWindowLongW.Call(hwnd, gwlStyle, style)
		return fmt.Errorf("SetParent failed: %v", callErr)
	}

	b.mu.Lock()
	b.saved[win] = state
	b.mu.Unlock()

	procMoveWindow.Call(hwnd,
		uintptr(bounds.X), uintptr(bounds.Y),
		uintptr(bounds.Width), uintptr(bounds.Height), 1)
	procShowWindow.Call(hwnd, swShow)
	return nil
}

// Release detaches a captured window back to the desktop and restores its
// original style and screen rect.
func (b *WindowsBackend) Release(win WindowID) error {
	hwnd := uintptr(win)

	b.mu.Lock()
	state, known := b.saved[win]
	delete(b.saved, win)
	b.mu.Unlock()

	if alive, _, _ := procIsWindow.Call(hwnd); alive == 0 {
		return fmt.Errorf("window %#x no longer exists", win)
	}

	if ret, _, callErr := procSetParent.Call(hwnd, 0); ret == 0 {
		return fmt.Errorf("SetParent(NULL) failed: %v", callErr)
	}

	if known {
		procSetWindowLongW.Call(hwnd, gwlStyle, state.style)
		if state.bounds.Width > 0 && state.bounds.Height > 0 {
			procMoveWindow.Call(hwnd,
				uintptr(state.bounds.X), uintptr(state.bounds.Y),
				uintptr(state.bounds.Width), uintptr(state.bounds.Height), 1)
		}
	}
	procShowWindow.Call(hwnd, swShow)
	return nil
}

// Forget drops the saved state for a window that no longer exists.
func (b *WindowsBackend) Forget(win WindowID) {
	b.mu.Lock()
	delete(b.saved, win)
	b.mu.Unlock()
}

// MoveResize repositions a window within its current parent.
func (b *WindowsBackend) MoveResize(win WindowID, bounds Rect) error {
	ret, _, callErr := procMoveWindow.Call(uintptr(win),
		uintptr(bounds.X), uintptr(bounds.Y),
		uintptr(bounds.Width), uintptr(bounds.Height), 1)
	if ret == 0 {
		return fmt.Errorf("MoveWindow failed: %v", callErr)
	}
	return nil
}

// Close requests graceful window close via WM_CLOSE.
func (b *WindowsBackend) Close(win WindowID) error {
	ret, _, callErr := procPostMessageW.Call(uintptr(win), wmClose, 0, 0)
	if ret == 0 {
		return fmt.Errorf("PostMessage(WM_CLOSE) failed: %v", callErr)
	}
	return nil
}

func windowText(hwnd uintptr) string {
	length, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if length == 0 {
		return ""
	}
	buf := make([]uint16, length+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), length+1)
	return strings.TrimSpace(syscall.UTF16ToString(buf))
}

// processName resolves a PID to the executable base name, without extension.
func processName(pid uint32) string {
	if pid == 0 {
		return ""
	}

	// PROCESS_QUERY_INFORMATION | PROCESS_VM_READ
	hProcess, _, _ := procOpenProcess.Call(0x0400|0x0010, 0, uintptr(pid))
	if hProcess == 0 {
		return ""
	}
	defer procCloseHandle.Call(hProcess)

	var buffer [windows.MAX_PATH]uint16
	ret, _, _ := procGetModuleFileNameExW.Call(hProcess, 0, uintptr(unsafe.Pointer(&buffer[0])), windows.MAX_PATH)
	if ret == 0 {
		return ""
	}

	exePath := windows.UTF16ToString(buffer[:])
	if exePath == "" {
		return ""
	}
	filename := filepath.Base(exePath)
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
