//go:build windows

package tabhost

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/tabdock/tabdock/internal/config"
	"github.com/tabdock/tabdock/internal/ipc"
	"github.com/tabdock/tabdock/internal/platform"
	"github.com/tabdock/tabdock/internal/scan"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	gdi32    = windows.NewLazySystemDLL("gdi32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegisterClassExW    = user32.NewProc("RegisterClassExW")
	procCreateWindowExW     = user32.NewProc("CreateWindowExW")
	procDefWindowProcW      = user32.NewProc("DefWindowProcW")
	procDestroyWindow       = user32.NewProc("DestroyWindow")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessageW    = user32.NewProc("DispatchMessageW")
	procPostQuitMessage     = user32.NewProc("PostQuitMessage")
	procPostMessageW        = user32.NewProc("PostMessageW")
	procSetTimer            = user32.NewProc("SetTimer")
	procKillTimer           = user32.NewProc("KillTimer")
	procInvalidateRect      = user32.NewProc("InvalidateRect")
	procBeginPaint          = user32.NewProc("BeginPaint")
	procEndPaint            = user32.NewProc("EndPaint")
	procFillRect            = user32.NewProc("FillRect")
	procShowWindow          = user32.NewProc("ShowWindow")
	procUpdateWindow        = user32.NewProc("UpdateWindow")
	procLoadCursorW         = user32.NewProc("LoadCursorW")
	procGetCursorPos        = user32.NewProc("GetCursorPos")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procCreatePopupMenu     = user32.NewProc("CreatePopupMenu")
	procAppendMenuW         = user32.NewProc("AppendMenuW")
	procTrackPopupMenu      = user32.NewProc("TrackPopupMenu")
	procDestroyMenu         = user32.NewProc("DestroyMenu")
	procIsWindow            = user32.NewProc("IsWindow")

	procCreateSolidBrush = gdi32.NewProc("CreateSolidBrush")
	procDeleteObject     = gdi32.NewProc("DeleteObject")
	procSetBkMode        = gdi32.NewProc("SetBkMode")
	procSetTextColor     = gdi32.NewProc("SetTextColor")
	procTextOutW         = gdi32.NewProc("TextOutW")

	procGetModuleHandleW = kernel32.NewProc("GetModuleHandleW")
)

const (
	wsOverlappedWindow = 0x00CF0000
	cwUseDefault       = 0x80000000

	wmDestroy     = 0x0002
	wmSize        = 0x0005
	wmPaint       = 0x000F
	wmClose       = 0x0010
	wmTimer       = 0x0113
	wmLButtonDown = 0x0201
	wmMButtonDown = 0x0207
	// Drains queued cross-goroutine calls on the window thread.
	wmAppInvoke = 0x8000 + 1

	mfString = 0x0000
	mfGrayed = 0x0001

	tpmLeftAlign = 0x0000
	tpmReturnCmd = 0x0100

	swHide        = 0
	swShow        = 5
	swShowDefault = 10

	idcArrow  = 32512
	pollTimer = 1
)

type wndClassExW struct {
	cbSize        uint32
	style         uint32
	lpfnWndProc   uintptr
	cbClsExtra    int32
	cbWndExtra    int32
	hInstance     uintptr
	hIcon         uintptr
	hCursor       uintptr
	hbrBackground uintptr
	lpszMenuName  *uint16
	lpszClassName *uint16
	hIconSm       uintptr
}

type winPoint struct {
	X, Y int32
}

type winMsg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      winPoint
}

type winRect struct {
	Left, Top, Right, Bottom int32
}

type paintStruct struct {
	Hdc         uintptr
	FErase      int32
	RcPaint     winRect
	FRestore    int32
	FIncUpdate  int32
	RgbReserved [32]byte
}

type hostCall struct {
	fn     func() error
	result chan error
}

// Host is the Win32 tab host. Captured windows become children of the host
// window itself; the selected one is shown, the rest hidden.
//
// All Win32 window calls happen on the thread that created the window; IPC
// goroutines queue work through invoke and the message loop drains it.
type Host struct {
	cfg     *config.Config
	backend *platform.WindowsBackend
	enum    *scan.Enumerator
	logger  *slog.Logger

	mu          sync.Mutex
	hwnd        uintptr
	width       int
	height      int
	tabs        *TabList
	lastScan    []platform.Window
	statusText  string
	statusUntil time.Time

	calls   chan hostCall
	brushes map[uint32]uintptr
	quit    bool
}

// Start builds the Win32 host. Hotkeys are not available on this platform.
func Start(cfg *config.Config) (Runner, error) {
	if cfg.CaptureHotkey != "" || cfg.ReleaseHotkey != "" {
		log.Printf("Global hotkeys are not supported on Windows, ignoring")
	}

	backend := platform.NewWindowsBackend()
	enum := scan.NewEnumerator(backend, append(cfg.ExcludeTitles, cfg.HostTitle))

	return &Host{
		cfg:     cfg,
		backend: backend,
		enum:    enum,
		logger:  slog.New(slog.NewTextHandler(os.Stderr, nil)),
		width:   cfg.InitialWidth,
		height:  cfg.InitialHeight,
		tabs:    NewTabList(),
		calls:   make(chan hostCall, 16),
		brushes: make(map[uint32]uintptr),
	}, nil
}

// Run creates the host window and pumps messages until the window is
// destroyed. Must not be moved across threads once started.
func (h *Host) Run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := h.createWindow(); err != nil {
		log.Printf("Failed to create host window: %v", err)
		return
	}

	procSetTimer.Call(h.hwnd, pollTimer, uintptr(h.cfg.PollIntervalMS), 0)
	h.logger.Info("refresh timer started", "interval_ms", h.cfg.PollIntervalMS)
	h.refresh()

	var msg winMsg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		if ret == 0 || int32(ret) == -1 {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
	}

	for _, brush := range h.brushes {
		procDeleteObject.Call(brush)
	}
}

// Shutdown releases all captured windows and closes the host window.
func (h *Host) Shutdown() {
	h.invoke(func() error {
		h.closeHost()
		return nil
	})
}

func (h *Host) createWindow() error {
	hInstance, _, _ := procGetModuleHandleW.Call(0)
	cursor, _, _ := procLoadCursorW.Call(0, idcArrow)

	className, err := syscall.UTF16PtrFromString("TabdockHost")
	if err != nil {
		return err
	}
	title, err := syscall.UTF16PtrFromString(h.cfg.HostTitle)
	if err != nil {
		return err
	}

	wc := wndClassExW{
		cbSize:        uint32(unsafe.Sizeof(wndClassExW{})),
		lpfnWndProc:   syscall.NewCallback(h.wndProc),
		hInstance:     hInstance,
		hCursor:       cursor,
		lpszClassName: className,
	}
	if atom, _, callErr := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); atom == 0 {
		return fmt.Errorf("RegisterClassEx failed: %v", callErr)
	}

	hwnd, _, callErr := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(title)),
		wsOverlappedWindow,
		cwUseDefault, cwUseDefault,
		uintptr(h.cfg.InitialWidth), uintptr(h.cfg.InitialHeight),
		0, 0, hInstance, 0)
	if hwnd == 0 {
		return fmt.Errorf("CreateWindowEx failed: %v", callErr)
	}

	h.mu.Lock()
	h.hwnd = hwnd
	h.mu.Unlock()

	// The host window enumerates like any other top-level window.
	h.enum.Exclude(platform.WindowID(hwnd))

	procShowWindow.Call(hwnd, swShowDefault)
	procUpdateWindow.Call(hwnd)
	return nil
}

func (h *Host) wndProc(hwnd uintptr, msg uint32, wparam, lparam uintptr) uintptr {
	switch msg {
	case wmPaint:
		h.paint(hwnd)
		return 0

	case wmSize:
		h.mu.Lock()
		h.width = int(int16(lparam & 0xFFFF))
		h.height = int(int16((lparam >> 16) & 0xFFFF))
		h.applyLayoutLocked()
		h.mu.Unlock()
		h.invalidate()
		return 0

	case wmLButtonDown:
		h.handleClick(int(int16(lparam&0xFFFF)), int(int16((lparam>>16)&0xFFFF)), false)
		return 0

	case wmMButtonDown:
		h.handleClick(int(int16(lparam&0xFFFF)), int(int16((lparam>>16)&0xFFFF)), true)
		return 0

	case wmTimer:
		h.refresh()
		h.drainCalls()
		return 0

	case wmAppInvoke:
		h.drainCalls()
		return 0

	case wmClose:
		h.closeHost()
		return 0

	case wmDestroy:
		procKillTimer.Call(hwnd, pollTimer)
		procPostQuitMessage.Call(0)
		return 0
	}

	ret, _, _ := procDefWindowProcW.Call(hwnd, uintptr(msg), wparam, lparam)
	return ret
}

// invoke runs fn on the window thread and waits for the result. Calls made
// before the window exists wait for the first timer tick.
func (h *Host) invoke(fn func() error) error {
	call := hostCall{fn: fn, result: make(chan error, 1)}
	h.calls <- call

	h.mu.Lock()
	hwnd := h.hwnd
	h.mu.Unlock()
	if hwnd != 0 {
		procPostMessageW.Call(hwnd, wmAppInvoke, 0, 0)
	}

	return <-call.result
}

func (h *Host) drainCalls() {
	for {
		select {
		case call := <-h.calls:
			call.result <- call.fn()
		default:
			return
		}
	}
}

func (h *Host) refresh() {
	windows := h.enum.List()

	h.mu.Lock()
	if !scan.SameTitles(windows, h.lastScan) {
		h.logger.Debug("window list changed", "windows", len(windows))
	}
	h.lastScan = windows
	h.pruneDeadTabsLocked()
	h.mu.Unlock()

	h.invalidate()
}

// pruneDeadTabsLocked drops tabs whose captured window died. Win32 has no
// destroy notification for foreign windows, so the poll tick checks.
func (h *Host) pruneDeadTabsLocked() {
	for _, tab := range append([]*Tab(nil), h.tabs.Tabs()...) {
		if tab.Err != "" {
			continue
		}
		if alive, _, _ := procIsWindow.Call(uintptr(tab.Window.ID)); alive == 0 {
			h.tabs.Remove(tab.Window.ID)
			h.backend.Forget(tab.Window.ID)
			h.setStatusLocked("%q closed", tab.Window.Title)
		}
	}
	h.applyLayoutLocked()
}

func (h *Host) handleClick(x, y int, middle bool) {
	h.mu.Lock()

	if y >= h.cfg.TabBarHeight {
		h.mu.Unlock()
		return
	}

	layout := LayoutStrip(h.width, h.cfg.TabBarHeight, h.tabs.Len())
	kind, index := layout.Hit(x, y)

	switch kind {
	case HitMenu:
		h.mu.Unlock()
		h.showMenu()
		return
	case HitTab:
		tab := h.tabs.Tabs()[index]
		if middle {
			h.removeTabLocked(tab, true)
		} else {
			h.tabs.Select(index)
			h.applyLayoutLocked()
		}
	case HitClose:
		h.removeTabLocked(h.tabs.Tabs()[index], true)
	}

	h.mu.Unlock()
	h.invalidate()
}

// showMenu pops the capture menu at the cursor. TrackPopupMenu is modal and
// pumps its own messages, so it must run without the host lock held.
func (h *Host) showMenu() {
	h.mu.Lock()
	rows := append([]platform.Window(nil), h.lastScan...)
	hwnd := h.hwnd
	h.mu.Unlock()

	menu, _, _ := procCreatePopupMenu.Call()
	if menu == 0 {
		return
	}
	defer procDestroyMenu.Call(menu)

	if len(rows) == 0 {
		label, _ := syscall.UTF16PtrFromString("(no capturable windows)")
		procAppendMenuW.Call(menu, mfString|mfGrayed, 0, uintptr(unsafe.Pointer(label)))
	}
	for i, row := range rows {
		label, err := syscall.UTF16PtrFromString(truncateLabel(row.Title, 64))
		if err != nil {
			continue
		}
		procAppendMenuW.Call(menu, mfString, uintptr(i+1), uintptr(unsafe.Pointer(label)))
	}

	var pt winPoint
	procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))

	// Without this the menu stays up after clicking elsewhere.
	procSetForegroundWindow.Call(hwnd)

	picked, _, _ := procTrackPopupMenu.Call(menu, tpmLeftAlign|tpmReturnCmd,
		uintptr(pt.X), uintptr(pt.Y), 0, hwnd, 0)
	if picked == 0 || int(picked) > len(rows) {
		return
	}

	h.mu.Lock()
	if err := h.captureLocked(rows[picked-1].ID); err != nil {
		log.Printf("Capture of %q failed: %v", rows[picked-1].Title, err)
	}
	h.mu.Unlock()
	h.invalidate()
}

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

func (h *Host) applyLayoutLocked() {
	content := h.contentRectLocked()
	selected := h.tabs.SelectedIndex()

	for i, tab := range h.tabs.Tabs() {
		if tab.Err != "" {
			continue
		}
		hwnd := uintptr(tab.Window.ID)
		if i == selected {
			h.backend.MoveResize(tab.Window.ID, content)
			procShowWindow.Call(hwnd, swShow)
		} else {
			procShowWindow.Call(hwnd, swHide)
		}
	}
}

func (h *Host) setStatusLocked(format string, args ...interface{}) {
	h.statusText = fmt.Sprintf(format, args...)
	h.statusUntil = time.Now().Add(statusDuration)
}

func (h *Host) invalidate() {
	h.mu.Lock()
	hwnd := h.hwnd
	h.mu.Unlock()
	if hwnd != 0 {
		procInvalidateRect.Call(hwnd, 0, 1)
	}
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

// CaptureWindow implements ipc.Host.
func (h *Host) CaptureWindow(id platform.WindowID) error {
	return h.invoke(func() error {
		h.mu.Lock()
		err := h.captureLocked(id)
		h.mu.Unlock()
		h.invalidate()
		return err
	})
}

// ReleaseTab implements ipc.Host.
func (h *Host) ReleaseTab(id platform.WindowID) error {
	return h.invoke(func() error {
		h.mu.Lock()

		var tab *Tab
		if id == 0 {
			tab = h.tabs.Selected()
			if tab == nil {
				h.mu.Unlock()
				return fmt.Errorf("no tab selected")
			}
		} else if i := h.tabs.IndexOf(id); i >= 0 {
			tab = h.tabs.Tabs()[i]
		} else {
			h.mu.Unlock()
			return fmt.Errorf("no tab holds window %d", id)
		}

		h.removeTabLocked(tab, true)
		h.mu.Unlock()
		h.invalidate()
		return nil
	})
}

// FocusTab implements ipc.Host.
func (h *Host) FocusTab(id platform.WindowID) error {
	return h.invoke(func() error {
		h.mu.Lock()
		if !h.tabs.SelectWindow(id) {
			h.mu.Unlock()
			return fmt.Errorf("no tab holds window %d", id)
		}
		h.applyLayoutLocked()
		h.mu.Unlock()
		h.invalidate()
		procSetForegroundWindow.Call(h.hwnd)
		return nil
	})
}

// CloseWindow posts WM_CLOSE to a window. PostMessage is safe from any
// thread, so this skips the invoke bridge; a closing tab is pruned on the
// next timer tick. Implements ipc.Host.
func (h *Host) CloseWindow(id platform.WindowID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if id == platform.WindowID(h.hwnd) || h.tabs.OwnsContainer(id) {
		return fmt.Errorf("window %#x is the host's own window", uint64(id))
	}
	return h.backend.Close(id)
}

func (h *Host) captureLocked(id platform.WindowID) error {
	// Never SetParent the host under itself; that wedges the message loop.
	if id == platform.WindowID(h.hwnd) || h.tabs.OwnsContainer(id) {
		return fmt.Errorf("window %#x is the host's own window", uint64(id))
	}

	if h.tabs.SelectWindow(id) {
		h.applyLayoutLocked()
		return nil
	}

	win := platform.Window{ID: id, Title: fmt.Sprintf("window %#x", uint64(id))}
	for _, w := range h.lastScan {
		if w.ID == id {
			win = w
			break
		}
	}

	content := h.contentRectLocked()
	tab := &Tab{Window: win, Container: platform.WindowID(h.hwnd)}

	if err := h.backend.Capture(id, tab.Container, content); err != nil {
		tab.Err = fmt.Sprintf("could not embed %q: %v", win.Title, err)
		log.Printf("Capture failed for window %#x: %v", uint64(id), err)
	}

	h.tabs.Add(tab)
	h.applyLayoutLocked()
	if tab.Err != "" {
		h.setStatusLocked("capture of %q failed", win.Title)
	} else {
		h.setStatusLocked("captured %q", win.Title)
	}
	return nil
}

func (h *Host) removeTabLocked(tab *Tab, release bool) {
	h.tabs.Remove(tab.Window.ID)
	if release {
		if tab.Err != "" {
			h.backend.Forget(tab.Window.ID)
		} else if err := h.backend.Release(tab.Window.ID); err != nil {
			log.Printf("Release of window %#x failed: %v", uint64(tab.Window.ID), err)
		}
	}
	h.applyLayoutLocked()
	h.setStatusLocked("released %q", tab.Window.Title)
}

// closeHost releases everything and tears the window down. Runs on the
// window thread.
func (h *Host) closeHost() {
	h.mu.Lock()
	if h.quit {
		h.mu.Unlock()
		return
	}
	h.quit = true

	for _, tab := range h.tabs.Tabs() {
		if tab.Err != "" {
			h.backend.Forget(tab.Window.ID)
			continue
		}
		if err := h.backend.Release(tab.Window.ID); err != nil {
			log.Printf("Release of window %#x failed: %v", uint64(tab.Window.ID), err)
		}
	}
	h.tabs = NewTabList()
	hwnd := h.hwnd
	h.mu.Unlock()

	procDestroyWindow.Call(hwnd)
}
