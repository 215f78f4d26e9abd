// Package hotkeys registers global X11 keyboard shortcuts for capturing the
// focused window and releasing the selected tab. No-op on other platforms.
package hotkeys

import (
	"fmt"
	"log"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/tabdock/tabdock/internal/platform"
)

// Docker is the host surface the hotkeys drive.
type Docker interface {
	CaptureWindow(id platform.WindowID) error
	ReleaseTab(id platform.WindowID) error
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	backend platform.Backend
	docker  Docker
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler bound to the host. Returns an error
// when the backend does not expose an X11 connection.
func NewHandler(backend platform.Backend, docker Docker) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok {
		return nil, fmt.Errorf("global hotkeys require an X11 backend")
	}
	xu := accessor.XUtil()
	root := accessor.RootWindow()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:      xu,
		root:    root,
		backend: backend,
		docker:  docker,
	}, nil
}

// RegisterCapture binds a key sequence that captures the currently focused
// window into the host.
func (h *Handler) RegisterCapture(keySequence string) error {
	return h.RegisterFunc(keySequence, func() {
		active, err := h.backend.ActiveWindow()
		if err != nil {
			log.Printf("Capture hotkey: no active window: %v", err)
			return
		}
		if err := h.docker.CaptureWindow(active); err != nil {
			log.Printf("Capture hotkey failed: %v", err)
		}
	})
}

// RegisterRelease binds a key sequence that releases the selected tab back
// to the desktop.
func (h *Handler) RegisterRelease(keySequence string) error {
	return h.RegisterFunc(keySequence, func() {
		if err := h.docker.ReleaseTab(0); err != nil {
			log.Printf("Release hotkey failed: %v", err)
		}
	})
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
