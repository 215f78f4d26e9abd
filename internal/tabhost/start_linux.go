//go:build linux

package tabhost

import (
	"fmt"
	"log"

	"github.com/tabdock/tabdock/internal/config"
	"github.com/tabdock/tabdock/internal/hotkeys"
	"github.com/tabdock/tabdock/internal/platform"
	"github.com/tabdock/tabdock/internal/scan"
)

// Start opens the X11 backend, builds the host window and registers the
// configured global hotkeys. The caller owns the returned runner; Run blocks.
func Start(cfg *config.Config) (Runner, error) {
	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return nil, err
	}

	enum := scan.NewEnumerator(backend, append(cfg.ExcludeTitles, cfg.HostTitle))

	host, err := New(cfg, backend, enum)
	if err != nil {
		backend.Disconnect()
		return nil, err
	}

	if cfg.CaptureHotkey != "" || cfg.ReleaseHotkey != "" {
		handler, err := hotkeys.NewHandler(backend, host)
		if err != nil {
			return nil, fmt.Errorf("failed to set up hotkeys: %w", err)
		}
		if cfg.CaptureHotkey != "" {
			if err := handler.RegisterCapture(cfg.CaptureHotkey); err != nil {
				return nil, fmt.Errorf("failed to register capture hotkey %q: %w", cfg.CaptureHotkey, err)
			}
			log.Printf("Capture hotkey: %s", cfg.CaptureHotkey)
		}
		if cfg.ReleaseHotkey != "" {
			if err := handler.RegisterRelease(cfg.ReleaseHotkey); err != nil {
				return nil, fmt.Errorf("failed to register release hotkey %q: %w", cfg.ReleaseHotkey, err)
			}
			log.Printf("Release hotkey: %s", cfg.ReleaseHotkey)
		}
	}

	return host, nil
}
