//go:build !linux && !windows

package tabhost

import (
	"fmt"
	"runtime"

	"github.com/tabdock/tabdock/internal/config"
)

// Start is unavailable on this platform.
func Start(cfg *config.Config) (Runner, error) {
	return nil, fmt.Errorf("no tab host available for %s", runtime.GOOS)
}
