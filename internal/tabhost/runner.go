package tabhost

import "github.com/tabdock/tabdock/internal/ipc"

// Runner is a running tab host, independent of platform. Start (per-OS)
// returns one; Run blocks in the platform event loop until Shutdown.
type Runner interface {
	ipc.Host
	Run()
	Shutdown()
}
