// Package lifecycle tracks whether the process is draining. The health
// endpoint reports shutting-down while the flag is set so load balancers stop
// routing weather traffic here before the listener closes.
package lifecycle

import "sync/atomic"

var shuttingDown atomic.Bool

// SetShuttingDown flips the drain flag. main sets it true on SIGTERM/SIGINT,
// before waiting for in-flight requests.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown reports whether the process is draining and should not
// accept new traffic.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}
