// Package aghos contains utilities for functions requiring system calls and
// other OS-specific APIs.  OS-specific network handling should go to
// internal/udpsock instead.
package aghos

import (
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/AdguardTeam/golibs/errors"
)

// DefaultPermFile is the default permission for files written by dhcpudp, such
// as the PID file.
const DefaultPermFile fs.FileMode = 0o644

// Unsupported is a helper that returns a wrapped [errors.ErrUnsupported].
func Unsupported(op string) (err error) {
	return fmt.Errorf("%s: not supported on %s: %w", op, runtime.GOOS, errors.ErrUnsupported)
}

// HaveAdminRights checks if the current user has root (administrator) rights.
func HaveAdminRights() (ok bool, err error) {
	return haveAdminRights()
}

// NotifyShutdownSignal notifies c on receiving shutdown signals.
func NotifyShutdownSignal(c chan<- os.Signal) {
	notifyShutdownSignal(c)
}

// NotifyReconfigureSignal notifies c on receiving reconfigure signals.
func NotifyReconfigureSignal(c chan<- os.Signal) {
	notifyReconfigureSignal(c)
}

// IsShutdownSignal returns true if sig is a shutdown signal.
func IsShutdownSignal(sig os.Signal) (ok bool) {
	return isShutdownSignal(sig)
}

// IsReconfigureSignal returns true if sig is a reconfigure signal.
func IsReconfigureSignal(sig os.Signal) (ok bool) {
	return isReconfigureSignal(sig)
}
