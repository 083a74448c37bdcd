//go:build !(darwin || freebsd || linux || netbsd || openbsd)

package aghos

import (
	"os"
	"os/signal"
	"syscall"
)

func haveAdminRights() (ok bool, err error) {
	return false, Unsupported("checking admin rights")
}

func notifyShutdownSignal(c chan<- os.Signal) {
	// syscall.SIGTERM is processed automatically on Windows.  See go doc
	// os/signal, section Windows.
	signal.Notify(c, os.Interrupt)
}

func notifyReconfigureSignal(_ chan<- os.Signal) {}

func isShutdownSignal(sig os.Signal) (ok bool) {
	switch sig {
	case os.Interrupt, syscall.SIGTERM:
		return true
	default:
		return false
	}
}

func isReconfigureSignal(_ os.Signal) (ok bool) {
	return false
}
