//go:build freebsd

package udpsock

import (
	"fmt"
	"os"
	"syscall"

	"github.com/AdguardTeam/golibs/errors"
	"golang.org/x/sys/unix"
)

// capabilityLockdown limits the socket with Capsicum capability rights.
type capabilityLockdown struct{}

// NewCapabilityLockdown returns a [Lockdown] restricting the socket with the
// Capsicum capability rights.
func NewCapabilityLockdown() (l Lockdown, err error) {
	return capabilityLockdown{}, nil
}

// Limit implements the [Lockdown] interface for capabilityLockdown.
func (capabilityLockdown) Limit(rc syscall.RawConn) (err error) {
	// CAP_EVENT is required by the runtime poller.
	rights, err := unix.CapRightsInit([]uint64{
		unix.CAP_READ,
		unix.CAP_WRITE,
		unix.CAP_CONNECT,
		unix.CAP_EVENT,
	})
	if err != nil {
		return fmt.Errorf("initializing capability rights: %w", err)
	}

	var limitErr error
	ctrlErr := rc.Control(func(fd uintptr) {
		limitErr = os.NewSyscallError("cap_rights_limit", unix.CapRightsLimit(fd, rights))
	})

	return errors.Join(ctrlErr, limitErr)
}
