package udpsock

import "syscall"

// Lockdown restricts the operations permitted on a bound socket.
type Lockdown interface {
	// Limit restricts the socket behind rc to reading, writing, and
	// connecting.
	Limit(rc syscall.RawConn) (err error)
}

// type check
var _ Lockdown = EmptyLockdown{}

// EmptyLockdown is the [Lockdown] that leaves the socket unrestricted.
type EmptyLockdown struct{}

// Limit implements the [Lockdown] interface for EmptyLockdown.
func (EmptyLockdown) Limit(_ syscall.RawConn) (err error) { return nil }
