//go:build !freebsd

package udpsock

import "github.com/AdguardTeam/dhcpudp/internal/aghos"

// NewCapabilityLockdown returns an error, since socket capability rights are
// only supported on FreeBSD.
func NewCapabilityLockdown() (l Lockdown, err error) {
	return nil, aghos.Unsupported("socket capability rights")
}
