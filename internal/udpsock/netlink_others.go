//go:build !linux

package udpsock

import "github.com/AdguardTeam/dhcpudp/internal/aghos"

// NewNetlinkResolver returns an error, since rtnetlink is only available on
// Linux.
func NewNetlinkResolver() (r InterfaceResolver, err error) {
	return nil, aghos.Unsupported("netlink resolver")
}
