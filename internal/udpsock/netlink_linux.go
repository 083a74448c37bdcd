//go:build linux

package udpsock

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// netlinkResolver is the [InterfaceResolver] querying the kernel over
// rtnetlink.
type netlinkResolver struct{}

// NewNetlinkResolver returns an [InterfaceResolver] querying the kernel over
// rtnetlink.  Each query opens its own netlink socket.
func NewNetlinkResolver() (r InterfaceResolver, err error) {
	return netlinkResolver{}, nil
}

// InterfaceName implements the [InterfaceResolver] interface for
// netlinkResolver.
func (netlinkResolver) InterfaceName(_ context.Context, index int) (name string, err error) {
	link, err := netlink.LinkByIndex(index)
	if err != nil {
		return "", fmt.Errorf("interface at index %d: %w", index, err)
	}

	return link.Attrs().Name, nil
}

// PrimaryAddr implements the [InterfaceResolver] interface for
// netlinkResolver.  Secondary addresses are skipped.
func (netlinkResolver) PrimaryAddr(_ context.Context, name string) (addr netip.Addr, err error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("interface %q: %w", name, err)
	}

	addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("interface %q: listing addresses: %w", name, err)
	}

	for _, a := range addrs {
		if a.Flags&unix.IFA_F_SECONDARY != 0 || a.IPNet == nil {
			continue
		}

		ip, ok := netip.AddrFromSlice(a.IP)
		if ok && ip.Unmap().Is4() {
			return ip.Unmap(), nil
		}
	}

	return netip.Addr{}, fmt.Errorf("interface %q: %w", name, ErrNotIPv4)
}
