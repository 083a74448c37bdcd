//go:build !linux

package udpsock

import (
	"context"
	"fmt"
	"net"
	"net/netip"
)

// InterfaceName implements the [InterfaceResolver] interface for
// *SystemResolver.
func (r *SystemResolver) InterfaceName(_ context.Context, index int) (name string, err error) {
	iface, err := net.InterfaceByIndex(index)
	if err != nil {
		return "", fmt.Errorf("interface at index %d: %w", index, err)
	}

	return iface.Name, nil
}

// PrimaryAddr implements the [InterfaceResolver] interface for
// *SystemResolver.  The primary address is the first IPv4 address the
// operating system reports for the interface.
func (r *SystemResolver) PrimaryAddr(_ context.Context, name string) (addr netip.Addr, err error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("interface %q: %w", name, err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return netip.Addr{}, fmt.Errorf("interface %q: addresses: %w", name, err)
	}

	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}

		ip, ok := netip.AddrFromSlice(ipNet.IP)
		if ok && ip.Unmap().Is4() {
			return ip.Unmap(), nil
		}
	}

	return netip.Addr{}, fmt.Errorf("interface %q: %w", name, ErrNotIPv4)
}
