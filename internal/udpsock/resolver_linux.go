//go:build linux

package udpsock

import (
	"context"
	"fmt"
	"net/netip"
	"os"

	"github.com/AdguardTeam/golibs/errors"
	"golang.org/x/sys/unix"
)

// InterfaceName implements the [InterfaceResolver] interface for
// *SystemResolver.
func (r *SystemResolver) InterfaceName(_ context.Context, index int) (name string, err error) {
	ifr, err := unix.NewIfreq("")
	if err != nil {
		// Should not happen, since the name is empty.
		panic(fmt.Errorf("creating ifreq: %w", err))
	}

	ifr.SetUint32(uint32(index))
	err = withControlSocket(func(fd int) (ioErr error) {
		return os.NewSyscallError("ioctl SIOCGIFNAME", unix.IoctlIfreq(fd, unix.SIOCGIFNAME, ifr))
	})
	if err != nil {
		return "", fmt.Errorf("interface at index %d: %w", index, err)
	}

	return ifr.Name(), nil
}

// PrimaryAddr implements the [InterfaceResolver] interface for
// *SystemResolver.
func (r *SystemResolver) PrimaryAddr(_ context.Context, name string) (addr netip.Addr, err error) {
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("interface %q: %w", name, err)
	}

	err = withControlSocket(func(fd int) (ioErr error) {
		return os.NewSyscallError("ioctl SIOCGIFADDR", unix.IoctlIfreq(fd, unix.SIOCGIFADDR, ifr))
	})
	if errors.Is(err, unix.EADDRNOTAVAIL) {
		return netip.Addr{}, fmt.Errorf("interface %q: %w", name, ErrNotIPv4)
	} else if err != nil {
		return netip.Addr{}, fmt.Errorf("interface %q: %w", name, err)
	}

	ip, err := ifr.Inet4Addr()
	if err != nil {
		// Inet4Addr only fails if the address family isn't AF_INET.
		return netip.Addr{}, fmt.Errorf("interface %q: %w", name, ErrNotIPv4)
	}

	return netip.AddrFrom4([4]byte(ip)), nil
}

// withControlSocket opens a transient IPv4 datagram socket, calls f with it,
// and closes it.
func withControlSocket(f func(fd int) (err error)) (err error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return os.NewSyscallError("socket", err)
	}
	defer func() { err = errors.WithDeferred(err, os.NewSyscallError("close", unix.Close(fd))) }()

	return f(fd)
}
