// Package udpsock contains the UDP receive path of the DHCP server: the bound
// endpoint, the dispatcher that attaches interface and subnet information to
// every received datagram, and the reply sender.
package udpsock

import (
	"context"
	"net"
	"net/netip"

	"github.com/AdguardTeam/dhcpudp/internal/subnet"
	"github.com/AdguardTeam/golibs/errors"
)

const (
	// MaxPacketSize is the size of the receive buffer.  Longer datagrams are
	// truncated.
	MaxPacketSize = 4095

	// controlBufSize is the size of the buffer for socket control messages.
	controlBufSize = 256
)

// ErrNotIPv4 is returned when an address that must be an IPv4 one isn't.
const ErrNotIPv4 errors.Error = "not an ipv4 address"

const (
	// errNoInterface is returned when a datagram carries no receive interface
	// information.
	errNoInterface errors.Error = "no receive interface information"

	// errNoSubnet is returned when an interface address doesn't belong to any
	// configured subnet.
	errNoSubnet errors.Error = "no configured subnet"
)

// PacketWriter sends datagrams from the server port.
type PacketWriter interface {
	// Send sends payload to dst.  It makes a single attempt and returns the
	// number of bytes written.
	Send(ctx context.Context, payload []byte, dst netip.AddrPort) (n int, err error)
}

// HardwareInfo is the link-layer information of a datagram's sender.  It's
// always empty for datagrams received over UDP.
type HardwareInfo struct {
	// Addr is the hardware address of the sender.
	Addr net.HardwareAddr

	// Type is the hardware type of the sender.
	Type uint8
}

// InterfaceContext describes the network interface a datagram arrived on.
// It's only valid while the datagram is processed.
type InterfaceContext struct {
	// Writer is used to send replies from the socket the datagram has been
	// received on.
	Writer PacketWriter

	// Subnet is the configured subnet containing PrimaryAddr.  It must not be
	// modified.
	Subnet *subnet.Subnet

	// Name is the name of the interface, e.g. "eth0".
	Name string

	// PrimaryAddr is the current primary IPv4 address of the interface.
	PrimaryAddr netip.Addr

	// Index is the index of the interface.
	Index int

	// IsUDP is true if the datagram has been received over UDP.
	IsUDP bool
}

// Processor handles DHCP datagrams along with the information about their
// origin.
type Processor interface {
	// Process handles a single datagram.  pkt and iface must not be retained
	// after Process returns.  src is the IPv4 address of the client.
	Process(
		ctx context.Context,
		iface *InterfaceContext,
		pkt []byte,
		srcPort uint16,
		src netip.Addr,
		hw *HardwareInfo,
	)
}

// Locator finds the configured subnet for an address.
type Locator interface {
	// Lookup returns the subnet containing addr and true, or false if there is
	// no such subnet.
	Lookup(addr netip.Addr) (s *subnet.Subnet, ok bool)
}

// InterfaceResolver looks up the current state of network interfaces.  It
// must not cache results.
type InterfaceResolver interface {
	// InterfaceName returns the name of the interface with the given index.
	InterfaceName(ctx context.Context, index int) (name string, err error)

	// PrimaryAddr returns the current primary IPv4 address of the interface
	// with the given name.  It returns [ErrNotIPv4] if the interface has no
	// IPv4 address.
	PrimaryAddr(ctx context.Context, name string) (addr netip.Addr, err error)
}
