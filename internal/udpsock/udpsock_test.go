package udpsock_test

import (
	"context"
	"net/netip"
	"testing"

	"github.com/AdguardTeam/dhcpudp/internal/aghtest"
	"github.com/AdguardTeam/dhcpudp/internal/subnet"
	"github.com/AdguardTeam/dhcpudp/internal/udpsock"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/stretchr/testify/require"
)

// testTimeout is the common timeout for tests.
const testTimeout = aghtest.Timeout

// Common addresses for tests.
var (
	testLocalhost = netip.MustParseAddrPort("127.0.0.1:0")
	testIfaceAddr = netip.MustParseAddr("10.0.0.1")
	testSubnet    = netip.MustParsePrefix("10.0.0.0/24")
)

// newTestTable returns a subnet table with a single shared network containing
// testSubnet.
func newTestTable(tb testing.TB) (t *subnet.Table) {
	tb.Helper()

	t, err := subnet.New([]*subnet.NetworkConfig{{
		Name:    "office",
		Subnets: []netip.Prefix{testSubnet},
	}})
	require.NoError(tb, err)

	return t
}

// newTestConfig returns a valid configuration binding to a free loopback port.
// Metrics are ignored.
func newTestConfig(
	tb testing.TB,
	proc udpsock.Processor,
	res udpsock.InterfaceResolver,
) (c *udpsock.Config) {
	tb.Helper()

	return &udpsock.Config{
		Logger:    slogutil.NewDiscardLogger(),
		Processor: proc,
		Locator:   newTestTable(tb),
		Resolver:  res,
		Lockdown:  udpsock.EmptyLockdown{},
		Metrics:   udpsock.EmptyMetrics{},
		Address:   testLocalhost,
	}
}

// newTestEndpoint creates an endpoint with c and closes it on cleanup.
func newTestEndpoint(tb testing.TB, c *udpsock.Config) (e *udpsock.Endpoint) {
	tb.Helper()

	e, err := udpsock.New(testutil.ContextWithTimeout(tb, testTimeout), c)
	require.NoError(tb, err)
	require.NotNil(tb, e)

	testutil.CleanupAndRequireSuccess(tb, func() (err error) {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()

		return e.Shutdown(ctx)
	})

	return e
}

// packet is a datagram passed to a processor along with its metadata.
type packet struct {
	iface   udpsock.InterfaceContext
	hw      udpsock.HardwareInfo
	src     netip.Addr
	data    []byte
	srcPort uint16
}

// newRecordingProcessor returns a processor sending every processed datagram
// to the returned channel.  The channel has enough room for a single packet.
func newRecordingProcessor() (p *aghtest.Processor, pkts chan packet) {
	pkts = make(chan packet, 1)
	p = &aghtest.Processor{
		OnProcess: func(
			_ context.Context,
			iface *udpsock.InterfaceContext,
			pkt []byte,
			srcPort uint16,
			src netip.Addr,
			hw *udpsock.HardwareInfo,
		) {
			pkts <- packet{
				iface:   *iface,
				hw:      *hw,
				src:     src,
				data:    append([]byte(nil), pkt...),
				srcPort: srcPort,
			}
		},
	}

	return p, pkts
}
