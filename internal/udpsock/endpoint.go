package udpsock

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"sync/atomic"

	"github.com/AdguardTeam/dhcpudp/internal/agh"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
)

// Endpoint is the UDP socket bound to the DHCP server port.  It receives
// datagrams, attaches the receive interface information to them, and passes
// them to the processor one at a time.
type Endpoint struct {
	logger    *slog.Logger
	conn      *net.UDPConn
	processor Processor
	locator   Locator
	resolver  InterfaceResolver
	metrics   Metrics

	// done is closed when the receive loop exits.
	done chan struct{}

	// started is true if the receive loop has been started.
	started atomic.Bool
}

// type check
var (
	_ agh.Service  = (*Endpoint)(nil)
	_ PacketWriter = (*Endpoint)(nil)
)

// New binds a socket to c.Address, enables receive interface information for
// it, and applies the lockdown.  c must be valid.  Any error is fatal for the
// server: nothing is left open and e is nil.
func New(ctx context.Context, c *Config) (e *Endpoint, err error) {
	lc := &net.ListenConfig{
		Control: recvInterfaceCtrl,
	}

	pc, err := lc.ListenPacket(ctx, "udp4", c.Address.String())
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", c.Address, err)
	}

	conn := pc.(*net.UDPConn)
	defer func() {
		if err != nil {
			err = errors.WithDeferred(err, conn.Close())
		}
	}()

	rc, err := conn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("getting raw conn: %w", err)
	}

	err = c.Lockdown.Limit(rc)
	if err != nil {
		return nil, fmt.Errorf("locking down socket: %w", err)
	}

	e = &Endpoint{
		logger:    c.Logger,
		conn:      conn,
		processor: c.Processor,
		locator:   c.Locator,
		resolver:  c.Resolver,
		metrics:   c.Metrics,
		done:      make(chan struct{}),
	}

	e.logger.InfoContext(ctx, "listening", "addr", e.LocalAddr())

	return e, nil
}

// Start implements the [agh.Service] interface for *Endpoint.  It starts the
// receive loop.  Start must only be called once.
func (e *Endpoint) Start(ctx context.Context) (err error) {
	if !e.started.CompareAndSwap(false, true) {
		return errors.Error("already started")
	}

	go e.serve(context.WithoutCancel(ctx))

	return nil
}

// Shutdown implements the [agh.Service] interface for *Endpoint.  It closes
// the socket and waits for the receive loop to exit.
func (e *Endpoint) Shutdown(ctx context.Context) (err error) {
	err = e.conn.Close()
	if err != nil {
		return fmt.Errorf("closing socket: %w", err)
	}

	if !e.started.Load() {
		return nil
	}

	select {
	case <-e.done:
		e.logger.InfoContext(ctx, "stopped")

		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for receive loop: %w", context.Cause(ctx))
	}
}

// LocalAddr returns the address the endpoint is bound to.
func (e *Endpoint) LocalAddr() (addr netip.AddrPort) {
	ap := e.conn.LocalAddr().(*net.UDPAddr).AddrPort()

	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}

// Send implements the [PacketWriter] interface for *Endpoint.  It makes a
// single attempt to send payload to dst from the bound socket.
func (e *Endpoint) Send(ctx context.Context, payload []byte, dst netip.AddrPort) (n int, err error) {
	n, err = e.conn.WriteToUDPAddrPort(payload, dst)
	e.metrics.IncrementSent(ctx, err)
	if err != nil {
		return n, fmt.Errorf("sending to %s: %w", dst, err)
	}

	return n, nil
}

// serve runs the receive loop until the socket is closed.
func (e *Endpoint) serve(ctx context.Context) {
	defer close(e.done)

	pkt := make([]byte, MaxPacketSize)
	oob := make([]byte, controlBufSize)

	// errNum is the number of consecutive receive errors.
	var errNum uint
	for {
		n, oobn, _, src, err := e.conn.ReadMsgUDPAddrPort(pkt, oob)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				e.logger.DebugContext(ctx, "receive loop exited")

				return
			}

			errNum++
			e.metrics.IncrementDropped(ctx, DropReasonRecv)
			e.logger.Log(
				ctx,
				recvErrorLevel(errNum),
				"receiving datagram",
				"num", errNum,
				slogutil.KeyError, err,
			)

			continue
		}

		errNum = 0
		e.handle(ctx, pkt[:n], oob[:oobn], src)
	}
}

// recvErrorLogPeriod is the number of consecutive receive errors between the
// warnings about them.
const recvErrorLogPeriod = 1000

// recvErrorLevel returns the log level for the receive error with the given
// 1-based number in a series of consecutive errors.  Only the first error and
// then every [recvErrorLogPeriod]-th one are logged as warnings.
func recvErrorLevel(num uint) (lvl slog.Level) {
	if num%recvErrorLogPeriod == 1 {
		return slog.LevelWarn
	}

	return slog.LevelDebug
}
