package udpsock

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
)

// handle passes a single datagram to the processor or drops it.  oob is the
// control data received along with pkt.
func (e *Endpoint) handle(ctx context.Context, pkt, oob []byte, src netip.AddrPort) {
	defer slogutil.RecoverAndLog(ctx, e.logger)

	e.metrics.IncrementReceived(ctx)

	iface, reason, err := e.interfaceContext(ctx, oob, src)
	if err != nil {
		e.metrics.IncrementDropped(ctx, reason)
		e.logger.Log(
			ctx,
			dropLevel(reason, err),
			"dropping datagram",
			"src", src,
			"reason", reason,
			slogutil.KeyError, err,
		)

		return
	}

	start := time.Now()
	e.processor.Process(ctx, iface, pkt, src.Port(), src.Addr().Unmap(), &HardwareInfo{})
	e.metrics.ObserveDispatch(ctx, time.Since(start))
}

// interfaceContext returns the information about the interface the datagram
// from src has been received on.  If err is not nil, reason describes the
// failed step.
func (e *Endpoint) interfaceContext(
	ctx context.Context,
	oob []byte,
	src netip.AddrPort,
) (iface *InterfaceContext, reason DropReason, err error) {
	if !src.Addr().Unmap().Is4() {
		return nil, DropReasonNotIPv4, fmt.Errorf("source %s: %w", src, ErrNotIPv4)
	}

	msgs, err := parseControlMessages(oob)
	if err != nil {
		return nil, DropReasonNoInterface, err
	}

	ri, ok := findControlMessage[recvInterface](msgs)
	if !ok {
		return nil, DropReasonNoInterface, errNoInterface
	}

	name, err := e.resolver.InterfaceName(ctx, ri.index)
	if err != nil {
		return nil, DropReasonInterfaceName, fmt.Errorf("resolving interface name: %w", err)
	}

	addr, err := e.resolver.PrimaryAddr(ctx, name)
	if err != nil {
		return nil, DropReasonAddress, fmt.Errorf("resolving address: %w", err)
	}

	addr = addr.Unmap()
	if !addr.Is4() {
		return nil, DropReasonAddress, fmt.Errorf("interface %q: %s: %w", name, addr, ErrNotIPv4)
	}

	s, ok := e.locator.Lookup(addr)
	if !ok {
		return nil, DropReasonNoSubnet, fmt.Errorf("interface %q: %s: %w", name, addr, errNoSubnet)
	}

	return &InterfaceContext{
		Writer:      e,
		Subnet:      s,
		Name:        name,
		PrimaryAddr: addr,
		Index:       ri.index,
		IsUDP:       true,
	}, "", nil
}

// dropLevel returns the log level for a datagram dropped for reason with err.
// Datagrams from interfaces the server isn't configured for are expected.
func dropLevel(reason DropReason, err error) (lvl slog.Level) {
	switch {
	case reason == DropReasonNoSubnet:
		return slog.LevelInfo
	case errors.Is(err, ErrNotIPv4) && reason == DropReasonAddress:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}
