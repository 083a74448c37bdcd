package aghtest

import (
	"context"
	"net/netip"
	"syscall"
	"time"

	"github.com/AdguardTeam/dhcpudp/internal/agh"
	"github.com/AdguardTeam/dhcpudp/internal/subnet"
	"github.com/AdguardTeam/dhcpudp/internal/udpsock"
)

// Interface Mocks
//
// Keep entities in this file in alphabetic order.

// Package agh

// Service is a fake [agh.Service] implementation for tests.
type Service struct {
	OnStart    func(ctx context.Context) (err error)
	OnShutdown func(ctx context.Context) (err error)
}

// type check
var _ agh.Service = (*Service)(nil)

// Start implements the [agh.Service] interface for *Service.
func (s *Service) Start(ctx context.Context) (err error) {
	return s.OnStart(ctx)
}

// Shutdown implements the [agh.Service] interface for *Service.
func (s *Service) Shutdown(ctx context.Context) (err error) {
	return s.OnShutdown(ctx)
}

// Package udpsock

// InterfaceResolver is a fake [udpsock.InterfaceResolver] implementation for
// tests.
type InterfaceResolver struct {
	OnInterfaceName func(ctx context.Context, index int) (name string, err error)
	OnPrimaryAddr   func(ctx context.Context, name string) (addr netip.Addr, err error)
}

// type check
var _ udpsock.InterfaceResolver = (*InterfaceResolver)(nil)

// InterfaceName implements the [udpsock.InterfaceResolver] interface for
// *InterfaceResolver.
func (r *InterfaceResolver) InterfaceName(ctx context.Context, index int) (name string, err error) {
	return r.OnInterfaceName(ctx, index)
}

// PrimaryAddr implements the [udpsock.InterfaceResolver] interface for
// *InterfaceResolver.
func (r *InterfaceResolver) PrimaryAddr(
	ctx context.Context,
	name string,
) (addr netip.Addr, err error) {
	return r.OnPrimaryAddr(ctx, name)
}

// Locator is a fake [udpsock.Locator] implementation for tests.
type Locator struct {
	OnLookup func(addr netip.Addr) (s *subnet.Subnet, ok bool)
}

// type check
var _ udpsock.Locator = (*Locator)(nil)

// Lookup implements the [udpsock.Locator] interface for *Locator.
func (l *Locator) Lookup(addr netip.Addr) (s *subnet.Subnet, ok bool) {
	return l.OnLookup(addr)
}

// Lockdown is a fake [udpsock.Lockdown] implementation for tests.
type Lockdown struct {
	OnLimit func(rc syscall.RawConn) (err error)
}

// type check
var _ udpsock.Lockdown = (*Lockdown)(nil)

// Limit implements the [udpsock.Lockdown] interface for *Lockdown.
func (l *Lockdown) Limit(rc syscall.RawConn) (err error) {
	return l.OnLimit(rc)
}

// Metrics is a fake [udpsock.Metrics] implementation for tests.
type Metrics struct {
	OnIncrementReceived func(ctx context.Context)
	OnIncrementDropped  func(ctx context.Context, reason udpsock.DropReason)
	OnObserveDispatch   func(ctx context.Context, dur time.Duration)
	OnIncrementSent     func(ctx context.Context, err error)
}

// type check
var _ udpsock.Metrics = (*Metrics)(nil)

// IncrementReceived implements the [udpsock.Metrics] interface for *Metrics.
func (m *Metrics) IncrementReceived(ctx context.Context) {
	m.OnIncrementReceived(ctx)
}

// IncrementDropped implements the [udpsock.Metrics] interface for *Metrics.
func (m *Metrics) IncrementDropped(ctx context.Context, reason udpsock.DropReason) {
	m.OnIncrementDropped(ctx, reason)
}

// ObserveDispatch implements the [udpsock.Metrics] interface for *Metrics.
func (m *Metrics) ObserveDispatch(ctx context.Context, dur time.Duration) {
	m.OnObserveDispatch(ctx, dur)
}

// IncrementSent implements the [udpsock.Metrics] interface for *Metrics.
func (m *Metrics) IncrementSent(ctx context.Context, err error) {
	m.OnIncrementSent(ctx, err)
}

// PacketWriter is a fake [udpsock.PacketWriter] implementation for tests.
type PacketWriter struct {
	OnSend func(ctx context.Context, payload []byte, dst netip.AddrPort) (n int, err error)
}

// type check
var _ udpsock.PacketWriter = (*PacketWriter)(nil)

// Send implements the [udpsock.PacketWriter] interface for *PacketWriter.
func (w *PacketWriter) Send(
	ctx context.Context,
	payload []byte,
	dst netip.AddrPort,
) (n int, err error) {
	return w.OnSend(ctx, payload, dst)
}

// Processor is a fake [udpsock.Processor] implementation for tests.
type Processor struct {
	OnProcess func(
		ctx context.Context,
		iface *udpsock.InterfaceContext,
		pkt []byte,
		srcPort uint16,
		src netip.Addr,
		hw *udpsock.HardwareInfo,
	)
}

// type check
var _ udpsock.Processor = (*Processor)(nil)

// Process implements the [udpsock.Processor] interface for *Processor.
func (p *Processor) Process(
	ctx context.Context,
	iface *udpsock.InterfaceContext,
	pkt []byte,
	srcPort uint16,
	src netip.Addr,
	hw *udpsock.HardwareInfo,
) {
	p.OnProcess(ctx, iface, pkt, srcPort, src, hw)
}
