// Package dhcplog contains the packet processor logging the DHCPv4 messages
// received by the server without replying to them.
package dhcplog

import (
	"context"
	"log/slog"
	"net/netip"

	"github.com/AdguardTeam/dhcpudp/internal/udpsock"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/insomniacslk/dhcp/dhcpv4"
)

// Metrics is an interface for collection of the statistics of received
// messages.
type Metrics interface {
	// IncrementMessages increments the number of valid messages of type typ.
	IncrementMessages(ctx context.Context, typ dhcpv4.MessageType)

	// IncrementMalformed increments the number of payloads that aren't valid
	// DHCPv4 messages.
	IncrementMalformed(ctx context.Context)
}

// type check
var _ Metrics = EmptyMetrics{}

// EmptyMetrics is the implementation of the [Metrics] interface that does
// nothing.
type EmptyMetrics struct{}

// IncrementMessages implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) IncrementMessages(_ context.Context, _ dhcpv4.MessageType) {}

// IncrementMalformed implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) IncrementMalformed(_ context.Context) {}

// Config is the configuration for a [Processor].
type Config struct {
	// Logger is used to log the messages.  It must not be nil.
	Logger *slog.Logger

	// Metrics collects the message statistics.  It must not be nil.
	Metrics Metrics
}

// Processor is a [udpsock.Processor] logging every DHCPv4 message.
type Processor struct {
	logger  *slog.Logger
	metrics Metrics
}

// type check
var _ udpsock.Processor = (*Processor)(nil)

// New returns a new properly initialized *Processor.  c must not be nil.
func New(c *Config) (p *Processor) {
	return &Processor{
		logger:  c.Logger,
		metrics: c.Metrics,
	}
}

// Process implements the [udpsock.Processor] interface for *Processor.
func (p *Processor) Process(
	ctx context.Context,
	iface *udpsock.InterfaceContext,
	pkt []byte,
	srcPort uint16,
	src netip.Addr,
	_ *udpsock.HardwareInfo,
) {
	msg, err := dhcpv4.FromBytes(pkt)
	if err != nil {
		p.metrics.IncrementMalformed(ctx)
		p.logger.DebugContext(
			ctx,
			"malformed message",
			"iface", iface.Name,
			"src", netip.AddrPortFrom(src, srcPort),
			"len", len(pkt),
			slogutil.KeyError, err,
		)

		return
	}

	typ := msg.MessageType()
	p.metrics.IncrementMessages(ctx, typ)

	p.logger.InfoContext(
		ctx,
		"message",
		"type", typ,
		"xid", msg.TransactionID,
		"client", msg.ClientHWAddr.String(),
		"src", netip.AddrPortFrom(src, srcPort),
		"iface", iface.Name,
		"iface_addr", iface.PrimaryAddr,
		"network", iface.Subnet.Network.Name,
		"subnet", iface.Subnet.Prefix,
	)

	if p.logger.Enabled(ctx, slogutil.LevelDebug) {
		p.logger.DebugContext(ctx, "message details", "summary", msg.Summary())
	}
}
