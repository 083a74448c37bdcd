package udpsock

import (
	"context"
	"time"
)

// DropReason is the reason a datagram hasn't been passed to the processor.
type DropReason string

// Valid DropReason values.
const (
	DropReasonRecv          DropReason = "recv_error"
	DropReasonNotIPv4       DropReason = "not_ipv4"
	DropReasonNoInterface   DropReason = "no_interface"
	DropReasonInterfaceName DropReason = "interface_name"
	DropReasonAddress       DropReason = "address"
	DropReasonNoSubnet      DropReason = "no_subnet"
)

// Metrics is an interface for collection of the endpoint statistics.
type Metrics interface {
	// IncrementReceived increments the number of received datagrams.
	IncrementReceived(ctx context.Context)

	// IncrementDropped increments the number of datagrams dropped for reason.
	IncrementDropped(ctx context.Context, reason DropReason)

	// ObserveDispatch records a datagram passed to the processor along with
	// the time the processor took.
	ObserveDispatch(ctx context.Context, dur time.Duration)

	// IncrementSent records a send attempt.  err is the result of the attempt.
	IncrementSent(ctx context.Context, err error)
}

// type check
var _ Metrics = EmptyMetrics{}

// EmptyMetrics is the implementation of the [Metrics] interface that does
// nothing.
type EmptyMetrics struct{}

// IncrementReceived implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) IncrementReceived(_ context.Context) {}

// IncrementDropped implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) IncrementDropped(_ context.Context, _ DropReason) {}

// ObserveDispatch implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) ObserveDispatch(_ context.Context, _ time.Duration) {}

// IncrementSent implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) IncrementSent(_ context.Context, _ error) {}
