package udpsock

import (
	"context"
	"net/netip"
)

// Handle exports handle for tests.
func (e *Endpoint) Handle(ctx context.Context, pkt, oob []byte, src netip.AddrPort) {
	e.handle(ctx, pkt, oob, src)
}
