//go:build !(darwin || freebsd || linux || netbsd || openbsd)

package udpsock

import (
	"syscall"

	"github.com/AdguardTeam/dhcpudp/internal/aghos"
)

// controlMessage is a decoded socket control message.
type controlMessage interface {
	// isControlMessage marks the decoded control message types.
	isControlMessage()
}

// recvInterface is the control message carrying the index of the interface a
// datagram has been received on.
type recvInterface struct {
	index int
}

// isControlMessage implements the [controlMessage] interface for
// recvInterface.
func (recvInterface) isControlMessage() {}

func parseControlMessages(_ []byte) (msgs []controlMessage, err error) {
	return nil, aghos.Unsupported("parsing control messages")
}

func findControlMessage[T controlMessage](_ []controlMessage) (msg T, ok bool) {
	return msg, false
}

func recvInterfaceCtrl(_, _ string, _ syscall.RawConn) (err error) {
	return aghos.Unsupported("receive interface information")
}
