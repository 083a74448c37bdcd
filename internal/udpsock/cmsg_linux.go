//go:build linux

package udpsock

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// recvInterfaceOpt is the socket option enabling the receive interface
// control messages.
const recvInterfaceOpt = unix.IP_PKTINFO

// decodeControlMessage decodes scm.  IP_PKTINFO messages contain the in_pktinfo
// structure, which starts with the interface index.
func decodeControlMessage(scm unix.SocketControlMessage) (msg controlMessage, err error) {
	h := scm.Header
	if h.Level != unix.IPPROTO_IP || h.Type != unix.IP_PKTINFO {
		return unknownMessage{level: h.Level, typ: h.Type}, nil
	}

	if len(scm.Data) < unix.SizeofInet4Pktinfo {
		return nil, fmt.Errorf("ip_pktinfo: %d bytes: %w", len(scm.Data), errShortMessage)
	}

	idx := int32(binary.NativeEndian.Uint32(scm.Data))

	return recvInterface{index: int(idx)}, nil
}
