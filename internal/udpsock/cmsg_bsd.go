//go:build darwin || freebsd || netbsd || openbsd

package udpsock

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// recvInterfaceOpt is the socket option enabling the receive interface
// control messages.
const recvInterfaceOpt = unix.IP_RECVIF

// sdlIndexEnd is the offset of the end of the sdl_index field within the
// sockaddr_dl structure.  The field follows the one-byte sdl_len and
// sdl_family fields.
const sdlIndexEnd = 4

// decodeControlMessage decodes scm.  IP_RECVIF messages contain the link-level
// sockaddr_dl structure of the interface.
func decodeControlMessage(scm unix.SocketControlMessage) (msg controlMessage, err error) {
	h := scm.Header
	if h.Level != unix.IPPROTO_IP || h.Type != unix.IP_RECVIF {
		return unknownMessage{level: h.Level, typ: h.Type}, nil
	}

	if len(scm.Data) < sdlIndexEnd {
		return nil, fmt.Errorf("ip_recvif: %d bytes: %w", len(scm.Data), errShortMessage)
	}

	idx := binary.NativeEndian.Uint16(scm.Data[2:sdlIndexEnd])

	return recvInterface{index: int(idx)}, nil
}
