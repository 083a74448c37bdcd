//go:build darwin || freebsd || linux || netbsd || openbsd

package udpsock

import (
	"fmt"
	"os"
	"syscall"

	"github.com/AdguardTeam/golibs/errors"
	"golang.org/x/sys/unix"
)

// errShortMessage is returned when a control message is too short to hold the
// record its header announces.
const errShortMessage errors.Error = "control message too short"

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

// unknownMessage is a control message the endpoint doesn't use.
type unknownMessage struct {
	level int32
	typ   int32
}

// isControlMessage implements the [controlMessage] interface for
// unknownMessage.
func (unknownMessage) isControlMessage() {}

// parseControlMessages decodes all the control messages in oob.
func parseControlMessages(oob []byte) (msgs []controlMessage, err error) {
	scms, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("parsing control messages: %w", err)
	}

	msgs = make([]controlMessage, 0, len(scms))
	for i, scm := range scms {
		var msg controlMessage
		msg, err = decodeControlMessage(scm)
		if err != nil {
			return nil, fmt.Errorf("control message at index %d: %w", i, err)
		}

		msgs = append(msgs, msg)
	}

	return msgs, nil
}

// findControlMessage returns the first message of type T in msgs.
func findControlMessage[T controlMessage](msgs []controlMessage) (msg T, ok bool) {
	for _, m := range msgs {
		if msg, ok = m.(T); ok {
			return msg, true
		}
	}

	return msg, false
}

// recvInterfaceCtrl is the function to be set to net.ListenConfig.Control.
// It makes the kernel attach the receive interface to every datagram.
func recvInterfaceCtrl(_, _ string, c syscall.RawConn) (err error) {
	cerr := c.Control(func(fd uintptr) {
		err = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, recvInterfaceOpt, 1)
		if err != nil {
			err = os.NewSyscallError("setsockopt", err)
		}
	})

	err = errors.Join(err, cerr)
	if err != nil {
		return fmt.Errorf("enabling receive interface information: %w", err)
	}

	return nil
}
