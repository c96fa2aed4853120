package frame

import (
	"encoding/binary"
	"errors"

	"github.com/gorilla/websocket"
)

// ErrUnknownKind indicates a websocket message type outside RFC 6455.
var ErrUnknownKind = errors.New("frame: unknown websocket message type")

// FromMessage converts a message read from a gorilla connection into
// the matching frame kind.
func FromMessage(messageType int, data []byte) (Frame, error) {
	switch messageType {
	case websocket.TextMessage:
		return NewText(data), nil
	case websocket.BinaryMessage:
		return NewBinary(data), nil
	case websocket.CloseMessage:
		code := websocket.CloseNoStatusReceived
		reason := ""
		if len(data) >= 2 {
			code = int(binary.BigEndian.Uint16(data))
			reason = string(data[2:])
		}
		return NewClose(code, reason), nil
	case websocket.PingMessage:
		return NewPing(data), nil
	case websocket.PongMessage:
		return NewPong(data), nil
	default:
		return nil, ErrUnknownKind
	}
}

// Message converts a frame into the gorilla message type and wire
// payload for writing. Continuation frames map to binary: the gorilla
// transport reassembles fragments on read and fragments on write
// itself, so continuations never reach the wire through this path.
func Message(f Frame) (int, []byte) {
	switch v := f.(type) {
	case *Close:
		return websocket.CloseMessage, websocket.FormatCloseMessage(v.code, v.reason)
	case *Ping:
		return websocket.PingMessage, v.Payload()
	case *Pong:
		return websocket.PongMessage, v.Payload()
	case *Binary:
		return websocket.BinaryMessage, v.Payload()
	case *Continuation:
		return websocket.BinaryMessage, v.Payload()
	default:
		return websocket.TextMessage, f.Payload()
	}
}
