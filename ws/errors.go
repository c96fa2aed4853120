package ws

import "errors"

// Errors that could be occurred during connection processing.
var (
	// ErrBrokenPipe represents the low-level connection has broken.
	ErrBrokenPipe = errors.New("broken low-level pipe")
	// ErrBufferExceed indicates that the connection send buffer is full.
	ErrBufferExceed = errors.New("send buffer exceed")
	// ErrCloseClosedSession indicates a second close of the same connection.
	ErrCloseClosedSession = errors.New("close closed session")
	// ErrNotUpgraded indicates a websocket operation before the opening handshake.
	ErrNotUpgraded = errors.New("connection not upgraded")
	// ErrUnsupportedMessage indicates an outbound value the transport cannot encode.
	ErrUnsupportedMessage = errors.New("unsupported outbound message kind")
)

// HandshakeError reports a failed opening handshake. The connection is
// still HTTP shaped when it occurs, so the reason travels back to the
// client as a 400 response before the transport closes. Post-upgrade
// failures are a different kind on purpose: they get no response.
type HandshakeError struct {
	Reason string
}

func (e *HandshakeError) Error() string {
	return "ws: handshake failed: " + e.Reason
}

// toHandshakeError keeps an existing HandshakeError as is and demotes
// any other handshake stage failure into one.
func toHandshakeError(err error) *HandshakeError {
	var he *HandshakeError
	if errors.As(err, &he) {
		return he
	}
	return &HandshakeError{Reason: err.Error()}
}
