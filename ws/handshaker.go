package ws

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/lonng/wspipe/internal/env"
	"github.com/lonng/wspipe/internal/log"
	"github.com/lonng/wspipe/protocal/frame"
	"github.com/lonng/wspipe/session"
)

// Options configures the protocol upgrade stage for one endpoint.
type Options struct {
	Path            string                        // upgrade endpoint to match
	Subprotocols    string                        // comma separated list, optional
	AllowExtensions bool                          // negotiate permessage-deflate
	CheckOrigin     func(r *http.Request) bool    // nil allows every origin
	Handshaker      Handshaker                    // custom handshaker, default is gorilla backed
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		Path:        "/ws",
		CheckOrigin: func(_ *http.Request) bool { return true },
	}
}

// Handshaker performs the two protocol transitions of a websocket
// connection: the opening handshake that upgrades the HTTP request, and
// the closing handshake that tears the upgraded transport down.
type Handshaker interface {
	// Upgrade performs the opening handshake on the buffered request.
	// Failures are reported as *HandshakeError.
	Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error)

	// Close performs the closing handshake and shuts the transport
	// down. It must not block the processing goroutine: the frame echo
	// and the transport shutdown run asynchronously. Close takes over
	// the reference the caller retained on the frame.
	Close(conn session.Conn, f *frame.Close) error
}

// gorillaHandshaker is the default Handshaker.
type gorillaHandshaker struct {
	upgrader *websocket.Upgrader
}

// NewHandshaker builds the default gorilla backed handshaker for the
// given options.
func NewHandshaker(opts *Options) Handshaker {
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(_ *http.Request) bool { return true }
	}
	return &gorillaHandshaker{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:    1024,
			WriteBufferSize:   1024,
			HandshakeTimeout:  env.HandshakeTimeout,
			Subprotocols:      splitList(opts.Subprotocols),
			EnableCompression: opts.AllowExtensions,
			CheckOrigin:       checkOrigin,
			// failure responses are produced by the protocol stage, not
			// by the upgrader
			Error: func(http.ResponseWriter, *http.Request, int, error) {},
		},
	}
}

func (h *gorillaHandshaker) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, &HandshakeError{Reason: err.Error()}
	}
	return conn, nil
}

func (h *gorillaHandshaker) Close(conn session.Conn, f *frame.Close) error {
	done := conn.Write(f)
	go func() {
		// close regardless of the write outcome
		if err := <-done; err != nil && env.Debug {
			log.Info("Close handshake write failed.", err)
		}
		f.Release()
		_ = conn.Close()
	}()
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
