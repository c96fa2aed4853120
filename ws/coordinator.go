package ws

import (
	"fmt"
	"net/http"

	"github.com/lonng/wspipe/internal/env"
	"github.com/lonng/wspipe/internal/log"
	"github.com/lonng/wspipe/pipeline"
	"github.com/lonng/wspipe/session"
)

// HandshakeStageName is the canonical topology name of the handshake
// coordinator. The single fixed name is what keeps its insertion
// idempotent: whoever checks for it finds at most one.
const HandshakeStageName = "ws.handshake"

// handshakerKey is the session slot holding the negotiated handshaker.
// Populated exactly once, at a successful upgrade, and immutable for
// the rest of the connection.
const handshakerKey = "ws.handshaker"

// HandshakeComplete is the notification fired on the pipeline exactly
// once per successful upgrade. Stages downstream observe it through the
// pipeline.Observer interface.
type HandshakeComplete struct {
	Path        string // the endpoint the client upgraded on
	Subprotocol string // negotiated subprotocol, empty when none
}

// Negotiated returns the handshaker negotiated for the session, if the
// connection has been upgraded.
func Negotiated(s *session.Session) (Handshaker, bool) {
	h, ok := s.Value(handshakerKey).(Handshaker)
	return h, ok
}

// HandshakeStage is the one-shot coordinator stage running ahead of the
// protocol stage. It recognizes the upgrade request on the configured
// path, performs the opening handshake, binds the negotiated handshaker
// to the session, swaps the session transport for the upgraded one and
// fires HandshakeComplete. After a successful upgrade it removes itself
// from the topology.
type HandshakeStage struct {
	opts *Options
	hs   Handshaker
}

// NewHandshakeStage builds a coordinator sharing the protocol stage's
// options and handshaker.
func NewHandshakeStage(opts *Options, hs Handshaker) *HandshakeStage {
	return &HandshakeStage{opts: opts, hs: hs}
}

// Process consumes buffered requests; all other messages pass through
// unchanged and in order.
func (h *HandshakeStage) Process(ctx *pipeline.Context, batch *pipeline.Batch) error {
	size := batch.Size()
	for i := 0; i < size; i++ {
		m := batch.Get(i)
		req, ok := m.(*http.Request)
		if !ok {
			batch.Add(m)
			continue
		}
		// the upgrade request is consumed either way
		if err := h.handshake(ctx, req); err != nil {
			return err
		}
	}
	batch.RemoveRange(0, size)
	return nil
}

func (h *HandshakeStage) handshake(ctx *pipeline.Context, req *http.Request) error {
	if req.URL.Path != h.opts.Path {
		return &HandshakeError{
			Reason: fmt.Sprintf("request path %q is not the websocket endpoint %q", req.URL.Path, h.opts.Path),
		}
	}
	s := ctx.Session()
	hc, ok := s.Conn().(*httpConn)
	if !ok {
		return &HandshakeError{Reason: "connection does not expose an http transport"}
	}

	wsc, err := h.hs.Upgrade(hc.writer(), req)
	if err != nil {
		return toHandshakeError(err)
	}

	if err := s.SetOnce(handshakerKey, h.hs); err != nil {
		_ = wsc.Close()
		return err
	}
	hc.handedOff()
	s.SetConn(newAgent(wsc, s))

	// one-shot: further batches of this connection carry frames only
	ctx.Pipeline().Remove(HandshakeStageName)
	ctx.Pipeline().FireEvent(HandshakeComplete{Path: req.URL.Path, Subprotocol: wsc.Subprotocol()})

	if env.Debug {
		log.Info("Session upgraded to websocket, ID=%d, Remote=%s", s.ID(), wsc.RemoteAddr().String())
	}
	return nil
}
