// Copyright (c) wspipe Authors. All Rights Reserved.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package ws contains the stages that turn a plain HTTP connection into
// a websocket one and police the frames that flow afterwards. The
// protocol stage does the heavy lifting: it plants the handshake
// coordinator ahead of itself, consumes close frames once upgraded, and
// translates connection failures into the response the client deserves.
package ws

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lonng/wspipe/internal/env"
	"github.com/lonng/wspipe/internal/log"
	"github.com/lonng/wspipe/pipeline"
	"github.com/lonng/wspipe/protocal/frame"
)

// ProtocolStageName is the canonical topology name of the protocol
// upgrade stage.
const ProtocolStageName = "ws.protocol"

// ProtocolStage owns the websocket side of a connection. Before the
// upgrade it is inert (the coordinator it plants handles the
// handshake); once the session carries a negotiated handshaker the
// stage consumes close frames, delegating the closing handshake, and
// forwards every other frame downstream untouched.
type ProtocolStage struct {
	pipeline.Decoder[frame.Frame]

	opts *Options
	hs   Handshaker
}

// NewProtocolStage builds the stage for the given endpoint options.
func NewProtocolStage(opts *Options) *ProtocolStage {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Path == "" {
		opts.Path = "/ws"
	}
	hs := opts.Handshaker
	if hs == nil {
		hs = NewHandshaker(opts)
	}
	st := &ProtocolStage{opts: opts, hs: hs}
	st.Decoder.Decode = st.decode
	return st
}

// Attached plants the handshake coordinator directly before this stage.
// The check-then-insert pair is idempotent: attaching a second protocol
// stage finds the coordinator already present under its canonical name
// and leaves the topology alone.
func (st *ProtocolStage) Attached(ctx *pipeline.Context, name string) error {
	pipe := ctx.Pipeline()
	if pipe.Contains(HandshakeStageName) {
		return nil
	}
	return pipe.InsertBefore(name, HandshakeStageName, NewHandshakeStage(st.opts, st.hs))
}

// decode routes one frame. Close frames never travel past this stage:
// the closing handshake is delegated to the session's handshaker, which
// finishes asynchronously, so the frame's ownership is extended first.
func (st *ProtocolStage) decode(ctx *pipeline.Context, f frame.Frame, out *pipeline.Batch) error {
	cf, ok := f.(*frame.Close)
	if !ok {
		out.Add(f)
		return nil
	}

	hs, ok := Negotiated(ctx.Session())
	if !ok {
		return fmt.Errorf("close frame before opening handshake: %w", ErrNotUpgraded)
	}
	cf.Retain()
	return hs.Close(ctx.Session().Conn(), cf)
}

// Caught applies the connection level failure policy. A handshake
// failure happens while the connection is still HTTP shaped, so the
// client gets a 400 response carrying the reason and the transport
// closes once that write completes. Any other failure closes the
// transport outright, no response attempted.
func (st *ProtocolStage) Caught(ctx *pipeline.Context, err error) {
	conn := ctx.Session().Conn()

	var he *HandshakeError
	if !errors.As(err, &he) {
		_ = conn.Close()
		return
	}

	done := conn.Write(newResponse(http.StatusBadRequest, he.Reason))
	go func() {
		// close unconditionally, whatever the write outcome
		if werr := <-done; werr != nil && env.Debug {
			log.Info("Handshake failure response write failed, SessionID=%d", ctx.Session().ID(), werr)
		}
		_ = conn.Close()
	}()
}
