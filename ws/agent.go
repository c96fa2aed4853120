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

package ws

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lonng/wspipe/internal/env"
	"github.com/lonng/wspipe/internal/log"
	"github.com/lonng/wspipe/pipeline"
	"github.com/lonng/wspipe/protocal/frame"
	"github.com/lonng/wspipe/session"
)

const (
	statusWorking int32 = iota
	statusClosed
)

var _ session.Conn = (*agent)(nil)

// agent is the post-upgrade transport entity of a connection. Reads
// happen on the serving goroutine; a dedicated write goroutine owns the
// socket for writes, so stages enqueue outbound values and synchronize
// on the returned completion channel when ordering matters.
type agent struct {
	session *session.Session // owning session
	conn    *websocket.Conn  // upgraded low-level conn
	chSend  chan pendingWrite
	chDie   chan struct{}

	state         atomic.Int32 // current agent state
	connCloseOnce sync.Once    // close conn exactly once
	chanCloseOnce sync.Once    // close chDie exactly once
}

// pendingWrite pairs an outbound value with its completion channel.
type pendingWrite struct {
	payload any
	done    chan error
}

// newAgent wraps an upgraded connection and starts its write goroutine.
func newAgent(conn *websocket.Conn, s *session.Session) *agent {
	a := &agent{
		session: s,
		conn:    conn,
		chSend:  make(chan pendingWrite, env.WriteBacklog),
		chDie:   make(chan struct{}),
	}
	a.state.Store(statusWorking)
	go a.write()
	return a
}

// Write enqueues one outbound value. The returned channel reports the
// outcome of that single write; it never blocks the caller.
func (a *agent) Write(v any) <-chan error {
	done := make(chan error, 1)
	if a.status() == statusClosed {
		done <- ErrBrokenPipe
		return done
	}
	select {
	case a.chSend <- pendingWrite{payload: v, done: done}:
	case <-a.chDie:
		done <- ErrBrokenPipe
	default:
		done <- ErrBufferExceed
	}
	return done
}

// Close flags the agent closed and signals the write goroutine, which
// owns the actual socket shutdown.
func (a *agent) Close() error {
	if a.status() == statusClosed {
		return ErrCloseClosedSession
	}
	a.setStatus(statusClosed)

	if env.Debug {
		log.Info("Session closing, ID=%d, Remote=%s", a.session.ID(), a.conn.RemoteAddr().String())
	}
	a.chanCloseOnce.Do(func() { close(a.chDie) })
	return nil
}

// RemoteAddr returns the client address.
func (a *agent) RemoteAddr() net.Addr {
	return a.conn.RemoteAddr()
}

func (a *agent) status() int32 {
	return a.state.Load()
}

func (a *agent) setStatus(state int32) {
	a.state.Store(state)
}

// write drains the send queue onto the socket until the agent dies,
// then fails whatever writes were queued behind the close.
func (a *agent) write() {
	defer func() {
		a.setStatus(statusClosed)
		a.closeConnOnce()
		for {
			select {
			case p := <-a.chSend:
				p.done <- ErrBrokenPipe
			default:
				return
			}
		}
	}()

	for {
		select {
		case p := <-a.chSend:
			p.done <- a.writeValue(p.payload)

		case <-a.chDie: // agent closed signal
			return

		case <-env.DieChan: // application quit
			return
		}
	}
}

// writeValue encodes one outbound value onto the websocket.
func (a *agent) writeValue(v any) error {
	f, ok := v.(frame.Frame)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedMessage, v)
	}
	mt, data := frame.Message(f)
	if mt == websocket.CloseMessage {
		return a.conn.WriteControl(websocket.CloseMessage, data, time.Now().Add(env.WriteTimeout))
	}
	_ = a.conn.SetWriteDeadline(time.Now().Add(env.WriteTimeout))
	return a.conn.WriteMessage(mt, data)
}

func (a *agent) closeConnOnce() {
	a.connCloseOnce.Do(func() { _ = a.conn.Close() })
}

// serve reads frames off the socket and runs each through the pipeline
// as a one element batch. It returns when the connection dies; the
// session closed event fires before it returns.
func (a *agent) serve(p *pipeline.Pipeline) {
	s := a.session
	defer func() {
		if a.status() != statusClosed {
			_ = a.Close()
		}
		session.Lifetime.FireClosed(s)
		if env.Debug {
			log.Info("Session read loop exit, ID=%d", s.ID())
		}
	}()

	// surface peer close frames to the protocol stage instead of
	// gorilla's default echo
	a.conn.SetCloseHandler(func(code int, text string) error {
		return p.Serve(pipeline.NewBatch(frame.NewClose(code, text)))
	})

	for {
		mt, data, err := a.conn.ReadMessage()
		if err != nil {
			if a.status() != statusClosed && env.Debug {
				log.Info("Read from websocket connection error, ID=%d", s.ID(), err)
			}
			return
		}
		f, err := frame.FromMessage(mt, data)
		if err != nil {
			log.Error("Drop unknown websocket message, ID=%d, Type=%d", s.ID(), mt)
			continue
		}
		if err := p.Serve(pipeline.NewBatch(f)); err != nil {
			// failure policy already applied by the catcher stage
			return
		}
	}
}
