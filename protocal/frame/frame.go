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

// Package frame models websocket frames as a closed set of message
// types travelling through a connection pipeline. Data frames (text,
// binary, continuation) are meant for the application; control frames
// (close, ping, pong) are consumed by the protocol layer.
package frame

import (
	"sync/atomic"
)

// Kind is the frame discriminant, valued after the RFC 6455 opcodes.
type Kind byte

const (
	KindContinuation Kind = 0x0
	KindText         Kind = 0x1
	KindBinary       Kind = 0x2
	KindClose        Kind = 0x8
	KindPing         Kind = 0x9
	KindPong         Kind = 0xA
)

// Control reports whether the kind is a control frame (RFC 6455 §5.5).
func (k Kind) Control() bool {
	return k >= KindClose
}

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindContinuation:
		return "continuation"
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	case KindClose:
		return "close"
	case KindPing:
		return "ping"
	case KindPong:
		return "pong"
	default:
		return "unknown"
	}
}

// Frame is one websocket frame. The set of implementations is closed:
// Text, Binary, Continuation, Close, Ping and Pong.
//
// Ownership: the stage currently holding a frame owns it; forwarding
// hands ownership to the next stage. Retain extends the lifetime past
// the batch, e.g. when a close frame is handed to an asynchronous close
// procedure; every Retain is balanced by one Release.
type Frame interface {
	Kind() Kind
	Payload() []byte
	Final() bool

	Retain()
	Release()

	sealed()
}

// base carries the payload and the reference count shared by all frame
// kinds. The count is atomic because Release may run from the write
// goroutine after an asynchronous close.
type base struct {
	payload []byte
	fin     bool
	refs    atomic.Int32
	free    func([]byte) // optional payload recycler
}

func (b *base) initBase(payload []byte) {
	b.payload = payload
	b.fin = true
	b.refs.Store(1)
}

// Payload returns the frame body.
func (b *base) Payload() []byte {
	return b.payload
}

// Final reports whether this frame ends a message.
func (b *base) Final() bool {
	return b.fin
}

// Retain extends ownership of the frame beyond the batch it arrived in.
func (b *base) Retain() {
	b.refs.Add(1)
}

// Release drops one reference. When none remain the payload recycler,
// if set, gets the backing memory back.
func (b *base) Release() {
	if b.refs.Add(-1) == 0 && b.free != nil {
		b.free(b.payload)
		b.payload = nil
	}
}

// Reclaim registers a recycler invoked once the last reference is
// released. Transports feeding frames from a buffer pool use it to get
// the payload memory back.
func (b *base) Reclaim(free func([]byte)) {
	b.free = free
}

func (b *base) sealed() {}

// Text is a final text data frame.
type Text struct{ base }

func NewText(payload []byte) *Text {
	f := &Text{}
	f.initBase(payload)
	return f
}

func (f *Text) Kind() Kind { return KindText }

// Binary is a final binary data frame.
type Binary struct{ base }

func NewBinary(payload []byte) *Binary {
	f := &Binary{}
	f.initBase(payload)
	return f
}

func (f *Binary) Kind() Kind { return KindBinary }

// Continuation is a fragment continuation data frame. Fin marks the
// last fragment of the message.
type Continuation struct{ base }

func NewContinuation(payload []byte, fin bool) *Continuation {
	f := &Continuation{}
	f.initBase(payload)
	f.fin = fin
	return f
}

func (f *Continuation) Kind() Kind { return KindContinuation }

// Ping is a ping control frame.
type Ping struct{ base }

func NewPing(payload []byte) *Ping {
	f := &Ping{}
	f.initBase(payload)
	return f
}

func (f *Ping) Kind() Kind { return KindPing }

// Pong is a pong control frame.
type Pong struct{ base }

func NewPong(payload []byte) *Pong {
	f := &Pong{}
	f.initBase(payload)
	return f
}

func (f *Pong) Kind() Kind { return KindPong }

// Close is a close control frame carrying the status code and reason of
// the closing handshake.
type Close struct {
	base
	code   int
	reason string
}

func NewClose(code int, reason string) *Close {
	f := &Close{code: code, reason: reason}
	f.initBase(nil)
	return f
}

func (f *Close) Kind() Kind { return KindClose }

// Code returns the close status code
func (f *Close) Code() int { return f.code }

// Reason returns the close reason text
func (f *Close) Reason() string { return f.reason }
