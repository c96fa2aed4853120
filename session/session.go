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

package session

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/lonng/wspipe/session/service"
)

// Conn represents the low-level transport a session writes to. Write is
// fire-and-forget: it enqueues the value and returns a channel carrying
// the outcome of that single write, so callers can sequence follow-up
// work (closing after a diagnostic response) without blocking the
// processing goroutine.
type Conn interface {
	Write(v any) <-chan error
	Close() error
	RemoteAddr() net.Addr
}

var (
	// ErrDuplicateKey indicates a SetOnce key that already has a value.
	ErrDuplicateKey = errors.New("session key already bound")
)

// Session holds the state of one client connection. It can store
// temporary data during the lifetime of the low-level connection; the
// data is released when the connection is closed.
//
// A session is owned by its connection's processing goroutine. The data
// store keeps its lock because lifecycle callbacks may inspect it from
// the outside.
type Session struct {
	id       int64          // session global unique id
	lastTime int64          // creation unix time
	conn     Conn           // low-level transport entity
	connMu   sync.RWMutex   // protect conn across the protocol swap
	data     map[string]any // session data store
	dataMu   sync.RWMutex   // protect data
}

// New returns a new session instance bound to the given transport.
func New(conn Conn) *Session {
	s := &Session{
		id:       service.Connections.SessionID(),
		conn:     conn,
		data:     make(map[string]any),
		lastTime: time.Now().Unix(),
	}
	Lifetime.FireCreated(s)
	return s
}

// ID returns the session id
func (s *Session) ID() int64 {
	return s.id
}

// Conn returns the low-level transport entity.
func (s *Session) Conn() Conn {
	s.connMu.RLock()
	defer s.connMu.RUnlock()

	return s.conn
}

// SetConn replaces the transport entity. It is used exactly once per
// connection, when the protocol upgrade swaps the plain HTTP transport
// for the upgraded one.
func (s *Session) SetConn(conn Conn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	s.conn = conn
}

// RemoteAddr returns the remote network address.
func (s *Session) RemoteAddr() net.Addr {
	return s.Conn().RemoteAddr()
}

// Close closes the underlying transport.
func (s *Session) Close() error {
	return s.Conn().Close()
}

// Set associates value with the key in session storage
func (s *Session) Set(key string, value any) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	s.data[key] = value
}

// SetOnce associates value with the key only when the key has no value
// yet. A second call for the same key fails with ErrDuplicateKey; the
// stored value stays immutable for the rest of the session.
func (s *Session) SetOnce(key string, value any) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	if _, has := s.data[key]; has {
		return ErrDuplicateKey
	}
	s.data[key] = value
	return nil
}

// HasKey decides whether a key has associated value
func (s *Session) HasKey(key string) bool {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()

	_, has := s.data[key]
	return has
}

// Value returns the value associated with the key.
func (s *Session) Value(key string) any {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()

	return s.data[key]
}

// String returns the value associated with the key as a string.
func (s *Session) String(key string) string {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return ""
	}

	value, ok := v.(string)
	if !ok {
		return ""
	}
	return value
}

// Int64 returns the value associated with the key as a int64.
func (s *Session) Int64(key string) int64 {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return 0
	}

	value, ok := v.(int64)
	if !ok {
		return 0
	}
	return value
}

// Remove delete data associated with the key from session storage
func (s *Session) Remove(key string) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	delete(s.data, key)
}

// Clear releases all data related to current session
func (s *Session) Clear() {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	s.data = map[string]any{}
}
