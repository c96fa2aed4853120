package service

import "sync/atomic"

// counterConnection issues session ids from a plain counter. Useful in
// tests where predictable ids matter more than global uniqueness.
type counterConnection struct {
	count atomic.Int64
	sid   atomic.Int64
}

func newCounterConnection() *counterConnection {
	return &counterConnection{}
}

// Increment records one more live connection
func (c *counterConnection) Increment() {
	c.count.Add(1)
}

// Decrement records one connection gone
func (c *counterConnection) Decrement() {
	c.count.Add(-1)
}

// Count returns the current number of live connections
func (c *counterConnection) Count() int64 {
	return c.count.Load()
}

// SessionID returns a fresh session id
func (c *counterConnection) SessionID() int64 {
	return c.sid.Add(1)
}
