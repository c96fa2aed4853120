package session

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	closed bool
}

func (c *fakeConn) Write(v any) <-chan error {
	done := make(chan error, 1)
	done <- nil
	return done
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4100}
}

func TestSessionIDUnique(t *testing.T) {
	s1 := New(nil)
	s2 := New(nil)
	require.NotEqual(t, s1.ID(), s2.ID())
}

func TestSessionConn(t *testing.T) {
	first := &fakeConn{}
	s := New(first)
	require.Equal(t, Conn(first), s.Conn())
	require.Equal(t, "127.0.0.1:4100", s.RemoteAddr().String())

	second := &fakeConn{}
	s.SetConn(second)
	require.Equal(t, Conn(second), s.Conn())

	require.NoError(t, s.Close())
	require.True(t, second.closed)
	require.False(t, first.closed)
}

func TestSessionData(t *testing.T) {
	s := New(nil)

	s.Set("name", "ws-echo")
	require.True(t, s.HasKey("name"))
	require.Equal(t, "ws-echo", s.String("name"))

	s.Set("count", int64(42))
	require.Equal(t, int64(42), s.Int64("count"))

	require.Equal(t, "", s.String("count"))
	require.Equal(t, int64(0), s.Int64("missing"))

	s.Remove("name")
	require.False(t, s.HasKey("name"))

	s.Set("a", 1)
	s.Clear()
	require.False(t, s.HasKey("a"))
}

func TestSessionSetOnce(t *testing.T) {
	s := New(nil)

	require.NoError(t, s.SetOnce("slot", "first"))
	err := s.SetOnce("slot", "second")
	require.True(t, errors.Is(err, ErrDuplicateKey))
	require.Equal(t, "first", s.String("slot"))
}

func TestLifetime(t *testing.T) {
	var created, closed []*Session
	Lifetime.SessionCreated(func(s *Session) {
		created = append(created, s)
	})
	Lifetime.SessionClosed(func(s *Session) {
		closed = append(closed, s)
	})

	s := New(nil)
	require.Contains(t, created, s)

	s.Set("k", "v")
	Lifetime.FireClosed(s)
	require.Contains(t, closed, s)
	require.False(t, s.HasKey("k"))
}
