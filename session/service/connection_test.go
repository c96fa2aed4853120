package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnowflakeSessionID(t *testing.T) {
	seen := map[int64]bool{}
	for i := 0; i < 1000; i++ {
		id := Connections.SessionID()
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestCounterConnection(t *testing.T) {
	c := newCounterConnection()

	require.Equal(t, int64(0), c.Count())
	require.Equal(t, int64(1), c.SessionID())
	require.Equal(t, int64(2), c.SessionID())

	c.Increment()
	c.Increment()
	require.Equal(t, int64(2), c.Count())
	c.Decrement()
	require.Equal(t, int64(1), c.Count())
}
