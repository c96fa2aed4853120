package service

import (
	"os"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
)

// snowflakeConnection issues session ids from a snowflake node, so ids
// stay unique across the processes of one deployment.
type snowflakeConnection struct {
	count atomic.Int64
	node  *snowflake.Node
}

// newSnowflakeConnection derives the node number from the pid. Node
// numbers only need to differ between processes sharing an id space.
func newSnowflakeConnection() *snowflakeConnection {
	node, err := snowflake.NewNode(int64(os.Getpid()) & 1023)
	if err != nil {
		// node number is always in range, see above
		panic(err)
	}
	return &snowflakeConnection{node: node}
}

// Increment records one more live connection
func (c *snowflakeConnection) Increment() {
	c.count.Add(1)
}

// Decrement records one connection gone
func (c *snowflakeConnection) Decrement() {
	c.count.Add(-1)
}

// Count returns the current number of live connections
func (c *snowflakeConnection) Count() int64 {
	return c.count.Load()
}

// SessionID returns a fresh session id
func (c *snowflakeConnection) SessionID() int64 {
	return c.node.Generate().Int64()
}
