package service

// Connections is the default connection service
var Connections Connection = newSnowflakeConnection()

// Connection is the connection bookkeeping service
type Connection interface {
	// SessionID returns a fresh session id
	SessionID() int64

	// Increment records one more live connection
	Increment()

	// Decrement records one connection gone
	Decrement()

	// Count returns the current number of live connections
	Count() int64
}
