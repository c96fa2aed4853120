package env

import (
	"time"
)

// Runtime knobs shared by every package in the module. Values are meant
// to be adjusted once, before the first connection is accepted.
var (
	Debug   bool      = false           // verbose connection logging
	DieChan chan bool = make(chan bool) // closed when the whole application shuts down

	WriteBacklog     int           = 16               // pending outbound writes per connection
	HandshakeTimeout time.Duration = 10 * time.Second // opening handshake deadline
	WriteTimeout     time.Duration = 10 * time.Second // deadline for a single transport write
)

// Close closes the DieChan channel so that every connection loop
// observes the application shutdown.
func Close() {
	defer func() {
		recover()
	}()
	close(DieChan)
}
