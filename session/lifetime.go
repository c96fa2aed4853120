package session

// Lifetime holds the process wide session lifecycle callbacks. Register
// them before the engine starts accepting connections.
var Lifetime = &lifetime{}

// LifetimeHandler represents a lifecycle callback
type LifetimeHandler func(*Session)

type lifetime struct {
	// callbacks that emitted on session created
	onCreated []LifetimeHandler
	// callbacks that emitted on session closed
	onClosed []LifetimeHandler
}

// SessionCreated registers a callback fired when a session is created
func (lt *lifetime) SessionCreated(handler LifetimeHandler) {
	lt.onCreated = append(lt.onCreated, handler)
}

// FireCreated fires the session created event
func (lt *lifetime) FireCreated(s *Session) {
	if len(lt.onCreated) == 0 {
		return
	}

	for _, h := range lt.onCreated {
		h(s)
	}
}

// SessionClosed registers a callback fired when a session is closed
func (lt *lifetime) SessionClosed(handler LifetimeHandler) {
	lt.onClosed = append(lt.onClosed, handler)
}

// FireClosed fires the session closed event and releases the session
// data afterwards.
func (lt *lifetime) FireClosed(s *Session) {
	for _, h := range lt.onClosed {
		h(s)
	}

	s.Clear()
}
