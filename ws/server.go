package ws

import (
	"net/http"

	"github.com/lonng/wspipe/internal/log"
	"github.com/lonng/wspipe/pipeline"
	"github.com/lonng/wspipe/session"
	"github.com/lonng/wspipe/session/service"
)

// Wire adds the application stages to a freshly built connection
// pipeline. It runs after the protocol stage (and its coordinator) have
// been attached, so application stages land downstream of the upgrade.
type Wire func(p *pipeline.Pipeline) error

// Server accepts HTTP connections and runs each through its own stage
// pipeline. A connection that completes the websocket upgrade stays in
// the handler goroutine, reading frames until it dies; one that does
// not is answered and released back to net/http.
type Server struct {
	opts *Options
	wire Wire
}

// NewServer builds a server for the given endpoint options.
func NewServer(opts *Options, wire Wire) *Server {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Server{opts: opts, wire: wire}
}

// ServeHTTP implements http.Handler.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := session.New(newHTTPConn(w, r))
	p := pipeline.New(s)

	if err := p.AddLast(ProtocolStageName, NewProtocolStage(srv.opts)); err != nil {
		log.Error("Attach protocol stage error, URI=%s", r.RequestURI, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if srv.wire != nil {
		if err := srv.wire(p); err != nil {
			log.Error("Wire application stages error, URI=%s", r.RequestURI, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	if err := p.Serve(pipeline.NewBatch(r)); err != nil {
		// failure policy already applied by the catcher stage
		session.Lifetime.FireClosed(s)
		return
	}

	a, ok := s.Conn().(*agent)
	if !ok {
		// not upgraded, the plain http response went out already
		session.Lifetime.FireClosed(s)
		return
	}

	service.Connections.Increment()
	defer service.Connections.Decrement()
	a.serve(p)
}
