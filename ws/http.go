package ws

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// newResponse builds the minimal full response handed to a transport.
func newResponse(status int, body string) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
	}
}

// httpConn adapts the pre-upgrade side of a connection to session.Conn.
// It only understands *http.Response values; a write goes straight out
// on the underlying ResponseWriter, so the completion channel resolves
// synchronously. Close marks the connection finished, which makes the
// serving handler return and lets net/http tear the socket down.
type httpConn struct {
	w      http.ResponseWriter
	r      *http.Request
	closed bool
	handed bool // transport handed off to the upgraded connection
}

func newHTTPConn(w http.ResponseWriter, r *http.Request) *httpConn {
	return &httpConn{w: w, r: r}
}

func (c *httpConn) writer() http.ResponseWriter {
	return c.w
}

// handedOff marks the underlying socket as taken over by the upgraded
// transport; the http side must not touch it anymore.
func (c *httpConn) handedOff() {
	c.handed = true
}

func (c *httpConn) Write(v any) <-chan error {
	done := make(chan error, 1)
	resp, ok := v.(*http.Response)
	if !ok {
		done <- fmt.Errorf("%w: %T", ErrUnsupportedMessage, v)
		return done
	}
	done <- c.writeResponse(resp)
	return done
}

func (c *httpConn) writeResponse(resp *http.Response) error {
	if c.closed || c.handed {
		return ErrBrokenPipe
	}
	header := c.w.Header()
	for k, vs := range resp.Header {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	c.w.WriteHeader(resp.StatusCode)
	if resp.Body == nil {
		return nil
	}
	defer resp.Body.Close()
	_, err := io.Copy(c.w, resp.Body)
	return err
}

func (c *httpConn) Close() error {
	if c.closed {
		return ErrCloseClosedSession
	}
	c.closed = true
	return nil
}

// Closed reports whether the http side has been shut down.
func (c *httpConn) Closed() bool {
	return c.closed
}

func (c *httpConn) RemoteAddr() net.Addr {
	return strAddr(c.r.RemoteAddr)
}

// strAddr carries the textual remote address net/http exposes.
type strAddr string

func (strAddr) Network() string  { return "tcp" }
func (a strAddr) String() string { return string(a) }
