package ws

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPConnWriteResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	c := newHTTPConn(rec, req)

	resp := newResponse(http.StatusForbidden, "not here")
	resp.Header.Set("X-Reason", "guard")
	require.NoError(t, <-c.Write(resp))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not here", rec.Body.String())
	assert.Equal(t, "guard", rec.Header().Get("X-Reason"))
}

func TestHTTPConnWriteRejectsOtherKinds(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	c := newHTTPConn(rec, req)

	err := <-c.Write("plain string")
	require.ErrorIs(t, err, ErrUnsupportedMessage)
}

func TestHTTPConnWriteAfterClose(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	c := newHTTPConn(rec, req)

	require.NoError(t, c.Close())
	assert.True(t, c.Closed())

	err := <-c.Write(newResponse(http.StatusOK, ""))
	require.ErrorIs(t, err, ErrBrokenPipe)

	require.ErrorIs(t, c.Close(), ErrCloseClosedSession)
}

func TestHTTPConnWriteAfterHandoff(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	c := newHTTPConn(rec, req)

	c.handedOff()
	err := <-c.Write(newResponse(http.StatusOK, ""))
	require.ErrorIs(t, err, ErrBrokenPipe)
}

func TestHTTPConnRemoteAddr(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.RemoteAddr = "10.0.0.7:5120"
	c := newHTTPConn(rec, req)

	assert.Equal(t, "10.0.0.7:5120", c.RemoteAddr().String())
	assert.Equal(t, "tcp", c.RemoteAddr().Network())
}

func TestToHandshakeError(t *testing.T) {
	he := &HandshakeError{Reason: "bad version"}
	assert.Same(t, he, toHandshakeError(he))

	conv := toHandshakeError(ErrNotUpgraded)
	assert.Equal(t, ErrNotUpgraded.Error(), conv.Reason)
	assert.Contains(t, conv.Error(), "handshake failed")
}
