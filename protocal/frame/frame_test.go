package frame

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindControl(t *testing.T) {
	assert.False(t, KindContinuation.Control())
	assert.False(t, KindText.Control())
	assert.False(t, KindBinary.Control())
	assert.True(t, KindClose.Control())
	assert.True(t, KindPing.Control())
	assert.True(t, KindPong.Control())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "close", KindClose.String())
	assert.Equal(t, "unknown", Kind(0x7).String())
}

func TestFrameKinds(t *testing.T) {
	tests := []struct {
		frame Frame
		kind  Kind
		final bool
	}{
		{NewText([]byte("hi")), KindText, true},
		{NewBinary([]byte{1, 2}), KindBinary, true},
		{NewContinuation([]byte("tail"), false), KindContinuation, false},
		{NewContinuation([]byte("end"), true), KindContinuation, true},
		{NewPing(nil), KindPing, true},
		{NewPong(nil), KindPong, true},
		{NewClose(websocket.CloseNormalClosure, "bye"), KindClose, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, tt.frame.Kind())
		assert.Equal(t, tt.final, tt.frame.Final())
	}
}

func TestCloseFields(t *testing.T) {
	f := NewClose(websocket.CloseGoingAway, "moving on")
	assert.Equal(t, websocket.CloseGoingAway, f.Code())
	assert.Equal(t, "moving on", f.Reason())
}

func TestRetainRelease(t *testing.T) {
	var freed [][]byte
	f := NewBinary([]byte("pooled"))
	f.Reclaim(func(p []byte) {
		freed = append(freed, p)
	})

	f.Retain()
	f.Release()
	require.Empty(t, freed)

	f.Release()
	require.Len(t, freed, 1)
	assert.Equal(t, []byte("pooled"), freed[0])
	assert.Nil(t, f.Payload())
}

func TestFromMessage(t *testing.T) {
	f, err := FromMessage(websocket.TextMessage, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, KindText, f.Kind())
	assert.Equal(t, []byte("hello"), f.Payload())

	f, err = FromMessage(websocket.BinaryMessage, []byte{0xCA, 0xFE})
	require.NoError(t, err)
	assert.Equal(t, KindBinary, f.Kind())

	_, err = FromMessage(42, nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestFromMessageClose(t *testing.T) {
	wire := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done")
	f, err := FromMessage(websocket.CloseMessage, wire)
	require.NoError(t, err)

	cf, ok := f.(*Close)
	require.True(t, ok)
	assert.Equal(t, websocket.CloseNormalClosure, cf.Code())
	assert.Equal(t, "done", cf.Reason())

	// Empty close bodies are legal and carry no status code.
	f, err = FromMessage(websocket.CloseMessage, nil)
	require.NoError(t, err)
	assert.Equal(t, websocket.CloseNoStatusReceived, f.(*Close).Code())
}

func TestMessage(t *testing.T) {
	mt, data := Message(NewText([]byte("hi")))
	assert.Equal(t, websocket.TextMessage, mt)
	assert.Equal(t, []byte("hi"), data)

	mt, data = Message(NewBinary([]byte{9}))
	assert.Equal(t, websocket.BinaryMessage, mt)
	assert.Equal(t, []byte{9}, data)

	mt, _ = Message(NewContinuation([]byte("frag"), false))
	assert.Equal(t, websocket.BinaryMessage, mt)

	mt, data = Message(NewClose(websocket.CloseNormalClosure, "bye"))
	assert.Equal(t, websocket.CloseMessage, mt)
	assert.Equal(t, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), data)
}
