package ws

import (
	"net/http"

	"github.com/lonng/wspipe/pipeline"
)

// RejectStage guards pipeline branches that must only ever carry
// websocket traffic. Every fully buffered HTTP request reaching it is
// answered with 403 Forbidden and dropped from the batch; all other
// message kinds pass through unchanged and in order.
type RejectStage struct{}

// Process implements pipeline.Stage.
func (RejectStage) Process(ctx *pipeline.Context, batch *pipeline.Batch) error {
	size := batch.Size()
	for i := 0; i < size; i++ {
		m := batch.Get(i)
		if _, ok := m.(*http.Request); ok {
			// fire and forget, the request is dropped either way
			ctx.Session().Conn().Write(newResponse(http.StatusForbidden, ""))
			continue
		}
		batch.Add(m)
	}
	batch.RemoveRange(0, size)
	return nil
}
