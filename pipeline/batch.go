package pipeline

import (
	"fmt"

	"github.com/eapache/queue"
)

// Batch is the ordered group of messages currently travelling through
// the stages of one connection. Stages mutate it in place: the batch
// handed to the next stage contains exactly the messages that should be
// visible downstream, in order.
//
// The canonical rewrite protocol is two-phase: a stage appends its
// outputs (transformed or passed-through) at the tail while reading the
// original messages by index, then trims the original prefix with
// RemoveRange. That avoids index-shifting bugs from removing elements
// while iterating.
//
// A batch belongs to a single connection and is only ever touched from
// that connection's processing goroutine.
type Batch struct {
	q *queue.Queue
}

// NewBatch creates a batch holding the given messages in order.
func NewBatch(msgs ...any) *Batch {
	b := &Batch{q: queue.New()}
	for _, m := range msgs {
		b.q.Add(m)
	}
	return b
}

// Size returns the number of messages currently in the batch.
func (b *Batch) Size() int {
	return b.q.Length()
}

// Get returns the message at index i. Out-of-range access is a
// programming error and panics.
func (b *Batch) Get(i int) any {
	if i < 0 || i >= b.q.Length() {
		panic(fmt.Sprintf("pipeline: batch index %d out of range [0, %d)", i, b.q.Length()))
	}
	return b.q.Get(i)
}

// Add appends a message at the tail of the batch.
func (b *Batch) Add(msg any) {
	b.q.Add(msg)
}

// RemoveRange drops n messages starting at start. Only prefix trims
// (start == 0) are supported; that is the second phase of the rewrite
// protocol and keeps removal O(1) per element on the ring buffer.
func (b *Batch) RemoveRange(start, n int) {
	if start != 0 {
		panic(fmt.Sprintf("pipeline: RemoveRange start must be 0, got %d", start))
	}
	if n < 0 || n > b.q.Length() {
		panic(fmt.Sprintf("pipeline: RemoveRange count %d out of range [0, %d]", n, b.q.Length()))
	}
	for i := 0; i < n; i++ {
		b.q.Remove()
	}
}

// Values returns a snapshot of the batch content in order.
func (b *Batch) Values() []any {
	out := make([]any, b.q.Length())
	for i := range out {
		out[i] = b.q.Get(i)
	}
	return out
}
