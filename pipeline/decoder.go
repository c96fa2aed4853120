package pipeline

import (
	"errors"
)

// DecodeError wraps the failure of a Decoder's transform step. The
// batch it occurred in is abandoned; whether the connection survives is
// decided by the stage that catches the error.
type DecodeError struct {
	cause error
}

func (e *DecodeError) Error() string {
	return "pipeline: decode failed: " + e.cause.Error()
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *DecodeError) Unwrap() error {
	return e.cause
}

// Cause implements the pingcap/errors causer interface.
func (e *DecodeError) Cause() error {
	return e.cause
}

// wrapDecode wraps err in a DecodeError unless it already carries one,
// so a transform raising DecodeError directly is never double-wrapped.
func wrapDecode(err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{cause: err}
}

// Decoder is a batch stage that transforms every message of kind I and
// passes all other messages through unchanged and in order. It is the
// building block for protocol stages that care about one message type
// only.
//
// Decode receives a matching message and appends zero or more outputs
// to the batch tail; pass-through messages are re-appended by the
// decoder itself. Once the whole input prefix is consumed it is trimmed
// (see Batch), leaving the outputs in original relative order.
//
// A Decode failure aborts the remaining messages of the batch and
// surfaces as *DecodeError.
type Decoder[I any] struct {
	// Decode transforms one matching message. Required.
	Decode func(ctx *Context, msg I, out *Batch) error
}

// Process implements Stage.
func (d *Decoder[I]) Process(ctx *Context, batch *Batch) error {
	size := batch.Size()
	for i := 0; i < size; i++ {
		m := batch.Get(i)
		v, ok := m.(I)
		if !ok {
			batch.Add(m)
			continue
		}
		if err := d.Decode(ctx, v, batch); err != nil {
			return wrapDecode(err)
		}
	}
	batch.RemoveRange(0, size)
	return nil
}
