package pipeline

// Stage is one unit in the ordered processing chain attached to a
// connection. A stage receives the current batch, may mutate it in
// place, and the pipeline hands the batch to the next stage when the
// call returns without error.
type Stage interface {
	// Process handles the current batch of in-flight messages
	Process(ctx *Context, batch *Batch) error
}

// Attacher is implemented by stages that want to know when they are
// added to a pipeline. The callback runs exactly once per attachment,
// with the name the stage was registered under, and may modify the
// pipeline topology (e.g. insert a companion stage before itself).
type Attacher interface {
	Attached(ctx *Context, name string) error
}

// Observer is implemented by stages interested in discrete
// notifications fired on the pipeline, such as a completed protocol
// upgrade.
type Observer interface {
	Notify(ctx *Context, event any)
}

// Catcher is implemented by stages that handle connection level
// failures. When a stage returns an error the pipeline delivers it to
// the first Catcher in topology order; processing of the failed batch
// does not resume.
type Catcher interface {
	Caught(ctx *Context, err error)
}
