// Copyright (c) wspipe Authors. All Rights Reserved.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package pipeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lonng/wspipe/internal/log"
	"github.com/lonng/wspipe/session"
)

// Errors that could be occurred while assembling a pipeline.
var (
	ErrDuplicateStage = errors.New("stage name already present in pipeline")
	ErrStageNotFound  = errors.New("stage not found in pipeline")
)

// Context carries the per-connection state shared by the stages of one
// pipeline. A context, like the pipeline it belongs to, is owned by a
// single goroutine; no locking is needed to touch it from a stage.
type Context struct {
	pipe    *Pipeline
	session *session.Session
}

// Pipeline returns the pipeline this context belongs to.
func (c *Context) Pipeline() *Pipeline {
	return c.pipe
}

// Session returns the connection session.
func (c *Context) Session() *session.Session {
	return c.session
}

type entry struct {
	name  string
	stage Stage
}

// Pipeline is the ordered, named list of stages attached to one
// connection. Inbound batches run through the stages front to back.
//
// All operations, including topology mutation, happen on the
// connection's processing goroutine, so the stage list is not locked.
type Pipeline struct {
	ctx     *Context
	entries []entry
}

// New creates an empty pipeline bound to the given session.
func New(s *session.Session) *Pipeline {
	p := &Pipeline{}
	p.ctx = &Context{pipe: p, session: s}
	return p
}

// Context returns the processing context shared by all stages.
func (p *Pipeline) Context() *Context {
	return p.ctx
}

// AddLast appends a stage under the given name. An empty name gets a
// generated unique one. The stage's Attached hook, if any, runs after
// the stage is in place and may insert further stages.
func (p *Pipeline) AddLast(name string, st Stage) error {
	return p.insert(len(p.entries), name, st)
}

// InsertBefore places a stage directly before the named anchor stage.
func (p *Pipeline) InsertBefore(anchor, name string, st Stage) error {
	i := p.index(anchor)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrStageNotFound, anchor)
	}
	return p.insert(i, name, st)
}

func (p *Pipeline) insert(i int, name string, st Stage) error {
	if name == "" {
		name = autoName(st)
	}
	if p.Contains(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateStage, name)
	}
	p.entries = append(p.entries, entry{})
	copy(p.entries[i+1:], p.entries[i:])
	p.entries[i] = entry{name: name, stage: st}

	if a, ok := st.(Attacher); ok {
		if err := a.Attached(p.ctx, name); err != nil {
			p.Remove(name)
			return err
		}
	}
	return nil
}

// index returns the position of the named entry, -1 when absent.
func (p *Pipeline) index(name string) int {
	for i, e := range p.entries {
		if e.name == name {
			return i
		}
	}
	return -1
}

// Find returns the stage registered under name.
func (p *Pipeline) Find(name string) (Stage, bool) {
	if i := p.index(name); i >= 0 {
		return p.entries[i].stage, true
	}
	return nil, false
}

// Contains reports whether a stage is registered under name.
func (p *Pipeline) Contains(name string) bool {
	return p.index(name) >= 0
}

// Remove detaches the named stage. It reports whether the stage was
// present.
func (p *Pipeline) Remove(name string) bool {
	i := p.index(name)
	if i < 0 {
		return false
	}
	p.entries = append(p.entries[:i], p.entries[i+1:]...)
	return true
}

// Names returns the stage names in topology order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.entries))
	for i, e := range p.entries {
		names[i] = e.name
	}
	return names
}

// Serve runs the batch through every stage in order. A stage error
// stops the walk, is handed to the first Catcher stage, and is returned
// to the caller. Stages removed mid-walk are skipped; stages inserted
// mid-walk take effect from the next batch.
func (p *Pipeline) Serve(batch *Batch) error {
	for _, name := range p.Names() {
		st, found := p.Find(name)
		if !found {
			continue
		}
		if err := st.Process(p.ctx, batch); err != nil {
			p.Catch(err)
			return err
		}
	}
	return nil
}

// Catch delivers a connection level failure to the first Catcher stage.
func (p *Pipeline) Catch(err error) {
	for _, e := range p.entries {
		if c, ok := e.stage.(Catcher); ok {
			c.Caught(p.ctx, err)
			return
		}
	}
	log.Error("Uncaught pipeline failure, SessionID=%d", p.ctx.session.ID(), err)
}

// FireEvent delivers a discrete notification to every Observer stage in
// topology order.
func (p *Pipeline) FireEvent(event any) {
	for _, name := range p.Names() {
		st, found := p.Find(name)
		if !found {
			continue
		}
		if o, ok := st.(Observer); ok {
			o.Notify(p.ctx, event)
		}
	}
}

// autoName builds a unique name for anonymously attached stages.
func autoName(st Stage) string {
	return fmt.Sprintf("%T#%s", st, uuid.NewString()[:8])
}
