package pipeline_test

import (
	"errors"
	"strings"
	"testing"

	. "github.com/pingcap/check"

	"github.com/lonng/wspipe/pipeline"
	"github.com/lonng/wspipe/session"
)

type pipelineSuite struct{}

var _ = Suite(&pipelineSuite{})

func TestPipeline(t *testing.T) {
	TestingT(t)
}

// traceStage records the order it saw batches in.
type traceStage struct {
	tag   string
	trace *[]string
}

func (s *traceStage) Process(_ *pipeline.Context, _ *pipeline.Batch) error {
	*s.trace = append(*s.trace, s.tag)
	return nil
}

// failStage fails every batch.
type failStage struct {
	err error
}

func (s *failStage) Process(_ *pipeline.Context, _ *pipeline.Batch) error {
	return s.err
}

// catchStage records caught failures.
type catchStage struct {
	caught []error
}

func (s *catchStage) Process(_ *pipeline.Context, _ *pipeline.Batch) error { return nil }

func (s *catchStage) Caught(_ *pipeline.Context, err error) {
	s.caught = append(s.caught, err)
}

// observeStage records fired events.
type observeStage struct {
	events []any
}

func (s *observeStage) Process(_ *pipeline.Context, _ *pipeline.Batch) error { return nil }

func (s *observeStage) Notify(_ *pipeline.Context, event any) {
	s.events = append(s.events, event)
}

func newPipeline() *pipeline.Pipeline {
	return pipeline.New(session.New(nil))
}

func (ps *pipelineSuite) TestTopology(c *C) {
	p := newPipeline()
	var trace []string

	c.Assert(p.AddLast("first", &traceStage{tag: "first", trace: &trace}), IsNil)
	c.Assert(p.AddLast("third", &traceStage{tag: "third", trace: &trace}), IsNil)
	c.Assert(p.InsertBefore("third", "second", &traceStage{tag: "second", trace: &trace}), IsNil)

	c.Assert(p.Names(), DeepEquals, []string{"first", "second", "third"})
	c.Assert(p.Contains("second"), Equals, true)

	st, found := p.Find("second")
	c.Assert(found, Equals, true)
	c.Assert(st, NotNil)

	c.Assert(p.Serve(pipeline.NewBatch("msg")), IsNil)
	c.Assert(trace, DeepEquals, []string{"first", "second", "third"})
}

func (ps *pipelineSuite) TestLookupByName(c *C) {
	p := newPipeline()
	var trace []string

	c.Assert(p.AddLast("a", &traceStage{tag: "a", trace: &trace}), IsNil)
	c.Assert(p.AddLast("b", &traceStage{tag: "b", trace: &trace}), IsNil)

	st, found := p.Find("b")
	c.Assert(found, Equals, true)
	c.Assert(st, NotNil)

	_, found = p.Find("absent")
	c.Assert(found, Equals, false)
	c.Assert(p.Contains("absent"), Equals, false)
	c.Assert(p.Remove("absent"), Equals, false)

	c.Assert(p.InsertBefore("b", "mid", &traceStage{tag: "mid", trace: &trace}), IsNil)
	c.Assert(p.Names(), DeepEquals, []string{"a", "mid", "b"})
}

func (ps *pipelineSuite) TestDuplicateName(c *C) {
	p := newPipeline()
	var trace []string

	c.Assert(p.AddLast("dup", &traceStage{tag: "a", trace: &trace}), IsNil)
	err := p.AddLast("dup", &traceStage{tag: "b", trace: &trace})
	c.Assert(errors.Is(err, pipeline.ErrDuplicateStage), Equals, true)
	c.Assert(p.Names(), DeepEquals, []string{"dup"})
}

func (ps *pipelineSuite) TestInsertBeforeMissingAnchor(c *C) {
	p := newPipeline()
	var trace []string

	err := p.InsertBefore("ghost", "x", &traceStage{tag: "x", trace: &trace})
	c.Assert(errors.Is(err, pipeline.ErrStageNotFound), Equals, true)
}

func (ps *pipelineSuite) TestAutoName(c *C) {
	p := newPipeline()
	var trace []string

	c.Assert(p.AddLast("", &traceStage{tag: "a", trace: &trace}), IsNil)
	c.Assert(p.AddLast("", &traceStage{tag: "b", trace: &trace}), IsNil)

	names := p.Names()
	c.Assert(names, HasLen, 2)
	c.Assert(names[0] == names[1], Equals, false)
	c.Assert(strings.Contains(names[0], "traceStage"), Equals, true)
}

func (ps *pipelineSuite) TestRemove(c *C) {
	p := newPipeline()
	var trace []string

	c.Assert(p.AddLast("gone", &traceStage{tag: "gone", trace: &trace}), IsNil)
	c.Assert(p.Remove("gone"), Equals, true)
	c.Assert(p.Remove("gone"), Equals, false)
	c.Assert(p.Contains("gone"), Equals, false)
}

func (ps *pipelineSuite) TestCatch(c *C) {
	p := newPipeline()
	boom := errors.New("boom")
	catcher := &catchStage{}

	c.Assert(p.AddLast("fail", &failStage{err: boom}), IsNil)
	c.Assert(p.AddLast("catch", catcher), IsNil)

	err := p.Serve(pipeline.NewBatch("msg"))
	c.Assert(err, Equals, boom)
	c.Assert(catcher.caught, DeepEquals, []error{boom})
}

func (ps *pipelineSuite) TestServeStopsAfterFailure(c *C) {
	p := newPipeline()
	var trace []string

	c.Assert(p.AddLast("a", &traceStage{tag: "a", trace: &trace}), IsNil)
	c.Assert(p.AddLast("fail", &failStage{err: errors.New("boom")}), IsNil)
	c.Assert(p.AddLast("b", &traceStage{tag: "b", trace: &trace}), IsNil)

	c.Assert(p.Serve(pipeline.NewBatch("msg")), NotNil)
	c.Assert(trace, DeepEquals, []string{"a"})
}

func (ps *pipelineSuite) TestFireEvent(c *C) {
	p := newPipeline()
	first := &observeStage{}
	second := &observeStage{}

	c.Assert(p.AddLast("first", first), IsNil)
	c.Assert(p.AddLast("second", second), IsNil)

	p.FireEvent("upgraded")
	c.Assert(first.events, DeepEquals, []any{"upgraded"})
	c.Assert(second.events, DeepEquals, []any{"upgraded"})
}
