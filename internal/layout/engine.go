package layout

import (
	"context"
	"fmt"

	"clayout/internal/debuginfo"
	"clayout/internal/diag"
	"clayout/internal/emit"
	"clayout/internal/ident"
	"clayout/internal/trace"
)

// Sink receives generated definitions and checks.
type Sink interface {
	EmitType(lines []string) error
	EmitAssert(expr string, want uint64) error
	EmitAsserts(asserts []emit.EqAssert) error
}

// Names resolves forward declarations to their definitions. kind is the
// declaration's kind.
type Names interface {
	Lookup(name debuginfo.TypeName, kind debuginfo.Kind) (TypeIndex, bool)
}

// Options configures an Engine. Zero values are usable.
type Options struct {
	Counter  *ident.Counter
	Reporter diag.Reporter
	Tracer   trace.Tracer
}

// Stats summarizes engine work.
type Stats struct {
	Visited  int // type nodes processed
	Resolved int // nodes with a layout
	Types    int // definitions emitted
}

// Engine lays out types on demand and memoizes the result per TypeIndex.
// It is single-threaded.
type Engine struct {
	sources  []debuginfo.Source
	names    Names
	sink     Sink
	counter  *ident.Counter
	alloc    *ident.Allocator
	reporter diag.Reporter
	tracer   trace.Tracer
	span     uint64

	// absent: unvisited; nil: in progress or no layout.
	state map[TypeIndex]*TypeInfo
	stats Stats
}

func NewEngine(sources []debuginfo.Source, names Names, sink Sink, opts Options) *Engine {
	counter := opts.Counter
	if counter == nil {
		counter = ident.NewCounter()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Engine{
		sources:  sources,
		names:    names,
		sink:     sink,
		counter:  counter,
		alloc:    ident.NewAllocator(counter),
		reporter: reporter,
		tracer:   tracer,
		state:    make(map[TypeIndex]*TypeInfo, 1024),
	}
}

// Root processes one destination type and everything it reaches.
func (e *Engine) Root(ctx context.Context, idx TypeIndex) (*TypeInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	span := trace.Begin(e.tracer, trace.ScopeRoot, "root "+idx.String(), trace.CurrentSpan(ctx))
	prev := e.span
	e.span = span.ID()
	info, err := e.Resolve(idx, debuginfo.Unknown)
	e.span = prev
	detail := "no layout"
	if info != nil {
		detail = info.Name
	}
	span.End(detail)
	return info, err
}

// Resolve returns the layout of idx, or nil when it has none.
//
// maxSize is the room available where the type is used. A layout larger
// than that is reported and nil is returned for this use; the cached layout
// is untouched. The only error is a failed write to the sink.
func (e *Engine) Resolve(idx TypeIndex, maxSize debuginfo.Size) (*TypeInfo, error) {
	info, err := e.resolve(idx, maxSize)
	if err != nil || info == nil {
		return nil, err
	}
	if limit, ok := maxSize.Get(); ok && info.PackedSize > limit {
		diag.Warnf(e.reporter, diag.LaySizeExceedsHint, e.loc(idx, nil),
			"%s needs %d bytes but only %d are available", info.Name, info.PackedSize, limit)
		return nil, nil
	}
	return info, nil
}

// Lookup returns the cached result for idx without processing it.
func (e *Engine) Lookup(idx TypeIndex) (*TypeInfo, bool) {
	info, ok := e.state[idx]
	return info, ok
}

func (e *Engine) Stats() Stats { return e.stats }

// resolve consults the cache, processing idx on first sight.
func (e *Engine) resolve(idx TypeIndex, maxSize debuginfo.Size) (*TypeInfo, error) {
	if info, ok := e.state[idx]; ok {
		return info, nil
	}
	e.state[idx] = nil
	if err := e.process(idx, maxSize); err != nil {
		return nil, err
	}
	return e.state[idx], nil
}

func (e *Engine) install(idx TypeIndex, info *TypeInfo) {
	e.state[idx] = info
	if info != nil {
		e.stats.Resolved++
	}
}

// link makes idx share the layout of target.
func (e *Engine) link(idx, target TypeIndex, maxSize debuginfo.Size) error {
	info, err := e.resolve(target, maxSize)
	if err != nil {
		return err
	}
	e.install(idx, info)
	return nil
}

func (e *Engine) node(idx TypeIndex) (*debuginfo.Node, bool) {
	if idx.Input < 0 || idx.Input >= len(e.sources) {
		diag.Warnf(e.reporter, diag.LayUnreadableNode, e.loc(idx, nil), "no input #%d", idx.Input)
		return nil, false
	}
	n, err := e.sources[idx.Input].Node(idx.Offset)
	if err != nil {
		diag.Warnf(e.reporter, diag.LayUnreadableNode, e.loc(idx, nil), "cannot read type node: %v", err)
		return nil, false
	}
	return n, true
}

func (e *Engine) loc(idx TypeIndex, n *debuginfo.Node) diag.Location {
	l := diag.Location{Input: idx.Input, Offset: uint64(idx.Offset)}
	if idx.Input >= 0 && idx.Input < len(e.sources) {
		l.Path = e.sources[idx.Input].Path()
	}
	if n != nil && !n.Name.Anonymous() {
		l.Name = n.Name.String()
	}
	return l
}

func (e *Engine) emitType(idx TypeIndex, lines []string) error {
	if err := e.sink.EmitType(lines); err != nil {
		return emitErr(EmitErrType, idx, err)
	}
	e.stats.Types++
	return nil
}

func (e *Engine) emitAssert(idx TypeIndex, expr string, want uint64) error {
	return emitErr(EmitErrAssert, idx, e.sink.EmitAssert(expr, want))
}

func (e *Engine) emitAsserts(idx TypeIndex, asserts []emit.EqAssert) error {
	return emitErr(EmitErrAssert, idx, e.sink.EmitAsserts(asserts))
}

func sameInput(idx TypeIndex, off debuginfo.Offset) TypeIndex {
	return TypeIndex{Input: idx.Input, Offset: off}
}

func header(n *debuginfo.Node, idx TypeIndex) string {
	return fmt.Sprintf("// tyname=%s tyidx=%s", n.Name, idx)
}
