// Package trace records what a clayout run is doing: which inputs are being
// indexed, which root is being laid out and, at debug level, every type node
// visited.
//
// # Usage
//
//	clayout gen --trace=- --trace-level=detail -i a.out -o out/foo ns::Foo
//
// # Tracers
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to a file or stderr (text or NDJSON)
//   - RingTracer: last N events kept in memory for dumps on failure
//   - MultiTracer: fan-out
//
// # Levels and scopes
//
// LevelPhase shows driver and per-input events, LevelDetail adds one span per
// root type, LevelDebug adds a point event per processed type node.
//
// Tracers travel through the run via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeInput, "index", parent)
//	defer span.End("")
package trace
