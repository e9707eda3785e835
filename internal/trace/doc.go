// Package trace records what the export pipeline is doing.
//
// Tracing is off by default. The CLI turns it on with:
//
//	qasmgen export --trace=- --trace-level=detail circuits/
//
// # Tracers
//
//   - Nop: disabled tracing, no allocation per event
//   - StreamTracer: writes every event as it happens (file or stderr)
//   - RingTracer: keeps the last N events in memory for dumps after a failure
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// Scopes are ordered from coarse to fine: ScopeDriver (a CLI command),
// ScopeBatch (one batch of files), ScopeFile (one circuit file). LevelPhase
// emits driver and batch events, LevelDetail adds per-file events and
// LevelDebug emits everything.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "export", parentID)
//	defer span.End("")
package trace
