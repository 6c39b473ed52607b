// Package trace records what the resolver is doing: driver phases, per-unit
// passes and lazy class completion.
//
// Tracers are attached to a context and pulled out where spans are opened:
//
//	ctx = trace.WithTracer(ctx, tr)
//	sp := trace.Begin(trace.FromContext(ctx), trace.ScopeUnit, "resolve:Foo.java", 0)
//	defer sp.End("")
//
// Level controls which scopes reach the output. Class completion events are
// only emitted at LevelDebug because a single run can complete thousands of
// classes.
package trace
