// Package runtime provides the execution context that owns a state
// registry and forwards state-update events to the scheduler hook.
//
// An ExecContext is created at execution-context start, installed on the
// goroutine that runs user code, and discarded at context end:
//
//	ctx := runtime.NewExecContext(
//	    runtime.WithUpdateHandler(func(c state.Cell) { graph.Enqueue(c) }),
//	)
//	ctx.Install()
//	defer ctx.Uninstall()
package runtime
