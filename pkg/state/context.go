package state

import (
	"errors"
	"runtime"
	"sync"
)

// ErrContextNotInitialized is returned by Current when no execution context
// is installed for the calling goroutine. The construction and mutation
// paths catch it internally and degrade to a no-op; it is never surfaced
// through New or a Setter.
var ErrContextNotInitialized = errors.New("molab: execution context not initialized")

// Context is the execution-context surface the state core needs. The
// concrete implementation owns the registry and all downstream dependency
// propagation; the core only forwards raw change events to it.
type Context interface {
	// StateRegistry returns the registry states register into.
	StateRegistry() *Registry

	// RegisterStateUpdate accepts a cell whose value just changed.
	// Fire and forget: the core never depends on its effects.
	RegisterStateUpdate(c Cell)
}

// contexts stores the installed execution context per goroutine.
var contexts sync.Map

// getGoroutineID returns a unique identifier for the current goroutine,
// parsed from the runtime stack header ("goroutine <id> ...").
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ { // skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// Install binds ctx as the current goroutine's execution context.
// Installing nil clears it.
func Install(ctx Context) {
	gid := getGoroutineID()
	if ctx == nil {
		contexts.Delete(gid)
	} else {
		contexts.Store(gid, ctx)
	}
}

// Clear removes the current goroutine's execution context.
func Clear() {
	contexts.Delete(getGoroutineID())
}

// Current returns the execution context installed for the calling
// goroutine, or ErrContextNotInitialized if there is none.
func Current() (Context, error) {
	v, ok := contexts.Load(getGoroutineID())
	if !ok {
		return nil, ErrContextNotInitialized
	}
	return v.(Context), nil
}

// WithContext runs fn with ctx installed as the current execution context,
// restoring the previous context afterwards.
//
// Example:
//
//	state.WithContext(execCtx, func() {
//	    get, set := state.New(0, state.Named("count"))
//	    set.Set(1) // notifies execCtx
//	    _ = get
//	})
func WithContext(ctx Context, fn func()) {
	gid := getGoroutineID()
	prev, had := contexts.Load(gid)

	Install(ctx)
	defer func() {
		if had {
			contexts.Store(gid, prev)
		} else {
			contexts.Delete(gid)
		}
	}()

	fn()
}
