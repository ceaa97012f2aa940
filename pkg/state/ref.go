package state

import (
	"runtime"
	"weak"
)

// cellRef is a non-owning handle to a registered cell. The registry stores
// only cellRefs, so cell lifetime is governed entirely by the owning scope.
type cellRef interface {
	// Live returns the referenced cell, or nil if it has been collected.
	Live() Cell
}

// stateRef adapts a weak pointer to a concrete State[T] into a cellRef.
type stateRef[T any] struct {
	p weak.Pointer[State[T]]
}

func (r stateRef[T]) Live() Cell {
	if s := r.p.Value(); s != nil {
		return s
	}
	return nil
}

func (s *State[T]) weakRef() cellRef {
	return stateRef[T]{p: weak.Make(s)}
}

// onRelease arranges for fn to run after the state becomes unreachable.
// The cleanup goroutine runs concurrently with everything else, which is why
// the registry guards its maps with a mutex.
func (s *State[T]) onRelease(fn func()) {
	runtime.AddCleanup(s, func(f func()) { f() }, fn)
}
