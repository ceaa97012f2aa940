package state

import (
	"reflect"
	"sync"
)

// Identity is an opaque token distinguishing one live cell from another.
// It is derived from the cell's memory address and is stable while the cell
// is live; the runtime may hand the same token to a new, unrelated cell
// after collection. The registry is built to tolerate exactly that.
type Identity uintptr

// Cell is the type-erased view of a reactive state the registry tracks.
// It is implemented by State[T]; scope scanning type-asserts arbitrary
// values against it.
type Cell interface {
	// Identity returns the cell's stable-while-live identity token.
	Identity() Identity

	// AllowSelfLoops reports whether the scheduler may re-trigger the
	// cell that issued a mutation. The core carries the flag but never
	// interprets it.
	AllowSelfLoops() bool

	weakRef() cellRef
	onRelease(fn func())
}

// identityOf derives an Identity from a cell's address.
func identityOf(c any) Identity {
	return Identity(reflect.ValueOf(c).Pointer())
}

// State is a mutable reactive value holder. Reading never mutates state and
// never notifies; all writes go through the paired Setter.
type State[T any] struct {
	mu    sync.RWMutex
	value T

	allowSelfLoops bool
	identity       Identity
}

// New creates a reactive state holding initial and returns it together with
// its bound Setter. The state registers itself with the ambient execution
// context's registry (or the registry given via WithRegistry); when no
// context is installed, registration is skipped and the state remains a
// plain value holder until a later scope scan discovers it.
func New[T any](initial T, opts ...Option) (*State[T], *Setter[T]) {
	o := applyOptions(opts)

	s := &State[T]{
		value:          initial,
		allowSelfLoops: o.allowSelfLoops,
	}
	s.identity = identityOf(s)

	reg := o.registry
	if reg == nil {
		if ctx, err := Current(); err == nil {
			reg = ctx.StateRegistry()
		}
	}
	if reg != nil {
		reg.Register(s, o.name, o.context)
	}

	return s, &Setter[T]{state: s}
}

// Get returns the current value.
func (s *State[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Identity returns the state's identity token.
func (s *State[T]) Identity() Identity {
	return s.identity
}

// AllowSelfLoops reports the declarative self-loop flag.
func (s *State[T]) AllowSelfLoops() bool {
	return s.allowSelfLoops
}

func (s *State[T]) store(value T) {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
}

func (s *State[T]) apply(fn func(T) T) {
	s.mu.Lock()
	s.value = fn(s.value)
	s.mu.Unlock()
}

// Setter mutates exactly one state. Every mutation notifies the ambient
// execution context unconditionally; whether anything re-runs, including
// the mutating cell itself, is the scheduler's decision, not ours. Without
// an installed context the notification is silently skipped.
type Setter[T any] struct {
	state *State[T]
}

// Set replaces the state's value.
func (f *Setter[T]) Set(value T) {
	f.state.store(value)
	f.notify()
}

// Update computes the new value from the current one.
func (f *Setter[T]) Update(fn func(T) T) {
	f.state.apply(fn)
	f.notify()
}

// State returns the state this setter is bound to.
func (f *Setter[T]) State() *State[T] {
	return f.state
}

func (f *Setter[T]) notify() {
	ctx, err := Current()
	if err != nil {
		return
	}
	ctx.RegisterStateUpdate(f.state)
}
