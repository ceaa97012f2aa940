// Package state provides the reactive state registry for the Molab runtime.
//
// A State[T] is a mutable value holder whose mutations are reported to the
// ambient execution context, which owns all downstream re-execution
// decisions. States are discovered by variable name through a Registry that
// tracks them weakly: the registry never keeps a state alive, and bindings
// for collected or out-of-scope states are cleaned up without caller
// involvement.
//
// # Creating state
//
//	get, set := state.New(0)
//	v := get.Get()                       // read, never notifies
//	set.Set(5)                           // replace value, notifies context
//	set.Update(func(n int) int { return n + 1 })
//
// Construction self-registers against the current execution context's
// registry. When no context is installed the state is still fully usable as
// a value holder; a later Registry.RegisterScope pass can pick it up.
//
// # Identity and weak tracking
//
// States are identified by object identity, not value. The host runtime may
// reuse an identity after a state is collected; the registry detects a
// recycled identity lazily at the next registration and purges the stale
// bindings it finds. Entries expire through weak references and a death
// callback keyed on the exact (name, identity) pair captured at
// registration time, so a legitimate later rebinding of the same name is
// never removed by a stale callback.
package state
