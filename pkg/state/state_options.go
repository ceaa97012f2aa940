package state

// Option is a functional option for configuring state creation.
type Option func(*stateOptions)

// stateOptions holds configuration gathered at construction time.
type stateOptions struct {
	// name is the registration name; empty means a fresh unique name.
	name string

	// context is the optional namespace prefix for the name.
	context string

	// allowSelfLoops marks the state as re-triggerable by its own setter.
	allowSelfLoops bool

	// registry overrides the ambient context's registry.
	registry *Registry
}

// Named registers the state under an explicit name instead of a generated
// one.
//
// Example:
//
//	count, setCount := state.New(0, state.Named("count"))
func Named(name string) Option {
	return func(o *stateOptions) {
		o.name = name
	}
}

// InContext namespaces the registration name with a context prefix, so
// same-named states declared in different execution contexts stay
// independently resolvable.
func InContext(context string) Option {
	return func(o *stateOptions) {
		o.context = context
	}
}

// AllowSelfLoops marks the state so the scheduler may re-run the cell that
// mutated it. The flag is carried on the state and consulted externally;
// notification behavior is unchanged.
func AllowSelfLoops() Option {
	return func(o *stateOptions) {
		o.allowSelfLoops = true
	}
}

// WithRegistry registers the state against an explicit registry instead of
// the ambient execution context's. Mainly useful in tests and embeddings
// that manage their own registry lifecycle.
func WithRegistry(r *Registry) Option {
	return func(o *stateOptions) {
		o.registry = r
	}
}

// applyOptions applies the given options and returns the resulting config.
func applyOptions(opts []Option) stateOptions {
	var options stateOptions
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
