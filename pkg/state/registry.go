package state

import (
	"log/slog"
	"sort"
	"sync"
)

// entry is one registration: the identity recorded at registration time
// plus a weak reference to the cell. If the reference is live, the identity
// matches the referenced cell's.
type entry struct {
	identity Identity
	ref      cellRef
}

// Registry maps qualified names to weakly-held cells. It tolerates the host
// runtime reusing an identity after collection: stale bindings are detected
// lazily at the next registration under that identity, and death callbacks
// delete only the exact binding they were armed for.
//
// All operations are total; missing names and collected cells are normal
// "nothing there" results, never errors. The registry is safe for use from
// the death-callback goroutine concurrently with registry calls.
type Registry struct {
	mu sync.Mutex

	// states maps qualified name -> registration entry.
	states map[string]*entry

	// ledger is the inverse index, identity -> bound names.
	ledger identityLedger

	logger  *slog.Logger
	metrics *Metrics
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics attaches Prometheus instrumentation to the registry.
func WithMetrics(m *Metrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		states: make(map[string]*entry),
		ledger: make(identityLedger),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Register binds a cell under name, qualified by context. An empty name
// generates a fresh globally-unique one. Re-registering a live cell under
// a name it already holds simply reinstalls the binding.
//
// If the cell's identity already has bound names whose entries no longer
// resolve to this same cell, the identity was recycled by the runtime: all
// of the identity's previous bindings are purged before the new one is
// installed. A death callback keyed on the (name, entry) snapshot is armed
// so the binding is removed when the cell becomes unreachable.
func (r *Registry) Register(c Cell, name, context string) {
	if c == nil {
		return
	}
	if name == "" {
		name = freshName()
	}
	qname := Qualify(name, context)
	id := c.Identity()

	r.mu.Lock()
	if prior := r.ledger.names(id); len(prior) > 0 && r.identityRecycledLocked(c, prior) {
		for n := range prior {
			delete(r.states, n)
		}
		r.ledger.clear(id)
		r.metrics.collisionRepaired()
		r.logger.Debug("purged bindings for recycled identity",
			"identity", uint64(id), "purged", len(prior))
	}

	ent := &entry{identity: id, ref: c.weakRef()}
	r.states[qname] = ent
	r.ledger.add(id, qname)
	r.metrics.registered()
	r.metrics.setLiveBindings(len(r.states))
	r.mu.Unlock()

	c.onRelease(func() {
		r.release(qname, ent)
	})
}

// identityRecycledLocked reports whether any of the names previously bound
// to this identity no longer resolves to this same cell. For a plain
// re-registration every prior entry still references the cell and no repair
// is needed.
func (r *Registry) identityRecycledLocked(c Cell, prior map[string]struct{}) bool {
	for n := range prior {
		ent, ok := r.states[n]
		if !ok || ent.ref.Live() != c {
			return true
		}
	}
	return false
}

// release is the death callback: it removes the exact binding captured at
// registration time. If the name has since been rebound to a different
// entry, the name map is left alone. The ledger binding is dropped only
// when no current entry legitimately owns it: after collision repair a
// recycled identity may reoccupy the same name, and a late callback for
// the old generation must not scrub the new binding.
func (r *Registry) release(qname string, ent *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.states[qname]
	if ok && cur == ent {
		delete(r.states, qname)
		cur, ok = nil, false
	}
	if !ok || cur.identity != ent.identity {
		r.ledger.remove(ent.identity, qname)
	}
	r.metrics.released()
	r.metrics.setLiveBindings(len(r.states))
}

// RegisterScope scans a name -> value mapping representing everything
// currently in scope and registers every value that is a reactive cell
// under its scope name. defs restricts which names are considered; nil
// means all of them. Non-cell values are skipped. Re-registering an
// already-registered cell is harmless.
func (r *Registry) RegisterScope(scope map[string]any, defs map[string]bool) {
	for name, value := range scope {
		if defs != nil && !defs[name] {
			continue
		}
		if c, ok := value.(Cell); ok {
			r.Register(c, name, "")
		}
	}
}

// Delete removes the binding for name, qualified by context. Supplying the
// cell guards against deleting the wrong generation of a recycled name:
// when the cell's identity differs from the stored entry's, the stored
// entry is removed on its own terms and the cell's ledger binding is
// scrubbed separately. Deleting a missing binding is a no-op, so the
// explicit and death-callback paths can both run.
func (r *Registry) Delete(name string, c Cell, context string) {
	qname := Qualify(name, context)

	r.mu.Lock()
	defer r.mu.Unlock()

	ent, ok := r.states[qname]
	if ok {
		delete(r.states, qname)
		r.ledger.remove(ent.identity, qname)
	}
	if c != nil {
		if id := c.Identity(); !ok || id != ent.identity {
			r.ledger.remove(id, qname)
		}
	}
	r.metrics.setLiveBindings(len(r.states))
}

// RetainActive prunes every binding whose base name (context stripped) is
// not in active. Scope re-evaluation is the authoritative "still wanted"
// signal, independent of collection timing: a name can vanish from scope
// long before its cell is collected. A second pass drops ledger buckets for
// identities no surviving name references.
func (r *Registry) RetainActive(active map[string]bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activeIDs := make(map[Identity]bool)
	removed := 0
	for qname, ent := range r.states {
		if active[BaseName(qname)] {
			activeIDs[ent.identity] = true
			continue
		}
		delete(r.states, qname)
		r.ledger.remove(ent.identity, qname)
		removed++
	}

	// Consistency cleanup: buckets whose identity survived through no
	// retained name reference nothing we still track.
	for id := range r.ledger {
		if !activeIDs[id] {
			r.ledger.clear(id)
		}
	}

	r.metrics.pruned(removed)
	r.metrics.setLiveBindings(len(r.states))
	if removed > 0 {
		r.logger.Debug("pruned inactive states",
			"removed", removed, "kept", len(r.states))
	}
}

// Lookup returns the live cell bound to name, qualified by context. It
// reports false both when no binding exists and when the cell has been
// collected; expired entries are not purged here, only on the registration,
// pruning, and death-callback paths.
func (r *Registry) Lookup(name, context string) (Cell, bool) {
	qname := Qualify(name, context)

	r.mu.Lock()
	ent, ok := r.states[qname]
	r.mu.Unlock()

	if !ok {
		r.metrics.lookup(lookupMiss)
		return nil, false
	}
	c := ent.ref.Live()
	if c == nil {
		r.metrics.lookup(lookupExpired)
		return nil, false
	}
	r.metrics.lookup(lookupHit)
	return c, true
}

// BoundNames returns a sorted copy of the qualified names currently bound
// to the cell's identity, or nil if there are none.
func (r *Registry) BoundNames(c Cell) []string {
	if c == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.ledger.names(c.Identity())
	if len(bucket) == 0 {
		return nil
	}
	names := make([]string, 0, len(bucket))
	for n := range bucket {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bindings currently installed, live or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// Binding is a point-in-time view of one registration, used by the
// introspection surface and tooling.
type Binding struct {
	Name     string `json:"name"`
	Base     string `json:"base"`
	Context  string `json:"context,omitempty"`
	Identity uint64 `json:"identity"`
	Live     bool   `json:"live"`
}

// Bindings returns a snapshot of all registrations, sorted by qualified
// name. Liveness reflects the moment the snapshot was taken.
func (r *Registry) Bindings() []Binding {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Binding, 0, len(r.states))
	for qname, ent := range r.states {
		context, base := splitName(qname)
		out = append(out, Binding{
			Name:     qname,
			Base:     base,
			Context:  context,
			Identity: uint64(ent.identity),
			Live:     ent.ref.Live() != nil,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupState is a typed convenience over Registry.Lookup. It reports false
// when the name is unbound, the cell has been collected, or the bound cell
// holds a different value type.
func LookupState[T any](r *Registry, name, context string) (*State[T], bool) {
	c, ok := r.Lookup(name, context)
	if !ok {
		return nil, false
	}
	s, ok := c.(*State[T])
	return s, ok
}
