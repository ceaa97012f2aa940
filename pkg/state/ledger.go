package state

// identityLedger is the inverse index from a state's identity to the set of
// qualified names currently bound to it. It is pure bookkeeping: callers are
// responsible for removing entries before an identity can be legitimately
// reassigned, and the Registry's mutex guards all access.
type identityLedger map[Identity]map[string]struct{}

// add records a name binding for an identity.
func (l identityLedger) add(id Identity, name string) {
	bucket, ok := l[id]
	if !ok {
		bucket = make(map[string]struct{})
		l[id] = bucket
	}
	bucket[name] = struct{}{}
}

// remove drops a name binding for an identity, deleting the bucket when no
// names remain. Removing an unknown pair is a no-op.
func (l identityLedger) remove(id Identity, name string) {
	bucket, ok := l[id]
	if !ok {
		return
	}
	delete(bucket, name)
	if len(bucket) == 0 {
		delete(l, id)
	}
}

// names returns the bucket for an identity, or nil if unknown.
// The returned map is the live bucket; callers must not retain it.
func (l identityLedger) names(id Identity) map[string]struct{} {
	return l[id]
}

// clear drops an identity's bucket outright.
func (l identityLedger) clear(id Identity) {
	delete(l, id)
}
