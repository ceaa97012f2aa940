package state

import "testing"

func TestLedgerAddAndNames(t *testing.T) {
	l := make(identityLedger)

	l.add(1, "a")
	l.add(1, "b")
	l.add(2, "c")

	if got := len(l.names(1)); got != 2 {
		t.Errorf("expected 2 names for identity 1, got %d", got)
	}
	if got := len(l.names(2)); got != 1 {
		t.Errorf("expected 1 name for identity 2, got %d", got)
	}
	if got := l.names(99); got != nil {
		t.Errorf("unknown identity should have no bucket, got %v", got)
	}
}

func TestLedgerRemoveDropsEmptyBucket(t *testing.T) {
	l := make(identityLedger)
	l.add(1, "a")
	l.add(1, "b")

	l.remove(1, "a")
	if got := len(l.names(1)); got != 1 {
		t.Errorf("expected 1 remaining name, got %d", got)
	}

	l.remove(1, "b")
	if _, ok := l[1]; ok {
		t.Error("empty bucket should be deleted")
	}

	// Removing from a missing bucket is a no-op.
	l.remove(1, "b")
	l.remove(42, "x")
}

func TestLedgerClear(t *testing.T) {
	l := make(identityLedger)
	l.add(1, "a")
	l.add(1, "b")

	l.clear(1)
	if _, ok := l[1]; ok {
		t.Error("clear should drop the bucket outright")
	}
}
