package state

import "testing"

func TestQualify(t *testing.T) {
	if got := Qualify("x", ""); got != "x" {
		t.Errorf("expected x, got %q", got)
	}
	if got := Qualify("x", "cell1"); got != "cell1:x" {
		t.Errorf("expected cell1:x, got %q", got)
	}
}

func TestBaseName(t *testing.T) {
	if got := BaseName("x"); got != "x" {
		t.Errorf("expected x, got %q", got)
	}
	if got := BaseName("cell1:x"); got != "x" {
		t.Errorf("expected x, got %q", got)
	}
	// Nested prefixes decompose on the last delimiter.
	if got := BaseName("outer:inner:x"); got != "x" {
		t.Errorf("expected x, got %q", got)
	}
}

func TestSplitName(t *testing.T) {
	context, base := splitName("cell1:x")
	if context != "cell1" || base != "x" {
		t.Errorf("expected (cell1, x), got (%q, %q)", context, base)
	}
	context, base = splitName("x")
	if context != "" || base != "x" {
		t.Errorf("expected (\"\", x), got (%q, %q)", context, base)
	}
}

func TestFreshNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := freshName()
		if n == "" {
			t.Fatal("fresh name is empty")
		}
		if seen[n] {
			t.Fatalf("duplicate fresh name %q", n)
		}
		seen[n] = true
	}
}
