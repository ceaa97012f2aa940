package state

import (
	"runtime"
	"testing"
	"time"
)

// recordingContext is a minimal execution context for observing
// registrations and update notifications.
type recordingContext struct {
	registry *Registry
	updates  []Cell
}

func newRecordingContext() *recordingContext {
	return &recordingContext{registry: NewRegistry()}
}

func (c *recordingContext) StateRegistry() *Registry     { return c.registry }
func (c *recordingContext) RegisterStateUpdate(cel Cell) { c.updates = append(c.updates, cel) }

func TestNewWithoutContext(t *testing.T) {
	Clear()

	get, set := New(3)
	if get.Get() != 3 {
		t.Errorf("expected initial value 3, got %d", get.Get())
	}

	// Still a fully usable value holder; mutation just doesn't notify.
	set.Set(4)
	if get.Get() != 4 {
		t.Errorf("expected value 4, got %d", get.Get())
	}
}

func TestNewRegistersWithAmbientContext(t *testing.T) {
	ctx := newRecordingContext()

	var s *State[string]
	WithContext(ctx, func() {
		s, _ = New("hello", Named("greeting"))
	})

	got, ok := LookupState[string](ctx.registry, "greeting", "")
	if !ok || got != s {
		t.Fatal("state did not self-register with the ambient context's registry")
	}
	if len(ctx.updates) != 0 {
		t.Errorf("registration must not notify, got %d updates", len(ctx.updates))
	}
}

func TestNewWithContextQualifier(t *testing.T) {
	reg := NewRegistry()
	s, _ := New(1, WithRegistry(reg), Named("n"), InContext("cell1"))

	if _, ok := reg.Lookup("n", ""); ok {
		t.Error("unqualified name should not resolve")
	}
	got, ok := LookupState[int](reg, "n", "cell1")
	if !ok || got != s {
		t.Error("qualified lookup should resolve the state")
	}
}

func TestSetterSemantics(t *testing.T) {
	ctx := newRecordingContext()
	installTestContext(t, ctx)

	s, set := New(0, Named("count"))

	set.Set(5)
	if s.Get() != 5 {
		t.Errorf("expected 5 after Set, got %d", s.Get())
	}
	set.Update(func(n int) int { return n + 1 })
	if s.Get() != 6 {
		t.Errorf("expected 6 after Update, got %d", s.Get())
	}

	if len(ctx.updates) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(ctx.updates))
	}
	for i, u := range ctx.updates {
		if u != Cell(s) {
			t.Errorf("notification %d carries the wrong cell", i)
		}
	}
}

func TestSetterNotifiesOnEqualValue(t *testing.T) {
	ctx := newRecordingContext()
	installTestContext(t, ctx)

	_, set := New(1, Named("n"))
	set.Set(1)
	set.Set(1)

	// Notification fires on every mutation; deduplication and equality
	// decisions belong to the scheduler.
	if len(ctx.updates) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(ctx.updates))
	}
}

func TestSetterWithoutContextSkipsNotify(t *testing.T) {
	Clear()
	reg := NewRegistry()

	s, set := New(0, WithRegistry(reg), Named("n"))
	set.Set(1)

	// Installing a context afterwards resumes notification.
	ctx := newRecordingContext()
	installTestContext(t, ctx)
	set.Set(2)

	if s.Get() != 2 {
		t.Errorf("expected 2, got %d", s.Get())
	}
	if len(ctx.updates) != 1 {
		t.Errorf("expected exactly 1 notification after install, got %d", len(ctx.updates))
	}
}

func TestGetNeverNotifies(t *testing.T) {
	ctx := newRecordingContext()
	installTestContext(t, ctx)

	s, _ := New(9, Named("n"))
	for i := 0; i < 10; i++ {
		_ = s.Get()
	}
	if len(ctx.updates) != 0 {
		t.Errorf("reads must never notify, got %d updates", len(ctx.updates))
	}
}

func TestAllowSelfLoopsCarried(t *testing.T) {
	s, _ := New(0, AllowSelfLoops())
	if !s.AllowSelfLoops() {
		t.Error("expected allow-self-loops flag to be carried")
	}
	plain, _ := New(0)
	if plain.AllowSelfLoops() {
		t.Error("expected flag off by default")
	}
}

func TestDistinctIdentities(t *testing.T) {
	a, _ := New(0)
	b, _ := New(0)
	if a.Identity() == b.Identity() {
		t.Error("two live states must not share an identity")
	}
}

func TestWeakTrackingAfterCollection(t *testing.T) {
	reg := NewRegistry()

	// Create in a separate frame so no strong reference survives.
	func() {
		_, _ = New(7, WithRegistry(reg), Named("gone"))
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		runtime.GC()
		if _, ok := reg.Lookup("gone", ""); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("lookup still resolves after collection")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// The death callback eventually scrubs the binding itself.
	for reg.Len() != 0 {
		runtime.GC()
		if time.Now().After(deadline) {
			t.Fatalf("binding not cleaned up, %d entries remain", reg.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// installTestContext installs ctx for the duration of the test.
func installTestContext(t *testing.T, ctx Context) {
	t.Helper()
	Install(ctx)
	t.Cleanup(Clear)
}
