package visibility

import (
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeOwner struct {
	calls *[]string
	name  string
}

func (o *fakeOwner) Pause()  { *o.calls = append(*o.calls, "pause "+o.name) }
func (o *fakeOwner) Resume() { *o.calls = append(*o.calls, "resume "+o.name) }

type panickyOwner struct{}

func (panickyOwner) Pause()  { panic("pause blew up") }
func (panickyOwner) Resume() { panic("resume blew up") }

func TestCoordinator_SubscribesOnceWhileOwnersRegistered(t *testing.T) {
	flag := NewFlag(true)
	c := NewCoordinator(flag, nil)
	var calls []string

	if c.Subscribed() || flag.Listeners() != 0 {
		t.Fatal("coordinator must not subscribe before the first owner")
	}

	a := &fakeOwner{name: "a", calls: &calls}
	b := &fakeOwner{name: "b", calls: &calls}
	cc := &fakeOwner{name: "c", calls: &calls}
	c.Register("a", a)
	c.Register("b", b)
	c.Register("c", cc)
	c.Register("a", a)

	if flag.Listeners() != 1 {
		t.Fatalf("Listeners = %d, want 1", flag.Listeners())
	}
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}

	c.Unregister("a", a)
	c.Unregister("b", b)
	if flag.Listeners() != 1 {
		t.Fatal("listener detached before the last owner left")
	}
	c.Unregister("c", cc)
	if flag.Listeners() != 0 || c.Subscribed() {
		t.Fatal("listener still attached after the last owner left")
	}

	// Unknown owner is a no-op
	c.Unregister("c", cc)
	c.Unregister("nobody", a)

	// Re-registration subscribes again
	c.Register("d", &fakeOwner{name: "d", calls: &calls})
	if flag.Listeners() != 1 {
		t.Fatalf("Listeners = %d after re-register, want 1", flag.Listeners())
	}
}

func TestCoordinator_BroadcastsEdges(t *testing.T) {
	flag := NewFlag(true)
	c := NewCoordinator(flag, nil)
	var calls []string

	c.Register("b", &fakeOwner{name: "b", calls: &calls})
	c.Register("a", &fakeOwner{name: "a", calls: &calls})

	flag.Set(false)
	flag.Set(true)
	want := []string{"pause a", "pause b", "resume a", "resume b"}
	if !slices.Equal(calls, want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	if !c.Visible() {
		t.Fatal("coordinator should be visible")
	}
}

func TestCoordinator_IgnoresRepeatedState(t *testing.T) {
	flag := NewFlag(true)
	c := NewCoordinator(flag, nil)
	var calls []string
	c.Register("a", &fakeOwner{name: "a", calls: &calls})

	c.onChange(true)
	c.onChange(false)
	c.onChange(false)
	if !slices.Equal(calls, []string{"pause a"}) {
		t.Fatalf("calls = %v", calls)
	}
}

func TestCoordinator_StopsAfterUnregister(t *testing.T) {
	flag := NewFlag(true)
	c := NewCoordinator(flag, nil)
	var calls []string
	a := &fakeOwner{name: "a", calls: &calls}
	c.Register("a", a)
	c.Unregister("a", a)

	flag.Set(false)
	if len(calls) != 0 {
		t.Fatalf("unregistered owner received %v", calls)
	}
}

func TestCoordinator_ReadsInitialStateOnSubscribe(t *testing.T) {
	flag := NewFlag(false)
	c := NewCoordinator(flag, nil)
	var calls []string
	c.Register("a", &fakeOwner{name: "a", calls: &calls})

	if c.Visible() {
		t.Fatal("coordinator should adopt the environment's hidden state")
	}
	flag.Set(true)
	if !slices.Equal(calls, []string{"resume a"}) {
		t.Fatalf("calls = %v", calls)
	}
}

func TestCoordinator_PanickingOwnerDoesNotStopBroadcast(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	flag := NewFlag(true)
	c := NewCoordinator(flag, &Config{Logger: zap.New(core)})
	var calls []string

	c.Register("a", panickyOwner{})
	c.Register("b", &fakeOwner{name: "b", calls: &calls})

	flag.Set(false)
	if !slices.Equal(calls, []string{"pause b"}) {
		t.Fatalf("calls = %v", calls)
	}
	if logs.Len() != 1 {
		t.Fatalf("records = %d, want 1", logs.Len())
	}
}

func TestCoordinator_StaleUnregisterKeepsReplacement(t *testing.T) {
	flag := NewFlag(true)
	c := NewCoordinator(flag, nil)
	var calls []string

	old := &fakeOwner{name: "old", calls: &calls}
	fresh := &fakeOwner{name: "fresh", calls: &calls}

	c.Register("list", old)
	c.Register("list", fresh)
	c.Unregister("list", old)

	if !c.Registered("list") || !c.Subscribed() {
		t.Fatal("stale unregister evicted the replacement")
	}
	flag.Set(false)
	if !slices.Equal(calls, []string{"pause fresh"}) {
		t.Fatalf("calls = %v", calls)
	}

	c.Unregister("list", fresh)
	if c.Len() != 0 || flag.Listeners() != 0 {
		t.Fatal("listener still attached after the owner left")
	}
}

func TestCoordinator_UnregisterBeforeRegister(t *testing.T) {
	flag := NewFlag(true)
	c := NewCoordinator(flag, nil)
	var calls []string
	a := &fakeOwner{name: "a", calls: &calls}

	c.Unregister("a", a)
	c.Register("a", a)
	if !c.Registered("a") {
		t.Fatal("early unregister should not block a later register")
	}
	c.Unregister("a", a)
	if c.Subscribed() {
		t.Fatal("listener still attached")
	}
}
