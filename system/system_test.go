package system

import (
	"testing"
	"time"

	"github.com/brazenfox/forge/world"
)

func TestAccessPolicyConflictsOnWriteWrite(t *testing.T) {
	pos := world.ComponentTypeId(1)
	a := &AccessPolicy{WriteComponents: []world.ComponentTypeId{pos}}
	b := &AccessPolicy{WriteComponents: []world.ComponentTypeId{pos}}

	if !a.Conflicts(b) {
		t.Fatal("two writers of the same component must conflict")
	}
}

func TestAccessPolicyConflictsOnReadWrite(t *testing.T) {
	pos := world.ComponentTypeId(1)
	reader := &AccessPolicy{ReadComponents: []world.ComponentTypeId{pos}}
	writer := &AccessPolicy{WriteComponents: []world.ComponentTypeId{pos}}

	if !reader.Conflicts(writer) {
		t.Fatal("a reader and a writer of the same component must conflict")
	}
	if !writer.Conflicts(reader) {
		t.Fatal("Conflicts must be symmetric")
	}
}

func TestAccessPolicyNoConflictOnReadRead(t *testing.T) {
	pos := world.ComponentTypeId(1)
	a := &AccessPolicy{ReadComponents: []world.ComponentTypeId{pos}}
	b := &AccessPolicy{ReadComponents: []world.ComponentTypeId{pos}}

	if a.Conflicts(b) {
		t.Fatal("two readers of the same component must not conflict")
	}
}

func TestAccessPolicyNoConflictOnDisjointComponents(t *testing.T) {
	a := &AccessPolicy{WriteComponents: []world.ComponentTypeId{1}}
	b := &AccessPolicy{WriteComponents: []world.ComponentTypeId{2}}

	if a.Conflicts(b) {
		t.Fatal("disjoint component writes must not conflict")
	}
}

func TestAccessPolicyResourceAndEventConflicts(t *testing.T) {
	res := world.ResourceTypeId(5)
	a := &AccessPolicy{WriteResources: []world.ResourceTypeId{res}}
	b := &AccessPolicy{ReadResources: []world.ResourceTypeId{res}}
	if !a.Conflicts(b) {
		t.Fatal("resource write/read must conflict")
	}

	ev := world.EventTypeId(9)
	c := &AccessPolicy{WriteEvents: []world.EventTypeId{ev}}
	d := &AccessPolicy{WriteEvents: []world.EventTypeId{ev}}
	if !c.Conflicts(d) {
		t.Fatal("two writers of the same event type must conflict")
	}
}

func TestLocalStorageInitializesOnce(t *testing.T) {
	ls := NewLocalStorage()
	calls := 0
	counter := Local(ls, "counter", func() int {
		calls++
		return 0
	})
	*counter++

	again := Local(ls, "counter", func() int {
		calls++
		return -1
	})
	if *again != 1 {
		t.Fatalf("value = %d, want 1 (mutation through first pointer should persist)", *again)
	}
	if calls != 1 {
		t.Fatalf("init called %d times, want 1", calls)
	}
}

func TestDescriptorRunEveryGate(t *testing.T) {
	d := NewDescriptor("tick", func(*Context) {})
	if !d.ShouldRun(time.Now()) {
		t.Fatal("a system with no RunEvery gate should always run")
	}

	d.RunEvery = time.Hour
	d.MarkRun(time.Now())
	if d.ShouldRun(time.Now()) {
		t.Fatal("a freshly-run gated system should not run again immediately")
	}
}
