package app

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/brazenfox/forge/system"
	"github.com/brazenfox/forge/world"
)

type counter struct{ N int }

func TestInitializeRunsStartupOnceThenUpdateRunsEveryFrame(t *testing.T) {
	a := New()
	InsertResource(a, counter{})

	var startups int32
	a.AddSystem(Startup, "seed", func(ctx *system.Context) {
		atomic.AddInt32(&startups, 1)
	})

	var updates int32
	a.AddSystem(Update, "tick", func(ctx *system.Context) {
		atomic.AddInt32(&updates, 1)
	})

	if err := a.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if atomic.LoadInt32(&startups) != 1 {
		t.Fatalf("startups = %d, want 1", startups)
	}
	if a.State() != StateInitialized {
		t.Fatalf("state = %v, want Initialized", a.State())
	}

	for i := 0; i < 3; i++ {
		if err := a.Update(1.0 / 60); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	if atomic.LoadInt32(&updates) != 3 {
		t.Fatalf("updates = %d, want 3", updates)
	}
	if atomic.LoadInt32(&startups) != 1 {
		t.Fatalf("startups after Update loop = %d, want still 1", startups)
	}
}

func TestInitializeTwiceErrors(t *testing.T) {
	a := New()
	if err := a.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := a.Initialize(); err == nil {
		t.Fatal("expected error re-initializing an already-initialized app")
	}
}

func TestAddSystemBuilderAfterConstraintOrdersExecution(t *testing.T) {
	a := New()
	var mu sync.Mutex
	var order []string
	record := func(name string) system.Func {
		return func(ctx *system.Context) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	b := a.AddSystemBuilder(Update, "b", record("b"))
	b.After("a")
	a.AddSystemBuilder(Update, "a", record("a"))

	if err := a.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := a.Update(0); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("order = %v, want [a b]", order)
	}
}

func TestAddSystemsBuilderSequenceChainsOrder(t *testing.T) {
	a := New()
	var mu sync.Mutex
	var order []string
	record := func(name string) system.Func {
		return func(ctx *system.Context) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	a.AddSystemsBuilder(Update,
		NamedSystem{Name: "first", Fn: record("first")},
		NamedSystem{Name: "second", Fn: record("second")},
		NamedSystem{Name: "third", Fn: record("third")},
	).Sequence()

	if err := a.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := a.Update(0); err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSubAppExtractRunsBeforeItsSchedules(t *testing.T) {
	a := New()
	InsertResource(a, counter{N: 42})

	sub := NewSubApp("render")
	sub.SetExtractFunction(func(main, subWorld *world.World) {
		c, err := world.ReadResource[counter](main)
		if err != nil {
			t.Errorf("ReadResource on main: %v", err)
			return
		}
		world.InsertResource(subWorld, *c)
	})

	var observed int32
	sub.AddSystem(Update, "observe", func(ctx *system.Context) {
		c, err := world.ReadResource[counter](ctx.World)
		if err != nil {
			t.Errorf("ReadResource on sub: %v", err)
			return
		}
		atomic.StoreInt32(&observed, int32(c.N))
	})

	if err := a.AddSubApp(sub); err != nil {
		t.Fatalf("AddSubApp: %v", err)
	}
	if err := a.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := a.Update(0); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if atomic.LoadInt32(&observed) != 42 {
		t.Fatalf("observed = %d, want 42", observed)
	}
}

func TestOverlappingSubAppBoundsOutstandingFutures(t *testing.T) {
	a := New()
	sub := NewSubApp("physics")
	sub.SetAllowOverlappingUpdates(true, 1)

	var runs int32
	sub.AddSystem(Update, "step", func(ctx *system.Context) {
		atomic.AddInt32(&runs, 1)
	})

	if err := a.AddSubApp(sub); err != nil {
		t.Fatalf("AddSubApp: %v", err)
	}
	if err := a.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	for i := 0; i < 4; i++ {
		if err := a.Update(0); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	if err := a.WaitForOverlappingUpdates(); err != nil {
		t.Fatalf("WaitForOverlappingUpdates: %v", err)
	}
	if atomic.LoadInt32(&runs) != 4 {
		t.Fatalf("runs = %d, want 4", runs)
	}
	if len(sub.pending) != 0 {
		t.Fatalf("pending = %d, want 0 after WaitForOverlappingUpdates", len(sub.pending))
	}
}

func TestRunExecutesShutdownExactlyOnce(t *testing.T) {
	a := New()
	var shutdowns int32
	a.AddSystem(Shutdown, "cleanup", func(ctx *system.Context) {
		atomic.AddInt32(&shutdowns, 1)
	})

	calls := 0
	if err := a.SetRunner(func(app *App) error {
		calls++
		return app.Update(0)
	}); err != nil {
		t.Fatalf("SetRunner: %v", err)
	}

	if err := a.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.State() != StateStopped {
		t.Fatalf("state = %v, want Stopped", a.State())
	}
	if atomic.LoadInt32(&shutdowns) != 1 {
		t.Fatalf("shutdowns = %d, want 1", shutdowns)
	}
	if calls != 1 {
		t.Fatalf("runner calls = %d, want 1", calls)
	}
}

func TestSetRunnerAfterInitializeErrors(t *testing.T) {
	a := New()
	if err := a.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := a.SetRunner(func(app *App) error { return nil }); err == nil {
		t.Fatal("expected error setting a runner after initialization")
	}
}

func TestAddSubAppDuplicateNameErrors(t *testing.T) {
	a := New()
	if err := a.AddSubApp(NewSubApp("x")); err != nil {
		t.Fatalf("AddSubApp: %v", err)
	}
	if err := a.AddSubApp(NewSubApp("x")); err == nil {
		t.Fatal("expected error re-adding a sub-app with the same name")
	}
}
