package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/brazenfox/forge/executor"
	"github.com/brazenfox/forge/system"
	"github.com/brazenfox/forge/world"
)

// State is one step of an App's lifecycle, advanced only forward:
// Uninitialized -> Initialized -> Running -> Stopped.
type State int32

const (
	StateUninitialized State = iota
	StateInitialized
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitialized:
		return "Initialized"
	case StateRunning:
		return "Running"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// RunnerFunc drives an App's main loop once Run has initialized it.
// Returning ends the loop and transitions the App to Stopped. The default
// runner calls Update once and returns immediately; a real game loop
// replaces it with a frame-timed for-loop around a.Update(dt).
type RunnerFunc func(a *App) error

func defaultRunner(a *App) error {
	return a.Update(0)
}

// App owns a main SubApp and zero or more named secondary SubApps, an
// executor.Pool shared by every SubApp's schedules, and a forward-only
// lifecycle state machine.
//
// Grounded on helios::app::App (original_source): AddSystem/
// AddSystemBuilder/InsertResource/AddEvent/AddSubApp/SetRunner/Initialize/
// Run/Update are carried over; the reference-counted shared_future ring
// for overlapping sub-app updates becomes SubApp's own bounded
// executor.Future queue (app/subapp.go).
type App struct {
	main        *SubApp
	subApps     []*SubApp
	subAppIndex map[string]int

	pool   *executor.Pool
	runner RunnerFunc
	state  int32
}

// New returns an App with an empty main SubApp and a worker pool sized to
// runtime.GOMAXPROCS.
func New() *App {
	return &App{
		main:        NewSubApp("main"),
		subAppIndex: make(map[string]int),
		pool:        executor.New(0),
		runner:      defaultRunner,
	}
}

// World returns the main SubApp's World.
func (a *App) World() *world.World { return a.main.World() }

// InsertResource inserts v as the main SubApp's singleton resource of
// type T, overwriting any existing value.
func InsertResource[T any](a *App, v T) {
	world.InsertResource(a.World(), v)
}

// TryInsertResource inserts v only if T has no resource yet, reporting
// whether the insert happened.
func TryInsertResource[T any](a *App, v T) bool {
	return world.TryInsertResource(a.World(), v)
}

// AddEvent registers T as an event type on the main SubApp's World.
func AddEvent[T any](a *App) {
	world.AddEvent[T](a.World())
}

// MainSubApp returns the main SubApp.
func (a *App) MainSubApp() *SubApp { return a.main }

// State reports the App's current lifecycle state.
func (a *App) State() State { return State(atomic.LoadInt32(&a.state)) }

func (a *App) requireBefore(stage State, action string) error {
	if a.State() >= stage {
		return fmt.Errorf("app: cannot %s once the app is %s", action, a.State())
	}
	return nil
}

// AddSystem registers fn under name in the main SubApp's stage schedule.
func (a *App) AddSystem(stage Stage, name string, fn system.Func) *SystemConfig {
	return a.main.AddSystem(stage, name, fn)
}

// AddSystemBuilder is an alias of AddSystem kept for parity with the
// fluent AddSystemBuilder/AddSystem naming pair; both return the same
// ordering builder since forge has no deferred-apply-on-destruction step
// to distinguish them.
func (a *App) AddSystemBuilder(stage Stage, name string, fn system.Func) *SystemConfig {
	return a.main.AddSystem(stage, name, fn)
}

// AddSystemsBuilder registers several systems under one ordering builder,
// so Sequence/After/InSet apply to all of them together.
func (a *App) AddSystemsBuilder(stage Stage, systems ...NamedSystem) *SystemConfig {
	return a.main.AddSystems(stage, systems...)
}

// AddSubApp registers a secondary SubApp, keyed by its Name.
func (a *App) AddSubApp(sub *SubApp) error {
	if err := a.requireBefore(StateInitialized, "add sub-app"); err != nil {
		return err
	}
	if _, exists := a.subAppIndex[sub.Name()]; exists {
		return fmt.Errorf("app: sub-app %q already added", sub.Name())
	}
	a.subAppIndex[sub.Name()] = len(a.subApps)
	a.subApps = append(a.subApps, sub)
	return nil
}

// SubApp returns the named secondary SubApp.
func (a *App) SubApp(name string) (*SubApp, bool) {
	idx, ok := a.subAppIndex[name]
	if !ok {
		return nil, false
	}
	return a.subApps[idx], true
}

// SetSubAppExtraction sets the named secondary SubApp's Extract hook.
func (a *App) SetSubAppExtraction(name string, fn ExtractFunc) error {
	sub, ok := a.SubApp(name)
	if !ok {
		return fmt.Errorf("app: sub-app %q does not exist", name)
	}
	sub.SetExtractFunction(fn)
	return nil
}

// SetRunner replaces the function Run invokes once the App is
// Initialized.
func (a *App) SetRunner(fn RunnerFunc) error {
	if err := a.requireBefore(StateInitialized, "set runner"); err != nil {
		return err
	}
	a.runner = fn
	return nil
}

// Initialize runs every SubApp's Startup schedule exactly once, builds
// every registered schedule, and transitions Uninitialized -> Initialized.
// Run calls this automatically if it hasn't happened yet.
func (a *App) Initialize() error {
	if a.State() != StateUninitialized {
		return fmt.Errorf("app: cannot initialize an app that is already %s", a.State())
	}
	for _, sub := range append([]*SubApp{a.main}, a.subApps...) {
		if err := sub.build(); err != nil {
			return err
		}
	}
	ctx := context.Background()
	if sched, ok := a.main.schedules[Startup]; ok {
		if err := a.pool.RunBatches(ctx, sched.Batches(), a.main.World(), nil, 0); err != nil {
			return fmt.Errorf("app: startup: %w", err)
		}
		a.main.World().Update()
	}
	for _, sub := range a.subApps {
		if sched, ok := sub.schedules[Startup]; ok {
			if err := a.pool.RunBatches(ctx, sched.Batches(), sub.World(), nil, 0); err != nil {
				return fmt.Errorf("app: startup sub-app %q: %w", sub.Name(), err)
			}
			sub.World().Update()
		}
	}
	atomic.StoreInt32(&a.state, int32(StateInitialized))
	return nil
}

// Update runs one frame: the main SubApp's PreUpdate/Update/PostUpdate
// schedules, then each secondary SubApp's Extract-then-schedules step, in
// registration order, honoring each SubApp's overlap policy.
func (a *App) Update(delta float64) error {
	if a.State() != StateInitialized && a.State() != StateRunning {
		return fmt.Errorf("app: cannot update an app that is %s", a.State())
	}
	ctx := context.Background()

	for _, stage := range frameStages {
		sched, ok := a.main.schedules[stage]
		if !ok {
			continue
		}
		if err := a.pool.RunBatches(ctx, sched.Batches(), a.main.World(), nil, delta); err != nil {
			return fmt.Errorf("app: main stage %s: %w", stage, err)
		}
	}
	a.main.World().Update()

	for _, sub := range a.subApps {
		if err := a.runSubApp(ctx, sub, delta); err != nil {
			return err
		}
	}
	return nil
}

// runSubApp runs sub's frame, either synchronously or as a bounded
// overlapping future.
func (a *App) runSubApp(ctx context.Context, sub *SubApp, delta float64) error {
	if !sub.allowOverlap {
		return sub.runFrame(ctx, a.pool, a.main.World(), delta)
	}
	if len(sub.pending) >= sub.overlapCap {
		if err := sub.waitOldest(); err != nil {
			return err
		}
	}
	mainWorld := a.main.World()
	f := executor.Fork(ctx)
	f.Go(func(ctx context.Context) error {
		return sub.runFrame(ctx, a.pool, mainWorld, delta)
	})
	sub.pending = append(sub.pending, f)
	return nil
}

// WaitForOverlappingUpdates blocks until every SubApp's outstanding
// overlapping update has completed.
func (a *App) WaitForOverlappingUpdates() error {
	var firstErr error
	for _, sub := range a.subApps {
		if err := sub.waitAll(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Run initializes the App if needed, transitions to Running, invokes the
// runner, then runs every SubApp's Shutdown schedule and transitions to
// Stopped.
func (a *App) Run() error {
	if a.State() == StateUninitialized {
		if err := a.Initialize(); err != nil {
			return err
		}
	}
	if a.State() != StateInitialized {
		return fmt.Errorf("app: cannot run an app that is %s", a.State())
	}
	atomic.StoreInt32(&a.state, int32(StateRunning))

	runErr := a.runner(a)

	if err := a.WaitForOverlappingUpdates(); err != nil && runErr == nil {
		runErr = err
	}

	ctx := context.Background()
	for _, sub := range append([]*SubApp{a.main}, a.subApps...) {
		if sched, ok := sub.schedules[Shutdown]; ok {
			if err := a.pool.RunBatches(ctx, sched.Batches(), sub.World(), nil, 0); err != nil && runErr == nil {
				runErr = fmt.Errorf("app: shutdown sub-app %q: %w", sub.Name(), err)
			}
		}
	}

	atomic.StoreInt32(&a.state, int32(StateStopped))
	a.pool.Close()
	return runErr
}

// Stop does nothing: it sets no flag and does not change State. A runner
// ends its loop by returning, and that return is what moves the App to
// Stopped.
func (a *App) Stop() {}
