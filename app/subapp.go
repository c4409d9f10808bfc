package app

import (
	"context"
	"fmt"

	"github.com/brazenfox/forge/executor"
	"github.com/brazenfox/forge/scheduler"
	"github.com/brazenfox/forge/system"
	"github.com/brazenfox/forge/world"
)

// Stage names one of a SubApp's schedules. Startup and Shutdown run
// exactly once; PreUpdate, Update, and PostUpdate run every frame, in that
// order.
type Stage string

const (
	Startup    Stage = "Startup"
	PreUpdate  Stage = "PreUpdate"
	Update     Stage = "Update"
	PostUpdate Stage = "PostUpdate"
	Shutdown   Stage = "Shutdown"
)

// frameStages is the order every SubApp's per-frame schedules run in.
var frameStages = []Stage{PreUpdate, Update, PostUpdate}

// ExtractFunc copies data from the main app's World into a secondary
// SubApp's World before that SubApp's schedules run. It must not mutate
// main.
type ExtractFunc func(main, sub *world.World)

// SubApp is an independent World plus its own named schedules. The App's
// main SubApp always runs synchronously each frame; secondary SubApps may
// opt into overlapping updates that lag the main frame by a bounded number
// of frames.
type SubApp struct {
	name      string
	world     *world.World
	schedules map[Stage]*scheduler.Schedule

	extract      ExtractFunc
	allowOverlap bool
	overlapCap   int
	pending      []*executor.Future
}

// NewSubApp returns an empty, named SubApp with a fresh World.
func NewSubApp(name string) *SubApp {
	return &SubApp{
		name:      name,
		world:     world.New(),
		schedules: make(map[Stage]*scheduler.Schedule),
	}
}

// Name returns this SubApp's registration name.
func (s *SubApp) Name() string { return s.name }

// World returns this SubApp's independent World.
func (s *SubApp) World() *world.World { return s.world }

// Schedule returns the Schedule for stage, creating it on first use.
func (s *SubApp) Schedule(stage Stage) *scheduler.Schedule {
	sched, ok := s.schedules[stage]
	if !ok {
		sched = scheduler.New()
		s.schedules[stage] = sched
	}
	return sched
}

// AddSystem registers fn under name in stage's schedule and returns a
// builder for declaring its ordering. The builder has no access-policy
// methods; the system is registered with an empty AccessPolicy.
func (s *SubApp) AddSystem(stage Stage, name string, fn system.Func) *SystemConfig {
	d := system.NewDescriptor(name, fn)
	return newSystemConfig(s.Schedule(stage), d)
}

// AddSystems registers several systems in stage's schedule under one
// builder, so Sequence/After/InSet apply to all of them at once.
func (s *SubApp) AddSystems(stage Stage, systems ...NamedSystem) *SystemConfig {
	descriptors := make([]*system.Descriptor, len(systems))
	for i, ns := range systems {
		descriptors[i] = system.NewDescriptor(ns.Name, ns.Fn)
	}
	return newSystemConfig(s.Schedule(stage), descriptors...)
}

// SetAllowOverlappingUpdates opts this SubApp into running at most cap
// frames behind the main App, instead of the default synchronous-every-
// frame behavior.
func (s *SubApp) SetAllowOverlappingUpdates(allow bool, cap int) {
	s.allowOverlap = allow
	s.overlapCap = cap
}

// SetExtractFunction sets the hook that copies data from the main World
// into this SubApp's World immediately before its schedules run.
func (s *SubApp) SetExtractFunction(fn ExtractFunc) {
	s.extract = fn
}

// build computes batches for every schedule this SubApp registered
// systems in.
func (s *SubApp) build() error {
	for stage, sched := range s.schedules {
		if err := sched.Build(); err != nil {
			return fmt.Errorf("sub-app %q stage %s: %w", s.name, stage, err)
		}
	}
	return nil
}

// runFrame runs Extract then every frame stage's batches against this
// SubApp's own World, synchronously.
func (s *SubApp) runFrame(ctx context.Context, pool *executor.Pool, mainWorld *world.World, delta float64) error {
	if s.extract != nil {
		s.extract(mainWorld, s.world)
	}
	for _, stage := range frameStages {
		sched, ok := s.schedules[stage]
		if !ok {
			continue
		}
		if err := pool.RunBatches(ctx, sched.Batches(), s.world, nil, delta); err != nil {
			return fmt.Errorf("sub-app %q stage %s: %w", s.name, stage, err)
		}
	}
	s.world.Update()
	return nil
}

// waitOldest blocks on the least-recently-launched overlapping update,
// freeing one slot in the bounded pending queue.
func (s *SubApp) waitOldest() error {
	if len(s.pending) == 0 {
		return nil
	}
	oldest := s.pending[0]
	s.pending = s.pending[1:]
	return oldest.Wait()
}

// waitAll drains every outstanding overlapping update.
func (s *SubApp) waitAll() error {
	var firstErr error
	for len(s.pending) > 0 {
		if err := s.waitOldest(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
