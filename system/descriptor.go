package system

import "time"

// TypeId is a caller-assigned numeric identifier for a system, not backed by
// a process-wide registry like the world package's component/resource/event
// ids. Neither the scheduler nor the executor assigns or reads it; the
// scheduler breaks ordering ties on Name.
type TypeId uint32

// Func is the function every system implements.
type Func func(ctx *Context)

// Descriptor fully describes one system: its identity, ordering
// constraints, declared access, and the function to run. Grounded on the
// oriumgames-bevi System/Meta shape (other_examples), generalized with the
// Set/BeforeSet/AfterSet fields the SystemConfig builder exposes.
type Descriptor struct {
	Name string
	Fn   Func

	TypeID TypeId

	Access AccessPolicy

	// Set is the named group this system belongs to, if any. BeforeSet/
	// AfterSet constraints targeting this name apply transitively to every
	// member.
	Set string

	Before     []string // names or set names that must run after this system
	After      []string // names or set names that must run before this system
	BeforeSets []string // set names that must run after this system
	AfterSets  []string // set names that must run before this system

	// RunEvery gates execution to a fixed interval instead of every frame;
	// zero means "every frame".
	RunEvery time.Duration

	local    *LocalStorage
	lastRun  time.Time
	hasRunAt bool
}

// NewDescriptor wraps fn under name with an empty access policy and its own
// LocalStorage, ready for a SystemConfig builder (app package) to refine.
func NewDescriptor(name string, fn Func) *Descriptor {
	return &Descriptor{
		Name:  name,
		Fn:    fn,
		local: NewLocalStorage(),
	}
}

// ShouldRun reports whether, at time t, this system's RunEvery gate permits
// execution this frame.
func (d *Descriptor) ShouldRun(t time.Time) bool {
	if d.RunEvery <= 0 {
		return true
	}
	if !d.hasRunAt {
		return true
	}
	return t.Sub(d.lastRun) >= d.RunEvery
}

// MarkRun records t as this system's most recent execution time.
func (d *Descriptor) MarkRun(t time.Time) {
	d.lastRun = t
	d.hasRunAt = true
}

// LocalStorage returns this descriptor's persistent per-system state.
func (d *Descriptor) LocalStorage() *LocalStorage {
	return d.local
}
