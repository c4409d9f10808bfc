package app

import (
	"time"

	"github.com/brazenfox/forge/scheduler"
	"github.com/brazenfox/forge/system"
)

// NamedSystem pairs a system function with the name its Descriptor is
// registered under, needed wherever several systems are added together
// (AddSystemsBuilder, Sequence) since Go has no variadic template pack to
// carry the names implicitly the way the C++ core does.
type NamedSystem struct {
	Name string
	Fn   system.Func
}

// SystemConfig is the fluent ordering builder AddSystemBuilder/
// AddSystemsBuilder return. Every method mutates the wrapped
// system.Descriptor(s) directly and returns the same builder for chaining,
// grounded on helios::app::SystemConfig's After/Before/InSet/AfterSet/
// BeforeSet/Sequence surface.
type SystemConfig struct {
	schedule    *scheduler.Schedule
	descriptors []*system.Descriptor
}

func newSystemConfig(schedule *scheduler.Schedule, descriptors ...*system.Descriptor) *SystemConfig {
	for _, d := range descriptors {
		schedule.AddSystem(d)
	}
	return &SystemConfig{schedule: schedule, descriptors: descriptors}
}

// Descriptors returns every system.Descriptor this builder wraps, in
// registration order.
func (c *SystemConfig) Descriptors() []*system.Descriptor {
	return c.descriptors
}

// After adds a run-after constraint (by system or set name) to every
// system in this builder.
func (c *SystemConfig) After(names ...string) *SystemConfig {
	for _, d := range c.descriptors {
		d.After = append(d.After, names...)
	}
	return c
}

// Before adds a run-before constraint to every system in this builder.
func (c *SystemConfig) Before(names ...string) *SystemConfig {
	for _, d := range c.descriptors {
		d.Before = append(d.Before, names...)
	}
	return c
}

// InSet marks every system in this builder as a member of the named set.
// A system belongs to at most one set in forge (the C++ original this was
// adapted from allows several; one is enough here, so the single-Set field
// on system.Descriptor stays simple).
func (c *SystemConfig) InSet(name string) *SystemConfig {
	for _, d := range c.descriptors {
		d.Set = name
	}
	return c
}

// AfterSet adds a run-after-this-set constraint to every system in this
// builder.
func (c *SystemConfig) AfterSet(names ...string) *SystemConfig {
	for _, d := range c.descriptors {
		d.AfterSets = append(d.AfterSets, names...)
	}
	return c
}

// BeforeSet adds a run-before-this-set constraint to every system in this
// builder.
func (c *SystemConfig) BeforeSet(names ...string) *SystemConfig {
	for _, d := range c.descriptors {
		d.BeforeSets = append(d.BeforeSets, names...)
	}
	return c
}

// Sequence chains the builder's systems in registration order: system i
// runs after system i-1. Only meaningful with more than one system.
func (c *SystemConfig) Sequence() *SystemConfig {
	for i := 1; i < len(c.descriptors); i++ {
		c.descriptors[i].After = append(c.descriptors[i].After, c.descriptors[i-1].Name)
	}
	return c
}

// RunEvery gates every system in this builder to run at most once per
// interval instead of every frame.
func (c *SystemConfig) RunEvery(interval time.Duration) *SystemConfig {
	for _, d := range c.descriptors {
		d.RunEvery = interval
	}
	return c
}
