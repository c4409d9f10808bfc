// Package app composes world, system, scheduler, and executor into a
// runnable application: one main SubApp plus zero or more secondary
// SubApps, a fluent setup surface, and a state machine driving the
// Initialize/Run lifecycle.
//
// Grounded on helios::app::App/SubApp/SystemConfig (original_source, the
// C++ core this module was distilled from): the fluent AddSystem/
// AddSystemBuilder/InsertResource/AddEvent/AddSubApp/SetRunner surface and
// the per-sub-app Extract-then-schedule frame order are carried over
// directly. The C++ SystemConfig applies its accumulated ordering on
// destruction (no such thing in Go); forge's SystemConfig instead mutates
// the underlying system.Descriptor's fields in place; since
// scheduler.Schedule.Build reads those fields at Build time rather than at
// AddSystem time, chaining .After/.InSet/.Sequence after the system is
// already registered has the identical effect without needing a deferred
// apply step.
package app
