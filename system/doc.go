// Package system defines the unit of work the scheduler and executor
// operate on: a named function plus a declared AccessPolicy describing
// which components, resources, and events it touches. The scheduler uses
// the policy to detect conflicts and batch independent systems for
// parallel execution; it never inspects a system's body.
package system
