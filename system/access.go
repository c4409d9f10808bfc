package system

import "github.com/brazenfox/forge/world"

// AccessPolicy declares, up front, every World resource a system's body
// touches: which components it reads/writes, which singleton resources and
// event types it reads/writes, and whether it issues deferred commands.
// This is the contract the scheduler conflict-checks to decide which
// systems may run in the same parallel batch — it is never inferred from
// the system's code.
//
// Grounded on the oriumgames-bevi scheduler's Meta.Access/PrepareSets/
// Conflicts shape (other_examples), generalized from component-only access
// to three access classes: component, resource, and event.
type AccessPolicy struct {
	ReadComponents  []world.ComponentTypeId
	WriteComponents []world.ComponentTypeId
	ReadResources   []world.ResourceTypeId
	WriteResources  []world.ResourceTypeId
	ReadEvents      []world.EventTypeId
	WriteEvents     []world.EventTypeId

	// IssuesCommands marks a system as recording entity/world commands.
	// Commands can touch any part of the World, so two command-issuing
	// systems always conflict and never share a batch.
	IssuesCommands bool

	prepared          bool
	readComponentSet  map[world.ComponentTypeId]struct{}
	writeComponentSet map[world.ComponentTypeId]struct{}
	readResourceSet   map[world.ResourceTypeId]struct{}
	writeResourceSet  map[world.ResourceTypeId]struct{}
	readEventSet      map[world.EventTypeId]struct{}
	writeEventSet     map[world.EventTypeId]struct{}
}

func toSet[T comparable](items []T) map[T]struct{} {
	if len(items) == 0 {
		return nil
	}
	m := make(map[T]struct{}, len(items))
	for _, v := range items {
		m[v] = struct{}{}
	}
	return m
}

// PrepareSets precomputes hash sets from the declared slices so Conflicts
// runs in O(sizeof the smaller side) instead of rescanning slices on every
// comparison. Called once by the scheduler when a system is registered.
func (a *AccessPolicy) PrepareSets() {
	if a.prepared {
		return
	}
	a.readComponentSet = toSet(a.ReadComponents)
	a.writeComponentSet = toSet(a.WriteComponents)
	a.readResourceSet = toSet(a.ReadResources)
	a.writeResourceSet = toSet(a.WriteResources)
	a.readEventSet = toSet(a.ReadEvents)
	a.writeEventSet = toSet(a.WriteEvents)
	a.prepared = true
}

func anyOverlap[T comparable](a, b map[T]struct{}) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	small, big := a, b
	if len(big) < len(small) {
		small, big = big, small
	}
	for k := range small {
		if _, ok := big[k]; ok {
			return true
		}
	}
	return false
}

// Conflicts reports whether a and other cannot run in the same parallel
// batch: any write/write or read/write overlap on the same component,
// resource, or event type, or both systems issuing commands. Two systems
// that both only read the same thing never conflict.
func (a *AccessPolicy) Conflicts(other *AccessPolicy) bool {
	if !a.prepared {
		a.PrepareSets()
	}
	if !other.prepared {
		other.PrepareSets()
	}
	return anyOverlap(a.writeComponentSet, other.writeComponentSet) ||
		anyOverlap(a.writeComponentSet, other.readComponentSet) ||
		anyOverlap(a.readComponentSet, other.writeComponentSet) ||
		anyOverlap(a.writeResourceSet, other.writeResourceSet) ||
		anyOverlap(a.writeResourceSet, other.readResourceSet) ||
		anyOverlap(a.readResourceSet, other.writeResourceSet) ||
		anyOverlap(a.writeEventSet, other.writeEventSet) ||
		anyOverlap(a.writeEventSet, other.readEventSet) ||
		anyOverlap(a.readEventSet, other.writeEventSet) ||
		(a.IssuesCommands && other.IssuesCommands)
}
