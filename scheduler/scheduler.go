// Package scheduler orders a set of systems into a deterministic execution
// sequence and groups independent ones into parallel batches. It never
// decides how a batch is actually run in parallel — that is the executor
// package's job; Schedule only produces the plan.
//
// Grounded on the oriumgames-bevi internal scheduler (other_examples,
// c0a21f11_oriumgames-bevi__internal-scheduler-scheduler.go): its
// topologicalSort (Before/After edges, name-ordered zero-in-degree queue)
// and computeBatches (greedy conflict-free extraction from the ready set,
// re-sorted after every extraction) are carried over directly, generalized
// from per-system Before/After-by-name to also resolve Set/BeforeSet/
// AfterSet membership.
package scheduler

import (
	"sort"

	"github.com/brazenfox/forge/system"
)

// Schedule holds one ordered, batched set of systems — one instance per
// named stage (Startup, Update, ...) an App declares.
type Schedule struct {
	systems []*system.Descriptor
	batches [][]*system.Descriptor
	built   bool
}

// New returns an empty Schedule.
func New() *Schedule {
	return &Schedule{}
}

// AddSystem registers d, invalidating any previously computed batches.
func (s *Schedule) AddSystem(d *system.Descriptor) {
	d.Access.PrepareSets()
	s.systems = append(s.systems, d)
	s.built = false
}

// Systems returns every registered descriptor, in registration order.
func (s *Schedule) Systems() []*system.Descriptor {
	return s.systems
}

// Build computes the deterministic topological order (used only to detect
// cycles up front, with a clear error) and the parallel batch plan. It must
// be called after every AddSystem and before Batches is used.
func (s *Schedule) Build() error {
	if _, err := topologicalSort(s.systems); err != nil {
		return err
	}
	s.batches = computeBatches(s.systems)
	s.built = true
	return nil
}

// Batches returns the parallel execution plan computed by the last Build:
// one slice of mutually non-conflicting, Before/After-respecting systems
// per step, in the order the executor must run them.
func (s *Schedule) Batches() [][]*system.Descriptor {
	return s.batches
}

// Built reports whether Build has run since the last AddSystem.
func (s *Schedule) Built() bool {
	return s.built
}

func buildNameAndSetIndex(systems []*system.Descriptor) (map[string]*system.Descriptor, map[string][]*system.Descriptor) {
	byName := make(map[string]*system.Descriptor, len(systems))
	bySet := make(map[string][]*system.Descriptor)
	for _, sys := range systems {
		byName[sys.Name] = sys
		if sys.Set != "" {
			bySet[sys.Set] = append(bySet[sys.Set], sys)
		}
	}
	return byName, bySet
}

func addEdges(systems []*system.Descriptor, byName map[string]*system.Descriptor, bySet map[string][]*system.Descriptor, add func(a, b *system.Descriptor)) {
	resolve := func(name string) []*system.Descriptor {
		if sys, ok := byName[name]; ok {
			return []*system.Descriptor{sys}
		}
		return bySet[name]
	}
	for _, sys := range systems {
		for _, target := range sys.Before {
			for _, t := range resolve(target) {
				add(sys, t)
			}
		}
		for _, target := range sys.BeforeSets {
			for _, t := range bySet[target] {
				add(sys, t)
			}
		}
		for _, dep := range sys.After {
			for _, d := range resolve(dep) {
				add(d, sys)
			}
		}
		for _, dep := range sys.AfterSets {
			for _, d := range bySet[dep] {
				add(d, sys)
			}
		}
	}
}

// topologicalSort orders systems respecting Before/After/Set constraints,
// breaking ties on Name so the order is stable across runs with no
// structural change. It exists primarily to surface a cycle error with a
// clear message; computeBatches does the actual scheduling work.
func topologicalSort(systems []*system.Descriptor) ([]*system.Descriptor, error) {
	byName, bySet := buildNameAndSetIndex(systems)

	outgoing := make(map[*system.Descriptor]map[*system.Descriptor]bool, len(systems))
	inDegree := make(map[*system.Descriptor]int, len(systems))
	for _, sys := range systems {
		outgoing[sys] = make(map[*system.Descriptor]bool)
		inDegree[sys] = 0
	}
	add := func(a, b *system.Descriptor) {
		if a == b {
			return
		}
		if !outgoing[a][b] {
			outgoing[a][b] = true
			inDegree[b]++
		}
	}
	addEdges(systems, byName, bySet, add)

	var ready []*system.Descriptor
	for _, sys := range systems {
		if inDegree[sys] == 0 {
			ready = append(ready, sys)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].Name < ready[j].Name })

	var result []*system.Descriptor
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		result = append(result, cur)
		for next := range outgoing[cur] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = append(ready, next)
			}
		}
		sort.Slice(ready, func(i, j int) bool { return ready[i].Name < ready[j].Name })
	}

	if len(result) != len(systems) {
		var stuck []string
		for _, sys := range systems {
			if inDegree[sys] > 0 {
				stuck = append(stuck, sys.Name)
			}
		}
		sort.Strings(stuck)
		return nil, ErrCycle{Systems: stuck}
	}
	return result, nil
}

// computeBatches groups systems into DAG-level batches honoring Before/
// After/Set ordering, then greedily splits each level further by access
// conflicts so two systems that both happen to be ready but would race on a
// component/resource/event never land in the same batch.
func computeBatches(systems []*system.Descriptor) [][]*system.Descriptor {
	byName, bySet := buildNameAndSetIndex(systems)

	outgoing := make(map[*system.Descriptor]map[*system.Descriptor]bool, len(systems))
	inDegree := make(map[*system.Descriptor]int, len(systems))
	for _, sys := range systems {
		outgoing[sys] = make(map[*system.Descriptor]bool)
		inDegree[sys] = 0
	}
	add := func(a, b *system.Descriptor) {
		if a == b {
			return
		}
		if !outgoing[a][b] {
			outgoing[a][b] = true
			inDegree[b]++
		}
	}
	addEdges(systems, byName, bySet, add)

	var ready []*system.Descriptor
	for _, sys := range systems {
		if inDegree[sys] == 0 {
			ready = append(ready, sys)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].Name < ready[j].Name })

	remaining := len(systems)
	var batches [][]*system.Descriptor

	for remaining > 0 && len(ready) > 0 {
		current := append([]*system.Descriptor(nil), ready...)
		used := make([]bool, len(current))

		for {
			var batch []*system.Descriptor
			for i, sys := range current {
				if used[i] {
					continue
				}
				conflicted := false
				for _, other := range batch {
					if sys.Access.Conflicts(&other.Access) {
						conflicted = true
						break
					}
				}
				if !conflicted {
					batch = append(batch, sys)
					used[i] = true
				}
			}
			if len(batch) == 0 {
				break
			}
			batches = append(batches, batch)

			nextReady := make(map[*system.Descriptor]bool)
			for i, sys := range current {
				if !used[i] {
					nextReady[sys] = true
				}
			}
			for _, sys := range batch {
				for next := range outgoing[sys] {
					inDegree[next]--
					if inDegree[next] == 0 {
						nextReady[next] = true
					}
				}
				inDegree[sys] = -1
				remaining--
			}

			ready = ready[:0]
			for sys := range nextReady {
				if inDegree[sys] == 0 {
					ready = append(ready, sys)
				}
			}
			sort.Slice(ready, func(i, j int) bool { return ready[i].Name < ready[j].Name })
			current = append([]*system.Descriptor(nil), ready...)
			used = make([]bool, len(current))
		}
	}

	return batches
}
