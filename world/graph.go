package world

import (
	"sort"
	"sync"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// archetypeGraph is the per-World mapping from canonical
// component set to archetype, plus the cached add/remove transition edges
// that hang off each archetype. Each sub-app owns its own graph instance —
// only the ComponentTypeId assignment (ids.go) is process-wide, never the
// archetype instances themselves — each World owns an independent graph,
// deliberately avoiding a global singleton.
type archetypeGraph struct {
	mu     sync.RWMutex
	schema table.Schema
	index  table.EntryIndex

	nextID  archetypeID
	arena   []*archetype
	byMask  map[mask.Mask]archetypeID

	// withCache memoizes FindMatchingArchetypes results per canonical
	// `with` mask; entries are invalidated (by full clear) whenever a new
	// archetype is created, so a cached match set never goes stale against
	// later additions or removals.
	withCache map[mask.Mask][]archetypeID
}

func newArchetypeGraph(schema table.Schema, index table.EntryIndex) *archetypeGraph {
	g := &archetypeGraph{
		schema:    schema,
		index:     index,
		nextID:    1,
		byMask:    make(map[mask.Mask]archetypeID),
		withCache: make(map[mask.Mask][]archetypeID),
	}
	// archetypeID 0 is reserved as "no archetype" (nilArchetype); seed the
	// arena with a placeholder so real ids start at 1 and index directly.
	g.arena = append(g.arena, nil)
	return g
}

func canonicalize(components []Component) ([]ComponentTypeId, mask.Mask) {
	ids := make([]ComponentTypeId, len(components))
	for i, c := range components {
		ids[i] = ComponentTypeId(componentRegistry.idFor(elementTypeOf(c)))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, maskOfAll(ids)
}

// getOrCreate returns the archetype for exactly this component set,
// creating it (and registering the components on the schema) if absent.
func (g *archetypeGraph) getOrCreate(components []Component) (*archetype, error) {
	ids, set := canonicalize(components)

	g.mu.RLock()
	if id, ok := g.byMask[set]; ok {
		a := g.arena[id]
		g.mu.RUnlock()
		return a, nil
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	if id, ok := g.byMask[set]; ok {
		return g.arena[id], nil
	}

	for _, c := range components {
		g.schema.Register(c)
	}

	id := g.nextID
	a, err := newArchetype(g.schema, g.index, id, components, ids, set)
	if err != nil {
		return nil, err
	}
	g.arena = append(g.arena, a)
	g.byMask[set] = id
	g.nextID++
	g.withCache = make(map[mask.Mask][]archetypeID)
	return a, nil
}

func (g *archetypeGraph) byID(id archetypeID) *archetype {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.arena[id]
}

// transitionAddFrom resolves (or creates) the archetype reached by adding
// `added` to the full current component list `current`, caching the edge.
func (g *archetypeGraph) transitionAddFrom(src *archetype, current []Component, added Component, addedID ComponentTypeId) (*archetype, error) {
	if dst, ok := src.GetAddEdge(addedID); ok {
		return g.byID(dst), nil
	}
	next := make([]Component, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, added)
	dst, err := g.getOrCreate(next)
	if err != nil {
		return nil, err
	}
	src.SetAddEdge(addedID, dst.id)
	dst.SetRemoveEdge(addedID, src.id)
	return dst, nil
}

// transitionRemoveFrom resolves (or creates) the archetype reached by
// removing `removed` from the full current component list, caching the edge.
func (g *archetypeGraph) transitionRemoveFrom(src *archetype, current []Component, removed ComponentTypeId) (*archetype, error) {
	if dst, ok := src.GetRemoveEdge(removed); ok {
		return g.byID(dst), nil
	}
	next := make([]Component, 0, len(current))
	for _, c := range current {
		if ComponentTypeId(componentRegistry.idFor(elementTypeOf(c))) == removed {
			continue
		}
		next = append(next, c)
	}
	dst, err := g.getOrCreate(next)
	if err != nil {
		return nil, err
	}
	src.SetRemoveEdge(removed, dst.id)
	dst.SetAddEdge(removed, src.id)
	return dst, nil
}

// findMatching returns every archetype whose set is a superset of `with`
// and disjoint from `without`. Order is stable across calls that observe no
// structural mutation (insertion order into the arena), satisfying the
// spec's tie-break requirement without promising any particular order.
func (g *archetypeGraph) findMatching(with, without []ComponentTypeId) []*archetype {
	withMask := maskOfAll(with)
	withoutMask := maskOfAll(without)

	g.mu.RLock()
	if cached, ok := g.withCache[withMask]; ok {
		out := make([]*archetype, 0, len(cached))
		for _, id := range cached {
			a := g.arena[id]
			if a.set.ContainsNone(withoutMask) {
				out = append(out, a)
			}
		}
		g.mu.RUnlock()
		return out
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	var ids []archetypeID
	var out []*archetype
	for i := 1; i < len(g.arena); i++ {
		a := g.arena[i]
		if a.set.ContainsAll(withMask) {
			ids = append(ids, a.id)
			if a.set.ContainsNone(withoutMask) {
				out = append(out, a)
			}
		}
	}
	g.withCache[withMask] = ids
	return out
}
