package world

import (
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// archetypeID addresses an archetype within a single World's arena. Edges
// are indices into that arena, never owning pointers, so the arena can grow
// (and its backing slice can be reallocated) without invalidating edges.
type archetypeID uint32

const nilArchetype archetypeID = 0

// archetype groups every live entity that carries exactly one component set.
// Component columns are delegated entirely to table.Table; archetype only
// owns the canonical mask identity and the cached add/remove transition
// edges.
type archetype struct {
	id    archetypeID
	set   mask.Mask
	table table.Table

	componentIDs   []ComponentTypeId
	componentVals  []Component

	// entities mirrors the table's dense row order: entities[row] is the
	// handle occupying that row. Kept in lock-step with table.NewEntries /
	// table.DeleteEntries' swap-remove behavior so query iteration can pair
	// a Row with its owning Entity without consulting the table library.
	entities []Entity

	addEdges    map[ComponentTypeId]archetypeID
	removeEdges map[ComponentTypeId]archetypeID
}

func newArchetype(schema table.Schema, entryIndex table.EntryIndex, id archetypeID, components []Component, ids []ComponentTypeId, set mask.Mask) (*archetype, error) {
	elementTypes := make([]table.ElementType, len(components))
	for i, comp := range components {
		elementTypes[i] = comp
	}
	tbl, err := table.NewTableBuilder().
		WithSchema(schema).
		WithEntryIndex(entryIndex).
		WithElementTypes(elementTypes...).
		WithEvents(Config.tableEvents).
		Build()
	if err != nil {
		return nil, err
	}
	return &archetype{
		id:            id,
		set:           set,
		table:         tbl,
		componentIDs:  ids,
		componentVals: components,
		addEdges:      make(map[ComponentTypeId]archetypeID),
		removeEdges:   make(map[ComponentTypeId]archetypeID),
	}, nil
}

// pushEntity records e as occupying the newest (last) row.
func (a *archetype) pushEntity(e Entity) {
	a.entities = append(a.entities, e)
}

// swapRemove drops row, swapping the last entity into its place to keep the
// entities slice dense — mirroring the table's own swap-remove deletion.
// Returns the entity that was moved into row (if any) so the caller can
// update its stored location.
func (a *archetype) swapRemove(row int) (moved Entity, ok bool) {
	last := len(a.entities) - 1
	if last < 0 {
		return Entity{}, false
	}
	if row != last {
		a.entities[row] = a.entities[last]
		moved = a.entities[row]
		ok = true
	}
	a.entities = a.entities[:last]
	return moved, ok
}

// entityAt returns the entity occupying row, if any.
func (a *archetype) entityAt(row int) (Entity, bool) {
	if row < 0 || row >= len(a.entities) {
		return Entity{}, false
	}
	return a.entities[row], true
}

// Components returns the live Component values backing this archetype's
// columns, in schema-registration order.
func (a *archetype) Components() []Component {
	return a.componentVals
}

// ID returns the archetype's arena index.
func (a *archetype) ID() uint32 { return uint32(a.id) }

// Table exposes the underlying dense column storage.
func (a *archetype) Table() table.Table { return a.table }

// HasComponent reports whether c is part of this archetype's set.
func (a *archetype) HasComponent(c ComponentTypeId) bool {
	return a.set.ContainsAll(maskOf(c))
}

// HasComponents reports whether every id in cs is part of this archetype's set.
func (a *archetype) HasComponents(cs []ComponentTypeId) bool {
	return a.set.ContainsAll(maskOfAll(cs))
}

// HasAnyComponents reports whether at least one id in cs is part of this archetype's set.
func (a *archetype) HasAnyComponents(cs []ComponentTypeId) bool {
	if len(cs) == 0 {
		return false
	}
	return a.set.ContainsAny(maskOfAll(cs))
}

// GetAddEdge returns the cached destination of adding component c, if known.
func (a *archetype) GetAddEdge(c ComponentTypeId) (archetypeID, bool) {
	id, ok := a.addEdges[c]
	return id, ok
}

// GetRemoveEdge returns the cached destination of removing component c, if known.
func (a *archetype) GetRemoveEdge(c ComponentTypeId) (archetypeID, bool) {
	id, ok := a.removeEdges[c]
	return id, ok
}

// SetAddEdge caches the destination archetype reached by adding c.
func (a *archetype) SetAddEdge(c ComponentTypeId, dst archetypeID) {
	a.addEdges[c] = dst
}

// SetRemoveEdge caches the destination archetype reached by removing c.
func (a *archetype) SetRemoveEdge(c ComponentTypeId, dst archetypeID) {
	a.removeEdges[c] = dst
}

// maskOf builds a single-bit mask for a component id. mask.Mask XORs/ORs
// hashed ids together order-independently, giving the archetype graph an
// order-independent hash for a component set.
func maskOf(c ComponentTypeId) mask.Mask {
	var m mask.Mask
	m.Mark(uint32(c))
	return m
}

func maskOfAll(cs []ComponentTypeId) mask.Mask {
	var m mask.Mask
	for _, c := range cs {
		m.Mark(uint32(c))
	}
	return m
}
