// Package world implements forge's entity-component-system core: archetype
// storage, the query engine, double-buffered events, and deferred command
// buffers. A World owns one archetype graph, one entity allocator, and its
// own resource/event registries — independent of every other World, so a
// multi-sub-app App (see the app package) can run several worlds side by
// side without sharing mutable state.
package world

import (
	"sync"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/table"
)

// World is the root ECS container: entities, their components (via the
// archetype graph), resources (singleton values keyed by type), and events
// (double-buffered queues keyed by type).
type World struct {
	// structMu separates readers (query iteration, which only observes
	// archetype tables) from writers (structural mutation: create, destroy,
	// add/remove component). A plain RWMutex is enough here since forge's
	// deferred command buffers already remove the need for reentrant
	// per-cursor locking — no system calls a mutating World method directly
	// from inside Iter*.
	structMu sync.RWMutex

	schema table.Schema
	index  table.EntryIndex
	graph  *archetypeGraph

	allocator *entityAllocator
	resources *resourceRegistryData
	events    *eventRegistryData
	queue     commandQueue
	queueMu   sync.Mutex

	emptyArchetype *archetype
}

// New constructs an empty World with its own schema, entry index, and
// archetype graph.
func New() *World {
	schema := table.Factory.NewSchema()
	index := table.Factory.NewEntryIndex()
	w := &World{
		schema:    schema,
		index:     index,
		allocator: newEntityAllocator(),
		resources: newResourceRegistry(),
		events:    newEventRegistryData(),
	}
	w.allocator.debugAssertOnWrap = Config.DebugAssertions
	w.graph = newArchetypeGraph(schema, index)
	empty, err := w.graph.getOrCreate(nil)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	w.emptyArchetype = empty
	return w
}

func (w *World) beginRead()  { w.structMu.RLock() }
func (w *World) endRead()    { w.structMu.RUnlock() }
func (w *World) beginWrite() { w.structMu.Lock() }
func (w *World) endWrite()   { w.structMu.Unlock() }

func (w *World) entityAt(a *archetype, row int) (Entity, bool) {
	return a.entityAt(row)
}

func (w *World) locate(e Entity) (entityLocation, error) {
	loc, ok := w.allocator.locationOf(e)
	if !ok {
		return entityLocation{}, ErrEntityNotFound{Entity: e}
	}
	return loc, nil
}

// Exists reports whether e currently refers to a live entity.
func (w *World) Exists(e Entity) bool {
	return w.allocator.Live(e)
}

// EntityCount returns the number of currently live entities.
func (w *World) EntityCount() int {
	return w.allocator.count()
}

func (w *World) archetypeFor(components []Component) (*archetype, error) {
	if len(components) == 0 {
		return w.emptyArchetype, nil
	}
	return w.graph.getOrCreate(components)
}

func (w *World) insertRow(a *archetype) (int, error) {
	entries, err := a.table.NewEntries(1)
	if err != nil {
		return 0, err
	}
	return entries[0].Index(), nil
}

// CreateEntity allocates a new entity carrying the given component set,
// immediately (not deferred).
func (w *World) CreateEntity(components ...Component) (Entity, error) {
	w.beginWrite()
	defer w.endWrite()
	return w.createEntityLocked(components)
}

func (w *World) createEntityLocked(components []Component) (Entity, error) {
	a, err := w.archetypeFor(components)
	if err != nil {
		return Entity{}, err
	}
	row, err := w.insertRow(a)
	if err != nil {
		return Entity{}, err
	}
	e := w.allocator.Create()
	a.pushEntity(e)
	w.allocator.setLocation(e, entityLocation{archetype: a, row: row})
	return e, nil
}

// CreateEntities allocates n entities carrying the given component set in
// one batch.
func (w *World) CreateEntities(n int, components ...Component) ([]Entity, error) {
	w.beginWrite()
	defer w.endWrite()
	a, err := w.archetypeFor(components)
	if err != nil {
		return nil, err
	}
	entries, err := a.table.NewEntries(n)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, n)
	for i, entry := range entries {
		e := w.allocator.Create()
		a.pushEntity(e)
		w.allocator.setLocation(e, entityLocation{archetype: a, row: entry.Index()})
		out[i] = e
	}
	return out, nil
}

// ReserveEntity hands out a provisional entity handle via a lock-free
// counter, safe to call concurrently from worker-thread systems. The handle
// becomes live on the next Update.
func (w *World) ReserveEntity() Entity {
	return w.allocator.Reserve()
}

func (w *World) removeRow(a *archetype, row int) error {
	if _, err := a.table.DeleteEntries(row); err != nil {
		return err
	}
	if moved, ok := a.swapRemove(row); ok {
		w.allocator.setLocation(moved, entityLocation{archetype: a, row: row})
	}
	return nil
}

// transferRow moves the entity at srcRow in src to dst, preserving shared
// column data, and updates both archetypes' entity bookkeeping.
func (w *World) transferRow(e Entity, src *archetype, srcRow int, dst *archetype) error {
	if err := src.table.TransferEntries(dst.table, srcRow); err != nil {
		return err
	}
	if moved, ok := src.swapRemove(srcRow); ok {
		w.allocator.setLocation(moved, entityLocation{archetype: src, row: srcRow})
	}
	dstRow := dst.table.Length() - 1
	dst.pushEntity(e)
	w.allocator.setLocation(e, entityLocation{archetype: dst, row: dstRow})
	return nil
}

func (w *World) destroyEntity(e Entity) error {
	loc, ok := w.allocator.locationOf(e)
	if !ok {
		return ErrEntityNotFound{Entity: e}
	}
	if err := w.removeRow(loc.archetype, loc.row); err != nil {
		return err
	}
	return w.allocator.Destroy(e)
}

// DestroyEntity destroys e immediately. Prefer EntityCmdBuffer.DestroyEntity
// from inside a system; this is for setup/teardown code running outside the
// scheduler.
func (w *World) DestroyEntity(e Entity) error {
	w.beginWrite()
	defer w.endWrite()
	return w.destroyEntity(e)
}

// TryDestroyEntity destroys e immediately if live, no-op otherwise.
func (w *World) TryDestroyEntity(e Entity) {
	w.beginWrite()
	defer w.endWrite()
	_ = w.destroyEntity(e)
}

func (w *World) addComponent(target Entity, c Component) error {
	loc, err := w.locate(target)
	if err != nil {
		return err
	}
	src := loc.archetype
	addedID := ComponentTypeId(componentRegistry.idFor(elementTypeOf(c)))
	if src.HasComponent(addedID) {
		return ErrComponentExists{Component: addedID}
	}
	dst, err := w.graph.transitionAddFrom(src, src.Components(), c, addedID)
	if err != nil {
		return err
	}
	return w.transferRow(target, src, loc.row, dst)
}

// AddComponent immediately moves e to the archetype formed by adding c.
func (w *World) AddComponent(e Entity, c Component) error {
	w.beginWrite()
	defer w.endWrite()
	return w.addComponent(e, c)
}

// TryAddComponent is AddComponent, swallowing any error.
func (w *World) TryAddComponent(e Entity, c Component) {
	w.beginWrite()
	defer w.endWrite()
	_ = w.addComponent(e, c)
}

// EmplaceComponent adds c to e (if absent) and writes value into the new
// column slot in one step.
func EmplaceComponent[T any](w *World, e Entity, c AccessibleComponent[T], value T) error {
	w.beginWrite()
	loc, err := w.locate(e)
	if err != nil {
		w.endWrite()
		return err
	}
	if !loc.archetype.HasComponent(ComponentTypeId(componentRegistry.idFor(elementTypeOf(c.Component)))) {
		if err := w.addComponent(e, c.Component); err != nil {
			w.endWrite()
			return err
		}
	}
	w.endWrite()
	ptr, err := c.GetFromEntity(w, e)
	if err != nil {
		return err
	}
	*ptr = value
	return nil
}

func (w *World) removeComponent(target Entity, c Component) error {
	loc, err := w.locate(target)
	if err != nil {
		return err
	}
	src := loc.archetype
	removedID := ComponentTypeId(componentRegistry.idFor(elementTypeOf(c)))
	if !src.HasComponent(removedID) {
		return ErrComponentNotFound{Component: removedID}
	}
	dst, err := w.graph.transitionRemoveFrom(src, src.Components(), removedID)
	if err != nil {
		return err
	}
	return w.transferRow(target, src, loc.row, dst)
}

// RemoveComponent immediately moves e to the archetype formed by removing c.
func (w *World) RemoveComponent(e Entity, c Component) error {
	w.beginWrite()
	defer w.endWrite()
	return w.removeComponent(e, c)
}

// TryRemoveComponent is RemoveComponent, swallowing any error.
func (w *World) TryRemoveComponent(e Entity, c Component) {
	w.beginWrite()
	defer w.endWrite()
	_ = w.removeComponent(e, c)
}

func (w *World) clearComponents(target Entity) error {
	loc, err := w.locate(target)
	if err != nil {
		return err
	}
	if loc.archetype == w.emptyArchetype {
		return nil
	}
	return w.transferRow(target, loc.archetype, loc.row, w.emptyArchetype)
}

// ClearComponents immediately strips every component from e, leaving it
// alive in the empty archetype.
func (w *World) ClearComponents(e Entity) error {
	w.beginWrite()
	defer w.endWrite()
	return w.clearComponents(e)
}

// HasComponent reports whether e currently carries c.
func (w *World) HasComponent(e Entity, c Component) bool {
	w.beginRead()
	defer w.endRead()
	loc, err := w.locate(e)
	if err != nil {
		return false
	}
	return loc.archetype.HasComponent(ComponentTypeId(componentRegistry.idFor(elementTypeOf(c))))
}

// HasComponents reports whether e carries every listed component.
func (w *World) HasComponents(e Entity, cs ...Component) bool {
	w.beginRead()
	defer w.endRead()
	loc, err := w.locate(e)
	if err != nil {
		return false
	}
	ids, _ := canonicalize(cs)
	return loc.archetype.HasComponents(ids)
}

// MergeEntityCmdBuffer appends a system-local entity command buffer to the
// World's FIFO queue. Safe to call concurrently from multiple systems at a
// scheduler barrier.
func (w *World) MergeEntityCmdBuffer(b *EntityCmdBuffer) {
	w.queueMu.Lock()
	defer w.queueMu.Unlock()
	w.queue.mergeEntity(b)
}

// MergeWorldCmdBuffer appends a system-local world command buffer to the
// World's FIFO queue.
func (w *World) MergeWorldCmdBuffer(b *WorldCmdBuffer) {
	w.queueMu.Lock()
	defer w.queueMu.Unlock()
	w.queue.mergeWorld(b)
}

// Update advances the World by one frame: flushes pending entity
// reservations (placing each into the empty archetype so the handle the
// caller already holds becomes live), drains the merged command queue in
// FIFO order, then rotates every event queue's double buffer. Call this
// once per frame after the scheduler's systems (and any Extract step) have
// run.
func (w *World) Update() {
	w.beginWrite()
	for _, e := range w.allocator.Flush() {
		row, err := w.insertRow(w.emptyArchetype)
		if err != nil {
			panic(bark.AddTrace(err))
		}
		w.emptyArchetype.pushEntity(e)
		w.allocator.setLocation(e, entityLocation{archetype: w.emptyArchetype, row: row})
	}
	w.queue.drain(w)
	w.endWrite()
	w.events.rotateAll()
}

// Clear removes every entity and resource and empties every event queue
// (event registrations are kept), leaving the World structurally intact
// (archetype graph and schema survive) for reuse.
func (w *World) Clear() {
	w.beginWrite()
	defer w.endWrite()
	for i := 1; i < len(w.graph.arena); i++ {
		a := w.graph.arena[i]
		n := a.table.Length()
		if n == 0 {
			continue
		}
		rows := make([]int, n)
		for i := range rows {
			rows[i] = i
		}
		if _, err := a.table.DeleteEntries(rows...); err != nil {
			panic(bark.AddTrace(err))
		}
		a.entities = nil
	}
	w.allocator = newEntityAllocator()
	w.resources.clear()
	w.events.clearAll()
	w.queue.cmds = nil
}
