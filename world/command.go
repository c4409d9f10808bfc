package world

import "github.com/TheBitDrifter/bark"

// command is one deferred mutation. Fatal commands panic (via
// bark.AddTrace) if apply fails; Try* variants swallow the failure and
// no-op instead.
type command interface {
	apply(w *World) error
}

type fnCmd struct {
	fn    func(w *World) error
	fatal bool
}

func (c fnCmd) apply(w *World) error {
	err := c.fn(w)
	if err != nil && c.fatal {
		return err
	}
	return nil
}

// ---- entity-scoped commands ----

type destroyEntityCmd struct {
	target Entity
	fatal  bool
}

func (c destroyEntityCmd) apply(w *World) error {
	err := w.destroyEntity(c.target)
	if err != nil && c.fatal {
		return err
	}
	return nil
}

type addComponentCmd struct {
	target    Entity
	component Component
	fatal     bool
}

func (c addComponentCmd) apply(w *World) error {
	err := w.addComponent(c.target, c.component)
	if err != nil && c.fatal {
		return err
	}
	return nil
}

type removeComponentCmd struct {
	target    Entity
	component Component
	fatal     bool
}

func (c removeComponentCmd) apply(w *World) error {
	err := w.removeComponent(c.target, c.component)
	if err != nil && c.fatal {
		return err
	}
	return nil
}

type clearComponentsCmd struct {
	target Entity
}

func (c clearComponentsCmd) apply(w *World) error {
	return w.clearComponents(c.target)
}

// EntityCmdBuffer records entity-scoped structural mutations for deferred
// replay. Systems build their own buffer locally (no shared mutable state
// while running) and hand it to World.MergeEntityCmdBuffer at a scheduler
// barrier, following a per-system-local-then-merged-FIFO model.
type EntityCmdBuffer struct {
	world *World
	cmds  []command
}

// NewEntityCmdBuffer returns a buffer bound to w. The buffer itself performs
// no World mutation until merged.
func NewEntityCmdBuffer(w *World) *EntityCmdBuffer {
	return &EntityCmdBuffer{world: w}
}

// DestroyEntity records a destroy; replay panics if the entity is no longer live.
func (b *EntityCmdBuffer) DestroyEntity(e Entity) {
	b.cmds = append(b.cmds, destroyEntityCmd{target: e, fatal: true})
}

// TryDestroyEntity records a destroy that silently no-ops if the entity is gone.
func (b *EntityCmdBuffer) TryDestroyEntity(e Entity) {
	b.cmds = append(b.cmds, destroyEntityCmd{target: e, fatal: false})
}

// AddComponent records a component addition; replay panics on failure.
func (b *EntityCmdBuffer) AddComponent(e Entity, c Component) {
	b.cmds = append(b.cmds, addComponentCmd{target: e, component: c, fatal: true})
}

// TryAddComponent records a component addition that silently no-ops on failure.
func (b *EntityCmdBuffer) TryAddComponent(e Entity, c Component) {
	b.cmds = append(b.cmds, addComponentCmd{target: e, component: c, fatal: false})
}

// RemoveComponent records a component removal; replay panics on failure.
func (b *EntityCmdBuffer) RemoveComponent(e Entity, c Component) {
	b.cmds = append(b.cmds, removeComponentCmd{target: e, component: c, fatal: true})
}

// TryRemoveComponent records a component removal that silently no-ops on failure.
func (b *EntityCmdBuffer) TryRemoveComponent(e Entity, c Component) {
	b.cmds = append(b.cmds, removeComponentCmd{target: e, component: c, fatal: false})
}

// ClearComponents records a transition of e to the empty archetype.
func (b *EntityCmdBuffer) ClearComponents(e Entity) {
	b.cmds = append(b.cmds, clearComponentsCmd{target: e})
}

// Len reports how many commands are currently buffered.
func (b *EntityCmdBuffer) Len() int { return len(b.cmds) }

// ---- world-scoped commands ----

// WorldCmdBuffer records resource/event mutations for deferred replay,
// mirroring EntityCmdBuffer's local-then-merged discipline.
type WorldCmdBuffer struct {
	world *World
	cmds  []command
}

// NewWorldCmdBuffer returns a buffer bound to w.
func NewWorldCmdBuffer(w *World) *WorldCmdBuffer {
	return &WorldCmdBuffer{world: w}
}

// InsertResourceCmd records a resource insert/replace.
func InsertResourceCmd[T any](b *WorldCmdBuffer, v T) {
	b.cmds = append(b.cmds, fnCmd{
		fatal: true,
		fn: func(w *World) error {
			InsertResource(w, v)
			return nil
		},
	})
}

// TryInsertResourceCmd records a resource insert that no-ops if one already exists.
func TryInsertResourceCmd[T any](b *WorldCmdBuffer, v T) {
	b.cmds = append(b.cmds, fnCmd{
		fatal: false,
		fn: func(w *World) error {
			TryInsertResource(w, v)
			return nil
		},
	})
}

// RemoveResourceCmd records a resource removal.
func RemoveResourceCmd[T any](b *WorldCmdBuffer) {
	b.cmds = append(b.cmds, fnCmd{
		fn: func(w *World) error {
			RemoveResource[T](w)
			return nil
		},
	})
}

// TryRemoveResourceCmd is an alias of RemoveResourceCmd — resource removal is
// already idempotent, so there is no distinct fatal path to suppress.
func TryRemoveResourceCmd[T any](b *WorldCmdBuffer) {
	RemoveResourceCmd[T](b)
}

// ClearEventsCmd records clearing one event type's double buffer.
func ClearEventsCmd[T any](b *WorldCmdBuffer) {
	b.cmds = append(b.cmds, fnCmd{
		fn: func(w *World) error {
			ClearEvents[T](w)
			return nil
		},
	})
}

// ClearAllEventsCmd records clearing every registered event type's double buffer.
func ClearAllEventsCmd(b *WorldCmdBuffer) {
	b.cmds = append(b.cmds, fnCmd{
		fn: func(w *World) error {
			w.ClearAllEventQueues()
			return nil
		},
	})
}

// Len reports how many commands are currently buffered.
func (b *WorldCmdBuffer) Len() int { return len(b.cmds) }

// commandQueue is the World's FIFO merge target. Systems merge their local
// buffers into it at scheduler barriers; World.Update drains it
// single-threaded, after entity reservations are flushed.
type commandQueue struct {
	cmds []command
}

func (q *commandQueue) mergeEntity(b *EntityCmdBuffer) {
	if b == nil {
		return
	}
	q.cmds = append(q.cmds, b.cmds...)
	b.cmds = nil
}

func (q *commandQueue) mergeWorld(b *WorldCmdBuffer) {
	if b == nil {
		return
	}
	q.cmds = append(q.cmds, b.cmds...)
	b.cmds = nil
}

func (q *commandQueue) drain(w *World) {
	cmds := q.cmds
	q.cmds = nil
	for _, c := range cmds {
		if err := c.apply(w); err != nil {
			panic(bark.AddTrace(err))
		}
	}
}
