/*
Package world provides the Entity-Component-System (ECS) data model that
sits underneath forge's scheduler: entities with generational handles,
archetype-based component storage, resources, double-buffered events,
queries with functional adapters, and deferred command buffers.

It is built on an archetype-based storage system that keeps entities with
the same component set together for cache-friendly iteration.

Core Concepts:

  - Entity: a generational handle (index, generation) identifying a game object.
  - Component: a data container registered on the World's schema.
  - Archetype: the set of entities sharing an exact component set, plus cached
    add/remove transition edges to neighboring archetypes.
  - Resource: a typed singleton owned by the World.
  - Event: a per-type double-buffered queue visible for two frames after write.
  - Query: a declarative With/Without + access-qualifier spec that produces a
    lazy, chainable iterator over matching rows.
  - Command buffer: a per-system local queue of deferred structural edits,
    merged into the World's FIFO queue at the scheduler's barrier.

Basic Usage:

	w := world.New()

	position := world.NewComponent[Position]()
	velocity := world.NewComponent[Velocity]()

	_, _ = w.CreateEntities(100, position.Component, velocity.Component)

	q := world.NewQueryBuilder(w).With(position.Component, velocity.Component).Build()
	for pos, vel := range world.Iter2(q, position, velocity) {
		pos.X += vel.X
		pos.Y += vel.Y
	}

world is the core ECS of the forge engine runtime but also works standalone.
*/
package world
