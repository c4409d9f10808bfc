package world

import "fmt"

// ErrEntityNotFound is returned by fatal entity operations (Destroy,
// AddComponent, RemoveComponent) when the target entity is no longer live.
// Try* variants swallow this error and no-op instead.
type ErrEntityNotFound struct {
	Entity Entity
}

func (e ErrEntityNotFound) Error() string {
	return fmt.Sprintf("world: entity %d/gen%d not found", e.Entity.index, e.Entity.generation)
}

// ErrComponentExists is returned when AddComponent targets a component the
// entity already carries.
type ErrComponentExists struct {
	Component ComponentTypeId
}

func (e ErrComponentExists) Error() string {
	return fmt.Sprintf("world: component %s already present on entity", componentRegistry.nameFor(uint32(e.Component)))
}

// ErrComponentNotFound is returned when RemoveComponent targets a component
// the entity does not carry.
type ErrComponentNotFound struct {
	Component ComponentTypeId
}

func (e ErrComponentNotFound) Error() string {
	return fmt.Sprintf("world: component %s not present on entity", componentRegistry.nameFor(uint32(e.Component)))
}

// ErrResourceNotFound is returned by ReadResource/WriteResource when no
// value of that type has been inserted.
type ErrResourceNotFound struct {
	Resource ResourceTypeId
}

func (e ErrResourceNotFound) Error() string {
	return fmt.Sprintf("world: resource %s not registered", resourceRegistry.nameFor(uint32(e.Resource)))
}

// ErrEventNotRegistered is returned when reading/writing an event type that
// was never added via AddEvent.
type ErrEventNotRegistered struct {
	Event EventTypeId
}

func (e ErrEventNotRegistered) Error() string {
	return fmt.Sprintf("world: event type %s not registered", eventRegistry.nameFor(uint32(e.Event)))
}
