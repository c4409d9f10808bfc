package world

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// Component is a data attribute attached to entities. Components are dense,
// type-erased via table.ElementType, and dispatched to storage columns by
// the schema-assigned row index.
type Component interface {
	table.ElementType
}

// AccessibleComponent binds a Component to a typed column accessor, letting
// callers fetch a *T directly out of an archetype's table without going
// through reflection on every access.
type AccessibleComponent[T any] struct {
	Component
	table.Accessor[T]
}

// NewComponent registers T's component type id (if not already registered)
// and returns a typed accessor for it.
func NewComponent[T any]() AccessibleComponent[T] {
	iden := table.FactoryNewElementType[T]()
	componentTypeId[T]()
	return AccessibleComponent[T]{
		Component: iden,
		Accessor:  table.FactoryNewAccessor[T](iden),
	}
}

// TypeId returns the process-wide ComponentTypeId for T, the value a
// system's AccessPolicy declares to tell the scheduler which archetype
// columns it touches.
func (c AccessibleComponent[T]) TypeId() ComponentTypeId {
	return componentTypeId[T]()
}

// Get fetches the component value for the row the cursor currently points at.
func (c AccessibleComponent[T]) Get(row *Row) *T {
	return c.Accessor.Get(row.index, row.archetype.table)
}

// Has reports whether the row's archetype carries this component type.
func (c AccessibleComponent[T]) Has(row *Row) bool {
	return c.Accessor.Check(row.archetype.table)
}

// GetFromEntity fetches the component value for a live entity directly,
// independent of any in-flight query iteration.
func (c AccessibleComponent[T]) GetFromEntity(w *World, e Entity) (*T, error) {
	loc, err := w.locate(e)
	if err != nil {
		return nil, err
	}
	return c.Accessor.Get(loc.row, loc.archetype.table), nil
}

// elementTypeOf returns the reflect.Type identifying a Component's concrete
// table.ElementType instance, used as the key for the process-wide
// ComponentTypeId registry.
func elementTypeOf(c Component) reflect.Type {
	return reflect.TypeOf(c)
}
