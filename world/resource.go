package world

import "sync"

// resourceRegistryData is the World's type-erased singleton slot map,
// generalized from a SimpleCache[T] (cache.go) register/replace shape to
// an unbounded, heterogeneously-typed registry: a resource is one value
// per Go type, not N named values of one type.
type resourceRegistryData struct {
	mu     sync.RWMutex
	values map[ResourceTypeId]any
}

func newResourceRegistry() *resourceRegistryData {
	return &resourceRegistryData{values: make(map[ResourceTypeId]any)}
}

func (r *resourceRegistryData) insert(id ResourceTypeId, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[id] = v
}

func (r *resourceRegistryData) tryInsert(id ResourceTypeId, v any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.values[id]; ok {
		return false
	}
	r.values[id] = v
	return true
}

func (r *resourceRegistryData) remove(id ResourceTypeId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, id)
}

func (r *resourceRegistryData) has(id ResourceTypeId) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.values[id]
	return ok
}

func (r *resourceRegistryData) get(id ResourceTypeId) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[id]
	return v, ok
}

func (r *resourceRegistryData) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = make(map[ResourceTypeId]any)
}

// InsertResource stores v as the singleton instance of T, replacing any
// prior value.
func InsertResource[T any](w *World, v T) {
	boxed := new(T)
	*boxed = v
	w.resources.insert(resourceTypeId[T](), boxed)
}

// TryInsertResource stores v only if no value of T is already present.
// Returns false (no-op) if one exists.
func TryInsertResource[T any](w *World, v T) bool {
	boxed := new(T)
	*boxed = v
	return w.resources.tryInsert(resourceTypeId[T](), boxed)
}

// RemoveResource deletes the singleton instance of T, if any.
func RemoveResource[T any](w *World) {
	w.resources.remove(resourceTypeId[T]())
}

// HasResource reports whether a value of T is currently stored.
func HasResource[T any](w *World) bool {
	return w.resources.has(resourceTypeId[T]())
}

// ReadResource returns the current value of T, or ErrResourceNotFound.
func ReadResource[T any](w *World) (*T, error) {
	id := resourceTypeId[T]()
	v, ok := w.resources.get(id)
	if !ok {
		return nil, ErrResourceNotFound{Resource: id}
	}
	boxed := v.(*T)
	return boxed, nil
}

// WriteResource returns a mutable pointer to the current value of T, or
// ErrResourceNotFound. Scheduler access-policy checks are what make this
// safe to call concurrently with other systems' reads — WriteResource
// itself performs no locking.
func WriteResource[T any](w *World) (*T, error) {
	return ReadResource[T](w)
}
