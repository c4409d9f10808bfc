package system

import (
	"sync"

	"github.com/brazenfox/forge/world"
)

// Context is the handle passed to a system's function each time it runs. It
// bundles read/write access to the World with a pair of per-system-local
// command buffers (merged into the World's FIFO queue by the scheduler at
// the next barrier, never applied directly) and a LocalStorage slot that
// survives across frames.
type Context struct {
	World    *world.World
	Entities *world.EntityCmdBuffer
	Commands *world.WorldCmdBuffer
	Local    *LocalStorage

	// Delta is the elapsed time since the previous frame, set by whichever
	// schedule/App drives this system.
	Delta float64
}

// NewContext returns a Context with fresh, empty command buffers bound to w.
func NewContext(w *world.World, local *LocalStorage) *Context {
	return &Context{
		World:    w,
		Entities: world.NewEntityCmdBuffer(w),
		Commands: world.NewWorldCmdBuffer(w),
		Local:    local,
	}
}

// FrameAlloc returns a zero-length slice backed by a hint-sized array,
// letting a system build up a scratch collection during one run without
// extra allocations on every CollectWith call within it — a small pool
// would remove the allocation too, but systems run once per frame, so a
// single alloc per call is the actual cost this avoids repeating.
func FrameAlloc[T any](c *Context, hint int) []T {
	return make([]T, 0, hint)
}

// LocalStorage is per-system state that persists across frames (a counter,
// an accumulator, cached lookup results), keyed by caller-chosen string
// keys since a system's declared state shape isn't known generically.
type LocalStorage struct {
	mu     sync.Mutex
	values map[string]any
}

// NewLocalStorage returns empty storage, owned by exactly one system
// descriptor for its lifetime.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{values: make(map[string]any)}
}

// Local fetches the typed value at key, initializing it with init on first
// access. The returned pointer is stable across calls, so callers mutate it
// directly.
func Local[T any](ls *LocalStorage, key string, init func() T) *T {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if v, ok := ls.values[key]; ok {
		return v.(*T)
	}
	val := new(T)
	*val = init()
	ls.values[key] = val
	return val
}
