// Package world — query engine: declarative With/Without specs compiled
// against the archetype graph, yielding a lazy, non-materializing iterator
// with a full functional-adapter surface (Filter, Map, Take, ...).
package world

import (
	"iter"
)

// Seq is forge's lazy sequence type — a direct alias of the standard
// library's range-over-func iterator, the same abstraction used for
// Cursor.Entities() (cursor.go imported "iter"). Adapters below wrap a Seq
// without materializing intermediate slices.
type Seq[T any] = iter.Seq[T]

// Seq2 pairs keys/values the way iter.Seq2 does, used for the
// IterEntity1/Enumerate/Zip variants.
type Seq2[K, V any] = iter.Seq2[K, V]

func sliceSeq[T any](s []T) Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range s {
			if !yield(v) {
				return
			}
		}
	}
}

// Row identifies one entity's storage location within a matching archetype.
// AccessibleComponent.Get/Has consult it to fetch typed column data.
type Row struct {
	archetype *archetype
	index     int
}

// QueryBuilder canonicalizes a With/Without component set before compiling
// it against a World's archetype graph.
type QueryBuilder struct {
	world   *World
	with    []Component
	without []Component
}

// NewQueryBuilder starts a query bound to w.
func NewQueryBuilder(w *World) *QueryBuilder {
	return &QueryBuilder{world: w}
}

// With requires every listed component to be present.
func (b *QueryBuilder) With(cs ...Component) *QueryBuilder {
	b.with = append(b.with, cs...)
	return b
}

// Without excludes any archetype carrying any listed component.
func (b *QueryBuilder) Without(cs ...Component) *QueryBuilder {
	b.without = append(b.without, cs...)
	return b
}

// Build canonicalizes the With/Without sets. The matching archetypes are
// looked up in the archetype graph (lazily cached) when the Query is
// iterated, not here.
func (b *QueryBuilder) Build() *Query {
	withIDs, _ := canonicalize(b.with)
	withoutIDs, _ := canonicalize(b.without)
	return &Query{
		world:   b.world,
		with:    withIDs,
		without: withoutIDs,
	}
}

// Query is a compiled With/Without spec. It is safe to keep across frames;
// every iteration re-derives its archetype list lazily and cheaply via the
// graph's own with-set cache.
type Query struct {
	world   *World
	with    []ComponentTypeId
	without []ComponentTypeId
}

func (q *Query) matching() []*archetype {
	return q.world.graph.findMatching(q.with, q.without)
}

// rows is the primary lazy row sequence: one Row per live entity in every
// matching archetype, archetype by archetype, front to back.
func (q *Query) rows() Seq[Row] {
	return func(yield func(Row) bool) {
		q.world.beginRead()
		defer q.world.endRead()
		for _, a := range q.matching() {
			n := a.table.Length()
			for i := 0; i < n; i++ {
				if !yield(Row{archetype: a, index: i}) {
					return
				}
			}
		}
	}
}

// rowsWithEntity pairs each row with the Entity handle that owns it.
func (q *Query) rowsWithEntity() Seq2[Entity, Row] {
	return func(yield func(Entity, Row) bool) {
		q.world.beginRead()
		defer q.world.endRead()
		for _, a := range q.matching() {
			n := a.table.Length()
			for i := 0; i < n; i++ {
				e, ok := q.world.entityAt(a, i)
				if !ok {
					continue
				}
				if !yield(e, Row{archetype: a, index: i}) {
					return
				}
			}
		}
	}
}

// Count returns the number of entities currently matching the query.
func (q *Query) Count() int {
	n := 0
	for _, a := range q.matching() {
		n += a.table.Length()
	}
	return n
}

// Iter1 yields one component reference per matching row.
func Iter1[A any](q *Query, ca AccessibleComponent[A]) Seq[*A] {
	return func(yield func(*A) bool) {
		for row := range q.rows() {
			r := row
			if !yield(ca.Get(&r)) {
				return
			}
		}
	}
}

// Iter2 yields a pair of component references per matching row.
func Iter2[A, B any](q *Query, ca AccessibleComponent[A], cb AccessibleComponent[B]) Seq2[*A, *B] {
	return func(yield func(*A, *B) bool) {
		for row := range q.rows() {
			r := row
			if !yield(ca.Get(&r), cb.Get(&r)) {
				return
			}
		}
	}
}

// Iter3 yields a triple of component references per matching row.
func Iter3[A, B, C any](q *Query, ca AccessibleComponent[A], cb AccessibleComponent[B], cc AccessibleComponent[C]) Seq[Triple[*A, *B, *C]] {
	return func(yield func(Triple[*A, *B, *C]) bool) {
		for row := range q.rows() {
			r := row
			if !yield(Triple[*A, *B, *C]{ca.Get(&r), cb.Get(&r), cc.Get(&r)}) {
				return
			}
		}
	}
}

// Triple bundles three values as a single tuple-ish item, used where the
// engine needs to pass "the whole row" to a predicate/function instead of
// unpacking to variadic arguments. Iter2/Iter3's Seq2/Seq forms give the
// unpacked calling convention; Triple gives the whole-tuple convention for
// arities beyond a pair, where iter.Seq2 runs out of slots.
type Triple[A, B, C any] struct {
	A A
	B B
	C C
}

// IterEntity1 yields (Entity, component ref) per matching row.
func IterEntity1[A any](q *Query, ca AccessibleComponent[A]) Seq2[Entity, *A] {
	return func(yield func(Entity, *A) bool) {
		for e, row := range q.rowsWithEntity() {
			r := row
			if !yield(e, ca.Get(&r)) {
				return
			}
		}
	}
}

// IterEntity2 yields (Entity, component ref, component ref) per matching
// row, bundled in a Triple since Go iterators cap out at two yielded values.
func IterEntity2[A, B any](q *Query, ca AccessibleComponent[A], cb AccessibleComponent[B]) Seq[Triple[Entity, *A, *B]] {
	return func(yield func(Triple[Entity, *A, *B]) bool) {
		for e, row := range q.rowsWithEntity() {
			r := row
			if !yield(Triple[Entity, *A, *B]{e, ca.Get(&r), cb.Get(&r)}) {
				return
			}
		}
	}
}

// ---- functional adapters ----
// All operate on the generic Seq[T]/Seq2[K,V] abstraction, so they apply
// uniformly to query iteration and to EventReader.Seq().

// Filter yields items for which pred returns true.
func Filter[T any](s Seq[T], pred func(T) bool) Seq[T] {
	return func(yield func(T) bool) {
		for v := range s {
			if pred(v) {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Map transforms every item with f.
func Map[T, U any](s Seq[T], f func(T) U) Seq[U] {
	return func(yield func(U) bool) {
		for v := range s {
			if !yield(f(v)) {
				return
			}
		}
	}
}

// Take yields at most the first n items.
func Take[T any](s Seq[T], n int) Seq[T] {
	return func(yield func(T) bool) {
		if n <= 0 {
			return
		}
		i := 0
		for v := range s {
			if !yield(v) {
				return
			}
			i++
			if i >= n {
				return
			}
		}
	}
}

// Skip drops the first n items, yielding the rest.
func Skip[T any](s Seq[T], n int) Seq[T] {
	return func(yield func(T) bool) {
		i := 0
		for v := range s {
			if i < n {
				i++
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// TakeWhile yields items until the first pred=false, then stops.
func TakeWhile[T any](s Seq[T], pred func(T) bool) Seq[T] {
	return func(yield func(T) bool) {
		for v := range s {
			if !pred(v) {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// SkipWhile drops items until the first pred=false, then yields the rest.
func SkipWhile[T any](s Seq[T], pred func(T) bool) Seq[T] {
	return func(yield func(T) bool) {
		dropping := true
		for v := range s {
			if dropping {
				if pred(v) {
					continue
				}
				dropping = false
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Enumerate pairs each item with its zero-based position.
func Enumerate[T any](s Seq[T]) Seq2[int, T] {
	return func(yield func(int, T) bool) {
		i := 0
		for v := range s {
			if !yield(i, v) {
				return
			}
			i++
		}
	}
}

// StepBy yields items at positions 0, k, 2k, ... (k must be >= 1).
func StepBy[T any](s Seq[T], k int) Seq[T] {
	if k < 1 {
		k = 1
	}
	return func(yield func(T) bool) {
		i := 0
		for v := range s {
			if i%k == 0 {
				if !yield(v) {
					return
				}
			}
			i++
		}
	}
}

// Stride is an alias of StepBy, kept for callers who know the adapter by
// either name.
func Stride[T any](s Seq[T], k int) Seq[T] { return StepBy(s, k) }

// Inspect calls f on every item for side effects, passing the item through
// unchanged.
func Inspect[T any](s Seq[T], f func(T)) Seq[T] {
	return func(yield func(T) bool) {
		for v := range s {
			f(v)
			if !yield(v) {
				return
			}
		}
	}
}

// Reverse yields items in reverse order. Unlike the other adapters this
// must materialize the sequence before producing its first item — there is
// no way to discover "last" without consuming the whole thing.
func Reverse[T any](s Seq[T]) Seq[T] {
	return func(yield func(T) bool) {
		buf := Collect(s)
		for i := len(buf) - 1; i >= 0; i-- {
			if !yield(buf[i]) {
				return
			}
		}
	}
}

// Slide yields overlapping windows of size w (w >= 1).
func Slide[T any](s Seq[T], w int) Seq[[]T] {
	return func(yield func([]T) bool) {
		if w < 1 {
			return
		}
		window := make([]T, 0, w)
		for v := range s {
			window = append(window, v)
			if len(window) == w {
				out := make([]T, w)
				copy(out, window)
				if !yield(out) {
					return
				}
				window = window[1:]
			}
		}
	}
}

// Zip yields pairs from a and b until either is exhausted.
func Zip[A, B any](a Seq[A], b Seq[B]) Seq2[A, B] {
	return func(yield func(A, B) bool) {
		nextB, stopB := iter.Pull(b)
		defer stopB()
		for va := range a {
			vb, ok := nextB()
			if !ok {
				return
			}
			if !yield(va, vb) {
				return
			}
		}
	}
}

// Chain yields every item of a, then every item of b.
func Chain[T any](a, b Seq[T]) Seq[T] {
	return func(yield func(T) bool) {
		for v := range a {
			if !yield(v) {
				return
			}
		}
		for v := range b {
			if !yield(v) {
				return
			}
		}
	}
}

// Join flattens one level of nesting.
func Join[T any](s Seq[[]T]) Seq[T] {
	return func(yield func(T) bool) {
		for group := range s {
			for _, v := range group {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// ---- terminal operations ----

// ForEach invokes f for every item.
func ForEach[T any](s Seq[T], f func(T)) {
	for v := range s {
		f(v)
	}
}

// Fold reduces the sequence to a single accumulator value.
func Fold[T, A any](s Seq[T], init A, f func(A, T) A) A {
	acc := init
	for v := range s {
		acc = f(acc, v)
	}
	return acc
}

// Any reports whether pred holds for at least one item.
func Any[T any](s Seq[T], pred func(T) bool) bool {
	for v := range s {
		if pred(v) {
			return true
		}
	}
	return false
}

// All reports whether pred holds for every item.
func All[T any](s Seq[T], pred func(T) bool) bool {
	for v := range s {
		if !pred(v) {
			return false
		}
	}
	return true
}

// None reports whether pred holds for no item.
func None[T any](s Seq[T], pred func(T) bool) bool {
	return !Any(s, pred)
}

// CountIf counts items for which pred holds.
func CountIf[T any](s Seq[T], pred func(T) bool) int {
	n := 0
	for v := range s {
		if pred(v) {
			n++
		}
	}
	return n
}

// Count counts every item.
func Count[T any](s Seq[T]) int {
	n := 0
	for range s {
		n++
	}
	return n
}

// Collect materializes the sequence into a slice.
func Collect[T any](s Seq[T]) []T {
	var out []T
	for v := range s {
		out = append(out, v)
	}
	return out
}

// CollectWith materializes into a caller-provided backing slice (a frame
// allocation obtained via system.FrameAlloc), avoiding a
// fresh allocation per call.
func CollectWith[T any](s Seq[T], out []T) []T {
	out = out[:0]
	for v := range s {
		out = append(out, v)
	}
	return out
}

// FindFirst returns the first item satisfying pred, or the zero value and false.
func FindFirst[T any](s Seq[T], pred func(T) bool) (T, bool) {
	var zero T
	for v := range s {
		if pred(v) {
			return v, true
		}
	}
	return zero, false
}

// Find is an alias of FindFirst, kept for callers who know the adapter by
// either name.
func Find[T any](s Seq[T], pred func(T) bool) (T, bool) { return FindFirst(s, pred) }

// MaxBy returns the item with the greatest key(item).
func MaxBy[T any, K int | int64 | float64 | string](s Seq[T], key func(T) K) (T, bool) {
	var best T
	first := true
	for v := range s {
		if first || key(v) > key(best) {
			best = v
			first = false
		}
	}
	return best, !first
}

// MinBy returns the item with the least key(item).
func MinBy[T any, K int | int64 | float64 | string](s Seq[T], key func(T) K) (T, bool) {
	var best T
	first := true
	for v := range s {
		if first || key(v) < key(best) {
			best = v
			first = false
		}
	}
	return best, !first
}

// Partition splits the sequence into (matching, non-matching).
func Partition[T any](s Seq[T], pred func(T) bool) ([]T, []T) {
	var yes, no []T
	for v := range s {
		if pred(v) {
			yes = append(yes, v)
		} else {
			no = append(no, v)
		}
	}
	return yes, no
}

// GroupBy buckets items by key(item).
func GroupBy[T any, K comparable](s Seq[T], key func(T) K) map[K][]T {
	out := make(map[K][]T)
	for v := range s {
		k := key(v)
		out[k] = append(out[k], v)
	}
	return out
}

// Into pushes every item to sink, stopping early if sink returns false.
func Into[T any](s Seq[T], sink func(T) bool) {
	for v := range s {
		if !sink(v) {
			return
		}
	}
}
