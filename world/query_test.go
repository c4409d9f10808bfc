package world

import "testing"

type qPosition struct{ X, Y float64 }
type qVelocity struct{ X, Y float64 }
type qTag struct{}

func TestQueryMatchesOnlyArchetypesWithAllComponents(t *testing.T) {
	w := New()
	position := NewComponent[qPosition]()
	velocity := NewComponent[qVelocity]()

	moving, _ := w.CreateEntities(3, position.Component, velocity.Component)
	_, _ = w.CreateEntities(2, position.Component)

	q := NewQueryBuilder(w).With(position.Component, velocity.Component).Build()
	if got := q.Count(); got != len(moving) {
		t.Fatalf("Count = %d, want %d", got, len(moving))
	}

	seen := 0
	for pos, vel := range Iter2(q, position, velocity) {
		pos.X += vel.X
		seen++
	}
	if seen != len(moving) {
		t.Fatalf("iterated %d rows, want %d", seen, len(moving))
	}
}

func TestQueryWithoutExcludesArchetype(t *testing.T) {
	w := New()
	position := NewComponent[qPosition]()
	tag := NewComponent[qTag]()

	_, _ = w.CreateEntities(2, position.Component)
	_, _ = w.CreateEntities(3, position.Component, tag.Component)

	q := NewQueryBuilder(w).With(position.Component).Without(tag.Component).Build()
	if got := q.Count(); got != 2 {
		t.Fatalf("Count = %d, want 2", got)
	}
}

func TestIterEntity1PairsEntityWithComponent(t *testing.T) {
	w := New()
	position := NewComponent[qPosition]()

	entities, _ := w.CreateEntities(4, position.Component)
	q := NewQueryBuilder(w).With(position.Component).Build()

	matched := make(map[Entity]bool)
	for e, pos := range IterEntity1(q, position) {
		pos.X = 7
		matched[e] = true
	}
	for _, e := range entities {
		if !matched[e] {
			t.Fatalf("entity %v missing from IterEntity1 results", e)
		}
	}
}

func TestAdapterChainFilterMapCollect(t *testing.T) {
	w := New()
	position := NewComponent[qPosition]()
	for i := 0; i < 10; i++ {
		e, _ := w.CreateEntity(position.Component)
		p, _ := position.GetFromEntity(w, e)
		p.X = float64(i)
	}

	q := NewQueryBuilder(w).With(position.Component).Build()
	xs := Map(
		Filter(Iter1(q, position), func(p *qPosition) bool { return int(p.X)%2 == 0 }),
		func(p *qPosition) float64 { return p.X },
	)
	got := Collect(xs)
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
}

func TestTakeSkipSlide(t *testing.T) {
	src := sliceSeq([]int{1, 2, 3, 4, 5})

	if got := Collect(Take(src, 3)); len(got) != 3 || got[2] != 3 {
		t.Fatalf("Take = %v", got)
	}
	if got := Collect(Skip(src, 3)); len(got) != 2 || got[0] != 4 {
		t.Fatalf("Skip = %v", got)
	}
	windows := Collect(Slide(src, 2))
	if len(windows) != 4 || windows[0][0] != 1 || windows[0][1] != 2 {
		t.Fatalf("Slide = %v", windows)
	}
}

func TestFoldAnyAllNone(t *testing.T) {
	src := sliceSeq([]int{1, 2, 3, 4})
	sum := Fold(src, 0, func(acc, v int) int { return acc + v })
	if sum != 10 {
		t.Fatalf("Fold sum = %d, want 10", sum)
	}
	if !Any(src, func(v int) bool { return v == 3 }) {
		t.Fatal("Any should find 3")
	}
	if All(src, func(v int) bool { return v > 1 }) {
		t.Fatal("All should fail since 1 is present")
	}
	if !None(src, func(v int) bool { return v > 10 }) {
		t.Fatal("None should hold: nothing exceeds 10")
	}
}

func TestPartitionAndGroupBy(t *testing.T) {
	src := sliceSeq([]int{1, 2, 3, 4, 5, 6})
	evens, odds := Partition(src, func(v int) bool { return v%2 == 0 })
	if len(evens) != 3 || len(odds) != 3 {
		t.Fatalf("Partition = %v / %v", evens, odds)
	}

	groups := GroupBy(src, func(v int) int { return v % 3 })
	if len(groups[0]) != 2 || len(groups[1]) != 2 || len(groups[2]) != 2 {
		t.Fatalf("GroupBy = %v", groups)
	}
}
