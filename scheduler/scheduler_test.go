package scheduler

import (
	"testing"

	"github.com/brazenfox/forge/system"
	"github.com/brazenfox/forge/world"
)

func desc(name string) *system.Descriptor {
	return system.NewDescriptor(name, func(*system.Context) {})
}

func TestBuildDetectsCycle(t *testing.T) {
	a := desc("a")
	b := desc("b")
	a.After = []string{"b"}
	b.After = []string{"a"}

	s := New()
	s.AddSystem(a)
	s.AddSystem(b)

	err := s.Build()
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	if _, ok := err.(ErrCycle); !ok {
		t.Fatalf("error type = %T, want ErrCycle", err)
	}
}

func TestIndependentSystemsBatchTogether(t *testing.T) {
	a := desc("a")
	a.Access.WriteComponents = []world.ComponentTypeId{1}
	b := desc("b")
	b.Access.WriteComponents = []world.ComponentTypeId{2}

	s := New()
	s.AddSystem(a)
	s.AddSystem(b)
	if err := s.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	batches := s.Batches()
	if len(batches) != 1 || len(batches[0]) != 2 {
		t.Fatalf("batches = %v, want one batch of 2", batches)
	}
}

func TestConflictingSystemsSerialize(t *testing.T) {
	a := desc("a")
	a.Access.WriteComponents = []world.ComponentTypeId{1}
	b := desc("b")
	b.Access.WriteComponents = []world.ComponentTypeId{1}

	s := New()
	s.AddSystem(a)
	s.AddSystem(b)
	if err := s.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	batches := s.Batches()
	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2 (conflicting writers must serialize)", len(batches))
	}
}

func TestAfterConstraintOrdersBatches(t *testing.T) {
	physics := desc("physics")
	render := desc("render")
	render.After = []string{"physics"}

	s := New()
	s.AddSystem(render)
	s.AddSystem(physics)
	if err := s.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	batches := s.Batches()
	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(batches))
	}
	if batches[0][0].Name != "physics" || batches[1][0].Name != "render" {
		t.Fatalf("order = %v, want physics before render", batches)
	}
}

func TestBuildIsDeterministicAcrossRuns(t *testing.T) {
	build := func() [][]string {
		s := New()
		for _, n := range []string{"zeta", "alpha", "mu", "beta"} {
			s.AddSystem(desc(n))
		}
		if err := s.Build(); err != nil {
			t.Fatalf("Build: %v", err)
		}
		var names [][]string
		for _, batch := range s.Batches() {
			var row []string
			for _, d := range batch {
				row = append(row, d.Name)
			}
			names = append(names, row)
		}
		return names
	}

	first := build()
	second := build()
	if len(first) != len(second) {
		t.Fatalf("batch counts differ: %v vs %v", first, second)
	}
	for i := range first {
		if len(first[i]) != len(second[i]) {
			t.Fatalf("batch %d sizes differ: %v vs %v", i, first[i], second[i])
		}
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatalf("batch %d order differs: %v vs %v", i, first[i], second[i])
			}
		}
	}
}

func TestSetMembershipResolvesOrderingConstraints(t *testing.T) {
	input := desc("input")
	input.Set = "early"
	physics := desc("physics")
	physics.AfterSets = []string{"early"}

	s := New()
	s.AddSystem(physics)
	s.AddSystem(input)
	if err := s.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	batches := s.Batches()
	if len(batches) != 2 || batches[0][0].Name != "input" {
		t.Fatalf("batches = %v, want [input] then [physics]", batches)
	}
}
