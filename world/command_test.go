package world

import "testing"

type cMarker struct{}
type cScore struct{ Value int }

func TestEntityCmdBufferMergesAndAppliesOnUpdate(t *testing.T) {
	w := New()
	marker := NewComponent[cMarker]()

	e, _ := w.CreateEntity()
	buf := NewEntityCmdBuffer(w)
	buf.AddComponent(e, marker.Component)

	if w.HasComponent(e, marker.Component) {
		t.Fatal("buffered command must not apply before merge+Update")
	}

	w.MergeEntityCmdBuffer(buf)
	w.Update()

	if !w.HasComponent(e, marker.Component) {
		t.Fatal("buffered AddComponent should apply after Update")
	}
}

func TestTryDestroyEntityCmdIsSilentOnMissingEntity(t *testing.T) {
	w := New()
	e, _ := w.CreateEntity()
	_ = w.DestroyEntity(e)

	buf := NewEntityCmdBuffer(w)
	buf.TryDestroyEntity(e)
	w.MergeEntityCmdBuffer(buf)

	// must not panic
	w.Update()
}

func TestDestroyEntityCmdPanicsOnMissingEntity(t *testing.T) {
	w := New()
	e, _ := w.CreateEntity()
	_ = w.DestroyEntity(e)

	buf := NewEntityCmdBuffer(w)
	buf.DestroyEntity(e)
	w.MergeEntityCmdBuffer(buf)

	defer func() {
		if recover() == nil {
			t.Fatal("fatal DestroyEntity command should panic when the entity is gone")
		}
	}()
	w.Update()
}

func TestReservedEntityUsableInCommandBufferBeforeFlush(t *testing.T) {
	w := New()
	marker := NewComponent[cMarker]()

	provisional := w.ReserveEntity()
	buf := NewEntityCmdBuffer(w)
	buf.AddComponent(provisional, marker.Component)
	w.MergeEntityCmdBuffer(buf)

	w.Update()

	if !w.Exists(provisional) {
		t.Fatal("reservation should be live after Update")
	}
	if !w.HasComponent(provisional, marker.Component) {
		t.Fatal("AddComponent recorded against a reserved handle should apply once flushed")
	}
}

func TestWorldCmdBufferInsertResource(t *testing.T) {
	w := New()
	buf := NewWorldCmdBuffer(w)
	InsertResourceCmd(buf, cScore{Value: 5})
	w.MergeWorldCmdBuffer(buf)
	w.Update()

	score, err := ReadResource[cScore](w)
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	if score.Value != 5 {
		t.Fatalf("Value = %d, want 5", score.Value)
	}
}

func TestCommandsDrainInFIFOOrder(t *testing.T) {
	w := New()
	buf := NewWorldCmdBuffer(w)
	InsertResourceCmd(buf, cScore{Value: 1})
	InsertResourceCmd(buf, cScore{Value: 2})
	InsertResourceCmd(buf, cScore{Value: 3})
	w.MergeWorldCmdBuffer(buf)
	w.Update()

	score, _ := ReadResource[cScore](w)
	if score.Value != 3 {
		t.Fatalf("Value = %d, want 3 (last writer wins under FIFO replay)", score.Value)
	}
}
