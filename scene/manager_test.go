package scene

import (
	"errors"
	"testing"

	"mesh-editor/core"
	"mesh-editor/math"
)

func TestCreatePrimitiveNamesAndSelects(t *testing.T) {
	m := NewManager(nil)
	var selected []*Node
	m.OnSelection(func(n *Node) { selected = append(selected, n) })

	a, err := m.CreatePrimitive(PrimitiveBox)
	if err != nil {
		t.Fatalf("CreatePrimitive: %v", err)
	}
	b, _ := m.CreatePrimitive(PrimitiveBox)
	if a.Name != "Box" || b.Name != "Box 2" {
		t.Errorf("expected names Box and Box 2, got %q and %q", a.Name, b.Name)
	}
	if m.Selected() != b {
		t.Error("expected the newest object selected")
	}
	if len(selected) != 2 {
		t.Errorf("expected 2 selection events, got %d", len(selected))
	}

	if _, err := m.CreatePrimitive("torus"); !errors.Is(err, ErrUnknownPrimitive) {
		t.Errorf("expected ErrUnknownPrimitive, got %v", err)
	}
}

func TestSelectSkipsRedundantEvents(t *testing.T) {
	m := NewManager(nil)
	node, _ := m.CreatePrimitive(PrimitiveQuad)
	count := 0
	m.OnSelection(func(*Node) { count++ })

	m.Select(node)
	if count != 0 {
		t.Errorf("reselect: expected no event, got %d", count)
	}
	m.Select(nil)
	m.Select(nil)
	if count != 1 {
		t.Errorf("clear: expected 1 event, got %d", count)
	}
}

func TestEditModeEvents(t *testing.T) {
	m := NewManager(nil)
	var modes []EditMode
	unsub := m.OnEditMode(func(mode EditMode) { modes = append(modes, mode) })

	m.SetEditMode(ModeFace)
	m.SetEditMode(ModeFace)
	m.SetEditMode(ModeVertex)
	unsub()
	m.SetEditMode(ModeObject)

	if len(modes) != 2 || modes[0] != ModeFace || modes[1] != ModeVertex {
		t.Errorf("expected [face vertex], got %v", modes)
	}
	if m.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", m.SubscriberCount())
	}
}

func TestUnsubscribeDuringEmit(t *testing.T) {
	m := NewManager(nil)
	calls := 0
	var unsub func()
	unsub = m.OnChange(func(ChangeEvent) {
		calls++
		unsub()
	})
	m.OnChange(func(ChangeEvent) { calls++ })

	m.NotifyChange(ChangeGeometry, nil)
	m.NotifyChange(ChangeGeometry, nil)
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestParseEditMode(t *testing.T) {
	tests := []struct {
		in      string
		want    EditMode
		wantErr bool
	}{
		{"object", ModeObject, false},
		{"Vertex", ModeVertex, false},
		{" edge ", ModeEdge, false},
		{"FACE", ModeFace, false},
		{"polygon", ModeObject, true},
	}
	for _, tt := range tests {
		got, err := ParseEditMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEditMode(%q): unexpected error state %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseEditMode(%q): expected %v, got %v", tt.in, tt.want, got)
		}
		if !tt.wantErr && got.String() != tt.want.String() {
			t.Errorf("String round trip failed for %q", tt.in)
		}
	}
}

func TestDeleteSelected(t *testing.T) {
	m := NewManager(nil)
	node, _ := m.CreatePrimitive(PrimitiveBox)
	var kinds []ChangeKind
	m.OnChange(func(ev ChangeEvent) { kinds = append(kinds, ev.Kind) })

	if !m.DeleteSelected() {
		t.Fatal("expected a deletion")
	}
	if node.Parent != nil || len(m.Scene.MeshNodes()) != 0 {
		t.Error("node still in the scene")
	}
	if len(kinds) != 1 || kinds[0] != ChangeRemoved {
		t.Errorf("expected [ChangeRemoved], got %v", kinds)
	}
	if m.DeleteSelected() {
		t.Error("second delete should report false")
	}
}

func TestClear(t *testing.T) {
	m := NewManager(nil)
	m.Scene.AddNode(CreateGridNode(2, 2))
	m.CreatePrimitive(PrimitiveBox)
	m.CreatePrimitive(PrimitiveSphere)
	removed := 0
	m.OnChange(func(ev ChangeEvent) {
		if ev.Kind == ChangeRemoved {
			removed++
		}
	})

	if n := m.Clear(); n != 2 {
		t.Errorf("expected 2 objects cleared, got %d", n)
	}
	if removed != 2 || m.Selected() != nil || len(m.Scene.MeshNodes()) != 0 {
		t.Errorf("scene not cleared: %d events, selected %v", removed, m.Selected())
	}
	if len(m.Scene.Root.Children) != 1 {
		t.Errorf("grid should stay, got %d root children", len(m.Scene.Root.Children))
	}

	// Names keep counting after a clear.
	box, _ := m.CreatePrimitive(PrimitiveBox)
	if box.Name != "Box 2" {
		t.Errorf("expected Box 2, got %q", box.Name)
	}
}

func TestFindObject(t *testing.T) {
	m := NewManager(nil)
	m.CreatePrimitive(PrimitiveBox)
	second, _ := m.CreatePrimitive(PrimitiveBox)

	if got, ok := m.FindObject("Box 2"); !ok || got != second {
		t.Errorf("FindObject(Box 2): got %v, %v", got, ok)
	}
	if _, ok := m.FindObject("Box 3"); ok {
		t.Error("FindObject(Box 3) should fail")
	}
}

func TestMaterialSetters(t *testing.T) {
	m := NewManager(nil)
	node, _ := m.CreatePrimitive(PrimitiveBox)
	events := 0
	m.OnChange(func(ev ChangeEvent) {
		if ev.Kind == ChangeMaterial {
			events++
		}
	})

	m.SetAlbedo(node, core.Color{R: 1, A: 1})
	m.SetMetallic(node, 2)
	m.SetRoughness(node, -1)
	if node.Material.Albedo.R != 1 || node.Material.Metallic != 1 || node.Material.Roughness != 0 {
		t.Errorf("unexpected material %+v", *node.Material)
	}
	if events != 3 {
		t.Errorf("expected 3 material events, got %d", events)
	}

	m.Rename(node, "  ")
	m.Rename(node, "Crate")
	if node.Name != "Crate" {
		t.Errorf("expected Crate, got %q", node.Name)
	}
}

func TestSnapshotRestore(t *testing.T) {
	m := NewManager(nil)
	box, _ := m.CreatePrimitive(PrimitiveBox)
	mesh := box.Mesh
	before := m.Snapshot()

	box.SetPosition(math.Vec3{X: 2})
	mesh.Vertices = mesh.Vertices[:6]
	quad, _ := m.CreatePrimitive(PrimitiveQuad)

	if m.Snapshot().Equal(before) {
		t.Fatal("snapshot should differ after edits")
	}

	var restored, removed int
	m.OnChange(func(ev ChangeEvent) {
		switch ev.Kind {
		case ChangeRestored:
			restored++
		case ChangeRemoved:
			removed++
		}
	})
	m.Restore(before)

	if !m.Snapshot().Equal(before) {
		t.Error("restore did not reproduce the snapshot")
	}
	if box.Mesh != mesh {
		t.Error("restore replaced the mesh pointer")
	}
	if n := len(box.Mesh.Vertices); n != 36 {
		t.Errorf("expected 36 vertices, got %d", n)
	}
	if box.WorldPosition() != math.Vec3Zero {
		t.Errorf("expected origin, got %v", box.WorldPosition())
	}
	if quad.Parent != nil {
		t.Error("quad should have been removed")
	}
	if m.Selected() != box {
		t.Error("selection not restored")
	}
	if restored != 1 || removed != 1 {
		t.Errorf("expected 1 restored and 1 removed, got %d and %d", restored, removed)
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	m := NewManager(nil)
	box, _ := m.CreatePrimitive(PrimitiveBox)
	snap := m.Snapshot()
	box.Mesh.Vertices[0].Position.X = 9
	if snap.Objects[0].Mesh.Vertices[0].Position.X == 9 {
		t.Error("snapshot shares the live vertex buffer")
	}
}
