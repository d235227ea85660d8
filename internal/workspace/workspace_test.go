package workspace

import (
	"errors"
	"path/filepath"
	"testing"

	"mesh-editor/editor"
	meshio "mesh-editor/io"
	"mesh-editor/math"
	"mesh-editor/scene"
)

func newTestWorkspace(t *testing.T, source string) (*Workspace, *scene.Manager, *editor.Controller) {
	t.Helper()
	m := scene.NewManager(nil)
	if _, err := m.CreatePrimitive(scene.PrimitiveBox); err != nil {
		t.Fatalf("CreatePrimitive: %v", err)
	}
	c := editor.NewController(m, editor.DefaultParams())
	t.Cleanup(c.Close)
	return New(m, c, filepath.Join(t.TempDir(), "session"), source), m, c
}

func TestSaveWritesSourceAndSession(t *testing.T) {
	source := filepath.Join(t.TempDir(), "part.obj")
	w, m, _ := newTestWorkspace(t, source)
	cam := scene.NewOrbitCamera(math.Vec3Zero, 3, 1, 1)
	w.SetCamera(cam)

	status, err := w.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if status != "Saved part.obj and session" {
		t.Errorf("unexpected status %q", status)
	}

	nodes, err := meshio.Load(source)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(nodes) != 1 || len(nodes[0].Mesh.Vertices) != 36 {
		t.Errorf("source not rewritten with the box")
	}

	// The session reopens the same scene.
	m.Clear()
	if err := w.ReloadSession(); err != nil {
		t.Fatalf("ReloadSession: %v", err)
	}
	if objects := m.Scene.MeshNodes(); len(objects) != 1 || objects[0].Name != "Box" {
		t.Fatalf("expected the box back, got %d objects", len(objects))
	}
	if w.Source() != source {
		t.Errorf("expected source %q, got %q", source, w.Source())
	}
}

func TestSaveWithoutTargets(t *testing.T) {
	m := scene.NewManager(nil)
	c := editor.NewController(m, editor.DefaultParams())
	defer c.Close()

	w := New(m, c, "", "")
	status, err := w.Save()
	if err != nil || status != "Nothing to save" {
		t.Errorf("expected nothing to save, got %q, %v", status, err)
	}
	if err := w.ReloadSession(); !errors.Is(err, meshio.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestImportAndExport(t *testing.T) {
	w, m, c := newTestWorkspace(t, "")
	path := w.ExportPath(meshio.FormatGLB)
	if filepath.Base(path) != "scene.glb" {
		t.Errorf("expected scene.glb, got %s", path)
	}
	if err := w.Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	n, err := w.Import(path)
	if err != nil || n != 1 {
		t.Fatalf("Import: %d objects, %v", n, err)
	}
	if len(m.Scene.MeshNodes()) != 2 || c.History().Depth() != 1 {
		t.Errorf("expected 2 objects and 1 history entry, got %d and %d", len(m.Scene.MeshNodes()), c.History().Depth())
	}

	if _, err := w.Import(path, filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if len(m.Scene.MeshNodes()) != 2 {
		t.Error("a failed import added objects")
	}

	c.Undo()
	if len(m.Scene.MeshNodes()) != 1 {
		t.Errorf("undo import: expected 1 object, got %d", len(m.Scene.MeshNodes()))
	}
}

func TestExportPathFollowsSource(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "/models/crate.obj")
	if got := w.ExportPath(meshio.FormatSTL); got != filepath.Join("/models", "crate.stl") {
		t.Errorf("unexpected export path %s", got)
	}
}

func TestSceneActionsAreUndoable(t *testing.T) {
	w, m, c := newTestWorkspace(t, "")

	node, err := w.AddPrimitive(scene.PrimitiveCylinder)
	if err != nil || node.Name != "Cylinder" || m.Selected() != node {
		t.Fatalf("AddPrimitive: %v, %v", node, err)
	}
	if _, err := w.AddPrimitive("torus"); !errors.Is(err, scene.ErrUnknownPrimitive) {
		t.Errorf("expected ErrUnknownPrimitive, got %v", err)
	}
	if !w.DeleteSelected() {
		t.Fatal("DeleteSelected returned false")
	}
	if !w.Clear() {
		t.Fatal("Clear returned false")
	}
	if w.Clear() {
		t.Error("clearing an empty scene should not be recorded")
	}
	if c.History().Depth() != 3 {
		t.Fatalf("expected 3 history entries, got %d", c.History().Depth())
	}

	c.Undo()
	c.Undo()
	if objects := m.Scene.MeshNodes(); len(objects) != 2 || objects[1].Name != "Cylinder" {
		t.Errorf("expected box and cylinder after two undos, got %d objects", len(objects))
	}
}

func TestMaterialActions(t *testing.T) {
	w, m, c := newTestWorkspace(t, "")
	node := m.Selected()

	name, err := w.CycleAlbedo()
	if err != nil || name != "tomato" {
		t.Fatalf("CycleAlbedo: %q, %v", name, err)
	}
	want, _ := scene.ParseColor("tomato")
	if node.Material.Albedo != want {
		t.Errorf("expected tomato albedo, got %+v", node.Material.Albedo)
	}

	if v, err := w.ToggleMetallic(); err != nil || v != 1 || node.Material.Metallic != 1 {
		t.Errorf("ToggleMetallic: %v, %v", v, err)
	}
	if v, _ := w.ToggleMetallic(); v != 0 {
		t.Errorf("second toggle: expected 0, got %v", v)
	}

	for _, want := range []float32{0.75, 1, 0, 0.25} {
		v, err := w.StepRoughness()
		if err != nil || v != want {
			t.Errorf("StepRoughness: expected %v, got %v (%v)", want, v, err)
		}
	}
	if c.History().Depth() != 7 {
		t.Errorf("expected 7 history entries, got %d", c.History().Depth())
	}

	m.Select(nil)
	if _, err := w.CycleAlbedo(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("expected ErrNoSelection, got %v", err)
	}
}

func TestActionsRefusedWhileDragging(t *testing.T) {
	w, _, c := newTestWorkspace(t, "")
	c.Gizmo().BeginDrag()
	defer c.Gizmo().EndDrag()

	if _, err := w.AddPrimitive(scene.PrimitiveBox); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if _, err := w.StepRoughness(); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
}
