package editor

import (
	stdmath "math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"mesh-editor/core"
	"mesh-editor/math"
	"mesh-editor/scene"
)

func newTestSession(t *testing.T, mesh *scene.Mesh, params Params) (*Session, *scene.Node) {
	t.Helper()
	s := scene.NewScene()
	node := scene.NewMeshNode(mesh.Name, mesh)
	s.AddNode(node)
	sess := NewSession(s, NewGizmo(), params)
	if err := sess.Begin(node); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return sess, node
}

func snapshotPositions(m *scene.Mesh) []math.Vec3 {
	return m.Positions()
}

func handleAt(t *testing.T, handles []*Handle, world math.Vec3) *Handle {
	t.Helper()
	for _, h := range handles {
		if h.RefWorld.ApproxEqual(world, 1e-5) {
			return h
		}
	}
	t.Fatalf("no handle at %v", world)
	return nil
}

func TestBeginRejectsNonMesh(t *testing.T) {
	s := scene.NewScene()
	sess := NewSession(s, NewGizmo(), DefaultParams())
	if err := sess.Begin(scene.NewNode("Empty")); err != ErrNoMesh {
		t.Errorf("expected ErrNoMesh, got %v", err)
	}
	grid := scene.CreateGridNode(4, 4)
	if err := sess.Begin(grid); err != ErrNoMesh {
		t.Errorf("grid: expected ErrNoMesh, got %v", err)
	}
	if sess.Editing() {
		t.Error("session should not be editing")
	}
}

func TestBeginExpandsIndexedMesh(t *testing.T) {
	verts := []core.Vertex{
		{Position: math.Vec3{X: -0.5, Y: -0.5}},
		{Position: math.Vec3{X: 0.5, Y: -0.5}},
		{Position: math.Vec3{X: 0.5, Y: 0.5}},
		{Position: math.Vec3{X: -0.5, Y: 0.5}},
	}
	mesh := scene.CreateMeshFromData("Indexed", verts, []uint32{0, 1, 2, 0, 2, 3})
	sess, node := newTestSession(t, mesh, DefaultParams())

	if node.Mesh != mesh {
		t.Error("mesh pointer replaced")
	}
	if mesh.IsIndexed() || len(mesh.Vertices) != 6 {
		t.Errorf("expected 6 unindexed vertices, got %d (indexed=%v)", len(mesh.Vertices), mesh.IsIndexed())
	}
	if n := len(sess.Registry().Topology().Vertices); n != 4 {
		t.Errorf("vertex handles: expected 4, got %d", n)
	}
}

func TestSessionVisibilityFollowsMode(t *testing.T) {
	sess, _ := newTestSession(t, scene.CreateBox(1, 1, 1), DefaultParams())

	if n := len(sess.Registry().Visible()); n != 8 {
		t.Errorf("vertex mode: expected 8 visible, got %d", n)
	}
	sess.SetMode(scene.ModeEdge)
	if n := len(sess.Registry().Visible()); n != 12 {
		t.Errorf("edge mode: expected 12 visible, got %d", n)
	}
	sess.SetMode(scene.ModeFace)
	if n := len(sess.Registry().Visible()); n != 6 {
		t.Errorf("face mode: expected 6 visible, got %d", n)
	}
	sess.SetMode(scene.ModeObject)
	if n := len(sess.Registry().Visible()); n != 0 {
		t.Errorf("object mode: expected 0 visible, got %d", n)
	}
}

func TestDragVertexMovesOnlyCoincidentIndices(t *testing.T) {
	sess, node := newTestSession(t, scene.CreateBox(1, 1, 1), DefaultParams())
	before := snapshotPositions(node.Mesh)

	corner := math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	h := handleAt(t, sess.Registry().Topology().Vertices, corner)
	sess.SelectAt(h.Proxy, Modifiers{})

	if sess.Gizmo().Target() != h.Proxy {
		t.Fatal("gizmo not attached to the vertex proxy")
	}

	delta := math.Vec3{X: 1}
	if !sess.Translate(delta) {
		t.Fatal("Translate returned false")
	}

	moved := make(map[int]bool)
	for _, i := range h.Indices {
		moved[i] = true
	}
	after := node.Mesh.Positions()
	count := 0
	for i := range after {
		if moved[i] {
			if !after[i].ApproxEqual(before[i].Add(delta), 1e-6) {
				t.Errorf("index %d: expected %v, got %v", i, before[i].Add(delta), after[i])
			}
			count++
		} else if after[i] != before[i] {
			t.Errorf("index %d moved: %v -> %v", i, before[i], after[i])
		}
	}
	if count != len(h.Indices) || count == 0 {
		t.Errorf("expected %d moved indices, got %d", len(h.Indices), count)
	}

	want := corner.Add(delta)
	if !h.RefWorld.ApproxEqual(want, 1e-6) {
		t.Errorf("handle ref: expected %v, got %v", want, h.RefWorld)
	}
	if !h.Proxy.WorldPosition().ApproxEqual(want, 1e-6) {
		t.Errorf("proxy: expected %v, got %v", want, h.Proxy.WorldPosition())
	}
	if sess.State() != StateClean {
		t.Errorf("state: expected clean, got %v", sess.State())
	}
	if len(node.Mesh.Vertices) != 36 {
		t.Errorf("vertex count changed: %d", len(node.Mesh.Vertices))
	}
}

func TestDragEdgeRoundTrip(t *testing.T) {
	sess, node := newTestSession(t, scene.CreateBox(1, 1, 1), DefaultParams())
	before := snapshotPositions(node.Mesh)

	sess.SetMode(scene.ModeEdge)
	e := sess.Registry().Topology().Edges[0]
	sess.SelectAt(e.Proxy, Modifiers{})

	d := math.Vec3{X: 0.25, Y: -0.5, Z: 0.1}
	sess.Translate(d)
	sess.Translate(d.Negate())

	after := node.Mesh.Positions()
	for i := range before {
		if !after[i].ApproxEqual(before[i], 1e-5) {
			t.Errorf("index %d: expected %v, got %v", i, before[i], after[i])
		}
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	sess, _ := newTestSession(t, scene.CreateBox(1, 1, 1), DefaultParams())
	reg := sess.Registry()

	type cached struct {
		ref, normal math.Vec3
		proxy       math.Vec3
	}
	capture := func() []cached {
		var out []cached
		for _, h := range reg.All() {
			out = append(out, cached{h.RefWorld, h.Normal, h.Proxy.WorldPosition()})
		}
		return out
	}

	reg.Refresh()
	first := capture()
	reg.Refresh()
	second := capture()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("handle %d changed on second refresh: %v -> %v", i, first[i], second[i])
		}
	}
}

func TestMultiSelectDragUsesPivot(t *testing.T) {
	sess, node := newTestSession(t, scene.CreateBox(1, 1, 1), DefaultParams())
	vertices := sess.Registry().Topology().Vertices

	a := handleAt(t, vertices, math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	b := handleAt(t, vertices, math.Vec3{X: -0.5, Y: 0.5, Z: 0.5})
	sess.SelectAt(a.Proxy, Modifiers{})
	sess.SelectAt(b.Proxy, Modifiers{Additive: true})

	pivot := sess.Pivot()
	if sess.Gizmo().Target() != pivot || !pivot.Visible {
		t.Fatal("expected the gizmo on a visible pivot")
	}
	center := math.Vec3{Y: 0.5, Z: 0.5}
	if !pivot.WorldPosition().ApproxEqual(center, 1e-6) {
		t.Errorf("pivot: expected %v, got %v", center, pivot.WorldPosition())
	}

	sess.Translate(math.Vec3{Y: 1})

	positions := node.Mesh.Positions()
	for _, h := range []*Handle{a, b} {
		for _, i := range h.Indices {
			if !approx(positions[i].Y, 1.5) {
				t.Errorf("%v index %d: expected y 1.5, got %f", h, i, positions[i].Y)
			}
		}
	}
	if !pivot.WorldPosition().ApproxEqual(center.Add(math.Vec3{Y: 1}), 1e-6) {
		t.Errorf("pivot did not follow: %v", pivot.WorldPosition())
	}
}

func TestExtrudeQuadFace(t *testing.T) {
	sess, node := newTestSession(t, scene.CreateQuad(), DefaultParams())
	sess.SetMode(scene.ModeFace)

	face := sess.Registry().Topology().Faces[0]
	original := append([]int(nil), face.Indices...)
	sess.SelectAt(face.Proxy, Modifiers{})

	sess.BeginDrag()
	sess.ApplyDelta(face.Proxy, face.RefWorld.Add(math.Vec3{Z: 0.5}))

	mesh := node.Mesh
	if len(mesh.Vertices) != 36 {
		t.Fatalf("vertices: expected 36, got %d", len(mesh.Vertices))
	}
	if mesh.TriangleCount() != 12 {
		t.Errorf("triangles: expected 12, got %d", mesh.TriangleCount())
	}
	if face.Extrusion == nil {
		t.Fatal("face has no extrusion record")
	}
	wantAfter := []int{6, 7, 8, 9, 10, 11}
	for i, v := range face.Extrusion.After {
		if v != wantAfter[i] {
			t.Errorf("extrusion after: expected %v, got %v", wantAfter, face.Extrusion.After)
			break
		}
	}
	if sess.State() != StateDirty {
		t.Errorf("state: expected dirty, got %v", sess.State())
	}

	lifted := 0
	for _, v := range mesh.Vertices {
		if approx(v.Position.Z, 0.5) {
			lifted++
		} else if !approx(v.Position.Z, 0) {
			t.Errorf("vertex at unexpected z %f", v.Position.Z)
		}
	}
	if lifted != 18 {
		t.Errorf("lifted vertices: expected 18, got %d", lifted)
	}
	for _, i := range original {
		if !approx(mesh.Vertices[i].Position.Z, 0) {
			t.Errorf("original index %d moved", i)
		}
	}

	sess.Commit()

	if sess.State() != StateClean {
		t.Errorf("state after commit: expected clean, got %v", sess.State())
	}
	sel := sess.Selection().Handles()
	if len(sel) != 1 {
		t.Fatalf("selection after commit: expected 1, got %d", len(sel))
	}
	capFace := sel[0]
	if capFace.Kind != KindFace {
		t.Errorf("reselected kind: expected face, got %v", capFace.Kind)
	}
	if !capFace.containsAll(wantAfter) {
		t.Errorf("reselected face %v does not hold the cap indices", capFace.Indices)
	}
	for _, i := range original {
		for _, j := range capFace.Indices {
			if i == j {
				t.Errorf("cap face shares index %d with the original face", i)
			}
		}
	}
	if !capFace.RefWorld.ApproxEqual(math.Vec3{Z: 0.5}, 1e-5) {
		t.Errorf("cap face ref: expected (0,0,0.5), got %v", capFace.RefWorld)
	}
	if sess.Gizmo().Target() != capFace.Proxy {
		t.Error("gizmo not reattached to the cap face")
	}

	// quad + cap + 4 skirt quads
	if n := len(sess.Registry().Topology().Faces); n != 6 {
		t.Errorf("faces after rebuild: expected 6, got %d", n)
	}
}

func TestExtrudeOnlyOncePerDrag(t *testing.T) {
	sess, node := newTestSession(t, scene.CreateQuad(), DefaultParams())
	sess.SetMode(scene.ModeFace)
	face := sess.Registry().Topology().Faces[0]
	sess.SelectAt(face.Proxy, Modifiers{})

	sess.BeginDrag()
	sess.ApplyDelta(face.Proxy, math.Vec3{Z: 0.2})
	sess.ApplyDelta(face.Proxy, math.Vec3{Z: 0.4})
	if len(node.Mesh.Vertices) != 36 {
		t.Errorf("vertices: expected 36, got %d", len(node.Mesh.Vertices))
	}
	if !face.RefWorld.ApproxEqual(math.Vec3{Z: 0.4}, 1e-5) {
		t.Errorf("face ref: expected (0,0,0.4), got %v", face.RefWorld)
	}
	sess.Commit()
}

func TestExtrudeCubeFace(t *testing.T) {
	sess, node := newTestSession(t, scene.CreateBox(1, 1, 1), DefaultParams())
	sess.SetMode(scene.ModeFace)
	face := handleAt(t, sess.Registry().Topology().Faces, math.Vec3{Z: 0.5})
	sess.SelectAt(face.Proxy, Modifiers{})
	sess.Translate(math.Vec3{Z: 0.5})

	if len(node.Mesh.Vertices) != 66 {
		t.Errorf("vertices: expected 66, got %d", len(node.Mesh.Vertices))
	}
	if sess.Selection().Len() != 1 {
		t.Errorf("selection: expected 1, got %d", sess.Selection().Len())
	}

	// Side walls merge with their skirts; the old face stays buried at z=0.5.
	topo := sess.Registry().Topology()
	if n := len(topo.Faces); n != 7 {
		t.Errorf("faces: expected 7, got %d", n)
	}
	handleAt(t, topo.Faces, math.Vec3{Z: 0.5})
	rim := handleAt(t, topo.Edges, math.Vec3{X: 0.5, Z: 0.5})
	if len(rim.Indices) == 0 {
		t.Error("rim edge has no indices")
	}
}

func TestCancelDragRollsBackExtrusion(t *testing.T) {
	sess, node := newTestSession(t, scene.CreateQuad(), DefaultParams())
	sess.SetMode(scene.ModeFace)
	before := snapshotPositions(node.Mesh)

	face := sess.Registry().Topology().Faces[0]
	original := append([]int(nil), face.Indices...)
	sess.SelectAt(face.Proxy, Modifiers{})

	sess.BeginDrag()
	sess.ApplyDelta(face.Proxy, math.Vec3{Z: 0.5})
	if !sess.CancelDrag() {
		t.Fatal("CancelDrag returned false")
	}

	after := node.Mesh.Positions()
	if len(after) != len(before) {
		t.Fatalf("vertices: expected %d, got %d", len(before), len(after))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("index %d: expected %v, got %v", i, before[i], after[i])
		}
	}
	sel := sess.Selection().Handles()
	if len(sel) != 1 || !sel[0].containsAll(original) {
		t.Errorf("expected the original face reselected, got %v", sel)
	}
	if sess.State() != StateClean {
		t.Errorf("state: expected clean, got %v", sess.State())
	}
	if sess.CancelDrag() {
		t.Error("second CancelDrag should report no drag")
	}
}

func TestFaceDragWithoutExtrusion(t *testing.T) {
	params := DefaultParams()
	params.FaceDragExtrudes = false
	sess, node := newTestSession(t, scene.CreateQuad(), params)
	sess.SetMode(scene.ModeFace)

	face := sess.Registry().Topology().Faces[0]
	sess.SelectAt(face.Proxy, Modifiers{})
	sess.Translate(math.Vec3{Z: 0.5})

	if len(node.Mesh.Vertices) != 6 {
		t.Errorf("vertices: expected 6, got %d", len(node.Mesh.Vertices))
	}
	for i, v := range node.Mesh.Vertices {
		if !approx(v.Position.Z, 0.5) {
			t.Errorf("index %d: expected z 0.5, got %f", i, v.Position.Z)
		}
	}
	if face.Extrusion != nil {
		t.Error("unexpected extrusion record")
	}
}

func TestApplyDeltaIgnoresZeroAndUnknown(t *testing.T) {
	sess, node := newTestSession(t, scene.CreateQuad(), DefaultParams())
	sess.SetMode(scene.ModeFace)
	face := sess.Registry().Topology().Faces[0]
	sess.SelectAt(face.Proxy, Modifiers{})

	changes := 0
	unsub := sess.OnMeshChanged(func(*scene.Node) { changes++ })
	defer unsub()

	sess.ApplyDelta(face.Proxy, face.RefWorld)
	sess.ApplyDelta(scene.NewNode("Stranger"), math.Vec3{X: 3})
	sess.ApplyDelta(nil, math.Vec3{X: 3})

	if changes != 0 {
		t.Errorf("expected no mesh changes, got %d", changes)
	}
	if len(node.Mesh.Vertices) != 6 {
		t.Errorf("vertices: expected 6, got %d", len(node.Mesh.Vertices))
	}
	if sess.State() != StateClean {
		t.Errorf("state: expected clean, got %v", sess.State())
	}
}

func TestDriftWarning(t *testing.T) {
	sess, _ := newTestSession(t, scene.CreateBox(1, 1, 1), DefaultParams())
	obs, logs := observer.New(zap.WarnLevel)
	sess.SetLogger(zap.New(obs))

	h := sess.Registry().Topology().Vertices[0]
	h.Proxy.SetPosition(h.RefWorld.Add(math.Vec3{Z: 1}))
	sess.SelectAt(h.Proxy, Modifiers{})

	entries := logs.FilterMessage("handle proxy drifted from its reference").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 drift warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["handle"]; got != h.String() {
		t.Errorf("handle field: expected %q, got %v", h.String(), got)
	}

	// An aligned proxy does not warn.
	other := sess.Registry().Topology().Vertices[1]
	sess.SelectAt(other.Proxy, Modifiers{})
	if n := logs.FilterMessage("handle proxy drifted from its reference").Len(); n != 1 {
		t.Errorf("expected no further warnings, got %d total", n)
	}
}

func TestSetModePrunesHiddenSelection(t *testing.T) {
	sess, _ := newTestSession(t, scene.CreateBox(1, 1, 1), DefaultParams())
	h := sess.Registry().Topology().Vertices[0]
	sess.SelectAt(h.Proxy, Modifiers{})

	sess.SetMode(scene.ModeEdge)
	if sess.Selection().Len() != 0 {
		t.Errorf("selection: expected 0, got %d", sess.Selection().Len())
	}
	if sess.Gizmo().Attached() {
		t.Error("gizmo should be detached")
	}
}

func TestSelectInRect(t *testing.T) {
	sess, _ := newTestSession(t, scene.CreateBox(1, 1, 1), DefaultParams())
	camera := scene.NewCamera(stdmath.Pi/3, 1, 0.1, 100)

	rect := math.Rect{Min: math.Vec2{X: 0.1, Y: -0.17}, Max: math.Vec2{X: 1, Y: 1}}
	n := sess.SelectInRect(rect, camera, Modifiers{})
	if n != 3 {
		t.Fatalf("matches: expected 3, got %d", n)
	}
	if sess.Selection().Len() != 3 {
		t.Errorf("selection: expected 3, got %d", sess.Selection().Len())
	}
	for _, h := range sess.Selection().Handles() {
		if h.Kind != KindVertex || h.RefWorld.X != 0.5 {
			t.Errorf("unexpected handle %v at %v", h, h.RefWorld)
		}
	}
	if sess.Gizmo().Target() != sess.Pivot() {
		t.Error("gizmo should sit on the pivot")
	}

	// Toggle-click one member off.
	first := sess.Selection().Handles()[0]
	sess.SelectAt(first.Proxy, Modifiers{Toggle: true})
	if sess.Selection().Len() != 2 || sess.Selection().IsSelected(first) {
		t.Errorf("toggle: expected 2 members without %v", first)
	}

	// A rect with no handles leaves the selection alone.
	empty := math.Rect{Min: math.Vec2{X: 0.9, Y: 0.9}, Max: math.Vec2{X: 1, Y: 1}}
	if n := sess.SelectInRect(empty, camera, Modifiers{}); n != 0 {
		t.Errorf("empty rect: expected 0, got %d", n)
	}
	if sess.Selection().Len() != 2 {
		t.Errorf("selection changed by empty rect: %d", sess.Selection().Len())
	}
}

func TestPickAtNearestProxy(t *testing.T) {
	sess, _ := newTestSession(t, scene.CreateBox(1, 1, 1), DefaultParams())
	ray := Ray{Origin: math.Vec3{X: 0.51, Y: 0.505, Z: 5}, Direction: math.Vec3{Z: -1}}

	sess.PickAt(ray, Modifiers{})
	sel := sess.Selection().Handles()
	if len(sel) != 1 {
		t.Fatalf("selection: expected 1, got %d", len(sel))
	}
	want := math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	if !sel[0].RefWorld.ApproxEqual(want, 1e-6) {
		t.Errorf("picked %v at %v, expected the front corner", sel[0], sel[0].RefWorld)
	}

	miss := Ray{Origin: math.Vec3{X: 3, Y: 3, Z: 5}, Direction: math.Vec3{Z: -1}}
	sess.PickAt(miss, Modifiers{Additive: true})
	if sess.Selection().Len() != 1 {
		t.Error("additive miss should keep the selection")
	}
	sess.PickAt(miss, Modifiers{})
	if sess.Selection().Len() != 0 {
		t.Error("plain miss should clear the selection")
	}
}

func TestEndRemovesHandles(t *testing.T) {
	sess, node := newTestSession(t, scene.CreateBox(1, 1, 1), DefaultParams())
	root := node.Parent
	group := sess.Registry().Group()
	if group == nil || group.Parent != root {
		t.Fatal("proxy group not under the scene root")
	}

	sess.End()
	if sess.Editing() || sess.Registry().Loaded() {
		t.Error("session still editing after End")
	}
	if group.Parent != nil {
		t.Error("proxy group still attached")
	}
	if sess.Gizmo().Attached() {
		t.Error("gizmo still attached")
	}
}
