package scene

import (
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"mesh-editor/core"
	"mesh-editor/internal/logger"
	"mesh-editor/math"
)

func TestGLTFRoundTrip(t *testing.T) {
	for _, ext := range []string{".gltf", ".glb"} {
		t.Run(ext, func(t *testing.T) {
			box := NewMeshNode("Crate", CreateBox(1, 2, 3))
			box.SetPosition(math.Vec3{X: 4})
			box.Material = NewMaterial("Red", core.Color{R: 1, A: 1})
			box.Material.Metallic = 0.25

			path := filepath.Join(t.TempDir(), "scene"+ext)
			if err := SaveGLTF(path, []*Node{box, CreateGridNode(4, 4)}); err != nil {
				t.Fatalf("SaveGLTF: %v", err)
			}

			nodes, err := LoadGLTF(path)
			if err != nil {
				t.Fatalf("LoadGLTF: %v", err)
			}
			if len(nodes) != 1 {
				t.Fatalf("expected 1 node (grid skipped), got %d", len(nodes))
			}
			got := nodes[0]
			if got.Name != "Crate" {
				t.Errorf("expected name Crate, got %q", got.Name)
			}
			if n := len(got.Mesh.Vertices); n != 36 {
				t.Errorf("expected 36 vertices, got %d", n)
			}

			// The node transform is baked into the vertices on load.
			box2 := got.Mesh.LocalAABB()
			if !box2.Min.ApproxEqual(math.Vec3{X: 3.5, Y: -1, Z: -1.5}, 1e-4) ||
				!box2.Max.ApproxEqual(math.Vec3{X: 4.5, Y: 1, Z: 1.5}, 1e-4) {
				t.Errorf("unexpected bounds %v..%v", box2.Min, box2.Max)
			}
			if got.Material == nil || got.Material.Name != "Red" || got.Material.Albedo.R != 1 || got.Material.Metallic != 0.25 {
				t.Errorf("material not preserved: %+v", got.Material)
			}
		})
	}
}

func TestSaveGLTFRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.glb")
	if err := SaveGLTF(path, []*Node{CreateGridNode(2, 2)}); err == nil {
		t.Error("expected an error when no triangle meshes are given")
	}
}

func TestLoadGLTFSkipsBrokenPrimitive(t *testing.T) {
	doc := gltf.NewDocument()
	positions := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	normals := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "Tri",
		Primitives: []*gltf.Primitive{
			{Attributes: gltf.PrimitiveAttributes{gltf.NORMAL: normals}},
			{Attributes: gltf.PrimitiveAttributes{gltf.POSITION: positions}},
		},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "Tri", Mesh: gltf.Index(0)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	path := filepath.Join(t.TempDir(), "broken.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatal(err)
	}

	obs, logs := observer.New(zapcore.WarnLevel)
	prev := logger.Log
	logger.Log = zap.New(obs)
	defer func() { logger.Log = prev }()

	nodes, err := LoadGLTF(path)
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Name != "Tri_p1" {
		t.Fatalf("expected only Tri_p1, got %d nodes", len(nodes))
	}

	skipped := logs.FilterMessage("skipping primitive").All()
	if len(skipped) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(skipped))
	}
	fields := skipped[0].ContextMap()
	if fields["path"] != path || fields["mesh"] != int64(0) || fields["primitive"] != int64(0) {
		t.Errorf("unexpected warning fields %v", fields)
	}
	if skipped[0].LoggerName != "gltf" {
		t.Errorf("expected logger gltf, got %q", skipped[0].LoggerName)
	}
}
