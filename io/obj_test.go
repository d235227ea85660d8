package io

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mesh-editor/math"
	"mesh-editor/scene"
)

const quadOBJ = `# quad
mtllib quad.mtl
o Quad
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl Blue
f 1/1 2/2 3/3 4/4
`

const quadMTL = `newmtl Blue
Kd 0 0 1
d 0.5
`

func TestReadOBJFanTriangulates(t *testing.T) {
	nodes, err := ReadOBJ(strings.NewReader(quadOBJ), func(name string) (map[string]*scene.Material, error) {
		if name != "quad.mtl" {
			t.Errorf("unexpected mtllib %q", name)
		}
		return ReadMTL(strings.NewReader(quadMTL))
	})
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Name != "Quad" {
		t.Fatalf("expected one node named Quad, got %d", len(nodes))
	}
	mesh := nodes[0].Mesh
	if n := len(mesh.Vertices); n != 6 {
		t.Fatalf("expected 6 vertices, got %d", n)
	}
	// Fan from the first corner: (0,1,2) (0,2,3).
	want := []math.Vec3{
		{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1},
		{X: -1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1},
	}
	for i, w := range want {
		if mesh.Vertices[i].Position != w {
			t.Errorf("vertex %d: expected %v, got %v", i, w, mesh.Vertices[i].Position)
		}
	}
	if n := mesh.Vertices[0].Normal; !n.ApproxEqual(math.Vec3{Z: 1}, 1e-5) {
		t.Errorf("computed normal: expected +Z, got %v", n)
	}
	if uv := mesh.Vertices[2].UV; uv != (math.Vec2{X: 1, Y: 1}) {
		t.Errorf("uv: expected (1,1), got %v", uv)
	}
	mat := nodes[0].Material
	if mat.Name != "Blue" || mat.Albedo.B != 1 || mat.Albedo.A != 0.5 {
		t.Errorf("material not applied: %+v", *mat)
	}
}

func TestReadOBJNegativeIndicesAndGroups(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
g first
f -3 -2 -1
g second
f 1 2 3
`
	nodes, err := ReadOBJ(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(nodes))
	}
	for _, n := range nodes {
		if n.Mesh.Vertices[2].Position != (math.Vec3{Y: 1}) {
			t.Errorf("%s: unexpected third vertex %v", n.Name, n.Mesh.Vertices[2].Position)
		}
	}
}

func TestReadOBJErrors(t *testing.T) {
	if _, err := ReadOBJ(strings.NewReader("v 1 2 3\n"), nil); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("no faces: expected ErrEmptyMesh, got %v", err)
	}
	if _, err := ReadOBJ(strings.NewReader("v 1 2\n"), nil); err == nil {
		t.Error("short vertex: expected an error")
	}
	if _, err := ReadOBJ(strings.NewReader("v 0 0 0\nf 1 1\n"), nil); err == nil {
		t.Error("two-vertex face: expected an error")
	}
}

func TestOBJRoundTripPreservesOrder(t *testing.T) {
	box := scene.NewMeshNode("Box", scene.CreateBox(1, 1, 1))
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, []*scene.Node{box, scene.CreateGridNode(2, 2)}); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}

	nodes, err := ReadOBJ(&buf, nil)
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 object, got %d", len(nodes))
	}
	got := nodes[0].Mesh.Vertices
	if len(got) != len(box.Mesh.Vertices) {
		t.Fatalf("expected %d vertices, got %d", len(box.Mesh.Vertices), len(got))
	}
	for i := range got {
		if !got[i].Position.ApproxEqual(box.Mesh.Vertices[i].Position, 1e-6) {
			t.Fatalf("vertex %d: expected %v, got %v", i, box.Mesh.Vertices[i].Position, got[i].Position)
		}
	}
}

func TestWriteOBJEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, nil); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("expected ErrEmptyMesh, got %v", err)
	}
}

func TestLoadOBJResolvesMTLBesideFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "quad.obj"), []byte(quadOBJ), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "quad.mtl"), []byte(quadMTL), 0644); err != nil {
		t.Fatal(err)
	}
	nodes, err := LoadOBJ(filepath.Join(dir, "quad.obj"))
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if nodes[0].Material.Name != "Blue" {
		t.Errorf("expected Blue, got %q", nodes[0].Material.Name)
	}
}
