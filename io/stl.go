package io

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"mesh-editor/core"
	"mesh-editor/math"
	"mesh-editor/scene"
)

func toV3(p math.Vec3) v3.Vec {
	return v3.Vec{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}
}

func fromV3(p v3.Vec) math.Vec3 {
	return math.Vec3{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)}
}

// Triangles converts the triangles of nodes into sdfx triangles in world
// space, skipping degenerate ones.
func Triangles(nodes []*scene.Node) []*sdf.Triangle3 {
	var out []*sdf.Triangle3
	for _, node := range nodes {
		if node.Mesh == nil || node.Mesh.DrawMode != scene.DrawTriangles {
			continue
		}
		mesh := node.Mesh
		if mesh.IsIndexed() {
			mesh = mesh.ToNonIndexed()
		}
		world := node.GetWorldMatrix()
		for i := 0; i+2 < len(mesh.Vertices); i += 3 {
			p0 := world.MulVec3(mesh.Vertices[i].Position)
			p1 := world.MulVec3(mesh.Vertices[i+1].Position)
			p2 := world.MulVec3(mesh.Vertices[i+2].Position)
			if p1.Sub(p0).Cross(p2.Sub(p0)).LengthSqr() == 0 {
				continue
			}
			out = append(out, &sdf.Triangle3{toV3(p0), toV3(p1), toV3(p2)})
		}
	}
	return out
}

// ExportSTL writes the world-space triangles of nodes as a binary STL file.
func ExportSTL(path string, nodes []*scene.Node) error {
	tris := Triangles(nodes)
	if len(tris) == 0 {
		return fmt.Errorf("export stl: %w", ErrEmptyMesh)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("export stl %q: %w", path, err)
	}
	return nil
}

// LoadSTL reads an ascii or binary STL file into a single editable node
// named after the file. Normals are recomputed from the winding.
func LoadSTL(path string) ([]*scene.Node, error) {
	tris, err := render.LoadSTL(path)
	if err != nil {
		return nil, fmt.Errorf("load stl %q: %w", path, err)
	}
	vertices := make([]core.Vertex, 0, len(tris)*3)
	for _, tri := range tris {
		for _, p := range tri {
			vertices = append(vertices, core.Vertex{Position: fromV3(p)})
		}
	}
	if len(vertices) == 0 {
		return nil, fmt.Errorf("load stl %q: %w", path, ErrEmptyMesh)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mesh := scene.CreateMeshFromData(name, vertices, nil)
	mesh.ComputeVertexNormals()
	return []*scene.Node{scene.NewMeshNode(name, mesh)}, nil
}
