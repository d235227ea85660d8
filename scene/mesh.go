package scene

import (
	"mesh-editor/core"
	"mesh-editor/math"
)

// DrawMode controls the OpenGL primitive type used when rendering a mesh.
type DrawMode int

const (
	DrawTriangles DrawMode = iota // gl.TRIANGLES (default)
	DrawLines                     // gl.LINES, pairs of vertices form segments
	DrawPoints                    // gl.POINTS
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
}

// Center returns the midpoint of the box.
func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the edge lengths of the box.
func (b AABB) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Mesh holds CPU-side vertex data.
//
// When Indices is empty the mesh is a non-indexed triangle soup: vertex
// i*3, i*3+1 and i*3+2 form triangle i. The mesh editor only operates on
// that layout; use ToNonIndexed to convert.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
	DrawMode DrawMode // defaults to DrawTriangles

	// Version is bumped by MarkDirty so the renderer knows to re-upload.
	Version uint64

	// GPUData is set by the renderer backend.
	GPUData interface{}
}

func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]core.Vertex, 0),
	}
}

// CreateMeshFromData builds a Mesh from vertices and optional indices.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
}

// IsIndexed reports whether the mesh draws through an index buffer.
func (m *Mesh) IsIndexed() bool {
	return len(m.Indices) > 0
}

// TriangleCount returns the number of triangles the mesh draws.
func (m *Mesh) TriangleCount() int {
	if m.IsIndexed() {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 3
}

// Positions returns a copy of every vertex position in buffer order.
func (m *Mesh) Positions() []math.Vec3 {
	out := make([]math.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = v.Position
	}
	return out
}

// SetPositions overwrites vertex positions in buffer order. Extra entries
// are ignored.
func (m *Mesh) SetPositions(positions []math.Vec3) {
	for i := range m.Vertices {
		if i >= len(positions) {
			break
		}
		m.Vertices[i].Position = positions[i]
	}
	m.MarkDirty()
}

// MarkDirty flags the mesh for re-upload.
func (m *Mesh) MarkDirty() {
	m.Version++
}

// Clone returns a deep copy of the CPU data. GPU state is not shared.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Name:     m.Name,
		Vertices: append([]core.Vertex(nil), m.Vertices...),
		DrawMode: m.DrawMode,
	}
	if len(m.Indices) > 0 {
		c.Indices = append([]uint32(nil), m.Indices...)
	}
	return c
}

// ToNonIndexed expands an indexed mesh into a triangle soup. A mesh that is
// already non-indexed is cloned.
func (m *Mesh) ToNonIndexed() *Mesh {
	if !m.IsIndexed() {
		return m.Clone()
	}
	vertices := make([]core.Vertex, 0, len(m.Indices))
	for _, idx := range m.Indices {
		if int(idx) < len(m.Vertices) {
			vertices = append(vertices, m.Vertices[idx])
		}
	}
	return &Mesh{Name: m.Name, Vertices: vertices, DrawMode: m.DrawMode}
}

// ComputeVertexNormals recomputes normals. Non-indexed meshes get flat
// per-triangle normals; indexed meshes get area-weighted smooth normals.
// Degenerate triangles fall back to +Z.
func (m *Mesh) ComputeVertexNormals() {
	if m.IsIndexed() {
		acc := make([]math.Vec3, len(m.Vertices))
		for t := 0; t+2 < len(m.Indices); t += 3 {
			i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
			if int(i0) >= len(m.Vertices) || int(i1) >= len(m.Vertices) || int(i2) >= len(m.Vertices) {
				continue
			}
			p0, p1, p2 := m.Vertices[i0].Position, m.Vertices[i1].Position, m.Vertices[i2].Position
			// Unnormalized cross product weights by area
			n := p1.Sub(p0).Cross(p2.Sub(p0))
			acc[i0] = acc[i0].Add(n)
			acc[i1] = acc[i1].Add(n)
			acc[i2] = acc[i2].Add(n)
		}
		for i := range m.Vertices {
			m.Vertices[i].Normal = acc[i].NormalizeOr(math.Vec3Front)
		}
	} else {
		for t := 0; t+2 < len(m.Vertices); t += 3 {
			p0, p1, p2 := m.Vertices[t].Position, m.Vertices[t+1].Position, m.Vertices[t+2].Position
			n := p1.Sub(p0).Cross(p2.Sub(p0)).NormalizeOr(math.Vec3Front)
			m.Vertices[t].Normal = n
			m.Vertices[t+1].Normal = n
			m.Vertices[t+2].Normal = n
		}
	}
	m.MarkDirty()
}

// LocalAABB returns the tight box around all vertex positions.
func (m *Mesh) LocalAABB() AABB {
	return computeLocalAABB(m.Vertices)
}

// computeLocalAABB returns the tight AABB of the given vertex positions.
func computeLocalAABB(vertices []core.Vertex) AABB {
	if len(vertices) == 0 {
		return AABB{}
	}
	min := vertices[0].Position
	max := vertices[0].Position
	for i := 1; i < len(vertices); i++ {
		p := vertices[i].Position
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return AABB{Min: min, Max: max}
}
