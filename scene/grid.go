package scene

import (
	"mesh-editor/core"
	"mesh-editor/math"
)

// CreateGrid builds a flat grid mesh on the XZ plane rendered as GL_LINES.
//
//	size      total world-space extent (grid goes from -size/2 to +size/2)
//	divisions number of cells along each axis
func CreateGrid(size float32, divisions int) *Mesh {
	if divisions < 1 {
		divisions = 1
	}

	half := size / 2.0
	step := size / float32(divisions)

	var vertices []core.Vertex
	addLine := func(a, b math.Vec3) {
		vertices = append(vertices,
			core.Vertex{Position: a, Normal: math.Vec3Up},
			core.Vertex{Position: b, Normal: math.Vec3Up},
		)
	}

	for i := 0; i <= divisions; i++ {
		x := -half + float32(i)*step
		addLine(math.Vec3{X: x, Z: -half}, math.Vec3{X: x, Z: half})
	}
	for i := 0; i <= divisions; i++ {
		z := -half + float32(i)*step
		addLine(math.Vec3{X: -half, Z: z}, math.Vec3{X: half, Z: z})
	}

	m := CreateMeshFromData("Grid", vertices, nil)
	m.DrawMode = DrawLines
	return m
}

// CreateGridNode wraps CreateGrid in a non-pickable node with an unlit
// material.
func CreateGridNode(size float32, divisions int) *Node {
	n := NewMeshNode("Grid", CreateGrid(size, divisions))
	n.Material = NewUnlitMaterial("GridMaterial", core.Color{R: 0.35, G: 0.35, B: 0.35, A: 1})
	n.Pickable = false
	return n
}

// CreateLineMesh builds a single GL_LINES segment from a to b.
func CreateLineMesh(name string, a, b math.Vec3) *Mesh {
	m := CreateMeshFromData(name, []core.Vertex{
		{Position: a, Normal: math.Vec3Up},
		{Position: b, Normal: math.Vec3Up},
	}, nil)
	m.DrawMode = DrawLines
	return m
}
