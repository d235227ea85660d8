package scene

import (
	"mesh-editor/core"
	"mesh-editor/math"
)

// Scene manages a collection of nodes and the active camera
type Scene struct {
	Root     *Node
	Camera   *Camera
	Light    Light
	Ambient  core.Color
	SkyColor core.Color
}

// Light is the single directional light the viewer shades with.
type Light struct {
	Direction math.Vec3
	Color     core.Color
	Intensity float32
}

func NewScene() *Scene {
	return &Scene{
		Root: NewNode("Root"),
		Light: Light{
			Direction: math.Vec3{X: 0.5, Y: -1, Z: -0.5}.Normalize(),
			Color:     core.ColorWhite,
			Intensity: 0.8,
		},
		Ambient:  core.Color{R: 0.2, G: 0.2, B: 0.2, A: 1.0},
		SkyColor: core.Color{R: 0.16, G: 0.17, B: 0.2, A: 1.0},
	}
}

func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

// GetVisibleNodes returns all nodes with meshes that are visible
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node

	s.Root.Traverse(func(node *Node) {
		if node.Mesh != nil && node.IsVisible() {
			visible = append(visible, node)
		}
	})

	return visible
}

// MeshNodes returns the top-level nodes that carry a triangle mesh, in
// scene order. These are the user's objects.
func (s *Scene) MeshNodes() []*Node {
	var out []*Node
	for _, child := range s.Root.Children {
		if child.Mesh != nil && child.Mesh.DrawMode == DrawTriangles && child.Pickable {
			out = append(out, child)
		}
	}
	return out
}
