package scene

import (
	"sync/atomic"

	"mesh-editor/core"
	"mesh-editor/math"
)

// Node represents an object in the scene graph
type Node struct {
	Name      string
	Transform core.Transform
	Parent    *Node
	Children  []*Node
	Mesh      *Mesh
	Material  *Material
	Visible   bool
	Id        uint32

	// Pickable nodes take part in ray picking. Helper nodes such as the
	// selection pivot turn it off.
	Pickable bool

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      math.Mat4
}

var nodeIdCounter atomic.Uint32

func NewNode(name string) *Node {
	return &Node{
		Name:             name,
		Transform:        core.NewTransform(),
		Children:         make([]*Node, 0),
		Visible:          true,
		Pickable:         true,
		Id:               nodeIdCounter.Add(1),
		worldMatrixDirty: true,
	}
}

// NewMeshNode creates a node carrying mesh with the default material.
func NewMeshNode(name string, mesh *Mesh) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	n.Material = DefaultMaterial()
	return n
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkWorldMatrixDirty()
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return
		}
	}
}

// Detach removes the node from its parent, if any.
func (n *Node) Detach() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// GetWorldMatrix returns local * parentWorld, recomputed lazily.
func (n *Node) GetWorldMatrix() math.Mat4 {
	if n.worldMatrixDirty {
		localMatrix := n.Transform.GetMatrix()
		if n.Parent != nil {
			n.worldMatrix = localMatrix.Mul(n.Parent.GetWorldMatrix())
		} else {
			n.worldMatrix = localMatrix
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

func (n *Node) SetPosition(pos math.Vec3) {
	n.Transform.Position = pos
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetRotation(rot math.Quaternion) {
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale math.Vec3) {
	n.Transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

func (n *Node) Translate(delta math.Vec3) {
	n.Transform.Position = n.Transform.Position.Add(delta)
	n.MarkWorldMatrixDirty()
}

// WorldPosition returns the node origin in world space.
func (n *Node) WorldPosition() math.Vec3 {
	return n.GetWorldMatrix().Translation()
}

// SetWorldPosition moves the node so its origin lands on p in world space.
func (n *Node) SetWorldPosition(p math.Vec3) {
	if n.Parent != nil {
		p = n.Parent.WorldToLocal(p)
	}
	n.SetPosition(p)
}

// LocalToWorld transforms a point from this node's local space.
func (n *Node) LocalToWorld(p math.Vec3) math.Vec3 {
	return n.GetWorldMatrix().MulVec3(p)
}

// WorldToLocal transforms a world point into this node's local space.
func (n *Node) WorldToLocal(p math.Vec3) math.Vec3 {
	return n.GetWorldMatrix().Inverse().MulVec3(p)
}

// LocalToWorldNormal transforms a local normal with the inverse-transpose
// of the world matrix.
func (n *Node) LocalToWorldNormal(normal math.Vec3) math.Vec3 {
	return n.GetWorldMatrix().MulNormal(normal)
}

func (n *Node) GetForward() math.Vec3 {
	return n.Transform.GetForward()
}

func (n *Node) GetRight() math.Vec3 {
	return n.Transform.GetRight()
}

func (n *Node) GetUp() math.Vec3 {
	return n.Transform.GetUp()
}

// IsVisible reports whether the node and every ancestor are visible.
func (n *Node) IsVisible() bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if !cur.Visible {
			return false
		}
	}
	return true
}

// Traverse visits all nodes in the graph
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// Find finds a node by name
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// FindById finds a node by id
func (n *Node) FindById(id uint32) *Node {
	if n.Id == id {
		return n
	}
	for _, child := range n.Children {
		if found := child.FindById(id); found != nil {
			return found
		}
	}
	return nil
}
