package scene

import (
	"mesh-editor/core"
)

// ObjectState is the captured state of one user object.
type ObjectState struct {
	Id        uint32
	Name      string
	Transform core.Transform
	Mesh      *Mesh
	Material  Material
}

// Snapshot is an immutable copy of every user object plus the selection.
type Snapshot struct {
	Objects    []ObjectState
	SelectedId uint32 // 0 when nothing is selected
}

// Equal reports whether two snapshots describe the same scene state.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.SelectedId != other.SelectedId || len(s.Objects) != len(other.Objects) {
		return false
	}
	for i := range s.Objects {
		a, b := s.Objects[i], other.Objects[i]
		if a.Id != b.Id || a.Name != b.Name || a.Transform != b.Transform || a.Material != b.Material {
			return false
		}
		if !meshEqual(a.Mesh, b.Mesh) {
			return false
		}
	}
	return true
}

func meshEqual(a, b *Mesh) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Vertices) != len(b.Vertices) || len(a.Indices) != len(b.Indices) {
		return false
	}
	for i := range a.Vertices {
		if a.Vertices[i] != b.Vertices[i] {
			return false
		}
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] {
			return false
		}
	}
	return true
}

// Snapshot captures the current user objects.
func (m *Manager) Snapshot() Snapshot {
	var snap Snapshot
	for _, node := range m.Scene.MeshNodes() {
		state := ObjectState{
			Id:        node.Id,
			Name:      node.Name,
			Transform: node.Transform,
			Mesh:      node.Mesh.Clone(),
		}
		if node.Material != nil {
			state.Material = *node.Material
		} else {
			state.Material = *DefaultMaterial()
		}
		snap.Objects = append(snap.Objects, state)
	}
	if m.selected != nil {
		snap.SelectedId = m.selected.Id
	}
	return snap
}

// Restore makes the scene match snap. Existing nodes keep their identity
// and have their mesh buffers replaced in place; missing nodes are
// recreated and extra ones removed. Handlers see one ChangeRestored event
// per restored object followed by the selection update.
func (m *Manager) Restore(snap Snapshot) {
	prev := m.selected
	existing := make(map[uint32]*Node)
	for _, node := range m.Scene.MeshNodes() {
		existing[node.Id] = node
	}

	keep := make(map[uint32]bool, len(snap.Objects))
	var restored []*Node
	for _, state := range snap.Objects {
		keep[state.Id] = true
		node, ok := existing[state.Id]
		if !ok {
			node = NewNode(state.Name)
			node.Id = state.Id
			m.Scene.AddNode(node)
		}
		node.Name = state.Name
		node.Transform = state.Transform
		node.MarkWorldMatrixDirty()
		mat := state.Material
		node.Material = &mat

		clone := state.Mesh.Clone()
		if node.Mesh == nil {
			node.Mesh = clone
		} else {
			// Keep the *Mesh pointer stable so GPU caches stay attached.
			node.Mesh.Name = clone.Name
			node.Mesh.Vertices = clone.Vertices
			node.Mesh.Indices = clone.Indices
			node.Mesh.MarkDirty()
		}
		restored = append(restored, node)
	}

	for id, node := range existing {
		if !keep[id] {
			node.Detach()
			m.NotifyChange(ChangeRemoved, node)
		}
	}
	for _, node := range restored {
		m.NotifyChange(ChangeRestored, node)
	}

	var sel *Node
	if snap.SelectedId != 0 {
		sel = m.Scene.Root.FindById(snap.SelectedId)
	}
	m.selected = sel
	if sel != prev {
		m.selectionSubs.Emit(sel)
	}
}
