package scene

import (
	"errors"
	"fmt"
	"strings"

	"mesh-editor/core"
	"mesh-editor/internal/event"
)

// ErrUnknownPrimitive is returned by CreatePrimitive for an unsupported kind.
var ErrUnknownPrimitive = errors.New("unknown primitive")

// EditMode selects which topological element the user is editing.
type EditMode int

const (
	ModeObject EditMode = iota
	ModeVertex
	ModeEdge
	ModeFace
)

func (m EditMode) String() string {
	switch m {
	case ModeVertex:
		return "vertex"
	case ModeEdge:
		return "edge"
	case ModeFace:
		return "face"
	default:
		return "object"
	}
}

// ParseEditMode parses the String form of an EditMode.
func ParseEditMode(s string) (EditMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "object":
		return ModeObject, nil
	case "vertex":
		return ModeVertex, nil
	case "edge":
		return ModeEdge, nil
	case "face":
		return ModeFace, nil
	}
	return ModeObject, fmt.Errorf("invalid edit mode %q", s)
}

// ChangeKind classifies a ChangeEvent.
type ChangeKind int

const (
	ChangeGeometry ChangeKind = iota
	ChangeAdded
	ChangeRemoved
	ChangeRenamed
	ChangeMaterial
	ChangeRestored
	// ChangeLiveEdit reports a mesh buffer rewritten during a drag, before
	// the drag is committed as ChangeGeometry.
	ChangeLiveEdit
)

// ChangeEvent is published when an object or its mesh buffer changes.
type ChangeEvent struct {
	Kind ChangeKind
	Node *Node
}

// Manager owns the scene, the selected object and the edit mode, and
// publishes changes to them.
type Manager struct {
	Scene *Scene

	selected *Node
	mode     EditMode
	counters map[PrimitiveKind]int

	selectionSubs event.Subscribers[*Node]
	changeSubs    event.Subscribers[ChangeEvent]
	modeSubs      event.Subscribers[EditMode]
}

func NewManager(s *Scene) *Manager {
	if s == nil {
		s = NewScene()
	}
	return &Manager{
		Scene:    s,
		counters: make(map[PrimitiveKind]int),
	}
}

// OnSelection registers fn for selection changes. The returned func
// unregisters it.
func (m *Manager) OnSelection(fn func(*Node)) func() {
	return m.selectionSubs.Add(fn)
}

// OnChange registers fn for object changes. The returned func unregisters it.
func (m *Manager) OnChange(fn func(ChangeEvent)) func() {
	return m.changeSubs.Add(fn)
}

// OnEditMode registers fn for edit mode changes. The returned func
// unregisters it.
func (m *Manager) OnEditMode(fn func(EditMode)) func() {
	return m.modeSubs.Add(fn)
}

// SubscriberCount returns the number of live handlers across all events.
func (m *Manager) SubscriberCount() int {
	return m.selectionSubs.Len() + m.changeSubs.Len() + m.modeSubs.Len()
}

func (m *Manager) Selected() *Node {
	return m.selected
}

// Select makes node the selected object. nil clears the selection.
// Handlers run only when the selection actually changes.
func (m *Manager) Select(node *Node) {
	if node == m.selected {
		return
	}
	m.selected = node
	m.selectionSubs.Emit(node)
}

func (m *Manager) EditMode() EditMode {
	return m.mode
}

// SetEditMode switches the edit mode and notifies handlers on change.
func (m *Manager) SetEditMode(mode EditMode) {
	if mode == m.mode {
		return
	}
	m.mode = mode
	m.modeSubs.Emit(mode)
}

// NotifyChange publishes a change event for node.
func (m *Manager) NotifyChange(kind ChangeKind, node *Node) {
	m.changeSubs.Emit(ChangeEvent{Kind: kind, Node: node})
}

// AddObject adds node under the scene root and selects it.
func (m *Manager) AddObject(node *Node) {
	m.Scene.AddNode(node)
	m.NotifyChange(ChangeAdded, node)
	m.Select(node)
}

// CreatePrimitive builds and adds a named primitive, e.g. "Box 2".
func (m *Manager) CreatePrimitive(kind PrimitiveKind) (*Node, error) {
	mesh, ok := CreatePrimitiveMesh(kind)
	if !ok {
		return nil, fmt.Errorf("create %q: %w", kind, ErrUnknownPrimitive)
	}
	m.counters[kind]++
	name := mesh.Name
	if n := m.counters[kind]; n > 1 {
		name = fmt.Sprintf("%s %d", name, n)
	}
	node := NewMeshNode(name, mesh)
	m.AddObject(node)
	return node, nil
}

// DeleteSelected removes the selected object. It reports whether anything
// was removed.
func (m *Manager) DeleteSelected() bool {
	node := m.selected
	if node == nil {
		return false
	}
	m.Select(nil)
	node.Detach()
	m.NotifyChange(ChangeRemoved, node)
	return true
}

// Clear removes every user object and clears the selection. It returns
// the number of objects removed.
func (m *Manager) Clear() int {
	nodes := m.Scene.MeshNodes()
	m.Select(nil)
	for _, node := range nodes {
		node.Detach()
		m.NotifyChange(ChangeRemoved, node)
	}
	return len(nodes)
}

// FindObject returns the user object named name.
func (m *Manager) FindObject(name string) (*Node, bool) {
	for _, node := range m.Scene.MeshNodes() {
		if node.Name == name {
			return node, true
		}
	}
	return nil, false
}

// Rename renames node. Blank names are ignored.
func (m *Manager) Rename(node *Node, name string) {
	name = strings.TrimSpace(name)
	if node == nil || name == "" || name == node.Name {
		return
	}
	node.Name = name
	m.NotifyChange(ChangeRenamed, node)
}

// SetAlbedo sets the base color of node's material.
func (m *Manager) SetAlbedo(node *Node, c core.Color) {
	m.updateMaterial(node, func(mat *Material) { mat.Albedo = c })
}

// SetMetallic sets the metallic factor, clamped to [0, 1].
func (m *Manager) SetMetallic(node *Node, v float32) {
	m.updateMaterial(node, func(mat *Material) { mat.Metallic = clamp01(v) })
}

// SetRoughness sets the roughness factor, clamped to [0, 1].
func (m *Manager) SetRoughness(node *Node, v float32) {
	m.updateMaterial(node, func(mat *Material) { mat.Roughness = clamp01(v) })
}

func (m *Manager) updateMaterial(node *Node, fn func(*Material)) {
	if node == nil {
		return
	}
	if node.Material == nil {
		node.Material = DefaultMaterial()
	}
	fn(node.Material)
	m.NotifyChange(ChangeMaterial, node)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
