package editor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mesh-editor/core"
	"mesh-editor/internal/event"
	"mesh-editor/internal/logger"
	"mesh-editor/math"
	"mesh-editor/scene"
)

// ErrNoMesh is returned when editing a node without a triangle mesh.
var ErrNoMesh = errors.New("node has no triangle mesh")

// State tracks whether the handle set matches the buffer.
type State int

const (
	// StateClean: handles match the buffer.
	StateClean State = iota
	// StateDirty: positions moved since the last commit; handles were
	// refreshed in place.
	StateDirty
	// StateRebuilding: the buffer changed cardinality and the topology is
	// being rebuilt.
	StateRebuilding
)

func (s State) String() string {
	switch s {
	case StateDirty:
		return "dirty"
	case StateRebuilding:
		return "rebuilding"
	}
	return "clean"
}

// selectionRecord identifies a selected handle across a rebuild.
type selectionRecord struct {
	kind    Kind
	indices []int
}

// Session edits the mesh of one target node through its handles.
type Session struct {
	params Params
	log    *zap.Logger

	scene     *scene.Scene
	gizmo     *Gizmo
	registry  *Registry
	selection *Selection

	pivot       *scene.Node
	pivotRef    math.Vec3
	pivotActive bool

	target *scene.Node
	mode   scene.EditMode
	state  State

	extruded     bool
	dragVertices []core.Vertex
	dragRecords  []selectionRecord

	meshChanged event.Subscribers[*scene.Node]
}

// NewSession creates a session that places proxies and the selection
// pivot under s.Root and drives gizmo.
func NewSession(s *scene.Scene, gizmo *Gizmo, params Params) *Session {
	pivot := scene.NewNode("SelectionPivot")
	pivot.Pickable = false
	pivot.Visible = false
	s.Root.AddChild(pivot)

	return &Session{
		params:    params,
		log:       logger.Named("editor"),
		scene:     s,
		gizmo:     gizmo,
		registry:  NewRegistry(s.Root, params),
		selection: NewSelection(),
		pivot:     pivot,
		mode:      scene.ModeVertex,
	}
}

// SetLogger replaces the session logger, including the registry's.
func (s *Session) SetLogger(l *zap.Logger) {
	s.log = l
	s.registry.log = l
}

func (s *Session) Params() Params { return s.params }

// SetFaceDragExtrudes toggles extrusion on face drags.
func (s *Session) SetFaceDragExtrudes(on bool) { s.params.FaceDragExtrudes = on }

func (s *Session) Registry() *Registry { return s.registry }

func (s *Session) Selection() *Selection { return s.selection }

func (s *Session) Gizmo() *Gizmo { return s.gizmo }

// Pivot returns the synthetic node the gizmo uses for multi-selections.
func (s *Session) Pivot() *scene.Node { return s.pivot }

func (s *Session) Target() *scene.Node { return s.target }

func (s *Session) Editing() bool { return s.target != nil }

func (s *Session) State() State { return s.state }

func (s *Session) Mode() scene.EditMode { return s.mode }

// OnMeshChanged registers fn for every buffer mutation. The returned func
// unregisters it.
func (s *Session) OnMeshChanged(fn func(*scene.Node)) func() {
	return s.meshChanged.Add(fn)
}

// Begin tears down any current target and starts editing target. Indexed
// meshes are expanded to triangle soups in place.
func (s *Session) Begin(target *scene.Node) error {
	if target == nil || target.Mesh == nil || target.Mesh.DrawMode != scene.DrawTriangles {
		return ErrNoMesh
	}
	mesh := target.Mesh
	if mesh.IsIndexed() {
		soup := mesh.ToNonIndexed()
		mesh.Vertices = soup.Vertices
		mesh.Indices = nil
		mesh.MarkDirty()
		s.log.Info("expanded indexed mesh", zap.String("target", target.Name), zap.Int("vertices", len(mesh.Vertices)))
	}

	topo, err := Build(mesh.Positions(), s.params)
	if err != nil {
		return fmt.Errorf("edit %q: %w", target.Name, err)
	}

	s.End()
	s.target = target
	s.registry.Load(target, topo)
	s.registry.SetVisibilityForMode(s.mode)
	s.state = StateClean
	s.log.Info("editing started",
		zap.String("target", target.Name),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("handles", len(s.registry.All())),
	)
	return nil
}

// End destroys every handle and detaches the gizmo.
func (s *Session) End() {
	if s.target == nil {
		return
	}
	s.gizmo.Detach()
	s.selection.Clear()
	s.hidePivot()
	s.registry.Clear()
	s.target = nil
	s.state = StateClean
	s.extruded = false
	s.dragVertices = nil
	s.dragRecords = nil
}

// Rebuild rederives the topology from the current buffer, for example
// after an undo replaced it. The selection is cleared.
func (s *Session) Rebuild() {
	if s.target == nil {
		return
	}
	s.rebuild(nil)
}

// SetMode shows the handles of mode and drops selected handles that are
// no longer visible.
func (s *Session) SetMode(mode scene.EditMode) {
	s.mode = mode
	s.registry.SetVisibilityForMode(mode)
	s.selection.Prune(s.registry.IsVisible)
	if s.selection.Len() == 0 {
		s.selection.Clear()
	}
	s.updateAttachment()
}

// SelectAt applies a pick of proxy. A pick that resolves to no handle
// clears the selection unless a modifier is held.
func (s *Session) SelectAt(proxy *scene.Node, mods Modifiers) {
	h := s.registry.FindByProxy(proxy)
	if h == nil || !s.registry.IsVisible(h) {
		if !mods.Additive && !mods.Toggle {
			s.selection.Clear()
			s.updateAttachment()
		}
		return
	}
	s.selection.Apply([]*Handle{h}, mods)
	s.updateAttachment()
}

// PickAt ray-picks the visible proxies and applies the nearest hit.
func (s *Session) PickAt(ray Ray, mods Modifiers) {
	var proxy *scene.Node
	if hits := PickHandles(ray, s.registry); len(hits) > 0 {
		proxy = hits[0].Node
	}
	s.SelectAt(proxy, mods)
}

// SelectInRect selects the visible handles whose world reference projects
// inside rect, given in normalized device coordinates. It returns the
// match count; zero leaves the selection untouched.
func (s *Session) SelectInRect(rect math.Rect, camera *scene.Camera, mods Modifiers) int {
	var matches []*Handle
	for _, h := range s.registry.Visible() {
		ndc, ok := camera.Project(h.RefWorld)
		if !ok || ndc.Z < -1 || ndc.Z > 1 {
			continue
		}
		if rect.Contains(math.Vec2{X: ndc.X, Y: ndc.Y}) {
			matches = append(matches, h)
		}
	}
	if len(matches) == 0 {
		return 0
	}
	s.selection.Apply(matches, mods)
	s.updateAttachment()
	return len(matches)
}

// ClearSelection deselects everything.
func (s *Session) ClearSelection() {
	s.selection.Clear()
	s.updateAttachment()
}

// updateAttachment recolors proxies and attaches the gizmo: nothing for an
// empty selection, the proxy itself for one handle, the pivot for several.
func (s *Session) updateAttachment() {
	for _, h := range s.registry.All() {
		s.registry.SetHighlight(h, s.selection.IsSelected(h))
	}

	selected := s.selection.Handles()
	switch len(selected) {
	case 0:
		s.gizmo.Detach()
		s.hidePivot()
	case 1:
		h := selected[0]
		s.hidePivot()
		s.checkDrift(h)
		s.gizmo.Attach(h.Proxy)
	default:
		c := s.selection.Centroid()
		s.pivot.SetWorldPosition(c)
		s.pivot.Visible = true
		s.pivotActive = true
		s.pivotRef = c
		s.gizmo.Attach(s.pivot)
	}
}

func (s *Session) hidePivot() {
	s.pivot.Visible = false
	s.pivotActive = false
}

// checkDrift warns when h's proxy is not where its cached reference says.
func (s *Session) checkDrift(h *Handle) {
	if h.Proxy == nil {
		return
	}
	drift := h.Proxy.WorldPosition().Distance(h.RefWorld)
	if float64(drift) > s.params.DriftThreshold {
		s.log.Warn("handle proxy drifted from its reference",
			zap.Stringer("handle", h),
			zap.Float32("drift", drift),
		)
	}
}

// transformSet returns the handles a delta applies to: the visible
// selection, or the handle behind the gizmo target when nothing is
// selected.
func (s *Session) transformSet(targetHandle *Handle) []*Handle {
	var set []*Handle
	for _, h := range s.selection.Handles() {
		if s.registry.IsVisible(h) {
			set = append(set, h)
		}
	}
	if len(set) == 0 {
		if a := s.selection.Active(); a != nil && s.registry.IsVisible(a) {
			set = append(set, a)
		} else if targetHandle != nil {
			set = append(set, targetHandle)
		}
	}
	return set
}

// ApplyDelta moves the geometry under the gizmo target so that target ends
// up at newWorld. Unknown targets and zero deltas are ignored.
func (s *Session) ApplyDelta(target *scene.Node, newWorld math.Vec3) {
	if s.target == nil || target == nil {
		return
	}

	var ref math.Vec3
	var targetHandle *Handle
	switch {
	case target == s.pivot && s.pivotActive:
		ref = s.pivotRef
	default:
		targetHandle = s.registry.FindByProxy(target)
		if targetHandle == nil {
			s.log.Debug("gizmo target is not a handle", zap.String("node", target.Name))
			return
		}
		ref = targetHandle.RefWorld
	}

	delta := s.target.WorldToLocal(newWorld).Sub(s.target.WorldToLocal(ref))
	if delta.IsZero() {
		return
	}

	set := s.transformSet(targetHandle)
	if len(set) == 0 {
		return
	}

	if s.params.FaceDragExtrudes {
		s.extrude(set)
	}

	index := s.registry.Index()
	var raw []int
	for _, h := range set {
		raw = append(raw, h.Indices...)
	}
	affected := index.Expand(raw)

	mesh := s.target.Mesh
	for _, i := range affected {
		mesh.Vertices[i].Position = mesh.Vertices[i].Position.Add(delta)
	}
	mesh.ComputeVertexNormals()
	for _, i := range affected {
		index.Patch(i, mesh.Vertices[i].Position)
	}

	s.registry.Refresh()

	if targetHandle == nil {
		s.pivotRef = newWorld
		s.pivot.SetWorldPosition(newWorld)
	}
	if s.state == StateClean {
		s.state = StateDirty
	}
	s.meshChanged.Emit(s.target)
}

// Translate applies one complete drag of the gizmo target by a world
// delta: begin, move, commit.
func (s *Session) Translate(delta math.Vec3) bool {
	target := s.gizmo.Target()
	if s.target == nil || target == nil {
		return false
	}
	ref := target.WorldPosition()
	if h := s.registry.FindByProxy(target); h != nil {
		ref = h.RefWorld
	} else if target == s.pivot && s.pivotActive {
		ref = s.pivotRef
	}
	s.BeginDrag()
	s.ApplyDelta(target, ref.Add(delta))
	s.Commit()
	return true
}

// BeginDrag records the buffer and selection so the drag can be cancelled.
func (s *Session) BeginDrag() {
	if s.target == nil {
		return
	}
	s.dragVertices = append([]core.Vertex(nil), s.target.Mesh.Vertices...)
	s.dragRecords = s.selectionRecords(false)
	if len(s.dragRecords) == 0 {
		if h := s.registry.FindByProxy(s.gizmo.Target()); h != nil {
			s.dragRecords = []selectionRecord{{kind: h.Kind, indices: append([]int(nil), h.Indices...)}}
		}
	}
}

// Commit ends a drag. After an extrusion the topology is rebuilt and the
// extruded selection is found again by index set; otherwise handles are
// refreshed in place.
func (s *Session) Commit() {
	if s.target == nil {
		return
	}
	s.dragVertices = nil
	s.dragRecords = nil
	if s.extruded {
		s.rebuild(s.selectionRecords(true))
		return
	}
	s.registry.Refresh()
	s.state = StateClean
	s.updateAttachment()
}

// CancelDrag restores the buffer recorded by BeginDrag, discarding any
// extrusion, and reselects the pre-drag handles. It reports whether a drag
// was in progress.
func (s *Session) CancelDrag() bool {
	if s.target == nil || s.dragVertices == nil {
		return false
	}
	mesh := s.target.Mesh
	mesh.Vertices = s.dragVertices
	mesh.MarkDirty()
	records := s.dragRecords
	s.dragVertices = nil
	s.dragRecords = nil
	s.extruded = false

	s.rebuild(records)
	s.log.Info("drag cancelled", zap.String("target", s.target.Name))
	s.meshChanged.Emit(s.target)
	return true
}

// selectionRecords captures the selected index sets, using the extruded
// sets when extruded is true.
func (s *Session) selectionRecords(extruded bool) []selectionRecord {
	var out []selectionRecord
	for _, h := range s.selection.Handles() {
		indices := h.Indices
		if extruded && h.Extrusion != nil {
			indices = h.Extrusion.After
		}
		out = append(out, selectionRecord{kind: h.Kind, indices: append([]int(nil), indices...)})
	}
	return out
}

func (s *Session) rebuild(records []selectionRecord) {
	s.state = StateRebuilding
	topo, err := Build(s.target.Mesh.Positions(), s.params)
	if err != nil {
		s.log.Error("topology rebuild failed", zap.String("target", s.target.Name), zap.Error(err))
		s.End()
		return
	}

	s.gizmo.Detach()
	s.selection.Clear()
	s.registry.Load(s.target, topo)
	s.registry.SetVisibilityForMode(s.mode)

	var matched []*Handle
	for _, rec := range records {
		for _, h := range s.registry.All() {
			if h.Kind == rec.kind && h.containsAll(rec.indices) {
				matched = append(matched, h)
				break
			}
		}
	}
	s.selection.Apply(matched, Modifiers{})
	s.selection.Prune(s.registry.IsVisible)

	s.extruded = false
	s.state = StateClean
	s.updateAttachment()
	s.log.Info("topology rebuilt",
		zap.String("target", s.target.Name),
		zap.Int("vertices", len(s.target.Mesh.Vertices)),
		zap.Int("handles", len(s.registry.All())),
		zap.Int("reselected", s.selection.Len()),
	)
}
