package editor

import (
	stdmath "math"
	"sort"

	"go.uber.org/zap"

	"mesh-editor/core"
	"mesh-editor/internal/logger"
	"mesh-editor/math"
	"mesh-editor/scene"
)

var (
	vertexIdleColor = core.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}
	edgeIdleColor   = core.Color{R: 0.2, G: 0.45, B: 0.9, A: 1}
	faceIdleColor   = core.Color{R: 0.3, G: 0.6, B: 1, A: 0.35}
	selectedColor   = core.ColorOrange
)

// footprintLift raises face footprints off their face to avoid z-fighting.
const footprintLift = 1e-3

// Registry owns the live proxies of one editing target.
//
// Proxies live in world space under a group node attached to the scene
// root, which must keep an identity transform.
type Registry struct {
	params Params
	root   *scene.Node
	log    *zap.Logger

	target  *scene.Node
	topo    *Topology
	group   *scene.Node
	handles []*Handle
	byProxy map[*scene.Node]*Handle

	mode scene.EditMode

	vertexMesh *scene.Mesh
	edgeMesh   *scene.Mesh
}

func NewRegistry(root *scene.Node, params Params) *Registry {
	s := params.VertexHandleSize
	return &Registry{
		params:     params,
		root:       root,
		log:        logger.Named("registry"),
		byProxy:    make(map[*scene.Node]*Handle),
		vertexMesh: scene.CreateBox(s, s, s),
		edgeMesh:   scene.CreateBox(1, 1, 1),
	}
}

// Load replaces the current handles with topo's, creating one proxy per
// handle, and refreshes them against target.
func (r *Registry) Load(target *scene.Node, topo *Topology) {
	r.Clear()
	r.target = target
	r.topo = topo
	r.group = scene.NewNode("EditHandles")
	r.group.Pickable = false
	r.root.AddChild(r.group)

	r.handles = topo.All()
	for _, h := range r.handles {
		h.Proxy = r.newProxy(h)
		r.group.AddChild(h.Proxy)
		r.byProxy[h.Proxy] = h
	}
	r.Refresh()
	r.SetVisibilityForMode(r.mode)

	r.log.Debug("handles loaded",
		zap.String("target", target.Name),
		zap.Int("vertices", len(topo.Vertices)),
		zap.Int("edges", len(topo.Edges)),
		zap.Int("faces", len(topo.Faces)),
		zap.Int("suppressed", topo.SuppressedEdges),
	)
}

// Clear destroys every proxy and forgets the target.
func (r *Registry) Clear() {
	if r.group != nil {
		r.group.Detach()
	}
	for _, h := range r.handles {
		h.Proxy = nil
	}
	r.group = nil
	r.target = nil
	r.topo = nil
	r.handles = nil
	r.byProxy = make(map[*scene.Node]*Handle)
}

// Loaded reports whether the registry has a target.
func (r *Registry) Loaded() bool { return r.target != nil }

func (r *Registry) Target() *scene.Node { return r.target }

func (r *Registry) Topology() *Topology { return r.topo }

// Index returns the position-key index of the loaded topology.
func (r *Registry) Index() *KeyIndex {
	if r.topo == nil {
		return nil
	}
	return r.topo.Index
}

// All returns every live handle.
func (r *Registry) All() []*Handle { return r.handles }

// Group returns the node that parents all proxies.
func (r *Registry) Group() *scene.Node { return r.group }

// SetVisibilityForMode shows exactly the handles of mode's kind. Object
// mode hides everything.
func (r *Registry) SetVisibilityForMode(mode scene.EditMode) {
	r.mode = mode
	kind, ok := KindForMode(mode)
	for _, h := range r.handles {
		h.Proxy.Visible = ok && h.Kind == kind
	}
}

// IsVisible reports whether h is live and shown in the current mode.
func (r *Registry) IsVisible(h *Handle) bool {
	if h == nil || h.Proxy == nil {
		return false
	}
	if _, ok := r.byProxy[h.Proxy]; !ok {
		return false
	}
	return h.Proxy.Visible
}

// Visible returns the handles shown in the current mode.
func (r *Registry) Visible() []*Handle {
	var out []*Handle
	for _, h := range r.handles {
		if h.Proxy.Visible {
			out = append(out, h)
		}
	}
	return out
}

// FindByProxy resolves a picked node to its handle.
func (r *Registry) FindByProxy(node *scene.Node) *Handle {
	if node == nil {
		return nil
	}
	return r.byProxy[node]
}

// Refresh recomputes every handle from the target's current buffer and
// world matrix and moves the proxies to match. Face footprints are rebuilt
// only when their corner count changed.
func (r *Registry) Refresh() {
	if r.target == nil || r.target.Mesh == nil {
		return
	}
	positions := r.target.Mesh.Positions()
	world := r.target.GetWorldMatrix()
	for _, h := range r.handles {
		if !indicesInRange(h, len(positions)) {
			r.log.Warn("handle indices out of range", zap.Stringer("handle", h), zap.Int("vertices", len(positions)))
			continue
		}
		h.update(positions, world, r.params.PositionPrecision)
		r.place(h, world)
	}
}

// SetHighlight colors h's proxy for its selection state.
func (r *Registry) SetHighlight(h *Handle, selected bool) {
	if h == nil || h.Proxy == nil || h.Proxy.Material == nil {
		return
	}
	if selected {
		h.Proxy.Material.Albedo = selectedColor
		return
	}
	h.Proxy.Material.Albedo = idleColor(h.Kind)
}

func idleColor(kind Kind) core.Color {
	switch kind {
	case KindEdge:
		return edgeIdleColor
	case KindFace:
		return faceIdleColor
	}
	return vertexIdleColor
}

func (r *Registry) newProxy(h *Handle) *scene.Node {
	var mesh *scene.Mesh
	switch h.Kind {
	case KindVertex:
		mesh = r.vertexMesh
	case KindEdge:
		mesh = r.edgeMesh
	case KindFace:
		mesh = scene.NewMesh("FaceFootprint")
	}
	node := scene.NewMeshNode(h.String(), mesh)
	node.Material = scene.NewUnlitMaterial(h.Kind.String()+"Handle", idleColor(h.Kind))
	return node
}

// place moves h's proxy onto its world reference.
func (r *Registry) place(h *Handle, world math.Mat4) {
	p := h.Proxy
	p.SetWorldPosition(h.RefWorld)
	switch h.Kind {
	case KindEdge:
		dir := h.Ends[1].Sub(h.Ends[0])
		length := dir.Length()
		t := r.params.EdgeHandleThickness
		p.Transform.Scale = math.Vec3{X: t, Y: t, Z: length}
		if length > 0 {
			p.Transform.Rotation = math.QuaternionBetween(math.Vec3Front, dir)
		}
		p.MarkWorldMatrixDirty()
	case KindFace:
		corners := make([]math.Vec3, len(h.Corners))
		for i, c := range h.Corners {
			corners[i] = world.MulVec3(c)
		}
		verts := footprintVertices(corners, h.RefWorld, h.Normal, r.params.FaceInset)
		if len(corners) == h.footprint && len(p.Mesh.Vertices) == len(verts) {
			copy(p.Mesh.Vertices, verts)
			p.Mesh.MarkDirty()
		} else {
			mesh := scene.CreateMeshFromData("FaceFootprint", verts, nil)
			mesh.Version = p.Mesh.Version + 1
			p.Mesh = mesh
			h.footprint = len(corners)
		}
	}
}

// footprintVertices fans the corners, sorted by angle around normal, into
// triangles relative to center and shrunk toward it by inset.
func footprintVertices(corners []math.Vec3, center, normal math.Vec3, inset float32) []core.Vertex {
	if len(corners) < 3 {
		return nil
	}
	u := normal.Cross(math.Vec3Up)
	if u.LengthSqr() < 1e-6 {
		u = normal.Cross(math.Vec3Right)
	}
	u = u.Normalize()
	v := normal.Cross(u)

	type corner struct {
		p     math.Vec3
		angle float64
	}
	sorted := make([]corner, len(corners))
	for i, c := range corners {
		d := c.Sub(center)
		sorted[i] = corner{
			p:     d.Mul(inset).Add(normal.Mul(footprintLift)),
			angle: stdmath.Atan2(float64(d.Dot(v)), float64(d.Dot(u))),
		}
	}
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].angle < sorted[b].angle })

	verts := make([]core.Vertex, 0, (len(sorted)-2)*3)
	for i := 1; i+1 < len(sorted); i++ {
		for _, p := range []math.Vec3{sorted[0].p, sorted[i].p, sorted[i+1].p} {
			verts = append(verts, core.Vertex{Position: p, Normal: normal})
		}
	}
	return verts
}

func indicesInRange(h *Handle, n int) bool {
	for _, i := range h.Indices {
		if i < 0 || i >= n {
			return false
		}
	}
	if h.Kind == KindEdge && (h.ends[0] >= n || h.ends[1] >= n) {
		return false
	}
	return len(h.Indices) > 0
}
