package editor

import (
	stdmath "math"

	"mesh-editor/internal/event"
	"mesh-editor/math"
	"mesh-editor/scene"
)

// Axis is a translate gizmo axis.
type Axis int

const (
	AxisNone Axis = iota - 1
	AxisX
	AxisY
	AxisZ
)

var gizmoAxes = [3]math.Vec3{
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1},
}

// Direction returns the world unit vector of a.
func (a Axis) Direction() math.Vec3 {
	if a < AxisX || a > AxisZ {
		return math.Vec3Zero
	}
	return gizmoAxes[a]
}

// Gizmo is a headless translate manipulator. It moves the node it is
// attached to and reports drag state and live changes to its listeners.
type Gizmo struct {
	Length      float32
	HitDistance float32

	target   *scene.Node
	dragging bool

	draggingSubs event.Subscribers[bool]
	changeSubs   event.Subscribers[*scene.Node]

	// axis drag state
	axis            Axis
	dragInitWorld   math.Vec3
	dragPlaneNormal math.Vec3
	dragStart       float32
}

func NewGizmo() *Gizmo {
	return &Gizmo{Length: 1, HitDistance: 0.15, axis: AxisNone}
}

// Attach makes node the manipulated target.
func (g *Gizmo) Attach(node *scene.Node) {
	g.target = node
}

// Detach drops the target. An active drag is ended first.
func (g *Gizmo) Detach() {
	if g.dragging {
		g.EndDrag()
	}
	g.target = nil
}

func (g *Gizmo) Target() *scene.Node { return g.target }

func (g *Gizmo) Attached() bool { return g.target != nil }

func (g *Gizmo) Dragging() bool { return g.dragging }

// ActiveAxis returns the axis being dragged, or AxisNone.
func (g *Gizmo) ActiveAxis() Axis { return g.axis }

// OnDraggingChanged registers fn for drag start and end. The returned func
// unregisters it.
func (g *Gizmo) OnDraggingChanged(fn func(dragging bool)) func() {
	return g.draggingSubs.Add(fn)
}

// OnChange registers fn for live moves of the target. The returned func
// unregisters it.
func (g *Gizmo) OnChange(fn func(target *scene.Node)) func() {
	return g.changeSubs.Add(fn)
}

// ListenerCount returns the number of registered listeners.
func (g *Gizmo) ListenerCount() int {
	return g.draggingSubs.Len() + g.changeSubs.Len()
}

// BeginDrag starts a drag on the attached target.
func (g *Gizmo) BeginDrag() bool {
	if g.target == nil || g.dragging {
		return false
	}
	g.dragging = true
	g.draggingSubs.Emit(true)
	return true
}

// EndDrag finishes the current drag.
func (g *Gizmo) EndDrag() {
	if !g.dragging {
		return
	}
	g.dragging = false
	g.axis = AxisNone
	g.draggingSubs.Emit(false)
}

// SetTargetWorldPosition moves the target to p and notifies listeners.
func (g *Gizmo) SetTargetWorldPosition(p math.Vec3) {
	if g.target == nil {
		return
	}
	g.target.SetWorldPosition(p)
	g.changeSubs.Emit(g.target)
}

// PickAxis returns the axis closest to ray within HitDistance.
func (g *Gizmo) PickAxis(ray Ray) Axis {
	if g.target == nil {
		return AxisNone
	}

	center := g.target.WorldPosition()
	bestDist := float32(stdmath.MaxFloat32)
	best := AxisNone
	for i, axis := range gizmoAxes {
		_, t2, dist := closestPointBetweenRays(ray.Origin, ray.Direction, center, axis)
		if t2 > 0 && t2 < g.Length && dist < g.HitDistance && dist < bestDist {
			bestDist = dist
			best = Axis(i)
		}
	}
	return best
}

// StartAxisDrag begins a drag constrained to axis. The drag plane contains
// the axis and faces the viewer as much as possible.
func (g *Gizmo) StartAxisDrag(ray Ray, axis Axis) bool {
	if g.target == nil || axis == AxisNone {
		return false
	}
	dir := axis.Direction()
	g.dragInitWorld = g.target.WorldPosition()

	viewDir := g.dragInitWorld.Sub(ray.Origin).NormalizeOr(ray.Direction)
	g.dragPlaneNormal = dir.Cross(viewDir.Cross(dir)).Normalize()
	if g.dragPlaneNormal.IsZero() {
		return false
	}

	pt, ok := rayPlaneIntersect(ray, g.dragInitWorld, g.dragPlaneNormal)
	if !ok {
		return false
	}
	g.dragStart = pt.Sub(g.dragInitWorld).Dot(dir)
	if !g.BeginDrag() {
		return false
	}
	g.axis = axis
	return true
}

// UpdateAxisDrag moves the target along the active axis to follow ray.
func (g *Gizmo) UpdateAxisDrag(ray Ray) bool {
	if !g.dragging || g.axis == AxisNone {
		return false
	}
	pt, ok := rayPlaneIntersect(ray, g.dragInitWorld, g.dragPlaneNormal)
	if !ok {
		return false
	}
	dir := g.axis.Direction()
	t := pt.Sub(g.dragInitWorld).Dot(dir) - g.dragStart
	g.SetTargetWorldPosition(g.dragInitWorld.Add(dir.Mul(t)))
	return true
}

// closestPointBetweenRays finds the closest approach between two rays.
// Returns (t1, t2, distance) where t1/t2 are parameters along each ray.
func closestPointBetweenRays(a, u, b, v math.Vec3) (t1, t2, dist float32) {
	w := a.Sub(b)
	uu := u.Dot(u)
	uv := u.Dot(v)
	vv := v.Dot(v)
	uw := u.Dot(w)
	vw := v.Dot(w)

	denom := uu*vv - uv*uv
	if denom < 1e-6 {
		return 0, 0, stdmath.MaxFloat32
	}

	t1 = (uv*vw - vv*uw) / denom
	t2 = (uu*vw - uv*uw) / denom

	p1 := a.Add(u.Mul(t1))
	p2 := b.Add(v.Mul(t2))
	dist = p1.Distance(p2)
	return
}

// rayPlaneIntersect returns where a ray hits a plane (defined by point + normal).
func rayPlaneIntersect(ray Ray, planePoint, planeNormal math.Vec3) (math.Vec3, bool) {
	denom := ray.Direction.Dot(planeNormal)
	if stdmath.Abs(float64(denom)) < 1e-6 {
		return math.Vec3{}, false
	}
	t := planePoint.Sub(ray.Origin).Dot(planeNormal) / denom
	if t < 0 {
		return math.Vec3{}, false
	}
	return ray.At(t), true
}
