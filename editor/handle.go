package editor

import (
	"fmt"

	"mesh-editor/math"
	"mesh-editor/scene"
)

// Kind is the topological element a handle exposes.
type Kind int

const (
	KindVertex Kind = iota
	KindEdge
	KindFace
)

func (k Kind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindEdge:
		return "edge"
	case KindFace:
		return "face"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindForMode maps an edit mode to the handle kind it shows. ok is false in
// object mode.
func KindForMode(mode scene.EditMode) (kind Kind, ok bool) {
	switch mode {
	case scene.ModeVertex:
		return KindVertex, true
	case scene.ModeEdge:
		return KindEdge, true
	case scene.ModeFace:
		return KindFace, true
	}
	return 0, false
}

// Extrusion records the index sets of a face before and after it was
// extruded during the current drag.
type Extrusion struct {
	Before []int
	After  []int
}

// Handle is one editable vertex, edge or face group of the target mesh.
type Handle struct {
	ID   int
	Kind Kind

	// Indices are the raw buffer indices the handle moves. Face handles
	// list whole triangles in consecutive triples.
	Indices []int

	RefLocal math.Vec3
	RefWorld math.Vec3

	// Face only.
	LocalNormal math.Vec3
	Normal      math.Vec3
	Corners     []math.Vec3 // unique corners in local space

	// Edge only: world positions of the two endpoints.
	Ends [2]math.Vec3

	// Proxy is the marker node picked and moved by the user. It is owned by
	// the handle and removed with it.
	Proxy *scene.Node

	Extrusion *Extrusion

	ends      [2]int // edge endpoint representatives
	footprint int    // corner count of the face proxy mesh
}

func (h *Handle) String() string {
	return fmt.Sprintf("%s#%d", h.Kind, h.ID)
}

// update recomputes the cached geometry from positions and the target's
// world matrix.
func (h *Handle) update(positions []math.Vec3, world math.Mat4, precision float64) {
	switch h.Kind {
	case KindVertex:
		h.RefLocal = positions[h.Indices[0]]
	case KindEdge:
		a, b := positions[h.ends[0]], positions[h.ends[1]]
		h.RefLocal = EdgeMidpoint(a, b)
		h.Ends = [2]math.Vec3{world.MulVec3(a), world.MulVec3(b)}
	case KindFace:
		h.Corners = uniqueCorners(positions, h.Indices, precision)
		h.RefLocal = Centroid(h.Corners)
		h.LocalNormal = faceNormal(positions, h.Indices)
		h.Normal = world.MulNormal(h.LocalNormal).NormalizeOr(math.Vec3Front)
	}
	h.RefWorld = world.MulVec3(h.RefLocal)
}

// containsAll reports whether h.Indices is a superset of indices.
func (h *Handle) containsAll(indices []int) bool {
	if len(indices) == 0 {
		return false
	}
	set := make(map[int]struct{}, len(h.Indices))
	for _, i := range h.Indices {
		set[i] = struct{}{}
	}
	for _, i := range indices {
		if _, ok := set[i]; !ok {
			return false
		}
	}
	return true
}
