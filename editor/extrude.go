package editor

import (
	"sort"

	"go.uber.org/zap"
)

// rimEdge is a boundary edge of the extruded set in triangle winding order.
type rimEdge struct {
	a, b int
}

// extrude duplicates every face handle in set that has not been extruded
// during this drag. Each face gets a cap copy of its triangles, which the
// handle takes over, and every boundary edge of the extruded set gets a
// two-triangle skirt joining the original rim to the cap rim. Cap and top
// rim copies of one corner share a detached key bucket; base rim copies
// stay with their source corner.
func (s *Session) extrude(set []*Handle) {
	var faces []*Handle
	for _, h := range set {
		if h.Kind == KindFace && h.Extrusion == nil {
			faces = append(faces, h)
		}
	}
	if len(faces) == 0 {
		return
	}

	mesh := s.target.Mesh
	index := s.registry.Index()
	start := len(mesh.Vertices)

	counts := make(map[edgeKey]int)
	first := make(map[edgeKey]rimEdge)
	var order []edgeKey
	for _, h := range faces {
		for t := 0; t+2 < len(h.Indices); t += 3 {
			for e := 0; e < 3; e++ {
				a, b := h.Indices[t+e], h.Indices[t+(e+1)%3]
				ka, kb := index.Key(a), index.Key(b)
				if ka == kb {
					continue
				}
				ek := makeEdgeKey(ka, kb)
				if counts[ek] == 0 {
					first[ek] = rimEdge{a: a, b: b}
					order = append(order, ek)
				}
				counts[ek]++
			}
		}
	}

	groups := make(map[PositionKey]int)
	groupFor := func(i int) int {
		k := index.Key(i)
		g, ok := groups[k]
		if !ok {
			g = index.NewDetachedGroup(mesh.Vertices[i].Position)
			groups[k] = g
		}
		return g
	}
	// lifted copies move with the cap; base copies stay on the original rim.
	lifted := func(i int) {
		mesh.Vertices = append(mesh.Vertices, mesh.Vertices[i])
		index.AttachToGroup(len(mesh.Vertices)-1, groupFor(i))
	}
	base := func(i int) {
		mesh.Vertices = append(mesh.Vertices, mesh.Vertices[i])
		index.Attach(len(mesh.Vertices)-1, mesh.Vertices[i].Position)
	}

	for _, h := range faces {
		before := h.Indices
		capIndices := make([]int, len(before))
		for j, i := range before {
			lifted(i)
			capIndices[j] = len(mesh.Vertices) - 1
		}
		h.Indices = capIndices
		h.Extrusion = &Extrusion{Before: sortedCopy(before), After: sortedCopy(capIndices)}
	}

	skirts := 0
	for _, ek := range order {
		if counts[ek] != 1 {
			continue
		}
		r := first[ek]
		// (A0, B0, B1) and (A0, B1, A1)
		base(r.a)
		base(r.b)
		lifted(r.b)
		base(r.a)
		lifted(r.b)
		lifted(r.a)
		skirts++
	}

	s.extruded = true
	s.log.Info("faces extruded",
		zap.Int("faces", len(faces)),
		zap.Int("skirts", skirts),
		zap.Int("added", len(mesh.Vertices)-start),
	)
}

func sortedCopy(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	return out
}
