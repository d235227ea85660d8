package editor

import (
	"errors"
	"fmt"
	"sort"

	"mesh-editor/math"
)

// ErrMalformedBuffer is returned when a position buffer does not hold whole
// triangles.
var ErrMalformedBuffer = errors.New("vertex count is not a multiple of 3")

// Topology is the handle set derived from one triangle soup.
type Topology struct {
	Vertices []*Handle
	Edges    []*Handle
	Faces    []*Handle
	Index    *KeyIndex

	Triangles int
	// SuppressedEdges counts coplanar diagonals that got no edge handle.
	SuppressedEdges int
}

// All returns every handle: vertices, then edges, then faces.
func (t *Topology) All() []*Handle {
	out := make([]*Handle, 0, len(t.Vertices)+len(t.Edges)+len(t.Faces))
	out = append(out, t.Vertices...)
	out = append(out, t.Edges...)
	return append(out, t.Faces...)
}

type edgeEntry struct {
	ends        [2]int // raw representatives in key order
	triangles   []int
	occurrences int
}

// Build derives vertex, edge and face handles from a non-indexed position
// buffer. Handle geometry is computed in local space with an identity
// world matrix; the registry re-derives world space on refresh.
func Build(positions []math.Vec3, params Params) (*Topology, error) {
	if len(positions)%3 != 0 {
		return nil, fmt.Errorf("build topology from %d vertices: %w", len(positions), ErrMalformedBuffer)
	}

	index := NewKeyIndex(positions, params.PositionPrecision)
	tris := len(positions) / 3
	topo := &Topology{Index: index, Triangles: tris}
	nextID := 0

	for _, members := range index.attachedBuckets() {
		topo.Vertices = append(topo.Vertices, &Handle{ID: nextID, Kind: KindVertex, Indices: members})
		nextID++
	}

	planes := make([]planeKey, tris)
	for t := 0; t < tris; t++ {
		a, b, c := triangleCorners(positions, t)
		planes[t] = makePlaneKey(TriangleNormal(a, b, c), TriangleCentroid(a, b, c), params.PlanePrecision)
	}

	entries := make(map[edgeKey]*edgeEntry)
	var order []edgeKey
	for t := 0; t < tris; t++ {
		for e := 0; e < 3; e++ {
			i, j := t*3+e, t*3+(e+1)%3
			ka, kb := index.Key(i), index.Key(j)
			if ka == kb {
				continue
			}
			ek := makeEdgeKey(ka, kb)
			entry, ok := entries[ek]
			if !ok {
				if ek.a != ka {
					i, j = j, i
				}
				entry = &edgeEntry{ends: [2]int{i, j}}
				entries[ek] = entry
				order = append(order, ek)
			}
			entry.occurrences++
			entry.triangles = append(entry.triangles, t)
		}
	}

	// Coplanar triangles sharing an edge join one face group.
	groups := newUnionFind(tris)
	for _, ek := range order {
		ts := entries[ek].triangles
		for x := 0; x < len(ts); x++ {
			for y := x + 1; y < len(ts); y++ {
				if planes[ts[x]] == planes[ts[y]] {
					groups.union(ts[x], ts[y])
				}
			}
		}
	}

	groupOf := make([]int, tris)
	rootGroup := make(map[int]int)
	var faceTris [][]int
	for t := 0; t < tris; t++ {
		root := groups.find(t)
		g, ok := rootGroup[root]
		if !ok {
			g = len(faceTris)
			rootGroup[root] = g
			faceTris = append(faceTris, nil)
		}
		groupOf[t] = g
		faceTris[g] = append(faceTris[g], t)
	}

	for _, ek := range order {
		entry := entries[ek]
		bordering := make(map[int]struct{}, 2)
		for _, t := range entry.triangles {
			bordering[groupOf[t]] = struct{}{}
		}
		if entry.occurrences == 2 && len(bordering) == 1 {
			topo.SuppressedEdges++
			continue
		}
		indices := append(index.Lookup(ek.a), index.Lookup(ek.b)...)
		sort.Ints(indices)
		topo.Edges = append(topo.Edges, &Handle{
			ID:      nextID,
			Kind:    KindEdge,
			Indices: indices,
			ends:    entry.ends,
		})
		nextID++
	}

	for _, members := range faceTris {
		indices := make([]int, 0, len(members)*3)
		for _, t := range members {
			indices = append(indices, t*3, t*3+1, t*3+2)
		}
		topo.Faces = append(topo.Faces, &Handle{ID: nextID, Kind: KindFace, Indices: indices})
		nextID++
	}

	identity := math.Mat4Identity()
	for _, h := range topo.All() {
		h.update(positions, identity, params.PositionPrecision)
	}
	return topo, nil
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		uf.parent[rb] = ra
	}
}
