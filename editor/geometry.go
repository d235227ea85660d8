package editor

import (
	stdmath "math"

	"mesh-editor/math"
)

// PositionKey is the quantized identity of a point. Two points share a key
// iff they round to the same lattice cell at the session precision.
type PositionKey struct {
	X, Y, Z int64
}

// KeyOf quantizes p at precision. The division runs in float64 so keys are
// stable for coordinates well beyond unit scale.
func KeyOf(p math.Vec3, precision float64) PositionKey {
	return PositionKey{
		X: quantize(p.X, precision),
		Y: quantize(p.Y, precision),
		Z: quantize(p.Z, precision),
	}
}

func quantize(v float32, precision float64) int64 {
	q := stdmath.Round(float64(v) / precision)
	if q == 0 {
		// Fold -0 into 0.
		return 0
	}
	return int64(q)
}

func (k PositionKey) less(o PositionKey) bool {
	if k.X != o.X {
		return k.X < o.X
	}
	if k.Y != o.Y {
		return k.Y < o.Y
	}
	return k.Z < o.Z
}

// edgeKey is an unordered pair of endpoint keys.
type edgeKey struct {
	a, b PositionKey
}

func makeEdgeKey(a, b PositionKey) edgeKey {
	if b.less(a) {
		a, b = b, a
	}
	return edgeKey{a: a, b: b}
}

// planeKey identifies a plane by its canonical normal and offset.
type planeKey struct {
	nx, ny, nz, d int64
}

func makePlaneKey(normal, point math.Vec3, precision float64) planeKey {
	n := CanonicalNormal(normal)
	return planeKey{
		nx: quantize(n.X, precision),
		ny: quantize(n.Y, precision),
		nz: quantize(n.Z, precision),
		d:  quantize(n.Dot(point), precision),
	}
}

// TriangleNormal returns the unit normal of the counter-clockwise triangle
// abc, or +Z when it is degenerate.
func TriangleNormal(a, b, c math.Vec3) math.Vec3 {
	return b.Sub(a).Cross(c.Sub(a)).NormalizeOr(math.Vec3Front)
}

// TriangleCentroid returns the mean of the three corners.
func TriangleCentroid(a, b, c math.Vec3) math.Vec3 {
	return a.Add(b).Add(c).Div(3)
}

// EdgeMidpoint returns the midpoint of segment ab.
func EdgeMidpoint(a, b math.Vec3) math.Vec3 {
	return a.Add(b).Mul(0.5)
}

// Centroid returns the mean of points, or the origin for none.
func Centroid(points []math.Vec3) math.Vec3 {
	if len(points) == 0 {
		return math.Vec3Zero
	}
	var sum math.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Div(float32(len(points)))
}

// CanonicalNormal flips n so its dominant component is positive. A plane
// seen from either side maps to the same normal.
func CanonicalNormal(n math.Vec3) math.Vec3 {
	if n.Component(n.DominantAxis()) < 0 {
		return n.Negate()
	}
	return n
}

// triangleCorners returns the three positions of triangle t.
func triangleCorners(positions []math.Vec3, t int) (a, b, c math.Vec3) {
	return positions[t*3], positions[t*3+1], positions[t*3+2]
}

// faceNormal returns the unit sum of the normals of the triangles that
// indices lists in consecutive triples.
func faceNormal(positions []math.Vec3, indices []int) math.Vec3 {
	var sum math.Vec3
	for i := 0; i+2 < len(indices); i += 3 {
		sum = sum.Add(TriangleNormal(positions[indices[i]], positions[indices[i+1]], positions[indices[i+2]]))
	}
	return sum.NormalizeOr(math.Vec3Front)
}

// uniqueCorners returns the distinct positions among indices, in first-seen
// order, deduplicated by key.
func uniqueCorners(positions []math.Vec3, indices []int, precision float64) []math.Vec3 {
	seen := make(map[PositionKey]struct{}, len(indices))
	var out []math.Vec3
	for _, i := range indices {
		k := KeyOf(positions[i], precision)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, positions[i])
	}
	return out
}
