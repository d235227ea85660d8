package scene

import (
	stdmath "math"

	"mesh-editor/core"
	"mesh-editor/math"
)

// All primitives here are built as non-indexed triangle soups with flat
// normals and counter-clockwise outward winding, which is the layout the
// mesh editor works on.

// PrimitiveKind names a primitive that Manager.CreatePrimitive can build.
type PrimitiveKind string

const (
	PrimitiveBox      PrimitiveKind = "box"
	PrimitiveSphere   PrimitiveKind = "sphere"
	PrimitivePlane    PrimitiveKind = "plane"
	PrimitiveQuad     PrimitiveKind = "quad"
	PrimitiveCylinder PrimitiveKind = "cylinder"
	PrimitiveTriangle PrimitiveKind = "triangle"
)

// CreatePrimitiveMesh builds the named primitive with default dimensions.
// ok is false for an unknown kind.
func CreatePrimitiveMesh(kind PrimitiveKind) (mesh *Mesh, ok bool) {
	switch kind {
	case PrimitiveBox:
		return CreateBox(1, 1, 1), true
	case PrimitiveSphere:
		return CreateSphere(0.5, 16, 12), true
	case PrimitivePlane:
		return CreatePlane(2, 2, 1), true
	case PrimitiveQuad:
		return CreateQuad(), true
	case PrimitiveCylinder:
		return CreateCylinder(0.5, 1, 16), true
	case PrimitiveTriangle:
		return CreateTriangle(), true
	}
	return nil, false
}

// appendTriangle appends one flat-shaded triangle to vertices.
func appendTriangle(vertices []core.Vertex, p0, p1, p2 math.Vec3, uv0, uv1, uv2 math.Vec2) []core.Vertex {
	n := p1.Sub(p0).Cross(p2.Sub(p0)).NormalizeOr(math.Vec3Front)
	return append(vertices,
		core.Vertex{Position: p0, Normal: n, UV: uv0},
		core.Vertex{Position: p1, Normal: n, UV: uv1},
		core.Vertex{Position: p2, Normal: n, UV: uv2},
	)
}

// appendQuad appends the quad centered at c spanned by the half-axes u and v
// as two triangles. u x v points outward.
func appendQuad(vertices []core.Vertex, c, u, v math.Vec3) []core.Vertex {
	p0 := c.Sub(u).Sub(v)
	p1 := c.Add(u).Sub(v)
	p2 := c.Add(u).Add(v)
	p3 := c.Sub(u).Add(v)
	uv0, uv1, uv2, uv3 := math.Vec2{X: 0, Y: 0}, math.Vec2{X: 1, Y: 0}, math.Vec2{X: 1, Y: 1}, math.Vec2{X: 0, Y: 1}
	vertices = appendTriangle(vertices, p0, p1, p2, uv0, uv1, uv2)
	return appendTriangle(vertices, p0, p2, p3, uv0, uv2, uv3)
}

// CreateBox generates a box centered on the origin: 6 quads, 12 triangles,
// 36 vertices.
func CreateBox(width, height, depth float32) *Mesh {
	hx, hy, hz := width/2, height/2, depth/2
	faces := []struct{ c, u, v math.Vec3 }{
		{math.Vec3{X: hx}, math.Vec3{Z: -hz}, math.Vec3{Y: hy}},  // +X
		{math.Vec3{X: -hx}, math.Vec3{Z: hz}, math.Vec3{Y: hy}},  // -X
		{math.Vec3{Y: hy}, math.Vec3{X: hx}, math.Vec3{Z: -hz}},  // +Y
		{math.Vec3{Y: -hy}, math.Vec3{X: hx}, math.Vec3{Z: hz}},  // -Y
		{math.Vec3{Z: hz}, math.Vec3{X: hx}, math.Vec3{Y: hy}},   // +Z
		{math.Vec3{Z: -hz}, math.Vec3{X: -hx}, math.Vec3{Y: hy}}, // -Z
	}
	vertices := make([]core.Vertex, 0, 36)
	for _, f := range faces {
		vertices = appendQuad(vertices, f.c, f.u, f.v)
	}
	return CreateMeshFromData("Box", vertices, nil)
}

// CreateQuad generates a unit quad in the XY plane facing +Z.
func CreateQuad() *Mesh {
	vertices := appendQuad(nil, math.Vec3Zero, math.Vec3{X: 0.5}, math.Vec3{Y: 0.5})
	return CreateMeshFromData("Quad", vertices, nil)
}

// CreateTriangle generates a single triangle in the XY plane facing +Z.
func CreateTriangle() *Mesh {
	vertices := appendTriangle(nil,
		math.Vec3{X: -0.5, Y: -0.5},
		math.Vec3{X: 0.5, Y: -0.5},
		math.Vec3{X: 0, Y: 0.5},
		math.Vec2{X: 0, Y: 0}, math.Vec2{X: 1, Y: 0}, math.Vec2{X: 0.5, Y: 1},
	)
	return CreateMeshFromData("Triangle", vertices, nil)
}

// CreatePlane generates a horizontal plane facing +Y, split into
// subdivisions x subdivisions cells.
func CreatePlane(width, depth float32, subdivisions int) *Mesh {
	if subdivisions < 1 {
		subdivisions = 1
	}

	cellW := width / float32(subdivisions)
	cellD := depth / float32(subdivisions)
	u := math.Vec3{X: cellW / 2}
	v := math.Vec3{Z: -cellD / 2}

	var vertices []core.Vertex
	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			c := math.Vec3{
				X: -width/2 + (float32(x)+0.5)*cellW,
				Z: -depth/2 + (float32(z)+0.5)*cellD,
			}
			vertices = appendQuad(vertices, c, u, v)
		}
	}
	return CreateMeshFromData("Plane", vertices, nil)
}

// CreateSphere generates a UV-sphere. Pole rings emit a single triangle
// per segment so the soup carries no degenerate triangles.
func CreateSphere(radius float32, segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	point := func(ring, seg int) (math.Vec3, math.Vec2) {
		phi := float64(ring) * stdmath.Pi / float64(rings)
		theta := float64(seg) * 2.0 * stdmath.Pi / float64(segments)
		if ring == 0 || ring == rings {
			// Pin the poles exactly so every pole corner shares one position.
			theta = 0
		}
		p := math.Vec3{
			X: float32(stdmath.Sin(phi) * stdmath.Cos(theta)),
			Y: float32(stdmath.Cos(phi)),
			Z: float32(stdmath.Sin(phi) * stdmath.Sin(theta)),
		}.Mul(radius)
		uv := math.Vec2{X: float32(seg) / float32(segments), Y: float32(ring) / float32(rings)}
		return p, uv
	}

	var vertices []core.Vertex
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			a, uva := point(ring, seg)
			b, uvb := point(ring, seg+1)
			c, uvc := point(ring+1, seg+1)
			d, uvd := point(ring+1, seg)
			if ring > 0 {
				vertices = appendTriangle(vertices, a, b, d, uva, uvb, uvd)
			}
			if ring < rings-1 {
				vertices = appendTriangle(vertices, b, c, d, uvb, uvc, uvd)
			}
		}
	}
	return CreateMeshFromData("Sphere", vertices, nil)
}

// CreateCylinder generates a capped cylinder along Y.
func CreateCylinder(radius, height float32, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}

	halfHeight := height / 2.0
	rim := func(i int, y float32) math.Vec3 {
		theta := float64(i%segments) * 2.0 * stdmath.Pi / float64(segments)
		return math.Vec3{X: float32(stdmath.Cos(theta)) * radius, Y: y, Z: float32(stdmath.Sin(theta)) * radius}
	}
	capUV := func(p math.Vec3) math.Vec2 {
		return math.Vec2{X: p.X/(2*radius) + 0.5, Y: p.Z/(2*radius) + 0.5}
	}

	top := math.Vec3{Y: halfHeight}
	bottom := math.Vec3{Y: -halfHeight}
	var vertices []core.Vertex
	for i := 0; i < segments; i++ {
		b0, b1 := rim(i, -halfHeight), rim(i+1, -halfHeight)
		t0, t1 := rim(i, halfHeight), rim(i+1, halfHeight)
		u0 := float32(i) / float32(segments)
		u1 := float32(i+1) / float32(segments)

		vertices = appendTriangle(vertices, b0, t0, b1,
			math.Vec2{X: u0, Y: 0}, math.Vec2{X: u0, Y: 1}, math.Vec2{X: u1, Y: 0})
		vertices = appendTriangle(vertices, t0, t1, b1,
			math.Vec2{X: u0, Y: 1}, math.Vec2{X: u1, Y: 1}, math.Vec2{X: u1, Y: 0})

		vertices = appendTriangle(vertices, top, t1, t0, capUV(top), capUV(t1), capUV(t0))
		vertices = appendTriangle(vertices, bottom, b0, b1, capUV(bottom), capUV(b0), capUV(b1))
	}
	return CreateMeshFromData("Cylinder", vertices, nil)
}
