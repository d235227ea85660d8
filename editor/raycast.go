package editor

import (
	stdmath "math"
	"sort"

	"mesh-editor/math"
	"mesh-editor/scene"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Hit is one ray intersection with a node's triangles.
type Hit struct {
	Node     *scene.Node
	Distance float32
	Point    math.Vec3
	Normal   math.Vec3
	Triangle int
}

// PixelToNDC converts a window pixel position to normalized device
// coordinates. Y grows downward in pixels and upward in NDC.
func PixelToNDC(x, y, width, height float64) math.Vec2 {
	return math.Vec2{
		X: float32(2*x/width - 1),
		Y: float32(1 - 2*y/height),
	}
}

// ScreenToRay converts a screen-space mouse position to a world-space ray
func ScreenToRay(mouseX, mouseY, screenWidth, screenHeight float64, camera *scene.Camera) Ray {
	ndc := PixelToNDC(mouseX, mouseY, screenWidth, screenHeight)
	near := camera.Unproject(math.Vec3{X: ndc.X, Y: ndc.Y, Z: -1})
	far := camera.Unproject(math.Vec3{X: ndc.X, Y: ndc.Y, Z: 1})
	return Ray{
		Origin:    near,
		Direction: far.Sub(near).NormalizeOr(camera.GetForward()),
	}
}

// Raycast tests ray against every visible node and returns the hits
// ordered nearest first, at most one per node.
func Raycast(ray Ray, nodes []*scene.Node) []Hit {
	var hits []Hit
	for _, node := range nodes {
		if node.Mesh == nil || node.Mesh.DrawMode != scene.DrawTriangles || !node.IsVisible() {
			continue
		}

		// Broad phase: AABB test
		worldMatrix := node.GetWorldMatrix()
		aabb := computeAABB(node.Mesh, worldMatrix)
		if _, hit := rayAABBIntersect(ray, aabb); !hit {
			continue
		}

		// Narrow phase: triangle test
		if result, ok := rayMeshIntersect(ray, node, worldMatrix); ok {
			hits = append(hits, result)
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Distance < hits[b].Distance })
	return hits
}

// RaycastScene returns the nearest hit among the scene's user objects.
func RaycastScene(ray Ray, s *scene.Scene) (Hit, bool) {
	hits := Raycast(ray, s.MeshNodes())
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}

// PickHandles returns ranked hits against the visible proxies of reg.
func PickHandles(ray Ray, reg *Registry) []Hit {
	visible := reg.Visible()
	nodes := make([]*scene.Node, 0, len(visible))
	for _, h := range visible {
		nodes = append(nodes, h.Proxy)
	}
	return Raycast(ray, nodes)
}

// computeAABB calculates the world AABB of a mesh, padded slightly so flat
// meshes still have volume.
func computeAABB(mesh *scene.Mesh, worldMatrix math.Mat4) scene.AABB {
	if len(mesh.Vertices) == 0 {
		return scene.AABB{}
	}

	maxFloat := float32(stdmath.MaxFloat32)
	aabb := scene.AABB{
		Min: math.Vec3{X: maxFloat, Y: maxFloat, Z: maxFloat},
		Max: math.Vec3{X: -maxFloat, Y: -maxFloat, Z: -maxFloat},
	}

	for _, v := range mesh.Vertices {
		worldPos := worldMatrix.MulVec3(v.Position)
		aabb.Min = math.Vec3{X: min32(aabb.Min.X, worldPos.X), Y: min32(aabb.Min.Y, worldPos.Y), Z: min32(aabb.Min.Z, worldPos.Z)}
		aabb.Max = math.Vec3{X: max32(aabb.Max.X, worldPos.X), Y: max32(aabb.Max.Y, worldPos.Y), Z: max32(aabb.Max.Z, worldPos.Z)}
	}

	pad := math.Vec3{X: 1e-4, Y: 1e-4, Z: 1e-4}
	aabb.Min = aabb.Min.Sub(pad)
	aabb.Max = aabb.Max.Add(pad)
	return aabb
}

// rayAABBIntersect tests ray-AABB intersection
func rayAABBIntersect(ray Ray, aabb scene.AABB) (float32, bool) {
	invDir := math.Vec3{
		X: 1.0 / ray.Direction.X,
		Y: 1.0 / ray.Direction.Y,
		Z: 1.0 / ray.Direction.Z,
	}

	t1 := (aabb.Min.X - ray.Origin.X) * invDir.X
	t2 := (aabb.Max.X - ray.Origin.X) * invDir.X
	t3 := (aabb.Min.Y - ray.Origin.Y) * invDir.Y
	t4 := (aabb.Max.Y - ray.Origin.Y) * invDir.Y
	t5 := (aabb.Min.Z - ray.Origin.Z) * invDir.Z
	t6 := (aabb.Max.Z - ray.Origin.Z) * invDir.Z

	tmin := max32(max32(min32(t1, t2), min32(t3, t4)), min32(t5, t6))
	tmax := min32(min32(max32(t1, t2), max32(t3, t4)), max32(t5, t6))

	if tmax < 0 || tmin > tmax {
		return 0, false
	}

	return tmin, true
}

// rayMeshIntersect performs per-triangle intersection using Möller–Trumbore algorithm
func rayMeshIntersect(ray Ray, node *scene.Node, worldMatrix math.Mat4) (Hit, bool) {
	mesh := node.Mesh
	closest := Hit{Distance: float32(stdmath.MaxFloat32)}
	found := false

	test := func(tri int, p0, p1, p2 math.Vec3) {
		v0 := worldMatrix.MulVec3(p0)
		v1 := worldMatrix.MulVec3(p1)
		v2 := worldMatrix.MulVec3(p2)

		t, hit := mollerTrumbore(ray, v0, v1, v2)
		if hit && t < closest.Distance {
			found = true
			closest = Hit{
				Node:     node,
				Distance: t,
				Point:    ray.At(t),
				Normal:   TriangleNormal(v0, v1, v2),
				Triangle: tri,
			}
		}
	}

	if mesh.IsIndexed() {
		for i := 0; i+2 < len(mesh.Indices); i += 3 {
			i0, i1, i2 := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
			if int(i0) >= len(mesh.Vertices) || int(i1) >= len(mesh.Vertices) || int(i2) >= len(mesh.Vertices) {
				continue
			}
			test(i/3, mesh.Vertices[i0].Position, mesh.Vertices[i1].Position, mesh.Vertices[i2].Position)
		}
	} else {
		for i := 0; i+2 < len(mesh.Vertices); i += 3 {
			test(i/3, mesh.Vertices[i].Position, mesh.Vertices[i+1].Position, mesh.Vertices[i+2].Position)
		}
	}

	return closest, found
}

// mollerTrumbore implements the Möller–Trumbore ray-triangle intersection
// algorithm. Both windings are accepted so back faces of proxies still pick.
func mollerTrumbore(ray Ray, v0, v1, v2 math.Vec3) (float32, bool) {
	const epsilon = 0.0000001

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return 0, false // parallel
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)

	if u < 0.0 || u > 1.0 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)

	if v < 0.0 || u+v > 1.0 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	return t, t > epsilon
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
