package scene

import (
	"math"

	reMath "mesh-editor/math"
)

// Camera is a perspective look-at camera. The view matrix is derived from
// Position, Target and Up every time the matrices are rebuilt.
type Camera struct {
	Position    reMath.Vec3
	Target      reMath.Vec3
	Up          reMath.Vec3
	FOV         float32
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	// Cached matrices
	viewMatrix       reMath.Mat4
	projectionMatrix reMath.Mat4
	viewProjMatrix   reMath.Mat4
	dirty            bool
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Position:    reMath.Vec3{X: 0, Y: 0, Z: 5},
		Target:      reMath.Vec3Zero,
		Up:          reMath.Vec3Up,
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		dirty:       true,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

func (c *Camera) SetPosition(pos reMath.Vec3) {
	c.Position = pos
	c.dirty = true
}

func (c *Camera) Translate(delta reMath.Vec3) {
	c.Position = c.Position.Add(delta)
	c.Target = c.Target.Add(delta)
	c.dirty = true
}

func (c *Camera) LookAt(target, up reMath.Vec3) {
	c.Target = target
	c.Up = up
	c.dirty = true
}

// GetViewProjectionMatrix returns view * projection; with row vectors a
// world point is viewed first, then projected.
func (c *Camera) GetViewProjectionMatrix() reMath.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewProjMatrix
}

func (c *Camera) GetForward() reMath.Vec3 {
	return c.Target.Sub(c.Position).NormalizeOr(reMath.Vec3Back)
}

func (c *Camera) GetRight() reMath.Vec3 {
	return c.GetForward().Cross(c.Up).NormalizeOr(reMath.Vec3Right)
}

func (c *Camera) GetUp() reMath.Vec3 {
	return c.GetRight().Cross(c.GetForward())
}

// Project maps a world point to normalized device coordinates. ok is false
// when the point is behind the camera (clip w <= 0).
func (c *Camera) Project(world reMath.Vec3) (ndc reMath.Vec3, ok bool) {
	clip := world.ToVec4(1).MulMat(c.GetViewProjectionMatrix())
	if clip.W <= 0 {
		return reMath.Vec3{}, false
	}
	return clip.ToVec3DivW(), true
}

// Unproject maps an NDC point back to world space.
func (c *Camera) Unproject(ndc reMath.Vec3) reMath.Vec3 {
	return c.GetViewProjectionMatrix().Inverse().MulVec3(ndc)
}

func (c *Camera) updateMatrices() {
	c.viewMatrix = reMath.Mat4LookAt(c.Position, c.Target, c.Up)
	c.projectionMatrix = reMath.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
	c.viewProjMatrix = c.viewMatrix.Mul(c.projectionMatrix)
	c.dirty = false
}

// OrbitCamera is a specialized camera for orbiting around a target
type OrbitCamera struct {
	Camera
	Distance float32
	Yaw      float32
	Pitch    float32
}

func NewOrbitCamera(target reMath.Vec3, distance, fov, aspectRatio float32) *OrbitCamera {
	c := &OrbitCamera{
		Distance: distance,
		Yaw:      0,
		Pitch:    0.3,
	}
	c.Camera = *NewCamera(fov, aspectRatio, 0.1, 1000.0)
	c.Target = target
	c.UpdatePosition()
	return c
}

func (c *OrbitCamera) UpdatePosition() {
	// Clamp pitch
	if c.Pitch > 1.5 {
		c.Pitch = 1.5
	}
	if c.Pitch < -1.5 {
		c.Pitch = -1.5
	}

	// Calculate position from spherical coordinates
	cosPitch := float32(math.Cos(float64(c.Pitch)))
	sinPitch := float32(math.Sin(float64(c.Pitch)))
	cosYaw := float32(math.Cos(float64(c.Yaw)))
	sinYaw := float32(math.Sin(float64(c.Yaw)))

	offset := reMath.Vec3{
		X: c.Distance * cosPitch * sinYaw,
		Y: c.Distance * sinPitch,
		Z: c.Distance * cosPitch * cosYaw,
	}

	c.Position = c.Target.Add(offset)
	c.LookAt(c.Target, reMath.Vec3Up)
}

func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	c.UpdatePosition()
}

func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance += delta
	if c.Distance < 0.1 {
		c.Distance = 0.1
	}
	c.UpdatePosition()
}

// Pan slides the target and the camera together in the view plane.
func (c *OrbitCamera) Pan(dx, dy float32) {
	offset := c.GetRight().Mul(dx).Add(c.GetUp().Mul(dy))
	c.Target = c.Target.Add(offset)
	c.UpdatePosition()
}

// Frame centers the orbit on box and backs off far enough to see all of it.
func (c *OrbitCamera) Frame(box AABB) {
	c.Target = box.Center()
	radius := box.Size().Length() / 2
	if radius < 0.1 {
		radius = 0.1
	}
	c.Distance = radius / float32(math.Tan(float64(c.FOV)/2)) * 1.2
	c.UpdatePosition()
}
