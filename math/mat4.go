package math

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Mat4 is a 4x4 matrix used with row vectors: a point p is transformed as
// p * M, translation lives in row 3, and A.Mul(B) applies A first.
//
// Flattening a Mat4 row by row yields the same sixteen floats mgl32 stores
// column by column for the equivalent column-vector matrix, so conversions
// to and from mgl32 are plain copies.
type Mat4 [4][4]float32

func Mat4Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				result[i][j] += m[i][k] * other[k][j]
			}
		}
	}
	return result
}

// MulVec3 transforms a point (w = 1) and applies the perspective divide.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return v.ToVec4(1).MulMat(m).ToVec3DivW()
}

// MulDir transforms a direction (w = 0); translation is ignored.
func (m Mat4) MulDir(v Vec3) Vec3 {
	return v.ToVec4(0).MulMat(m).ToVec3()
}

// MulNormal transforms a surface normal with the inverse-transpose of m and
// renormalizes it. Degenerate results fall back to +Z.
func (m Mat4) MulNormal(n Vec3) Vec3 {
	inv := m.Inverse()
	out := Vec3{
		X: inv[0][0]*n.X + inv[0][1]*n.Y + inv[0][2]*n.Z,
		Y: inv[1][0]*n.X + inv[1][1]*n.Y + inv[1][2]*n.Z,
		Z: inv[2][0]*n.X + inv[2][1]*n.Y + inv[2][2]*n.Z,
	}
	return out.NormalizeOr(Vec3Front)
}

// Translation returns the translation component of an affine matrix.
func (m Mat4) Translation() Vec3 {
	return Vec3{X: m[3][0], Y: m[3][1], Z: m[3][2]}
}

func Mat4Translation(translation Vec3) Mat4 {
	m := Mat4Identity()
	m[3][0] = translation.X
	m[3][1] = translation.Y
	m[3][2] = translation.Z
	return m
}

func Mat4Scale(scale Vec3) Mat4 {
	m := Mat4Identity()
	m[0][0] = scale.X
	m[1][1] = scale.Y
	m[2][2] = scale.Z
	return m
}

// Mat4Perspective builds a right-handed OpenGL projection (clip z in [-1, 1]).
func Mat4Perspective(fovY, aspect, near, far float32) Mat4 {
	return FromMgl(mgl32.Perspective(fovY, aspect, near, far))
}

// Mat4LookAt builds a view matrix for an eye looking at target.
func Mat4LookAt(eye, target, up Vec3) Mat4 {
	return FromMgl(mgl32.LookAtV(ToMglVec3(eye), ToMglVec3(target), ToMglVec3(up)))
}

// Inverse returns the inverse of m, or the identity when m is singular.
func (m Mat4) Inverse() Mat4 {
	g := m.Mgl()
	if g.Det() == 0 {
		return Mat4Identity()
	}
	return FromMgl(g.Inv())
}

// Mgl converts m to the equivalent mgl32 matrix.
func (m Mat4) Mgl() mgl32.Mat4 {
	var out mgl32.Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i*4+j] = m[i][j]
		}
	}
	return out
}

// FromMgl converts an mgl32 column-major matrix to a Mat4.
func FromMgl(g mgl32.Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = g[i*4+j]
		}
	}
	return out
}

func ToMglVec3(v Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}
