package math

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.001
}

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	if result := v1.Add(v2); result != NewVec3(5, 7, 9) {
		t.Errorf("Add: expected %v, got %v", NewVec3(5, 7, 9), result)
	}
	if result := v2.Sub(v1); result != NewVec3(3, 3, 3) {
		t.Errorf("Sub: expected %v, got %v", NewVec3(3, 3, 3), result)
	}
	if result := v1.Mul(2); result != NewVec3(2, 4, 6) {
		t.Errorf("Mul: expected %v, got %v", NewVec3(2, 4, 6), result)
	}
	if dot := v1.Dot(v2); dot != 32 {
		t.Errorf("Dot: expected 32, got %v", dot)
	}

	// Right x Up = Front in a right-handed system
	if cross := Vec3Right.Cross(Vec3Up); cross != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, cross)
	}
}

func TestVec3NormalizeOr(t *testing.T) {
	if n := NewVec3(3, 0, 0).NormalizeOr(Vec3Front); n != Vec3Right {
		t.Errorf("NormalizeOr: expected %v, got %v", Vec3Right, n)
	}
	if n := Vec3Zero.NormalizeOr(Vec3Front); n != Vec3Front {
		t.Errorf("NormalizeOr zero: expected fallback %v, got %v", Vec3Front, n)
	}
	nan := float32(math.NaN())
	if n := NewVec3(nan, 0, 0).NormalizeOr(Vec3Up); n != Vec3Up {
		t.Errorf("NormalizeOr NaN: expected fallback %v, got %v", Vec3Up, n)
	}
}

func TestVec3DominantAxis(t *testing.T) {
	tests := []struct {
		v    Vec3
		want int
	}{
		{NewVec3(1, 0, 0), 0},
		{NewVec3(0, -2, 1), 1},
		{NewVec3(0.1, 0.2, -0.9), 2},
		{NewVec3(1, 1, 1), 0},
	}
	for _, tt := range tests {
		if got := tt.v.DominantAxis(); got != tt.want {
			t.Errorf("DominantAxis(%v): expected %d, got %d", tt.v, tt.want, got)
		}
	}
}

func TestMat4Translation(t *testing.T) {
	translation := NewVec3(1, 2, 3)
	m := Mat4Translation(translation)

	if m[3][0] != 1 || m[3][1] != 2 || m[3][2] != 3 {
		t.Errorf("Translation: expected (1,2,3), got (%v,%v,%v)", m[3][0], m[3][1], m[3][2])
	}
	if p := m.MulVec3(Vec3Zero); p != translation {
		t.Errorf("Translation: expected %v, got %v", translation, p)
	}
	if d := m.MulDir(Vec3Up); d != Vec3Up {
		t.Errorf("MulDir: expected translation to be ignored, got %v", d)
	}
}

func TestMat4MulOrder(t *testing.T) {
	// Scale first, then translate.
	m := Mat4Scale(NewVec3(2, 2, 2)).Mul(Mat4Translation(NewVec3(1, 0, 0)))
	p := m.MulVec3(NewVec3(1, 1, 1))
	if p != NewVec3(3, 2, 2) {
		t.Errorf("Mul order: expected (3,2,2), got %v", p)
	}
}

func TestMat4Inverse(t *testing.T) {
	m := Mat4Scale(NewVec3(2, 3, 4)).
		Mul(QuaternionFromAxisAngle(Vec3Up, 0.7).ToMat4()).
		Mul(Mat4Translation(NewVec3(5, -1, 2)))
	product := m.Mul(m.Inverse())
	identity := Mat4Identity()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if !approx(product[i][j], identity[i][j]) {
				t.Fatalf("Inverse: expected identity at [%d][%d], got %v", i, j, product[i][j])
			}
		}
	}

	var singular Mat4
	if singular.Inverse() != Mat4Identity() {
		t.Error("Inverse: expected identity for a singular matrix")
	}
}

func TestMat4LookAt(t *testing.T) {
	eye := NewVec3(0, 0, 5)
	m := Mat4LookAt(eye, Vec3Zero, Vec3Up)

	if result := m.MulVec3(eye); !result.ApproxEqual(Vec3Zero, 0.001) {
		t.Errorf("LookAt: expected eye to transform to origin, got %v", result)
	}
	// The target lies straight ahead on -Z in view space.
	if result := m.MulVec3(Vec3Zero); !result.ApproxEqual(NewVec3(0, 0, -5), 0.001) {
		t.Errorf("LookAt: expected target at (0,0,-5), got %v", result)
	}
}

func TestMat4PerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.1), float32(100)
	m := Mat4Perspective(float32(math.Pi/3), 1, near, far)

	if z := m.MulVec3(NewVec3(0, 0, -near)).Z; !approx(z, -1) {
		t.Errorf("Perspective: expected near plane at z=-1, got %v", z)
	}
	if z := m.MulVec3(NewVec3(0, 0, -far)).Z; !approx(z, 1) {
		t.Errorf("Perspective: expected far plane at z=1, got %v", z)
	}
}

func TestMat4MulNormalNonUniformScale(t *testing.T) {
	m := Mat4Scale(NewVec3(2, 1, 1))
	n := m.MulNormal(NewVec3(1, 1, 0).Normalize())
	want := NewVec3(0.5, 1, 0).Normalize()
	if !n.ApproxEqual(want, 0.001) {
		t.Errorf("MulNormal: expected %v, got %v", want, n)
	}
}

func TestQuaternionRotation(t *testing.T) {
	q := QuaternionFromAxisAngle(Vec3Up, float32(math.Pi/2))
	result := q.RotateVector(Vec3Right)
	if !result.ApproxEqual(NewVec3(0, 0, -1), 0.001) {
		t.Errorf("Quaternion rotation: expected approximately (0,0,-1), got %v", result)
	}

	// The matrix form must agree with RotateVector.
	if m := q.ToMat4().MulDir(Vec3Right); !m.ApproxEqual(result, 0.001) {
		t.Errorf("ToMat4: expected %v, got %v", result, m)
	}
}

func TestQuaternionBetween(t *testing.T) {
	q := QuaternionBetween(Vec3Front, Vec3Right)
	if r := q.RotateVector(Vec3Front); !r.ApproxEqual(Vec3Right, 0.001) {
		t.Errorf("QuaternionBetween: expected %v, got %v", Vec3Right, r)
	}
}

func TestRectFromPoints(t *testing.T) {
	r := RectFromPoints(NewVec2(1, -1), NewVec2(-1, 2))
	if r.Min != NewVec2(-1, -1) || r.Max != NewVec2(1, 2) {
		t.Errorf("RectFromPoints: expected [(-1,-1),(1,2)], got %v", r)
	}
	if !r.Contains(NewVec2(0, 0)) || r.Contains(NewVec2(2, 0)) {
		t.Error("Contains: wrong containment result")
	}
}

func BenchmarkVec3Add(b *testing.B) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	for i := 0; i < b.N; i++ {
		_ = v1.Add(v2)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Mat4Identity()
	m2 := Mat4Identity()

	for i := 0; i < b.N; i++ {
		_ = m1.Mul(m2)
	}
}
