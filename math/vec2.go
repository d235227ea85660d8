package math

import "math"

type Vec2 struct {
	X, Y float32
}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vec2) Mul(scalar float32) Vec2 {
	return Vec2{X: v.X * scalar, Y: v.Y * scalar}
}

func (v Vec2) Length() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

func (v Vec2) Array() [2]float32 {
	return [2]float32{v.X, v.Y}
}

// Rect is an axis-aligned 2D rectangle given by its min and max corners.
type Rect struct {
	Min, Max Vec2
}

// RectFromPoints returns the rectangle spanned by two arbitrary corners.
func RectFromPoints(a, b Vec2) Rect {
	return Rect{
		Min: Vec2{X: float32(math.Min(float64(a.X), float64(b.X))), Y: float32(math.Min(float64(a.Y), float64(b.Y)))},
		Max: Vec2{X: float32(math.Max(float64(a.X), float64(b.X))), Y: float32(math.Max(float64(a.Y), float64(b.Y)))},
	}
}

// Contains reports whether p lies inside r, edges inclusive.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Width() float32  { return r.Max.X - r.Min.X }
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }
