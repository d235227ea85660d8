package scene

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"mesh-editor/core"
)

// ErrInvalidColor is returned by ParseColor.
var ErrInvalidColor = errors.New("invalid color")

// Material describes the surface appearance of a mesh. The viewer shades
// with Albedo only; Metallic and Roughness round-trip through glTF.
type Material struct {
	Name      string
	Albedo    core.Color
	Metallic  float32 // 0 = dielectric, 1 = fully metallic
	Roughness float32 // 0 = perfectly smooth, 1 = fully rough
	Unlit     bool    // output raw albedo without lighting
}

// DefaultMaterial returns a plain light-grey matte material.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "Default",
		Albedo:    core.Color{R: 0.8, G: 0.8, B: 0.82, A: 1},
		Roughness: 0.5,
	}
}

// NewMaterial creates a material with the given albedo color.
func NewMaterial(name string, albedo core.Color) *Material {
	return &Material{
		Name:      name,
		Albedo:    albedo,
		Roughness: 0.5,
	}
}

// NewUnlitMaterial creates a flat-colored material, used for handle proxies.
func NewUnlitMaterial(name string, albedo core.Color) *Material {
	return &Material{Name: name, Albedo: albedo, Unlit: true}
}

// Clone returns a copy of the material.
func (m *Material) Clone() *Material {
	c := *m
	return &c
}

// ColorFromRGBA converts an 8-bit color to a float color.
func ColorFromRGBA(c color.RGBA) core.Color {
	return core.Color{
		R: float32(c.R) / 255,
		G: float32(c.G) / 255,
		B: float32(c.B) / 255,
		A: float32(c.A) / 255,
	}
}

// ParseColor accepts an SVG color name ("tomato") or a hex value
// ("#ff6347", "ff634780").
func ParseColor(s string) (core.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return ColorFromRGBA(c), nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return core.Color{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return core.Color{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	return ColorFromRGBA(color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}), nil
}
