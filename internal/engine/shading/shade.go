// Package shading holds the terrain GPU programs and a host-side rendition of
// the fragment stage. The Go functions compute the same values as
// terrain.frag and are the reference the GLSL is checked against.
package shading

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Fragment stage constants, mirrored in terrain.frag.
const (
	// ElevationOffset and ElevationScale map encoded elevation to the
	// gradient coordinate: (e - offset) * scale.
	ElevationOffset = 375.0
	ElevationScale  = 1.0 / 300.0

	// Tri-planar projection scale. Z varies less than X/Y on the mesh.
	ScaleXY = 1.0
	ScaleZ  = 2.0

	// NoiseStrength and NoiseBias keep the detail factor in [0.6, 1.0].
	NoiseStrength = 0.2
	NoiseBias     = 0.8

	// AmbientBias is added to N·L.
	AmbientBias = 0.5
)

// LightDir is the fixed directional light, normalized.
var LightDir = mgl32.Vec3{0.25, 0.23, 0.73}.Normalize()

// Color is a normalized RGBA value.
type Color [4]float32

// Scale multiplies every component by s.
func (c Color) Scale(s float32) Color {
	return Color{c[0] * s, c[1] * s, c[2] * s, c[3] * s}
}

// RGBA8 clamps c to [0, 1] and converts it to bytes.
func (c Color) RGBA8() [4]uint8 {
	var out [4]uint8
	for i, v := range c {
		out[i] = uint8(math32.Floor(clampf(v, 0, 1)*255 + 0.5))
	}
	return out
}

// Fragment is the interpolated vertex stage output for one pixel.
type Fragment struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	Elevation float32
}

// GradientCoord returns the gradient lookup coordinate for an elevation.
func GradientCoord(elevation float32) float32 {
	return (elevation - ElevationOffset) * ElevationScale
}

// TriplanarWeights returns abs(n) scaled to sum to one.
func TriplanarWeights(n mgl32.Vec3) mgl32.Vec3 {
	w := mgl32.Vec3{math32.Abs(n[0]), math32.Abs(n[1]), math32.Abs(n[2])}
	sum := w[0] + w[1] + w[2]
	if sum == 0 {
		return mgl32.Vec3{}
	}
	return w.Mul(1 / sum)
}

// Triplanar blends fbm detail projected on the YZ, ZX and XY planes by
// normal alignment and returns the detail factor NoiseStrength*d + NoiseBias.
func Triplanar(pos, n mgl32.Vec3) float32 {
	w := TriplanarWeights(n)
	detail := mgl32.Vec3{
		FBM(mgl32.Vec2{pos[1] * ScaleXY, pos[2] * ScaleZ}),
		FBM(mgl32.Vec2{pos[2] * ScaleZ, pos[0] * ScaleXY}),
		FBM(mgl32.Vec2{pos[0] * ScaleXY, pos[1] * ScaleXY}),
	}
	return w.Dot(detail)*NoiseStrength + NoiseBias
}

// Lighting returns the Lambert term plus ambient bias for normal n.
func Lighting(n mgl32.Vec3) float32 {
	return n.Dot(LightDir) + AmbientBias
}

// Shade computes the final color of a fragment:
// gradient(elevation) × detail × lighting.
func Shade(g *Gradient, f Fragment) Color {
	n := f.Normal.Normalize()
	base := g.Lookup(GradientCoord(f.Elevation))
	return base.Scale(Triplanar(f.Position, n) * Lighting(n))
}
