package shading

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// fbmOctave is the rotation/scale applied between octaves, column-major as
// in the GLSL mat2(1.6, 1.2, -1.2, 1.6).
var fbmOctave = mgl32.Mat2{1.6, 1.2, -1.2, 1.6}

// fbmWeights are the per-octave amplitudes.
var fbmWeights = [4]float32{0.5, 0.25, 0.125, 0.0625}

func fract(x float32) float32 {
	return x - math32.Floor(x)
}

// The explicit float32 conversions below round every product, so the
// compiler cannot fuse them into FMA instructions and results are the
// same on every architecture.

func mix(a, b, t float32) float32 {
	return float32(a*(1-t)) + float32(b*t)
}

// Hash maps a lattice point to a pseudo-random value in [-1, 1].
func Hash(p mgl32.Vec2) float32 {
	px := float32(50 * fract(float32(p[0]*0.3183099)+0.71))
	py := float32(50 * fract(float32(p[1]*0.3183099)+0.113))
	return -1 + 2*fract(float32(px*py)*(px+py))
}

// Noise is smooth value noise: hashed lattice corners blended with a
// cubic Hermite curve.
func Noise(p mgl32.Vec2) float32 {
	ix, iy := math32.Floor(p[0]), math32.Floor(p[1])
	fx, fy := p[0]-ix, p[1]-iy

	ux := float32(fx*fx) * (3 - 2*fx)
	uy := float32(fy*fy) * (3 - 2*fy)

	return mix(
		mix(Hash(mgl32.Vec2{ix, iy}), Hash(mgl32.Vec2{ix + 1, iy}), ux),
		mix(Hash(mgl32.Vec2{ix, iy + 1}), Hash(mgl32.Vec2{ix + 1, iy + 1}), ux),
		uy,
	)
}

// FBM sums four octaves of Noise, halving the amplitude and rotating and
// scaling the domain by fbmOctave between octaves.
func FBM(p mgl32.Vec2) float32 {
	var f float32
	for _, w := range fbmWeights {
		f += w * Noise(p)
		p = octave(p)
	}
	return f
}

// octave is fbmOctave.Mul2x1 with each product rounded.
func octave(p mgl32.Vec2) mgl32.Vec2 {
	m := fbmOctave
	return mgl32.Vec2{
		float32(m[0]*p[0]) + float32(m[2]*p[1]),
		float32(m[1]*p[0]) + float32(m[3]*p[1]),
	}
}
