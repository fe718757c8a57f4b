package shading

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func fract64(x float64) float64 {
	return x - math.Floor(x)
}

func TestHashKnownVectors(t *testing.T) {
	// Reference computed in float64; the float32 path differs only by rounding.
	ref := func(x, y float64) float64 {
		px := 50 * fract64(x*0.3183099+0.71)
		py := 50 * fract64(y*0.3183099+0.113)
		return -1 + 2*fract64(px*py*(px+py))
	}

	for _, p := range []mgl32.Vec2{{0, 0}, {1, 0}, {2, 0}, {-1, 0}} {
		got := float64(Hash(p))
		want := ref(float64(p[0]), float64(p[1]))
		if math.Abs(got-want) > 0.01 {
			t.Errorf("Hash(%v) = %f, want %f", p, got, want)
		}
		if got < -1 || got > 1 {
			t.Errorf("Hash(%v) = %f out of [-1, 1]", p, got)
		}
	}
}

func TestHashGolden(t *testing.T) {
	tests := []struct {
		p    mgl32.Vec2
		want float32
	}{
		{mgl32.Vec2{0, 0}, 0.322265625},
		{mgl32.Vec2{1, 0}, 0.01287841796875},
		{mgl32.Vec2{0, 1}, 0.84375},
		{mgl32.Vec2{-1, 0}, -0.4814453125},
		{mgl32.Vec2{3, -7}, -0.65625},
		{mgl32.Vec2{12, 5}, 0.3125},
	}

	for _, tt := range tests {
		if got := Hash(tt.p); got != tt.want {
			t.Errorf("Hash(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestFBMGolden(t *testing.T) {
	tests := []struct {
		p    mgl32.Vec2
		want float32
	}{
		{mgl32.Vec2{0.1, 0.2}, 0.3103526532649994},
		{mgl32.Vec2{12.5, -3.75}, 0.01789063587784767},
		{mgl32.Vec2{-100.25, 42}, -0.09645780920982361},
		{mgl32.Vec2{7.3, 1.9}, 0.13563141226768494},
	}

	for _, tt := range tests {
		if got := FBM(tt.p); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("FBM(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestOctaveMatchesMatrix(t *testing.T) {
	for _, p := range []mgl32.Vec2{{0.3, 0.6}, {-2, 5}, {100, -40}} {
		got := octave(p)
		want := fbmOctave.Mul2x1(p)
		if !got.ApproxEqualThreshold(want, 1e-4) {
			t.Errorf("octave(%v) = %v, want %v", p, got, want)
		}
	}
}

func TestNoiseDeterministic(t *testing.T) {
	points := []mgl32.Vec2{{0.1, 0.2}, {12.5, -3.75}, {-100.25, 42}, {7, 7}}

	first := make([]float32, len(points))
	for i, p := range points {
		first[i] = FBM(p)
	}
	for run := 0; run < 3; run++ {
		for i, p := range points {
			if got := FBM(p); got != first[i] {
				t.Fatalf("FBM(%v) run %d = %v, first = %v", p, run, got, first[i])
			}
		}
	}
}

func TestNoiseAtLatticeEqualsHash(t *testing.T) {
	for _, p := range []mgl32.Vec2{{0, 0}, {5, -3}, {-2, 9}} {
		if got, want := Noise(p), Hash(p); got != want {
			t.Errorf("Noise(%v) = %f, want Hash = %f", p, got, want)
		}
	}
}

func TestFBMBounded(t *testing.T) {
	limit := fbmWeights[0] + fbmWeights[1] + fbmWeights[2] + fbmWeights[3]
	for x := float32(-20); x < 20; x += 0.37 {
		for y := float32(-20); y < 20; y += 0.53 {
			if v := FBM(mgl32.Vec2{x, y}); v < -limit || v > limit {
				t.Fatalf("FBM(%f,%f) = %f outside ±%f", x, y, v, limit)
			}
		}
	}
}

func TestTriplanarWeightsSumToOne(t *testing.T) {
	normals := []mgl32.Vec3{{0, 0, 1}, {1, 1, 1}, {-0.3, 0.5, 0.81}, {0, -1, 0}}
	for _, n := range normals {
		w := TriplanarWeights(n)
		if sum := w[0] + w[1] + w[2]; math.Abs(float64(sum-1)) > 1e-6 {
			t.Errorf("weights(%v) sum = %f", n, sum)
		}
		for i := range w {
			if w[i] < 0 {
				t.Errorf("weights(%v)[%d] negative", n, i)
			}
		}
	}
}

func TestTriplanarRange(t *testing.T) {
	n := mgl32.Vec3{0.2, -0.4, 0.89}.Normalize()
	for x := float32(-50); x < 50; x += 3.3 {
		v := Triplanar(mgl32.Vec3{x, x * 0.5, x * 0.01}, n)
		if v < 0.6 || v > 1.0 {
			t.Fatalf("Triplanar at x=%f = %f, want within [0.6, 1.0]", x, v)
		}
	}
}

func TestGradientEndpoints(t *testing.T) {
	g := DefaultGradient()
	if g.Width() != GradientWidth {
		t.Fatalf("width = %d, want %d", g.Width(), GradientWidth)
	}

	if got := g.Image().RGBAAt(0, 0); got != Blue {
		t.Errorf("first texel = %v, want blue", got)
	}
	if got := g.Image().RGBAAt(GradientWidth-1, 0); got != White {
		t.Errorf("last texel = %v, want white", got)
	}
	if got := g.Lookup(-5); got != (Color{0, 0, 1, 1}) {
		t.Errorf("Lookup(-5) = %v, want blue", got)
	}
	if got := g.Lookup(2); got != (Color{1, 1, 1, 1}) {
		t.Errorf("Lookup(2) = %v, want white", got)
	}
}

func luminance(c Color) float32 {
	return 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
}

func TestGradientMonotonic(t *testing.T) {
	g := DefaultGradient()

	prev := float32(-1)
	for i := 0; i <= 1000; i++ {
		l := luminance(g.Lookup(float32(i) / 1000))
		if l < prev-1e-6 {
			t.Fatalf("luminance decreased at t=%f: %f < %f", float32(i)/1000, l, prev)
		}
		prev = l
	}
}

func TestLightingFlatNormal(t *testing.T) {
	want := 0.73/math.Sqrt(0.25*0.25+0.23*0.23+0.73*0.73) + 0.5
	got := Lighting(mgl32.Vec3{0, 0, 1})
	if math.Abs(float64(got)-want) > 1e-5 {
		t.Errorf("Lighting(up) = %f, want %f", got, want)
	}
}

func TestShadeSeaLevelIsBlue(t *testing.T) {
	g := DefaultGradient()
	for _, pos := range []mgl32.Vec3{{0, 0, 0}, {10, -33, 0}, {-99, 99, 0}} {
		c := Shade(g, Fragment{Position: pos, Normal: mgl32.Vec3{0, 0, 1}, Elevation: 0})
		if c[0] != 0 || c[1] != 0 || c[2] <= 0 {
			t.Errorf("Shade at %v = %v, want pure blue", pos, c)
		}
	}
}

func TestRGBA8Clamps(t *testing.T) {
	got := Color{-0.5, 0.5, 1.5, 1}.RGBA8()
	want := [4]uint8{0, 128, 255, 255}
	if got != want {
		t.Errorf("RGBA8 = %v, want %v", got, want)
	}
}

func TestShaderSourcesEmbedded(t *testing.T) {
	for name, src := range map[string]string{
		"vertex":   TerrainVertexShader,
		"fragment": TerrainFragmentShader,
	} {
		if !strings.HasPrefix(src, "#version "+Version) {
			t.Errorf("%s shader does not start with #version %s", name, Version)
		}
	}
	if !strings.Contains(TerrainVertexShader, "uHeightMap") || !strings.Contains(TerrainFragmentShader, "uGradient") {
		t.Error("shader sources missing material uniforms")
	}
}
