package shading

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
)

// GradientWidth is the texel width of the height gradient texture.
const GradientWidth = 64

// Stop is a color stop at offset Pos in [0, 1].
type Stop struct {
	Pos   float32
	Color color.RGBA
}

// Named colors used by the default gradient.
var (
	Blue  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// DefaultStops color water blue, lowlands green and peaks white.
var DefaultStops = []Stop{
	{Pos: 0.0, Color: Blue},
	{Pos: 0.05, Color: Blue},
	{Pos: 0.06, Color: Green},
	{Pos: 0.8, Color: White},
}

// Gradient is a 1-D color ramp baked into texels once at startup.
type Gradient struct {
	img *image.RGBA
}

// NewGradient bakes stops into a width×1 image, evaluating each texel at its
// center. Stops must be sorted by Pos; positions outside the stop range take
// the nearest end color.
func NewGradient(stops []Stop, width int) *Gradient {
	img := image.NewRGBA(image.Rect(0, 0, width, 1))
	for x := range width {
		t := (float32(x) + 0.5) / float32(width)
		img.SetRGBA(x, 0, evalStops(stops, t))
	}
	return &Gradient{img: img}
}

// DefaultGradient returns the gradient built from DefaultStops.
func DefaultGradient() *Gradient {
	return NewGradient(DefaultStops, GradientWidth)
}

// Image returns the baked texels.
func (g *Gradient) Image() *image.RGBA {
	return g.img
}

// Width returns the number of texels.
func (g *Gradient) Width() int {
	return g.img.Bounds().Dx()
}

// Lookup samples the gradient at t with linear filtering. t is clamped to
// [0, 1] and the edge texels extend outward. Returns normalized RGBA.
func (g *Gradient) Lookup(t float32) Color {
	t = clampf(t, 0, 1)
	w := g.Width()

	fx := t*float32(w) - 0.5
	x0f := math32.Floor(fx)
	frac := fx - x0f
	x0 := int(x0f)

	a := g.texel(x0)
	b := g.texel(x0 + 1)
	var out Color
	for i := range out {
		out[i] = a[i] + (b[i]-a[i])*frac
	}
	return out
}

func (g *Gradient) texel(x int) Color {
	x = max(0, min(x, g.Width()-1))
	c := g.img.RGBAAt(x, 0)
	return Color{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

func evalStops(stops []Stop, t float32) color.RGBA {
	if len(stops) == 0 {
		return color.RGBA{}
	}
	if t <= stops[0].Pos {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t > b.Pos {
			continue
		}
		span := b.Pos - a.Pos
		if span <= 0 {
			return b.Color
		}
		f := (t - a.Pos) / span
		return color.RGBA{
			R: lerp8(a.Color.R, b.Color.R, f),
			G: lerp8(a.Color.G, b.Color.G, f),
			B: lerp8(a.Color.B, b.Color.B, f),
			A: lerp8(a.Color.A, b.Color.A, f),
		}
	}
	return stops[len(stops)-1].Color
}

func lerp8(a, b uint8, f float32) uint8 {
	return uint8(math32.Floor(float32(a) + (float32(b)-float32(a))*f + 0.5))
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
