package terrain

import (
	"errors"
	"fmt"
	"image"

	"github.com/chewxy/math32"

	"github.com/Faultbox/terrainview/internal/engine/texture"
)

// ElevationWeights turn a normalized RGBA sample into a scalar elevation:
// base-256 across R, G, B with R most significant; alpha is ignored.
var ElevationWeights = [4]float32{256 * 256, 256, 1, 0}

// Terrain-RGB decoding to meters.
const (
	metersOffset = -10000.0
	metersScale  = 0.1
)

// HeightField is an elevation raster encoded in RGBA8 pixels.
// Row 0 is the top (north) edge of the tile and maps to v = 1.
type HeightField struct {
	Width  int
	Height int
	Pix    []uint8 // RGBA, row-major, 4 bytes per texel
}

// NewHeightField wraps an RGBA image as a heightfield. A tightly packed
// image with origin (0, 0) shares its pixel storage; anything else is copied.
func NewHeightField(img *image.RGBA) (*HeightField, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty heightfield %dx%d", w, h)
	}
	if img.Rect.Min != (image.Point{}) || img.Stride != 4*w || len(img.Pix) < 4*w*h {
		img = texture.ImageToRGBA(img)
	}
	return &HeightField{Width: w, Height: h, Pix: img.Pix[:4*w*h]}, nil
}

// DecodeHeightField decodes an encoded tile image into a heightfield.
func DecodeHeightField(data []byte) (*HeightField, error) {
	img, _, err := texture.Decode(data)
	if err != nil {
		return nil, err
	}
	return NewHeightField(img)
}

// Image returns the heightfield pixels as an RGBA image sharing storage.
func (hf *HeightField) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    hf.Pix,
		Stride: hf.Width * 4,
		Rect:   image.Rect(0, 0, hf.Width, hf.Height),
	}
}

// Raw returns the 24-bit encoded value r*65536 + g*256 + b of texel (x, y).
// Coordinates are clamped to the edge.
func (hf *HeightField) Raw(x, y int) uint32 {
	i := hf.offset(x, y)
	return uint32(hf.Pix[i])<<16 | uint32(hf.Pix[i+1])<<8 | uint32(hf.Pix[i+2])
}

// Meters returns the terrain-RGB elevation of texel (x, y) in meters.
func (hf *HeightField) Meters(x, y int) float64 {
	return metersOffset + float64(hf.Raw(x, y))*metersScale
}

// Stats returns the minimum and maximum elevation in meters.
func (hf *HeightField) Stats() (minM, maxM float64) {
	minRaw, maxRaw := ^uint32(0), uint32(0)
	for i := 0; i+2 < len(hf.Pix); i += 4 {
		raw := uint32(hf.Pix[i])<<16 | uint32(hf.Pix[i+1])<<8 | uint32(hf.Pix[i+2])
		minRaw = min(minRaw, raw)
		maxRaw = max(maxRaw, raw)
	}
	return metersOffset + float64(minRaw)*metersScale, metersOffset + float64(maxRaw)*metersScale
}

// Texel returns texel (x, y) as normalized RGBA in [0, 1], clamped to the edge.
func (hf *HeightField) Texel(x, y int) [4]float32 {
	i := hf.offset(x, y)
	return [4]float32{
		float32(hf.Pix[i]) / 255,
		float32(hf.Pix[i+1]) / 255,
		float32(hf.Pix[i+2]) / 255,
		float32(hf.Pix[i+3]) / 255,
	}
}

// Sample returns the bilinearly filtered normalized RGBA at (u, v),
// with edge texels repeated outside [0, 1] like GL_CLAMP_TO_EDGE.
func (hf *HeightField) Sample(u, v float32) [4]float32 {
	fx := u*float32(hf.Width) - 0.5
	fy := (1-v)*float32(hf.Height) - 0.5

	x0f := math32.Floor(fx)
	y0f := math32.Floor(fy)
	tx := fx - x0f
	ty := fy - y0f
	x0, y0 := int(x0f), int(y0f)

	c00 := hf.Texel(x0, y0)
	c10 := hf.Texel(x0+1, y0)
	c01 := hf.Texel(x0, y0+1)
	c11 := hf.Texel(x0+1, y0+1)

	var out [4]float32
	for i := range out {
		top := c00[i] + (c10[i]-c00[i])*tx
		bottom := c01[i] + (c11[i]-c01[i])*tx
		out[i] = top + (bottom-top)*ty
	}
	return out
}

// Elevation returns dot(Sample(u, v), ElevationWeights), the scalar the
// vertex stage displaces by. A nil heightfield is flat.
func (hf *HeightField) Elevation(u, v float32) float32 {
	if hf == nil {
		return 0
	}
	s := hf.Sample(u, v)
	return s[0]*ElevationWeights[0] + s[1]*ElevationWeights[1] + s[2]*ElevationWeights[2] + s[3]*ElevationWeights[3]
}

func (hf *HeightField) offset(x, y int) int {
	x = clampi(x, 0, hf.Width-1)
	y = clampi(y, 0, hf.Height-1)
	return (y*hf.Width + x) * 4
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
