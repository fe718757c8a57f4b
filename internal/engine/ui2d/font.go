package ui2d

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	atlasColumns = 16
	firstGlyph   = ' '
	lastGlyph    = '~'
	// solidGlyph is a cell filled opaque, sampled for untextured quads.
	solidGlyph = lastGlyph + 1
)

// Font is a fixed-width bitmap font packed into a single-channel atlas.
type Font struct {
	face  *basicfont.Face
	atlas *image.Alpha
	cellW int
	cellH int
}

// NewFont rasterizes the printable ASCII range of the 7x13 X11 fixed font.
func NewFont() *Font {
	face := basicfont.Face7x13
	f := &Font{
		face:  face,
		cellW: face.Advance,
		cellH: face.Height,
	}

	cells := int(solidGlyph-firstGlyph) + 1
	rows := (cells + atlasColumns - 1) / atlasColumns
	f.atlas = image.NewAlpha(image.Rect(0, 0, atlasColumns*f.cellW, rows*f.cellH))

	d := font.Drawer{Dst: f.atlas, Src: image.Opaque, Face: face}
	for r := rune(firstGlyph); r <= lastGlyph; r++ {
		cell := f.cell(r)
		d.Dot = fixed.P(cell.Min.X, cell.Min.Y+face.Ascent)
		d.DrawString(string(r))
	}
	draw.Draw(f.atlas, f.cell(solidGlyph), image.Opaque, image.Point{}, draw.Src)

	return f
}

// Atlas returns the glyph coverage image. Row 0 is the top.
func (f *Font) Atlas() *image.Alpha {
	return f.atlas
}

// GlyphSize returns the cell size in pixels.
func (f *Font) GlyphSize() (int, int) {
	return f.cellW, f.cellH
}

func (f *Font) cell(r rune) image.Rectangle {
	if r != solidGlyph && (r < firstGlyph || r > lastGlyph) {
		r = '?'
	}
	i := int(r - firstGlyph)
	x, y := (i%atlasColumns)*f.cellW, (i/atlasColumns)*f.cellH
	return image.Rect(x, y, x+f.cellW, y+f.cellH)
}

// GlyphUV returns the atlas texture coordinates of r. Runes outside
// printable ASCII map to '?'.
func (f *Font) GlyphUV(r rune) (u0, v0, u1, v1 float32) {
	return f.uv(f.cell(r))
}

// SolidUV returns texture coordinates inside the opaque cell.
func (f *Font) SolidUV() (u, v float32) {
	u0, v0, u1, v1 := f.uv(f.cell(solidGlyph))
	return (u0 + u1) / 2, (v0 + v1) / 2
}

func (f *Font) uv(c image.Rectangle) (u0, v0, u1, v1 float32) {
	w, h := float32(f.atlas.Rect.Dx()), float32(f.atlas.Rect.Dy())
	return float32(c.Min.X) / w, float32(c.Min.Y) / h, float32(c.Max.X) / w, float32(c.Max.Y) / h
}

// MeasureText returns the size of a single line of text.
func (f *Font) MeasureText(text string, scale float32) (float32, float32) {
	n := 0
	for range text {
		n++
	}
	return float32(n*f.cellW) * scale, float32(f.cellH) * scale
}
