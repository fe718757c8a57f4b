// Package viewport tracks the drawable size of a render surface.
package viewport

import "math"

// Surface reports its client size in points and the device pixel ratio.
type Surface interface {
	ClientSize() (width, height int)
	PixelRatio() float64
}

// Viewport is the drawable size in pixels last applied to the renderer.
type Viewport struct {
	Width  int
	Height int
}

// PixelSize returns the surface size in pixels.
func PixelSize(s Surface) (int, int) {
	w, h := s.ClientSize()
	ratio := s.PixelRatio()
	if ratio <= 0 || math.IsNaN(ratio) {
		ratio = 1
	}
	return int(float64(w) * ratio), int(float64(h) * ratio)
}

// Sync compares the surface pixel size with the last applied size and calls
// realloc only when it changed. Reports whether realloc ran.
func (v *Viewport) Sync(s Surface, realloc func(width, height int)) bool {
	w, h := PixelSize(s)
	if w == v.Width && h == v.Height {
		return false
	}
	v.Width, v.Height = w, h
	if realloc != nil {
		realloc(w, h)
	}
	return true
}

// Aspect returns width/height, or 1 for an empty viewport.
func (v Viewport) Aspect() float32 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}
