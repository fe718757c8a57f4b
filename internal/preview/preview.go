// Package preview renders a tile top-down on the CPU through the same
// displacement and shading stages the GPU program runs.
package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/engine/debug"
	"github.com/Faultbox/terrainview/internal/engine/shading"
	"github.com/Faultbox/terrainview/internal/engine/terrain"
	"github.com/Faultbox/terrainview/internal/logger"
	"github.com/Faultbox/terrainview/internal/tile"
)

// Options configures the preview image and the grid it samples.
type Options struct {
	Width     int
	Height    int
	Divisions int
	Size      float32
	TexOffset float32
}

// DefaultOptions renders 512x512 over the default grid.
func DefaultOptions() Options {
	return Options{
		Width:     512,
		Height:    512,
		Divisions: terrain.DefaultDivisions,
		Size:      terrain.DefaultSize,
		TexOffset: terrain.DefaultTexOffset,
	}
}

// Renderer shades heightfields into images. The displaced grid is cached
// until the heightfield changes.
type Renderer struct {
	opts     Options
	gradient *shading.Gradient
	mesh     *terrain.Mesh

	field     *terrain.HeightField
	displaced []terrain.Displaced
}

// NewRenderer builds the grid for opts.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid preview size %dx%d", opts.Width, opts.Height)
	}
	if opts.Divisions < 1 {
		return nil, fmt.Errorf("invalid divisions %d", opts.Divisions)
	}
	return &Renderer{
		opts:     opts,
		gradient: shading.DefaultGradient(),
		mesh:     terrain.BuildGrid(opts.Size, opts.Divisions),
	}, nil
}

// Render shades hf as seen from straight above. A nil field renders flat.
func (r *Renderer) Render(hf *terrain.HeightField) *image.RGBA {
	if r.displaced == nil || hf != r.field {
		r.displaced = terrain.DisplaceMesh(r.mesh, hf, r.opts.TexOffset)
		r.field = hf
	}

	w, h := r.opts.Width, r.opts.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for py := 0; py < h; py++ {
		// Image top is v = 1, the first grid row.
		gy := (float32(py) + 0.5) / float32(h) * float32(r.opts.Divisions)
		for px := 0; px < w; px++ {
			gx := (float32(px) + 0.5) / float32(w) * float32(r.opts.Divisions)
			c := shading.Shade(r.gradient, r.fragment(gx, gy)).RGBA8()
			img.SetRGBA(px, py, color.RGBA{R: c[0], G: c[1], B: c[2], A: 255})
		}
	}
	return img
}

// fragment interpolates the displaced grid at grid coordinates (gx, gy).
func (r *Renderer) fragment(gx, gy float32) shading.Fragment {
	divs := r.opts.Divisions
	stride := divs + 1

	ix := min(int(math32.Floor(gx)), divs-1)
	iy := min(int(math32.Floor(gy)), divs-1)
	tx := gx - float32(ix)
	ty := gy - float32(iy)

	d00 := r.displaced[ix+stride*iy]
	d10 := r.displaced[ix+1+stride*iy]
	d01 := r.displaced[ix+stride*(iy+1)]
	d11 := r.displaced[ix+1+stride*(iy+1)]

	lerp3 := func(a, b, c, d [3]float32) mgl32.Vec3 {
		var out mgl32.Vec3
		for i := range out {
			top := a[i] + (b[i]-a[i])*tx
			bottom := c[i] + (d[i]-c[i])*tx
			out[i] = top + (bottom-top)*ty
		}
		return out
	}

	top := d00.Elevation + (d10.Elevation-d00.Elevation)*tx
	bottom := d01.Elevation + (d11.Elevation-d01.Elevation)*tx

	return shading.Fragment{
		Position:  lerp3(d00.Position, d10.Position, d01.Position, d11.Position),
		Normal:    lerp3(d00.Normal, d10.Normal, d01.Normal, d11.Normal),
		Elevation: top + (bottom-top)*ty,
	}
}

// Fetcher retrieves the heightfield for a tile.
type Fetcher interface {
	Fetch(ctx context.Context, a tile.Address) (*terrain.HeightField, error)
}

// Run fetches the tile containing p, renders it and writes a PNG to path.
func Run(ctx context.Context, f Fetcher, p tile.GeoPoint, opts Options, path string) (tile.Address, error) {
	addr := tile.LocatePoint(p)
	if f == nil {
		return addr, errors.New("preview: no fetcher")
	}

	r, err := NewRenderer(opts)
	if err != nil {
		return addr, err
	}

	hf, err := f.Fetch(ctx, addr)
	if err != nil {
		return addr, fmt.Errorf("preview %s: %w", addr, err)
	}

	if err := debug.WritePNG(path, r.Render(hf)); err != nil {
		return addr, fmt.Errorf("preview %s: %w", addr, err)
	}

	minM, maxM := hf.Stats()
	logger.Named("preview").Info("preview written",
		zap.String("path", path),
		zap.Stringer("tile", addr),
		zap.Float64("min_m", minM),
		zap.Float64("max_m", maxM),
	)
	return addr, nil
}
