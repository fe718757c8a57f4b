// Package scene renders the terrain: mesh and texture upload, the terrain
// program and its material.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terrainview/internal/engine/debug"
	"github.com/Faultbox/terrainview/internal/engine/renderer"
	"github.com/Faultbox/terrainview/internal/engine/shading"
	"github.com/Faultbox/terrainview/internal/engine/terrain"
)

// Config contains scene configuration options.
type Config struct {
	Divisions int
	Size      float32
	TexOffset float32
}

// DefaultConfig returns the default terrain grid.
func DefaultConfig() Config {
	return Config{
		Divisions: terrain.DefaultDivisions,
		Size:      terrain.DefaultSize,
		TexOffset: terrain.DefaultTexOffset,
	}
}

// Scene couples the frame renderer with the terrain renderer.
type Scene struct {
	renderer *renderer.Renderer
	terrain  *TerrainRenderer
}

// New builds the grid and uploads GPU resources. Requires a current GL
// context and an initialized renderer.
func New(r *renderer.Renderer, cfg Config) (*Scene, error) {
	mesh := terrain.BuildGrid(cfg.Size, cfg.Divisions)
	tr, err := NewTerrainRenderer(mesh, shading.DefaultGradient(), cfg.TexOffset)
	if err != nil {
		return nil, fmt.Errorf("create terrain renderer: %w", err)
	}
	return &Scene{renderer: r, terrain: tr}, nil
}

// BindHeightField replaces the heightmap texture.
func (s *Scene) BindHeightField(hf *terrain.HeightField) error {
	return s.terrain.BindHeightField(hf)
}

// Resize reallocates the drawing buffer.
func (s *Scene) Resize(width, height int) {
	s.renderer.Resize(width, height)
}

// Render draws one frame.
func (s *Scene) Render(view, projection mgl32.Mat4) error {
	s.renderer.Begin()
	err := s.terrain.Render(view, projection)
	s.renderer.End()
	return err
}

// Screenshot saves the last rendered frame.
func (s *Scene) Screenshot(sc *debug.ScreenshotCapture) (string, error) {
	pixels, w, h := s.renderer.ReadPixels()
	return sc.CaptureFromPixels(pixels, w, h)
}

// Close releases GPU resources.
func (s *Scene) Close() {
	s.terrain.Destroy()
}
