// Package viewer implements the interactive terrain viewer: window, input,
// main loop, the on-screen location panel and the stdin coordinate console.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/config"
	"github.com/Faultbox/terrainview/internal/engine/camera"
	"github.com/Faultbox/terrainview/internal/engine/debug"
	"github.com/Faultbox/terrainview/internal/engine/input"
	"github.com/Faultbox/terrainview/internal/engine/renderer"
	"github.com/Faultbox/terrainview/internal/engine/scene"
	"github.com/Faultbox/terrainview/internal/engine/ui2d"
	"github.com/Faultbox/terrainview/internal/engine/window"
	"github.com/Faultbox/terrainview/internal/logger"
	"github.com/Faultbox/terrainview/internal/session"
	"github.com/Faultbox/terrainview/internal/tile"
	"github.com/Faultbox/terrainview/internal/ui"
)

// Title is the window title prefix.
const Title = "Terrain Viewer"

// Viewer is the interactive viewer instance.
type Viewer struct {
	cfg      *config.Config
	log      *zap.Logger
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	scene    *scene.Scene
	input    *input.Input
	session  *session.Session
	shots    *debug.ScreenshotCapture
	points   chan tile.GeoPoint

	overlay *renderer.Overlay
	ui      *ui2d.Context
	coords  *ui.CoordsPanel
}

// uiController hides input the UI consumed from the fly controls: keys while
// a text field has focus and drags that started over a panel.
type uiController struct {
	in          *input.Input
	ui          *ui2d.Context
	wasDragging bool
	grabbed     bool
}

func (c *uiController) FlyState(width, height int) camera.FlyState {
	s := c.in.FlyState(width, height)
	if s.Dragging && !c.wasDragging {
		c.grabbed = c.ui.WantsMouse()
	}
	c.wasDragging = s.Dragging
	if c.grabbed {
		s.Dragging = false
	}
	if c.ui.WantsKeyboard() {
		s = camera.FlyState{
			Dragging: s.Dragging,
			MouseX:   s.MouseX,
			MouseY:   s.MouseY,
			ViewW:    s.ViewW,
			ViewH:    s.ViewH,
		}
	}
	return s
}

// New creates the window, GL resources and the render session.
func New(cfg *config.Config, fetcher session.Fetcher) (*Viewer, error) {
	v := &Viewer{
		cfg:    cfg,
		log:    logger.Named("viewer"),
		points: make(chan tile.GeoPoint, 8),
		shots:  debug.NewScreenshotCapture("screenshots", "terrain"),
	}

	v.log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Int("divisions", cfg.Terrain.Divisions),
	)

	// Create window (this also creates OpenGL context)
	var err error
	v.window, err = window.New(window.Config{
		Title:      Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer after window: the GL context must exist.
	v.renderer, err = renderer.New(renderer.Config{ClearColor: [4]float32{0, 0, 0, 1}})
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.scene, err = scene.New(v.renderer, scene.Config{
		Divisions: cfg.Terrain.Divisions,
		Size:      cfg.Terrain.Size,
		TexOffset: cfg.Terrain.TexOffset,
	})
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}

	v.overlay, err = renderer.NewOverlay()
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create overlay: %w", err)
	}
	v.ui = ui2d.NewContext(v.overlay)

	v.input = input.New()

	v.session, err = session.New(session.Options{
		Renderer:      v.scene,
		Surface:       v.window,
		Fetcher:       fetcher,
		Controller:    &uiController{in: v.input, ui: v.ui},
		FovY:          cfg.Camera.FOV,
		MovementSpeed: cfg.Camera.MovementSpeed,
		RollSpeed:     cfg.Camera.RollSpeed,
		LookSpeed:     cfg.Camera.LookSpeed,
	})
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if !v.session.HasCredential() {
		v.window.ShowError(Title, "No map access token.\n\nPass -token, set "+config.TokenEnv+
			" or tiles.access_token in config.yaml.")
	}

	v.log.Info("viewer initialized")
	return v, nil
}

// Run starts the main loop. Lines read from console request new terrain;
// console may be nil.
func (v *Viewer) Run(ctx context.Context, console io.Reader) error {
	v.running = true

	initial := tile.GeoPoint{
		Latitude:  v.cfg.Terrain.InitialLatitude,
		Longitude: v.cfg.Terrain.InitialLongitude,
		Zoom:      v.cfg.Terrain.InitialZoom,
	}
	v.coords = ui.NewCoordsPanel(initial)
	v.requestTerrain(ctx, initial)

	if console != nil {
		go func() {
			if err := tile.ReadPoints(ctx, console, v.points, v.log); err != nil && !errors.Is(err, context.Canceled) {
				v.log.Warn("console closed", zap.Error(err))
			}
		}()
		v.log.Info("enter coordinates as: lat lon zoom")
	}

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting main loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		select {
		case p := <-v.points:
			v.requestTerrain(ctx, p)
		case <-ctx.Done():
			v.running = false
		default:
		}

		if err := v.session.Frame(float32(dt)); err != nil {
			return fmt.Errorf("frame: %w", err)
		}
		if p, ok := v.drawUI(); ok {
			v.requestTerrain(ctx, p)
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount), zap.Duration("dt", time.Duration(dt*float64(time.Second))))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.log.Debug("window resized", zap.Int("width", event.Width), zap.Int("height", event.Height))
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				// Escape first leaves a focused text field.
				if !v.ui.WantsKeyboard() {
					v.running = false
				}
			case sdl.SCANCODE_F12:
				v.session.AfterRender(v.screenshot)
			}
		}
	}
}

// drawUI draws the location panel over the finished frame and returns a
// point when the panel was submitted.
func (v *Viewer) drawUI() (tile.GeoPoint, bool) {
	w, h := v.window.ClientSize()
	v.input.UIState(v.ui.Input())

	v.overlay.Begin(w, h)
	v.ui.Begin()
	p, ok := v.coords.Render(v.ui)
	v.ui.End()
	v.overlay.End()

	return p, ok
}

func (v *Viewer) requestTerrain(ctx context.Context, p tile.GeoPoint) {
	addr, err := v.session.UpdateTerrain(ctx, p)
	if err != nil {
		// Already logged by the session.
		v.coords.SetStatus(err.Error(), true)
		return
	}
	v.coords.SetStatus("Loading "+addr.String(), false)
	v.window.SetTitle(fmt.Sprintf("%s - %s", Title, addr))
}

func (v *Viewer) screenshot() {
	name, err := v.scene.Screenshot(v.shots)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", name))
}

// Close releases the session, GL resources and the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	switch {
	case v.session != nil:
		v.session.Close() // closes the scene
	case v.scene != nil:
		v.scene.Close()
	}
	if v.overlay != nil {
		v.overlay.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
