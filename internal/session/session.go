// Package session orchestrates the terrain view: it owns the camera,
// controls and viewport, fetches tiles off the render thread and swaps the
// bound heightfield when a fetch completes.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/engine/camera"
	"github.com/Faultbox/terrainview/internal/engine/terrain"
	"github.com/Faultbox/terrainview/internal/engine/viewport"
	"github.com/Faultbox/terrainview/internal/logger"
	"github.com/Faultbox/terrainview/internal/tile"
)

var (
	// ErrMissingCredential is returned by UpdateTerrain when no access
	// token is configured. No request is made.
	ErrMissingCredential = errors.New("missing tile service access token")
	// ErrDisposed is returned by operations on a closed session.
	ErrDisposed = errors.New("session disposed")
)

// resultBuffer bounds completed fetches waiting for Poll.
const resultBuffer = 16

// Renderer is the GPU side of the session. Calls happen on the render thread.
type Renderer interface {
	BindHeightField(hf *terrain.HeightField) error
	Resize(width, height int)
	Render(view, projection mgl32.Mat4) error
	Close()
}

// Fetcher retrieves the heightfield for a tile.
type Fetcher interface {
	Fetch(ctx context.Context, a tile.Address) (*terrain.HeightField, error)
}

// Controller supplies the control input for a frame, sized to the surface
// in points.
type Controller interface {
	FlyState(width, height int) camera.FlyState
}

type credentialed interface {
	HasCredential() bool
}

// Options configures a session.
type Options struct {
	Renderer Renderer
	Surface  viewport.Surface
	// Fetcher may be nil, or report no credential; UpdateTerrain then
	// fails with ErrMissingCredential.
	Fetcher    Fetcher
	Controller Controller

	FovY          float32
	MovementSpeed float32
	RollSpeed     float32
	LookSpeed     float32

	Logger *zap.Logger
}

// Defaults for the fly controls.
const (
	DefaultMovementSpeed = 60.0
	DefaultRollSpeed     = 0.3
)

type result struct {
	seq   uint64
	addr  tile.Address
	field *terrain.HeightField
	err   error
}

// Session is the render session. Poll, Frame, AfterRender and Close must be
// called from the render thread; UpdateTerrain may be called from any
// goroutine.
type Session struct {
	log        *zap.Logger
	renderer   Renderer
	surface    viewport.Surface
	fetcher    Fetcher
	controller Controller
	credential bool

	camera   *camera.FlyCamera
	controls *camera.FlyControls
	viewport viewport.Viewport

	ctx     context.Context
	cancel  context.CancelFunc
	results chan result
	// mu orders fetch launches against Close so no wg.Add follows wg.Wait.
	mu sync.Mutex
	wg sync.WaitGroup

	state   atomic.Int32
	seq     atomic.Uint64
	applied uint64

	field   *terrain.HeightField
	current tile.Address
	loaded  bool

	lastRenderErr string
	afterRender   []func()
}

// New creates a session in StateInit.
func New(opts Options) (*Session, error) {
	if opts.Renderer == nil {
		return nil, errors.New("session: renderer is required")
	}
	if opts.Surface == nil {
		return nil, errors.New("session: surface is required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.Named("session")
	}

	credential := opts.Fetcher != nil
	if c, ok := opts.Fetcher.(credentialed); ok {
		credential = c.HasCredential()
	}
	if !credential {
		log.Error("no access token configured, terrain will not load")
	}

	movement, roll := opts.MovementSpeed, opts.RollSpeed
	if movement <= 0 {
		movement = DefaultMovementSpeed
	}
	if roll <= 0 {
		roll = DefaultRollSpeed
	}

	cam := camera.NewFlyCamera(opts.FovY, 1)
	controls := camera.NewFlyControls(cam, movement, roll)
	if opts.LookSpeed > 0 {
		controls.LookSpeed = opts.LookSpeed
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		log:        log,
		renderer:   opts.Renderer,
		surface:    opts.Surface,
		fetcher:    opts.Fetcher,
		controller: opts.Controller,
		credential: credential,
		camera:     cam,
		controls:   controls,
		ctx:        ctx,
		cancel:     cancel,
		results:    make(chan result, resultBuffer),
	}
	s.state.Store(int32(StateInit))
	return s, nil
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// HasCredential reports whether tile requests can be made.
func (s *Session) HasCredential() bool {
	return s.credential
}

// Camera returns the session camera.
func (s *Session) Camera() *camera.FlyCamera {
	return s.camera
}

// HeightField returns the bound heightfield, nil before the first load.
func (s *Session) HeightField() *terrain.HeightField {
	return s.field
}

// Current returns the address of the bound tile and whether one is loaded.
func (s *Session) Current() (tile.Address, bool) {
	return s.current, s.loaded
}

// Viewport returns the drawable size last applied to the renderer.
func (s *Session) Viewport() viewport.Viewport {
	return s.viewport
}

// UpdateTerrain locates the tile containing p and starts fetching it. The
// result is applied by a later Poll. ctx bounds the fetch in addition to the
// session's own lifetime.
func (s *Session) UpdateTerrain(ctx context.Context, p tile.GeoPoint) (tile.Address, error) {
	addr := tile.LocatePoint(p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State() == StateDisposed {
		return addr, ErrDisposed
	}
	if !s.credential {
		s.log.Error("terrain update skipped", zap.Stringer("tile", addr), zap.Error(ErrMissingCredential))
		return addr, ErrMissingCredential
	}

	if ctx == nil {
		ctx = context.Background()
	}
	seq := s.seq.Add(1)
	s.log.Info("requesting terrain",
		zap.Uint64("seq", seq),
		zap.Float64("lat", p.Latitude),
		zap.Float64("lon", p.Longitude),
		zap.Stringer("tile", addr),
	)

	fetchCtx, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancel)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		defer stop()

		hf, err := s.fetcher.Fetch(fetchCtx, addr)
		select {
		case s.results <- result{seq: seq, addr: addr, field: hf, err: err}:
		case <-s.ctx.Done():
		}
	}()

	return addr, nil
}

// Poll applies completed fetches. It returns the number of heightfields
// bound. A result is dropped when a later request has already been applied;
// a failed fetch keeps the current heightfield.
func (s *Session) Poll() int {
	bound := 0
	for {
		select {
		case r := <-s.results:
			if s.apply(r) {
				bound++
			}
		default:
			return bound
		}
	}
}

func (s *Session) apply(r result) bool {
	if s.State() == StateDisposed {
		return false
	}
	if r.seq <= s.applied {
		s.log.Debug("dropping stale terrain result",
			zap.Uint64("seq", r.seq),
			zap.Uint64("applied", s.applied),
			zap.Stringer("tile", r.addr),
		)
		return false
	}
	if r.err != nil {
		s.log.Error("terrain fetch failed",
			zap.Uint64("seq", r.seq),
			zap.Stringer("tile", r.addr),
			zap.Error(r.err),
		)
		return false
	}
	if r.field == nil {
		s.log.Error("terrain fetch returned no data", zap.Stringer("tile", r.addr))
		return false
	}

	if err := s.renderer.BindHeightField(r.field); err != nil {
		s.log.Error("binding heightfield failed", zap.Stringer("tile", r.addr), zap.Error(err))
		return false
	}

	s.field = r.field
	s.applied = r.seq
	s.current = r.addr
	s.loaded = true

	b := r.addr.Bound()
	minM, maxM := r.field.Stats()
	s.log.Info("terrain loaded",
		zap.Uint64("seq", r.seq),
		zap.Stringer("tile", r.addr),
		zap.Int("width", r.field.Width),
		zap.Int("height", r.field.Height),
		zap.Float64("min_lon", b.Min.Lon()),
		zap.Float64("min_lat", b.Min.Lat()),
		zap.Float64("max_lon", b.Max.Lon()),
		zap.Float64("max_lat", b.Max.Lat()),
		zap.Float64("min_m", minM),
		zap.Float64("max_m", maxM),
	)
	return true
}

// Frame advances one frame of dt seconds: apply finished fetches, move the
// camera, follow surface resizes and render.
func (s *Session) Frame(dt float32) error {
	switch s.State() {
	case StateDisposed:
		return ErrDisposed
	case StateInit:
		s.state.CompareAndSwap(int32(StateInit), int32(StateRunning))
	}

	s.Poll()

	if s.controller != nil {
		w, h := s.surface.ClientSize()
		s.controls.Update(s.controller.FlyState(w, h), dt)
	}

	if s.viewport.Sync(s.surface, s.renderer.Resize) {
		s.camera.SetAspect(s.viewport.Aspect())
		s.log.Debug("viewport resized",
			zap.Int("width", s.viewport.Width),
			zap.Int("height", s.viewport.Height),
		)
	}

	s.render()

	hooks := s.afterRender
	s.afterRender = nil
	for _, fn := range hooks {
		fn()
	}
	return nil
}

// AfterRender queues fn to run once the next Frame has drawn, while the
// frame is still in the back buffer.
func (s *Session) AfterRender(fn func()) {
	s.afterRender = append(s.afterRender, fn)
}

func (s *Session) render() {
	defer func() {
		if r := recover(); r != nil {
			s.logRenderError(fmt.Errorf("render panic: %v", r))
		}
	}()

	if err := s.renderer.Render(s.camera.ViewMatrix(), s.camera.ProjectionMatrix()); err != nil {
		s.logRenderError(err)
		return
	}
	s.lastRenderErr = ""
}

// logRenderError logs err once until a frame renders cleanly or the message
// changes.
func (s *Session) logRenderError(err error) {
	if msg := err.Error(); msg != s.lastRenderErr {
		s.lastRenderErr = msg
		s.log.Error("render failed", zap.Error(err))
	}
}

// Close cancels in-flight fetches and releases renderer resources. Further
// calls are no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	prev := State(s.state.Swap(int32(StateDisposed)))
	s.mu.Unlock()
	if prev == StateDisposed {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.renderer.Close()
	s.field = nil
	s.afterRender = nil
	s.log.Info("session closed")
}
