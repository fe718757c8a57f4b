package session

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/engine/camera"
	"github.com/Faultbox/terrainview/internal/engine/terrain"
	"github.com/Faultbox/terrainview/internal/engine/texture"
	"github.com/Faultbox/terrainview/internal/tile"
)

type fakeRenderer struct {
	bound    []*terrain.HeightField
	resizes  [][2]int
	renders  int
	bindErr  error
	renderFn func() error
	closed   int
}

func (r *fakeRenderer) BindHeightField(hf *terrain.HeightField) error {
	if r.bindErr != nil {
		return r.bindErr
	}
	r.bound = append(r.bound, hf)
	return nil
}

func (r *fakeRenderer) Resize(w, h int) { r.resizes = append(r.resizes, [2]int{w, h}) }

func (r *fakeRenderer) Render(view, projection mgl32.Mat4) error {
	r.renders++
	if r.renderFn != nil {
		return r.renderFn()
	}
	return nil
}

func (r *fakeRenderer) Close() { r.closed++ }

type fakeSurface struct {
	w, h  int
	ratio float64
}

func (s *fakeSurface) ClientSize() (int, int) { return s.w, s.h }
func (s *fakeSurface) PixelRatio() float64    { return s.ratio }

// fakeFetcher answers from a table. Addresses listed in gates block until
// their gate is closed.
type fakeFetcher struct {
	mu         sync.Mutex
	credential bool
	fields     map[tile.Address]*terrain.HeightField
	errs       map[tile.Address]error
	gates      map[tile.Address]chan struct{}
	calls      []tile.Address
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		credential: true,
		fields:     make(map[tile.Address]*terrain.HeightField),
		errs:       make(map[tile.Address]error),
		gates:      make(map[tile.Address]chan struct{}),
	}
}

func (f *fakeFetcher) HasCredential() bool { return f.credential }

func (f *fakeFetcher) Fetch(ctx context.Context, a tile.Address) (*terrain.HeightField, error) {
	f.mu.Lock()
	f.calls = append(f.calls, a)
	gate := f.gates[a]
	hf, err := f.fields[a], f.errs[a]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return hf, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func uniformField(t *testing.T, c color.RGBA) *terrain.HeightField {
	t.Helper()
	hf, err := terrain.NewHeightField(texture.Fill(8, 8, c))
	if err != nil {
		t.Fatalf("NewHeightField: %v", err)
	}
	return hf
}

func newSession(t *testing.T, r *fakeRenderer, f Fetcher) *Session {
	t.Helper()
	s, err := New(Options{
		Renderer: r,
		Surface:  &fakeSurface{w: 800, h: 600, ratio: 1},
		Fetcher:  f,
		Logger:   zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

// pollUntil polls until cond holds or the deadline passes.
func pollUntil(t *testing.T, s *Session, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for terrain result")
		}
		s.Poll()
		time.Sleep(time.Millisecond)
	}
}

var (
	origin   = tile.GeoPoint{}
	originZ1 = tile.GeoPoint{Latitude: 0, Longitude: 0, Zoom: 1}
)

func TestNewRequiresRendererAndSurface(t *testing.T) {
	if _, err := New(Options{Surface: &fakeSurface{}}); err == nil {
		t.Error("expected error without renderer")
	}
	if _, err := New(Options{Renderer: &fakeRenderer{}}); err == nil {
		t.Error("expected error without surface")
	}
}

func TestUpdateTerrainBindsField(t *testing.T) {
	r := &fakeRenderer{}
	f := newFakeFetcher()
	want := uniformField(t, color.RGBA{1, 134, 160, 255})
	f.fields[tile.Address{X: 1, Y: 1, Z: 1}] = want

	s := newSession(t, r, f)
	addr, err := s.UpdateTerrain(context.Background(), originZ1)
	if err != nil {
		t.Fatalf("UpdateTerrain: %v", err)
	}
	if addr != (tile.Address{X: 1, Y: 1, Z: 1}) {
		t.Errorf("addr = %v, want 1/1/1", addr)
	}

	pollUntil(t, s, func() bool { return s.HeightField() != nil })

	if s.HeightField() != want {
		t.Error("bound heightfield is not the fetched one")
	}
	if len(r.bound) != 1 || r.bound[0] != want {
		t.Errorf("renderer bound %d fields", len(r.bound))
	}
	if cur, ok := s.Current(); !ok || cur != addr {
		t.Errorf("Current = %v, %v", cur, ok)
	}
}

func TestFetchFailureKeepsPriorField(t *testing.T) {
	r := &fakeRenderer{}
	f := newFakeFetcher()
	z0 := tile.Address{}
	f.errs[z0] = errors.New("boom")

	s := newSession(t, r, f)

	// First load fails: nothing bound.
	if _, err := s.UpdateTerrain(context.Background(), origin); err != nil {
		t.Fatalf("UpdateTerrain: %v", err)
	}
	pollUntil(t, s, func() bool { return f.callCount() == 1 && len(s.results) == 0 })
	time.Sleep(10 * time.Millisecond)
	s.Poll()
	if s.HeightField() != nil {
		t.Fatal("failed fetch bound a heightfield")
	}

	// Successful load, then a failure: the success stays bound.
	good := uniformField(t, color.RGBA{1, 134, 160, 255})
	f.fields[tile.Address{X: 1, Y: 1, Z: 1}] = good
	if _, err := s.UpdateTerrain(context.Background(), originZ1); err != nil {
		t.Fatalf("UpdateTerrain: %v", err)
	}
	pollUntil(t, s, func() bool { return s.HeightField() == good })

	if _, err := s.UpdateTerrain(context.Background(), origin); err != nil {
		t.Fatalf("UpdateTerrain: %v", err)
	}
	pollUntil(t, s, func() bool { return f.callCount() == 3 })
	time.Sleep(10 * time.Millisecond)
	s.Poll()

	if s.HeightField() != good {
		t.Error("failed fetch replaced the bound heightfield")
	}
	if len(r.bound) != 1 {
		t.Errorf("renderer bound %d fields, want 1", len(r.bound))
	}
}

func TestStaleResultDropped(t *testing.T) {
	r := &fakeRenderer{}
	f := newFakeFetcher()

	slow := tile.Address{}
	fast := tile.Address{X: 1, Y: 1, Z: 1}
	slowField := uniformField(t, color.RGBA{0, 0, 10, 255})
	fastField := uniformField(t, color.RGBA{0, 0, 20, 255})
	f.fields[slow] = slowField
	f.fields[fast] = fastField
	gate := make(chan struct{})
	f.gates[slow] = gate

	s := newSession(t, r, f)

	// Request A, then B. B resolves first.
	if _, err := s.UpdateTerrain(context.Background(), origin); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpdateTerrain(context.Background(), originZ1); err != nil {
		t.Fatal(err)
	}
	pollUntil(t, s, func() bool { return s.HeightField() == fastField })

	// A resolves late and must not replace B.
	close(gate)
	deadline := time.Now().Add(50 * time.Millisecond)
	for time.Now().Before(deadline) {
		s.Poll()
		time.Sleep(time.Millisecond)
	}

	if s.HeightField() != fastField {
		t.Error("stale result replaced the newer heightfield")
	}
	if cur, _ := s.Current(); cur != fast {
		t.Errorf("Current = %v, want %v", cur, fast)
	}
	if len(r.bound) != 1 {
		t.Errorf("renderer bound %d fields, want 1", len(r.bound))
	}
}

func TestInOrderResultsBothApply(t *testing.T) {
	r := &fakeRenderer{}
	f := newFakeFetcher()
	first := uniformField(t, color.RGBA{0, 0, 10, 255})
	second := uniformField(t, color.RGBA{0, 0, 20, 255})
	f.fields[tile.Address{}] = first
	f.fields[tile.Address{X: 1, Y: 1, Z: 1}] = second
	gate := make(chan struct{})
	f.gates[tile.Address{X: 1, Y: 1, Z: 1}] = gate

	s := newSession(t, r, f)
	s.UpdateTerrain(context.Background(), origin)
	s.UpdateTerrain(context.Background(), originZ1)

	pollUntil(t, s, func() bool { return s.HeightField() == first })
	close(gate)
	pollUntil(t, s, func() bool { return s.HeightField() == second })
}

func TestMissingCredentialMakesNoRequest(t *testing.T) {
	r := &fakeRenderer{}
	f := newFakeFetcher()
	f.credential = false

	s := newSession(t, r, f)
	if s.HasCredential() {
		t.Fatal("HasCredential = true")
	}

	addr, err := s.UpdateTerrain(context.Background(), originZ1)
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
	if addr != (tile.Address{X: 1, Y: 1, Z: 1}) {
		t.Errorf("addr = %v", addr)
	}
	time.Sleep(10 * time.Millisecond)
	if n := f.callCount(); n != 0 {
		t.Errorf("fetcher called %d times", n)
	}

	// Rendering still works.
	if err := s.Frame(1.0 / 60); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if r.renders != 1 {
		t.Errorf("renders = %d", r.renders)
	}
}

func TestNilFetcherIsMissingCredential(t *testing.T) {
	s := newSession(t, &fakeRenderer{}, nil)
	if _, err := s.UpdateTerrain(context.Background(), origin); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("err = %v, want ErrMissingCredential", err)
	}
}

func TestResizeIdempotentAcrossFrames(t *testing.T) {
	r := &fakeRenderer{}
	surf := &fakeSurface{w: 800, h: 600, ratio: 2}
	s, err := New(Options{Renderer: r, Surface: surf, Logger: zap.NewNop()})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for i := 0; i < 5; i++ {
		if err := s.Frame(1.0 / 60); err != nil {
			t.Fatalf("Frame: %v", err)
		}
	}
	if len(r.resizes) != 1 || r.resizes[0] != [2]int{1600, 1200} {
		t.Fatalf("resizes = %v, want one 1600x1200", r.resizes)
	}
	if got := s.Camera().Aspect; got != float32(1600)/1200 {
		t.Errorf("aspect = %f", got)
	}

	surf.w = 400
	s.Frame(1.0 / 60)
	s.Frame(1.0 / 60)
	if len(r.resizes) != 2 || r.resizes[1] != [2]int{800, 1200} {
		t.Errorf("resizes = %v", r.resizes)
	}
	if r.renders != 7 {
		t.Errorf("renders = %d, want 7", r.renders)
	}
}

func TestFlatFieldEndToEnd(t *testing.T) {
	r := &fakeRenderer{}
	f := newFakeFetcher()
	flat := uniformField(t, color.RGBA{0, 0, 0, 255})
	f.fields[tile.Address{}] = flat

	s := newSession(t, r, f)
	s.UpdateTerrain(context.Background(), origin)
	pollUntil(t, s, func() bool { return s.HeightField() != nil })

	mesh := terrain.BuildGrid(terrain.DefaultSize, 8)
	for i, d := range terrain.DisplaceMesh(mesh, s.HeightField(), terrain.DefaultTexOffset) {
		if d.Position != mesh.Vertices[i].Position {
			t.Fatalf("vertex %d displaced to %v", i, d.Position)
		}
		if d.Normal != [3]float32{0, 0, 1} {
			t.Fatalf("vertex %d normal %v", i, d.Normal)
		}
	}
}

func TestRenderErrorsDoNotEscape(t *testing.T) {
	r := &fakeRenderer{renderFn: func() error { return errors.New("lost context") }}
	s := newSession(t, r, nil)
	for i := 0; i < 3; i++ {
		if err := s.Frame(0.016); err != nil {
			t.Fatalf("Frame: %v", err)
		}
	}

	r.renderFn = func() error { panic("driver crash") }
	if err := s.Frame(0.016); err != nil {
		t.Fatalf("Frame after panic: %v", err)
	}
}

func TestBindFailureKeepsPriorField(t *testing.T) {
	r := &fakeRenderer{bindErr: errors.New("out of memory")}
	f := newFakeFetcher()
	f.fields[tile.Address{}] = uniformField(t, color.RGBA{0, 0, 1, 255})

	s := newSession(t, r, f)
	s.UpdateTerrain(context.Background(), origin)
	pollUntil(t, s, func() bool { return f.callCount() == 1 })
	time.Sleep(10 * time.Millisecond)
	s.Poll()

	if s.HeightField() != nil {
		t.Error("heightfield swapped although binding failed")
	}
}

func TestLifecycle(t *testing.T) {
	r := &fakeRenderer{}
	f := newFakeFetcher()
	gate := make(chan struct{})
	f.gates[tile.Address{}] = gate

	s, err := New(Options{Renderer: r, Surface: &fakeSurface{w: 10, h: 10, ratio: 1}, Fetcher: f, Logger: zap.NewNop()})
	if err != nil {
		t.Fatal(err)
	}
	if s.State() != StateInit {
		t.Errorf("state = %v, want init", s.State())
	}
	s.Frame(0.016)
	if s.State() != StateRunning {
		t.Errorf("state = %v, want running", s.State())
	}

	// An in-flight fetch is cancelled by Close.
	s.UpdateTerrain(context.Background(), origin)
	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the in-flight fetch")
	}

	if s.State() != StateDisposed {
		t.Errorf("state = %v, want disposed", s.State())
	}
	if r.closed != 1 {
		t.Errorf("renderer closed %d times", r.closed)
	}
	s.Close()
	if r.closed != 1 {
		t.Errorf("second Close closed renderer again")
	}

	if err := s.Frame(0.016); !errors.Is(err, ErrDisposed) {
		t.Errorf("Frame after Close = %v, want ErrDisposed", err)
	}
	if _, err := s.UpdateTerrain(context.Background(), origin); !errors.Is(err, ErrDisposed) {
		t.Errorf("UpdateTerrain after Close = %v, want ErrDisposed", err)
	}
}

type holdForward struct{}

func (holdForward) FlyState(w, h int) camera.FlyState {
	return camera.FlyState{Forward: true, ViewW: w, ViewH: h}
}

func TestFrameAppliesControls(t *testing.T) {
	s, err := New(Options{
		Renderer:      &fakeRenderer{},
		Surface:       &fakeSurface{w: 100, h: 100, ratio: 1},
		Controller:    holdForward{},
		MovementSpeed: 10,
		Logger:        zap.NewNop(),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	start := s.Camera().Position
	fwd := s.Camera().Forward()
	s.Frame(1)

	want := start.Add(fwd.Mul(10))
	if !s.Camera().Position.ApproxEqualThreshold(want, 1e-3) {
		t.Errorf("position = %v, want %v", s.Camera().Position, want)
	}
}

func TestStateString(t *testing.T) {
	for st, want := range map[State]string{StateInit: "init", StateRunning: "running", StateDisposed: "disposed", State(9): "unknown"} {
		if got := st.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", st, got, want)
		}
	}
}

func TestAfterRenderRunsAfterDraw(t *testing.T) {
	var order []string
	r := &fakeRenderer{renderFn: func() error {
		order = append(order, "render")
		return nil
	}}
	s := newSession(t, r, newFakeFetcher())

	s.Frame(0.016)
	s.AfterRender(func() { order = append(order, "capture") })
	if len(order) != 1 {
		t.Fatalf("hook ran before the next frame: %v", order)
	}

	s.Frame(0.016)
	s.Frame(0.016)

	want := []string{"render", "render", "capture", "render"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestUpdateTerrainRacesClose(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := newFakeFetcher()
		s, err := New(Options{Renderer: &fakeRenderer{}, Surface: &fakeSurface{w: 10, h: 10, ratio: 1}, Fetcher: f, Logger: zap.NewNop()})
		if err != nil {
			t.Fatal(err)
		}

		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := 0; k < 20; k++ {
					s.UpdateTerrain(context.Background(), originZ1)
				}
			}()
		}
		s.Close()
		wg.Wait()

		if _, err := s.UpdateTerrain(context.Background(), originZ1); !errors.Is(err, ErrDisposed) {
			t.Fatalf("UpdateTerrain after Close = %v, want ErrDisposed", err)
		}
	}
}
