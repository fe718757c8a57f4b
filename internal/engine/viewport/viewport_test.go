package viewport

import "testing"

type surface struct {
	w, h  int
	ratio float64
}

func (s *surface) ClientSize() (int, int) { return s.w, s.h }
func (s *surface) PixelRatio() float64    { return s.ratio }

func TestSyncIdempotent(t *testing.T) {
	s := &surface{w: 800, h: 600, ratio: 2}
	var v Viewport
	calls := 0
	realloc := func(w, h int) {
		calls++
		if w != 1600 || h != 1200 {
			t.Errorf("realloc(%d, %d), want 1600x1200", w, h)
		}
	}

	if !v.Sync(s, realloc) {
		t.Fatal("first Sync did not resize")
	}
	for i := 0; i < 5; i++ {
		if v.Sync(s, realloc) {
			t.Fatalf("Sync %d resized an unchanged surface", i)
		}
	}
	if calls != 1 {
		t.Errorf("realloc called %d times, want 1", calls)
	}
}

func TestSyncFollowsChanges(t *testing.T) {
	s := &surface{w: 640, h: 480, ratio: 1}
	var v Viewport
	v.Sync(s, nil)

	s.w = 1024
	if !v.Sync(s, nil) {
		t.Fatal("width change not applied")
	}
	if v.Width != 1024 || v.Height != 480 {
		t.Errorf("viewport = %dx%d", v.Width, v.Height)
	}

	// Same points, new ratio: the pixel size changes.
	s.ratio = 2
	if !v.Sync(s, nil) {
		t.Fatal("pixel ratio change not applied")
	}
	if v.Width != 2048 || v.Height != 960 {
		t.Errorf("viewport = %dx%d", v.Width, v.Height)
	}
}

func TestPixelSizeBadRatio(t *testing.T) {
	w, h := PixelSize(&surface{w: 10, h: 20, ratio: 0})
	if w != 10 || h != 20 {
		t.Errorf("PixelSize = %dx%d, want 10x20", w, h)
	}
}

func TestAspect(t *testing.T) {
	if got := (Viewport{}).Aspect(); got != 1 {
		t.Errorf("empty aspect = %f", got)
	}
	if got := (Viewport{Width: 1600, Height: 800}).Aspect(); got != 2 {
		t.Errorf("aspect = %f, want 2", got)
	}
}
