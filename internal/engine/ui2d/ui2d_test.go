package ui2d

import (
	"testing"
)

type fakePainter struct {
	rects int
	texts []string
}

func (p *fakePainter) DrawRect(x, y, w, h float32, c Color) { p.rects++ }

func (p *fakePainter) DrawText(x, y float32, text string, c Color) {
	p.texts = append(p.texts, text)
}

func (p *fakePainter) MeasureText(text string) (float32, float32) {
	return float32(len(text) * 7), 13
}

// frame runs one UI frame with a single window at (10, 10) sized 200x150.
// The first row of widgets spans x 18..202, y 42..66; the second y 70..94.
func frame(c *Context, mx, my float32, down bool, draw func()) {
	in := c.Input()
	in.MouseX, in.MouseY, in.MouseLeftDown = mx, my, down
	c.Begin()
	c.BeginWindow("w", 10, 10, 200, 150, "Test")
	draw()
	c.EndWindow()
	c.End()
}

func TestButtonClicksOnPress(t *testing.T) {
	c := NewContext(&fakePainter{})

	var clicks []bool
	button := func() {
		c.Row(24)
		clicks = append(clicks, c.Button("ok", 0, "OK"))
	}

	frame(c, 50, 50, false, button)
	frame(c, 50, 50, true, button)
	frame(c, 50, 50, true, button)
	frame(c, 50, 50, false, button)
	frame(c, 300, 300, true, button)

	want := []bool{false, true, false, false, false}
	for i := range want {
		if clicks[i] != want[i] {
			t.Fatalf("clicks = %v, want %v", clicks, want)
		}
	}
}

func TestTextInputEditing(t *testing.T) {
	c := NewContext(&fakePainter{})
	value := "1"
	var submitted bool
	field := func() {
		c.Row(24)
		value, _, submitted = c.TextInput("f", 0, value)
	}

	// Typing before focus is ignored.
	c.Input().TextInput = "x"
	frame(c, 300, 300, false, field)
	if value != "1" {
		t.Fatalf("unfocused field changed to %q", value)
	}

	frame(c, 50, 50, true, field)
	if !c.WantsKeyboard() {
		t.Fatal("click did not focus the field")
	}

	c.Input().TextInput = "2.5"
	frame(c, 50, 50, false, field)
	c.Input().KeyBackspace = true
	frame(c, 50, 50, false, field)
	if value != "12." {
		t.Errorf("value = %q, want 12.", value)
	}

	c.Input().KeyEnter = true
	frame(c, 50, 50, false, field)
	if !submitted {
		t.Error("Enter did not submit")
	}

	c.Input().KeyEscape = true
	frame(c, 50, 50, false, field)
	if c.WantsKeyboard() {
		t.Error("Escape did not drop focus")
	}
}

func TestTabMovesFocus(t *testing.T) {
	c := NewContext(&fakePainter{})
	a, b := "", ""
	fields := func() {
		c.Row(24)
		a, _, _ = c.TextInput("a", 0, a)
		c.Row(24)
		b, _, _ = c.TextInput("b", 0, b)
	}

	frame(c, 50, 50, true, fields)
	frame(c, 50, 50, false, fields)
	c.Input().KeyTab = true
	frame(c, 50, 50, false, fields)
	c.Input().TextInput = "9"
	frame(c, 50, 50, false, fields)

	if a != "" || b != "9" {
		t.Errorf("a = %q, b = %q, want text in b", a, b)
	}

	// Tab out of the last field clears focus.
	c.Input().KeyTab = true
	frame(c, 50, 50, false, fields)
	if c.WantsKeyboard() {
		t.Error("focus kept after tabbing out of the last field")
	}
}

func TestClickOutsideDropsFocus(t *testing.T) {
	c := NewContext(&fakePainter{})
	v := ""
	field := func() {
		c.Row(24)
		v, _, _ = c.TextInput("f", 0, v)
	}

	frame(c, 50, 50, true, field)
	frame(c, 50, 50, false, field)
	if !c.WantsMouse() {
		t.Error("mouse over window not claimed")
	}

	frame(c, 400, 400, true, field)
	if c.WantsKeyboard() {
		t.Error("click on the scene kept text focus")
	}
	if c.WantsMouse() {
		t.Error("mouse outside windows claimed")
	}
}

func TestWindowDragByTitleBar(t *testing.T) {
	c := NewContext(&fakePainter{})
	noop := func() {}

	frame(c, 20, 15, false, noop)
	frame(c, 20, 15, true, noop)
	frame(c, 70, 45, true, noop)
	frame(c, 70, 45, false, noop)
	// The next BeginWindow must not snap back to the requested position.
	frame(c, 0, 0, false, noop)

	ws := c.windows["w"]
	if ws.X != 60 || ws.Y != 40 {
		t.Errorf("window at (%v, %v), want (60, 40)", ws.X, ws.Y)
	}
}

func TestFontAtlas(t *testing.T) {
	f := NewFont()

	cw, ch := f.GlyphSize()
	if cw != 7 || ch != 13 {
		t.Fatalf("glyph size = %dx%d, want 7x13", cw, ch)
	}
	if b := f.Atlas().Bounds(); b.Dx() != 16*7 || b.Dy() != 6*13 {
		t.Fatalf("atlas = %v, want 112x78", b)
	}

	coverage := func(r rune) (n int, full bool) {
		full = true
		c := f.cell(r)
		for y := c.Min.Y; y < c.Max.Y; y++ {
			for x := c.Min.X; x < c.Max.X; x++ {
				a := f.Atlas().AlphaAt(x, y).A
				if a > 0 {
					n++
				}
				if a != 255 {
					full = false
				}
			}
		}
		return n, full
	}

	if n, _ := coverage(' '); n != 0 {
		t.Errorf("space has %d covered pixels", n)
	}
	if n, _ := coverage('A'); n == 0 {
		t.Error("'A' has no coverage")
	}
	if _, full := coverage(solidGlyph); !full {
		t.Error("solid cell is not opaque")
	}

	if f.cell('é') != f.cell('?') {
		t.Error("non-ASCII rune does not map to '?'")
	}
	if u0, v0, u1, v1 := f.GlyphUV('!'); u0 != 1.0/16 || v0 != 0 || u1 != 2.0/16 || v1 != 1.0/6 {
		t.Errorf("GlyphUV('!') = %v %v %v %v", u0, v0, u1, v1)
	}

	if w, h := f.MeasureText("héllo", 2); w != 70 || h != 26 {
		t.Errorf("MeasureText = %vx%v, want 70x26", w, h)
	}
}
