// Package ui2d is a small immediate-mode UI drawn over the 3D scene:
// movable windows with labels, text inputs and buttons.
package ui2d

const (
	titleBarH = 20
	padding   = 8
	defaultH  = 24
)

// Context tracks widget interaction state across frames.
type Context struct {
	painter Painter
	input   *InputState

	// Active/hot widget tracking for interaction
	hotWidget    string
	activeWidget string
	focused      string

	windows map[string]*WindowState

	// Current window being drawn
	currentWindow *WindowState

	// Layout state
	cursorX float32
	cursorY float32
	rowH    float32
}

// WindowState holds state for a UI window.
type WindowState struct {
	ID     string
	X, Y   float32
	W, H   float32
	Moving bool
	moved  bool
}

// NewContext creates a UI context drawing with p.
func NewContext(p Painter) *Context {
	return &Context{
		painter: p,
		input:   &InputState{},
		windows: make(map[string]*WindowState),
	}
}

// Input returns the input state for the caller to fill before Begin.
func (c *Context) Input() *InputState {
	return c.input
}

// Begin starts a new UI frame.
func (c *Context) Begin() {
	c.input.Update()
	c.hotWidget = ""
}

// End finishes the UI frame.
func (c *Context) End() {
	if c.focused == "\t" {
		// Tab out of the last field.
		c.focused = ""
	}
	if c.input.MouseLeftPressed && c.hotWidget == "" && !c.WantsMouse() {
		// Clicking the scene drops text focus.
		c.focused = ""
	}
	c.input.EndFrame()
}

// WantsMouse reports whether the mouse is over a window or a window is
// being dragged, so the scene should ignore it.
func (c *Context) WantsMouse() bool {
	for _, ws := range c.windows {
		if ws.Moving || ws.rect().Contains(c.input.MouseX, c.input.MouseY) {
			return true
		}
	}
	return false
}

// WantsKeyboard reports whether a text input has focus.
func (c *Context) WantsKeyboard() bool {
	return c.focused != ""
}

func (ws *WindowState) rect() Rect {
	return Rect{ws.X, ws.Y, ws.W, ws.H}
}

// BeginWindow starts a window at (x, y) unless the user has dragged it
// elsewhere.
func (c *Context) BeginWindow(id string, x, y, w, h float32, title string) bool {
	ws, ok := c.windows[id]
	if !ok {
		ws = &WindowState{ID: id, X: x, Y: y}
		c.windows[id] = ws
	} else if !ws.moved {
		ws.X, ws.Y = x, y
	}
	ws.W, ws.H = w, h

	c.currentWindow = ws

	titleBar := Rect{ws.X, ws.Y, ws.W, titleBarH}
	if c.input.MouseLeftPressed && titleBar.Contains(c.input.MouseX, c.input.MouseY) {
		ws.Moving = true
		ws.moved = true
		c.activeWidget = id + "_titlebar"
	}
	if ws.Moving && c.input.MouseLeftDown {
		ws.X += c.input.MouseDeltaX
		ws.Y += c.input.MouseDeltaY
	}
	if c.input.MouseLeftReleased {
		ws.Moving = false
		if c.activeWidget == id+"_titlebar" {
			c.activeWidget = ""
		}
	}

	c.painter.DrawRect(ws.X, ws.Y, ws.W, ws.H, ColorPanelBg)
	DrawRectOutline(c.painter, ws.X, ws.Y, ws.W, ws.H, 1, ColorPanelBorder)
	c.painter.DrawRect(ws.X+1, ws.Y+1, ws.W-2, titleBarH-1, ColorTitleBar)

	_, textH := c.painter.MeasureText(title)
	c.painter.DrawText(ws.X+padding, ws.Y+(titleBarH-textH)/2, title, ColorText)

	c.cursorX = ws.X + padding
	c.cursorY = ws.Y + titleBarH + padding
	c.rowH = 0

	return true
}

// EndWindow ends the current window.
func (c *Context) EndWindow() {
	c.currentWindow = nil
}

// Row starts a new row with the given height.
func (c *Context) Row(height float32) {
	if c.currentWindow == nil {
		return
	}
	c.cursorX = c.currentWindow.X + padding
	c.cursorY += c.rowH + 4
	c.rowH = height
}

func (c *Context) widgetRect(width float32) Rect {
	h := c.rowH
	if h == 0 {
		h = defaultH
	}
	if width == 0 {
		width = c.currentWindow.X + c.currentWindow.W - padding - c.cursorX
	}
	return Rect{c.cursorX, c.cursorY, width, h}
}

// Button draws a button and returns true if it was clicked this frame.
func (c *Context) Button(id string, width float32, label string) bool {
	if c.currentWindow == nil {
		return false
	}

	fullID := c.currentWindow.ID + "_" + id
	rect := c.widgetRect(width)

	hovered := rect.Contains(c.input.MouseX, c.input.MouseY)
	clicked := false
	if hovered {
		c.hotWidget = fullID
		if c.input.MouseLeftPressed {
			c.activeWidget = fullID
			c.focused = ""
			clicked = true
		}
	}
	if c.activeWidget == fullID && c.input.MouseLeftReleased {
		c.activeWidget = ""
	}

	color := ColorButtonNormal
	if c.activeWidget == fullID {
		color = ColorButtonActive
	} else if hovered {
		color = ColorButtonHover
	}
	c.painter.DrawRect(rect.X, rect.Y, rect.W, rect.H, color)
	DrawRectOutline(c.painter, rect.X, rect.Y, rect.W, rect.H, 1, ColorPanelBorder)

	textW, textH := c.painter.MeasureText(label)
	c.painter.DrawText(rect.X+(rect.W-textW)/2, rect.Y+(rect.H-textH)/2, label, ColorText)

	c.cursorX += rect.W + 4
	return clicked
}

// Label draws a text label.
func (c *Context) Label(text string) {
	c.LabelColored(text, ColorText)
}

// LabelColored draws a text label with a specific color.
func (c *Context) LabelColored(text string, color Color) {
	if c.currentWindow == nil {
		return
	}
	c.painter.DrawText(c.cursorX, c.cursorY, text, color)
	w, _ := c.painter.MeasureText(text)
	c.cursorX += w + 4
}

// TextInput draws a single-line text field. It returns the new value,
// whether it changed and whether Enter was pressed while it had focus.
// Tab moves focus to the next field.
func (c *Context) TextInput(id string, width float32, value string) (string, bool, bool) {
	if c.currentWindow == nil {
		return value, false, false
	}

	fullID := c.currentWindow.ID + "_" + id
	rect := c.widgetRect(width)

	hovered := rect.Contains(c.input.MouseX, c.input.MouseY)
	if hovered {
		c.hotWidget = fullID
		if c.input.MouseLeftPressed {
			c.focused = fullID
		}
	}
	if c.focused == "\t" {
		// Previous field passed focus on.
		c.focused = fullID
	}

	changed, submitted := false, false
	if c.focused == fullID {
		switch {
		case c.input.KeyEscape:
			c.focused = ""
		case c.input.KeyEnter:
			submitted = true
		case c.input.KeyTab:
			c.focused = "\t"
			c.input.KeyTab = false
		}
		if c.input.TextInput != "" {
			value += c.input.TextInput
			changed = true
		}
		if c.input.KeyBackspace && value != "" {
			r := []rune(value)
			value = string(r[:len(r)-1])
			changed = true
		}
	}

	focused := c.focused == fullID
	c.painter.DrawRect(rect.X, rect.Y, rect.W, rect.H, ColorInputBg)
	border := ColorInputBorder
	if focused {
		border = ColorHighlight
	}
	DrawRectOutline(c.painter, rect.X, rect.Y, rect.W, rect.H, 1, border)

	textW, textH := c.painter.MeasureText(value)
	textY := rect.Y + (rect.H-textH)/2
	c.painter.DrawText(rect.X+4, textY, value, ColorText)
	if focused {
		c.painter.DrawRect(rect.X+4+textW, rect.Y+4, 2, rect.H-8, ColorText)
	}

	c.cursorX += rect.W + 4
	return value, changed, submitted
}

// Separator draws a horizontal line and starts a new row.
func (c *Context) Separator() {
	if c.currentWindow == nil {
		return
	}
	c.cursorY += c.rowH + 4
	c.rowH = 0
	x := c.currentWindow.X + padding
	c.painter.DrawRect(x, c.cursorY, c.currentWindow.W-2*padding, 1, ColorPanelBorder)
	c.cursorY += 4
	c.cursorX = x
}
