package ui2d

// InputState holds the input the UI sees for one frame. Coordinates are in
// window points.
type InputState struct {
	MouseX      float32
	MouseY      float32
	MouseDeltaX float32
	MouseDeltaY float32

	MouseLeftDown     bool
	MouseLeftPressed  bool
	MouseLeftReleased bool

	// Text typed this frame.
	TextInput string

	// Keys that went down this frame.
	KeyBackspace bool
	KeyEnter     bool
	KeyEscape    bool
	KeyTab       bool

	prevMouseLeft bool
	prevMouseX    float32
	prevMouseY    float32
}

// Update derives deltas and press/release edges. Call it once per frame after
// the raw values are set.
func (i *InputState) Update() {
	i.MouseDeltaX = i.MouseX - i.prevMouseX
	i.MouseDeltaY = i.MouseY - i.prevMouseY

	i.MouseLeftPressed = i.MouseLeftDown && !i.prevMouseLeft
	i.MouseLeftReleased = !i.MouseLeftDown && i.prevMouseLeft

	i.prevMouseLeft = i.MouseLeftDown
	i.prevMouseX = i.MouseX
	i.prevMouseY = i.MouseY
}

// EndFrame clears per-frame input.
func (i *InputState) EndFrame() {
	i.TextInput = ""
	i.KeyBackspace = false
	i.KeyEnter = false
	i.KeyEscape = false
	i.KeyTab = false
}

// IsMouseInRect checks if the mouse is within a rectangle.
func (i *InputState) IsMouseInRect(x, y, w, h float32) bool {
	return Rect{x, y, w, h}.Contains(i.MouseX, i.MouseY)
}
