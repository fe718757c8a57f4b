// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/terrainview/internal/engine/camera"
	"github.com/Faultbox/terrainview/internal/engine/ui2d"
)

// EventType identifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
}

// Input tracks per-frame events plus held keys and mouse state for the
// fly controls.
type Input struct {
	events   []Event
	held     map[sdl.Scancode]bool
	dragging bool
	mouseX   int
	mouseY   int
	text     string
}

// New creates a new input handler and enables SDL text input events.
func New() *Input {
	sdl.StartTextInput()
	return &Input{
		events: make([]Event, 0, 16),
		held:   make(map[sdl.Scancode]bool),
	}
}

// Update polls SDL events. Returns true if the application should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	i.text = ""

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			code := e.Keysym.Scancode
			if e.Type == sdl.KEYDOWN {
				if e.Repeat == 0 {
					i.events = append(i.events, Event{Type: EventKeyDown, Key: code})
				}
				i.held[code] = true
			} else if e.Type == sdl.KEYUP {
				i.events = append(i.events, Event{Type: EventKeyUp, Key: code})
				delete(i.held, code)
			}

		case *sdl.TextInputEvent:
			i.text += e.GetText()

		case *sdl.MouseMotionEvent:
			i.mouseX, i.mouseY = int(e.X), int(e.Y)

		case *sdl.MouseButtonEvent:
			i.mouseX, i.mouseY = int(e.X), int(e.Y)
			if e.Button == sdl.BUTTON_LEFT {
				i.dragging = e.State == sdl.PRESSED
			}
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key went down this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// UIState copies this frame's mouse, text and editing keys into s.
func (i *Input) UIState(s *ui2d.InputState) {
	s.MouseX, s.MouseY = float32(i.mouseX), float32(i.mouseY)
	s.MouseLeftDown = i.dragging
	s.TextInput = i.text
	s.KeyBackspace = i.IsKeyPressed(sdl.SCANCODE_BACKSPACE)
	s.KeyEnter = i.IsKeyPressed(sdl.SCANCODE_RETURN) || i.IsKeyPressed(sdl.SCANCODE_KP_ENTER)
	s.KeyEscape = i.IsKeyPressed(sdl.SCANCODE_ESCAPE)
	s.KeyTab = i.IsKeyPressed(sdl.SCANCODE_TAB)
}

// FlyState maps held keys and the mouse to fly control input for a window
// of the given size: WASD move, R/F rise and fall, Q/E roll, arrows turn,
// left-drag looks.
func (i *Input) FlyState(width, height int) camera.FlyState {
	return camera.FlyState{
		Forward:   i.held[sdl.SCANCODE_W],
		Back:      i.held[sdl.SCANCODE_S],
		Left:      i.held[sdl.SCANCODE_A],
		Right:     i.held[sdl.SCANCODE_D],
		Up:        i.held[sdl.SCANCODE_R],
		Down:      i.held[sdl.SCANCODE_F],
		RollLeft:  i.held[sdl.SCANCODE_Q],
		RollRight: i.held[sdl.SCANCODE_E],
		YawLeft:   i.held[sdl.SCANCODE_LEFT],
		YawRight:  i.held[sdl.SCANCODE_RIGHT],
		PitchUp:   i.held[sdl.SCANCODE_UP],
		PitchDown: i.held[sdl.SCANCODE_DOWN],
		Dragging:  i.dragging,
		MouseX:    i.mouseX,
		MouseY:    i.mouseY,
		ViewW:     width,
		ViewH:     height,
	}
}
