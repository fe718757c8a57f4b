package camera

import "github.com/go-gl/mathgl/mgl32"

// FlyState is the control input sampled for one frame.
type FlyState struct {
	Forward, Back  bool
	Left, Right    bool
	Up, Down       bool
	RollLeft       bool
	RollRight      bool
	YawLeft        bool
	YawRight       bool
	PitchUp        bool
	PitchDown      bool
	Dragging       bool
	MouseX, MouseY int
	ViewW, ViewH   int
}

// FlyControls moves a FlyCamera in its local frame: WASD-style translation,
// keyboard roll/yaw/pitch, and look-by-drag where the mouse offset from the
// view center sets the turn rate.
type FlyControls struct {
	Camera        *FlyCamera
	MovementSpeed float32 // units per second
	RollSpeed     float32 // radians per second
	LookSpeed     float32 // scales the mouse turn rate
	DragToLook    bool
}

// NewFlyControls creates controls for cam.
func NewFlyControls(cam *FlyCamera, movementSpeed, rollSpeed float32) *FlyControls {
	return &FlyControls{
		Camera:        cam,
		MovementSpeed: movementSpeed,
		RollSpeed:     rollSpeed,
		LookSpeed:     1,
		DragToLook:    true,
	}
}

// Update applies state over dt seconds.
func (fc *FlyControls) Update(state FlyState, dt float32) {
	move, rot := fc.vectors(state)

	moveMult := dt * fc.MovementSpeed
	rotMult := dt * fc.RollSpeed

	cam := fc.Camera
	cam.Position = cam.Position.Add(cam.Orientation.Rotate(move.Mul(moveMult)))

	angle := rot.Len() * rotMult
	if angle > 0 {
		delta := mgl32.QuatRotate(angle, rot.Normalize())
		cam.Orientation = cam.Orientation.Mul(delta).Normalize()
	}
}

// vectors converts the frame's input into local-space move and rotation axes.
func (fc *FlyControls) vectors(s FlyState) (move, rot mgl32.Vec3) {
	move = mgl32.Vec3{
		b2f(s.Right) - b2f(s.Left),
		b2f(s.Up) - b2f(s.Down),
		b2f(s.Back) - b2f(s.Forward),
	}

	pitch := b2f(s.PitchUp) - b2f(s.PitchDown)
	yaw := b2f(s.YawLeft) - b2f(s.YawRight)
	roll := b2f(s.RollLeft) - b2f(s.RollRight)

	if (!fc.DragToLook || s.Dragging) && s.ViewW > 0 && s.ViewH > 0 {
		halfW := float32(s.ViewW) / 2
		halfH := float32(s.ViewH) / 2
		yaw -= (float32(s.MouseX) - halfW) / halfW * fc.LookSpeed
		pitch -= (float32(s.MouseY) - halfH) / halfH * fc.LookSpeed
	}

	return move, mgl32.Vec3{pitch, yaw, roll}
}

func b2f(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
