// Package camera provides the fly camera and its controls.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Defaults for the terrain flyover.
const (
	DefaultFovY = 80.0 // degrees
	DefaultNear = 0.1
	DefaultFar  = 1000.0
)

// FlyCamera is a free perspective camera: a position plus an orientation.
type FlyCamera struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat

	FovY   float32 // degrees
	Aspect float32
	Near   float32
	Far    float32
}

// NewFlyCamera returns a camera hovering above the south edge of the
// terrain grid, tilted slightly down.
func NewFlyCamera(fovY, aspect float32) *FlyCamera {
	if fovY <= 0 {
		fovY = DefaultFovY
	}
	if aspect <= 0 {
		aspect = 1
	}
	return &FlyCamera{
		Position:    mgl32.Vec3{0, 16, 143},
		Orientation: mgl32.QuatRotate(-0.275, mgl32.Vec3{1, 0, 0}),
		FovY:        fovY,
		Aspect:      aspect,
		Near:        DefaultNear,
		Far:         DefaultFar,
	}
}

// SetAspect updates the projection aspect ratio. Non-positive values are ignored.
func (c *FlyCamera) SetAspect(aspect float32) {
	if aspect > 0 {
		c.Aspect = aspect
	}
}

// ViewMatrix returns the world-to-camera transform.
func (c *FlyCamera) ViewMatrix() mgl32.Mat4 {
	rot := c.Orientation.Conjugate().Mat4()
	return rot.Mul4(mgl32.Translate3D(-c.Position[0], -c.Position[1], -c.Position[2]))
}

// ProjectionMatrix returns the perspective projection.
func (c *FlyCamera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

// Forward returns the camera's viewing direction (-Z in camera space).
func (c *FlyCamera) Forward() mgl32.Vec3 {
	return c.Orientation.Rotate(mgl32.Vec3{0, 0, -1})
}
