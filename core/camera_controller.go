package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Button identifies a pointer button
type Button int

const (
	PrimaryButton Button = iota
	SecondaryButton
	MiddleButton
)

// WheelNotch is the wheel delta of one detent, in 1/8 degree units
const WheelNotch = 120

// CameraSettings holds the controller's sensitivities and limits
type CameraSettings struct {
	SensX      float32 // degrees per pixel, horizontal
	SensY      float32 // degrees per pixel, vertical
	ZoomFactor float32 // zoom units per wheel delta unit
	MinZoom    float32
	MaxZoom    float32
	MaxPitch   float32 // degrees
}

// DefaultCameraSettings returns the stock drag and zoom behaviour
func DefaultCameraSettings() CameraSettings {
	return CameraSettings{
		SensX:      -0.5,
		SensY:      0.5,
		ZoomFactor: 0.001,
		MinZoom:    0.02,
		MaxZoom:    12,
		MaxPitch:   85,
	}
}

// CameraController turns drag and wheel input into camera direction and zoom.
// Accumulated pitch never leaves ±MaxPitch: a move that would cross the limit
// has its vertical component dropped.
type CameraController struct {
	scene    *Scene
	settings CameraSettings

	pointerDown bool
	dragOrigin  mgl32.Vec2
	pitch       float32
}

// NewCameraController drives the camera of scene
func NewCameraController(scene *Scene, settings CameraSettings) *CameraController {
	return &CameraController{scene: scene, settings: settings}
}

// Pitch returns the accumulated vertical tilt in degrees
func (c *CameraController) Pitch() float32 { return c.pitch }

// Dragging reports whether the primary button is held
func (c *CameraController) Dragging() bool { return c.pointerDown }

func (c *CameraController) PointerDown(b Button, x, y float32) {
	if b != PrimaryButton {
		return
	}
	c.dragOrigin = mgl32.Vec2{x, y}
	c.pointerDown = true
}

func (c *CameraController) PointerUp(b Button) {
	if b != PrimaryButton {
		return
	}
	c.pointerDown = false
}

// PointerMove rotates the camera while dragging. It reports whether the view changed.
func (c *CameraController) PointerMove(x, y float32) bool {
	if !c.pointerDown {
		return false
	}
	dx := (x - c.dragOrigin[0]) * c.settings.SensX
	dy := (y - c.dragOrigin[1]) * c.settings.SensY
	if p := c.pitch + dy; p > c.settings.MaxPitch || p < -c.settings.MaxPitch {
		dy = 0
	}
	c.pitch += dy

	dir := c.scene.Camera.Direction
	rot := mgl32.HomogRotate3D(mgl32.DegToRad(dx), WorldUp)
	if axis := dir.Cross(WorldUp); axis.Len() > 1e-6 {
		rot = mgl32.HomogRotate3D(mgl32.DegToRad(dy), axis.Normalize()).Mul4(rot)
	}
	c.dragOrigin = mgl32.Vec2{x, y}
	c.scene.SetCameraDirection(rot.Mul4x1(dir.Vec4(0)).Vec3())
	return true
}

// Wheel zooms by delta in 1/8 degree units; positive deltas move closer
func (c *CameraController) Wheel(delta float32) {
	z := c.scene.Camera.Zoom - delta*c.settings.ZoomFactor
	c.scene.SetZoom(mgl32.Clamp(z, c.settings.MinZoom, c.settings.MaxZoom))
}
