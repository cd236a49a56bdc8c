package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a position, an Euler rotation in degrees and a per-axis scale
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// NewTransform returns an identity transform scaled uniformly by s
func NewTransform(s float32) Transform {
	return Transform{Scale: mgl32.Vec3{s, s, s}}
}

// Matrix composes translate·rotate·scale. It is recomputed on every call.
func (t Transform) Matrix() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2])
	m = m.Mul4(EulerRotation(t.Rotation))
	return m.Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// EulerRotation builds the rotation for angles in degrees, applied roll (Z)
// first, then pitch (X), then yaw (Y).
func EulerRotation(deg mgl32.Vec3) mgl32.Mat4 {
	return mgl32.HomogRotate3DY(mgl32.DegToRad(deg[1])).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(deg[0]))).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(deg[2])))
}

// Camera orbits a target point at a distance of Zoom along Direction
type Camera struct {
	Target    mgl32.Vec3
	Direction mgl32.Vec3
	Zoom      float32
}

// DefaultCamera looks at the origin from +Z at distance 3
func DefaultCamera() Camera {
	return Camera{Direction: mgl32.Vec3{0, 0, 1}, Zoom: 3}
}

// Eye returns the camera position
func (c Camera) Eye() mgl32.Vec3 {
	return c.Target.Add(c.Direction.Mul(c.Zoom))
}

// ViewMatrix looks from the eye at the target with a fixed world up
func (c Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, WorldUp)
}

// Lens holds the perspective parameters; FOV is vertical, in degrees
type Lens struct {
	FOV  float32
	Near float32
	Far  float32
}

// DefaultLens matches a 45° camera that reaches past the sun
func DefaultLens() Lens {
	return Lens{FOV: 45, Near: 0.01, Far: 15000}
}

// Matrix returns the projection for a viewport of w×h pixels
func (l Lens) Matrix(w, h int) mgl32.Mat4 {
	aspect := float32(1)
	if w > 0 && h > 0 {
		aspect = float32(w) / float32(h)
	}
	return mgl32.Perspective(mgl32.DegToRad(l.FOV), aspect, l.Near, l.Far)
}
