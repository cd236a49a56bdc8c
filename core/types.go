package core

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrLengthMismatch is returned when a category's marker and orbit lists differ in length
	ErrLengthMismatch = errors.New("marker and orbit lists differ in length")
	// ErrIndexOutOfRange is returned by per-satellite updates with a bad index
	ErrIndexOutOfRange = errors.New("satellite index out of range")
	// ErrUnknownCategory is returned for a category outside Green/Red
	ErrUnknownCategory = errors.New("unknown satellite category")
)

// WorldUp is the up vector shared by the camera and its controller
var WorldUp = mgl32.Vec3{0, 1, 0}

// Category partitions markers and orbits into two display groups
type Category int

const (
	Green Category = iota
	Red
)

// Categories lists every category in draw order
var Categories = [...]Category{Green, Red}

func (c Category) String() string {
	switch c {
	case Green:
		return "green"
	case Red:
		return "red"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Color is the fixed display colour of the category
func (c Category) Color() mgl32.Vec3 {
	if c == Red {
		return mgl32.Vec3{1, 0.1, 0.1}
	}
	return mgl32.Vec3{0.1, 1, 0.1}
}

func (c Category) valid() bool { return c == Green || c == Red }

// ParseCategory maps "green"/"red" to a Category
func ParseCategory(s string) (Category, error) {
	switch s {
	case "green":
		return Green, nil
	case "red":
		return Red, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Field names a piece of scene state that uniforms depend on
type Field int

const (
	Sun Field = iota
	Moon
	Planet
	View
	Projection
)

// Fields lists every field, in the order a full resync pushes them
var Fields = [...]Field{Projection, View, Sun, Moon, Planet}

func (f Field) String() string {
	switch f {
	case Sun:
		return "sun"
	case Moon:
		return "moon"
	case Planet:
		return "planet"
	case View:
		return "view"
	case Projection:
		return "projection"
	default:
		return "unknown"
	}
}

// Orbit describes an elliptical ring: unit circle scaled by Scale, rotated by
// Tilt (Euler degrees) and centred on Offset.
type Orbit struct {
	Tilt   mgl32.Vec3 `json:"tilt"`
	Scale  mgl32.Vec3 `json:"scale"`
	Offset mgl32.Vec3 `json:"offset"`
}

// Matrix composes translate(offset)·rotate(tilt)·scale(radii)
func (o Orbit) Matrix() mgl32.Mat4 {
	return Transform{Position: o.Offset, Rotation: o.Tilt, Scale: o.Scale}.Matrix()
}

// Satellite is a marker paired with its orbit
type Satellite struct {
	Marker mgl32.Vec3 `json:"marker"`
	Orbit  Orbit      `json:"orbit"`
}

// Mesh is a triangulated mesh with optional per-vertex attributes.
// Attribute slices are flat: 3 floats per position/normal/bitangent, 2 per UV.
type Mesh struct {
	Name       string
	Positions  []float32
	Normals    []float32
	Bitangents []float32
	UVs        []float32
	Indices    []uint32
}

// VertexCount returns the number of vertices in the mesh
func (m *Mesh) VertexCount() int { return len(m.Positions) / 3 }

// Validate checks attribute lengths and index bounds
func (m *Mesh) Validate() error {
	n := m.VertexCount()
	if n == 0 || len(m.Positions)%3 != 0 {
		return fmt.Errorf("mesh %q: bad position count %d", m.Name, len(m.Positions))
	}
	if len(m.Normals) != 0 && len(m.Normals) != n*3 {
		return fmt.Errorf("mesh %q: %d normals for %d vertices", m.Name, len(m.Normals)/3, n)
	}
	if len(m.Bitangents) != 0 && len(m.Bitangents) != n*3 {
		return fmt.Errorf("mesh %q: %d bitangents for %d vertices", m.Name, len(m.Bitangents)/3, n)
	}
	if len(m.UVs) != 0 && len(m.UVs) != n*2 {
		return fmt.Errorf("mesh %q: %d uvs for %d vertices", m.Name, len(m.UVs)/2, n)
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: index count %d is not a multiple of 3", m.Name, len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("mesh %q: index %d out of range", m.Name, idx)
		}
	}
	return nil
}
