// Package feed exposes the scene mutation API over a websocket. Network
// goroutines only decode and validate commands; the render thread applies
// them when it drains the queue.
package feed

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"orbitviz/core"
)

// Command types
const (
	TypeSun          = "sun"
	TypeMoon         = "moon"
	TypePlanet       = "planet"
	TypeCameraTarget = "camera_target"
	TypeSatellites   = "satellites"
)

var (
	ErrUnknownCommand = errors.New("unknown command type")
	ErrMissingField   = errors.New("missing field")
)

// Scene is the mutation surface commands are applied to
type Scene interface {
	SetSunPosition(p mgl32.Vec3)
	SetMoonPosition(p mgl32.Vec3)
	SetMoonRotation(r mgl32.Vec3)
	SetPlanetRotation(r mgl32.Vec3)
	SetCameraTarget(p mgl32.Vec3)
	SetSatellites(c core.Category, markers []mgl32.Vec3, orbits []core.Orbit) error
}

// Marker is a satellite position, either in scene units or geodetic
type Marker struct {
	Position *mgl32.Vec3      `json:"position,omitempty"`
	Geodetic *core.Geographic `json:"geodetic,omitempty"`
}

// Resolve returns the marker in scene units
func (m Marker) Resolve() (mgl32.Vec3, error) {
	switch {
	case m.Position != nil && m.Geodetic != nil:
		return mgl32.Vec3{}, fmt.Errorf("marker has both position and geodetic")
	case m.Position != nil:
		return *m.Position, nil
	case m.Geodetic != nil:
		if !core.ValidateCoordinates(*m.Geodetic) {
			return mgl32.Vec3{}, fmt.Errorf("geodetic %+v out of range", *m.Geodetic)
		}
		return core.GeodeticToScene(*m.Geodetic), nil
	default:
		return mgl32.Vec3{}, fmt.Errorf("marker: %w: position or geodetic", ErrMissingField)
	}
}

// Command is one decoded client message
type Command struct {
	Type     string      `json:"type"`
	Position *mgl32.Vec3 `json:"position,omitempty"`
	Rotation *mgl32.Vec3 `json:"rotation,omitempty"`

	Category string       `json:"category,omitempty"`
	Markers  []Marker     `json:"markers,omitempty"`
	Orbits   []core.Orbit `json:"orbits,omitempty"`

	category core.Category
	resolved []mgl32.Vec3
}

// Validate checks the command and resolves geodetic markers. A command
// that validates applies without error.
func (c *Command) Validate() error {
	switch c.Type {
	case TypeSun, TypeCameraTarget:
		if c.Position == nil {
			return fmt.Errorf("%s: %w: position", c.Type, ErrMissingField)
		}
	case TypeMoon:
		if c.Position == nil && c.Rotation == nil {
			return fmt.Errorf("%s: %w: position or rotation", c.Type, ErrMissingField)
		}
	case TypePlanet:
		if c.Rotation == nil {
			return fmt.Errorf("%s: %w: rotation", c.Type, ErrMissingField)
		}
	case TypeSatellites:
		cat, err := core.ParseCategory(c.Category)
		if err != nil {
			return err
		}
		if len(c.Markers) != len(c.Orbits) {
			return fmt.Errorf("%s: %d markers, %d orbits: %w", c.Category, len(c.Markers), len(c.Orbits), core.ErrLengthMismatch)
		}
		resolved := make([]mgl32.Vec3, len(c.Markers))
		for i, m := range c.Markers {
			if resolved[i], err = m.Resolve(); err != nil {
				return fmt.Errorf("markers[%d]: %w", i, err)
			}
		}
		c.category, c.resolved = cat, resolved
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
	return nil
}

// Apply performs a validated command on s
func (c *Command) Apply(s Scene) error {
	switch c.Type {
	case TypeSun:
		s.SetSunPosition(*c.Position)
	case TypeMoon:
		if c.Position != nil {
			s.SetMoonPosition(*c.Position)
		}
		if c.Rotation != nil {
			s.SetMoonRotation(*c.Rotation)
		}
	case TypePlanet:
		s.SetPlanetRotation(*c.Rotation)
	case TypeCameraTarget:
		s.SetCameraTarget(*c.Position)
	case TypeSatellites:
		return s.SetSatellites(c.category, c.resolved, c.Orbits)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
	return nil
}
