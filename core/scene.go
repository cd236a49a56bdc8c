package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// SunScale and MoonScale are relative to the planet, whose diameter is one scene unit
	SunScale  = 109.168
	MoonScale = 0.272
)

// Default body placement in scene units (one unit is one Earth diameter)
var (
	DefaultSunPosition  = mgl32.Vec3{11740.7, 0, 0}
	DefaultMoonPosition = mgl32.Vec3{-30.168, 0, 0}
)

// Scene is the mutable model shared by the synchronizer and the renderer.
// Every setter writes exactly its field and then reports which Field changed.
type Scene struct {
	Sun    Transform
	Moon   Transform
	Planet Transform
	Camera Camera
	Lens   Lens

	width, height int
	satellites    [len(Categories)][]Satellite
	listener      func(Field)
}

// NewScene returns a scene with the default body layout and camera
func NewScene() *Scene {
	s := &Scene{
		Sun:    NewTransform(SunScale),
		Moon:   NewTransform(MoonScale),
		Planet: NewTransform(1),
		Camera: DefaultCamera(),
		Lens:   DefaultLens(),
	}
	s.Sun.Position = DefaultSunPosition
	s.Moon.Position = DefaultMoonPosition
	return s
}

// OnChange installs the change listener, replacing any previous one
func (s *Scene) OnChange(fn func(Field)) { s.listener = fn }

func (s *Scene) notify(f Field) {
	if s.listener != nil {
		s.listener(f)
	}
}

func (s *Scene) SetSunPosition(v mgl32.Vec3) {
	s.Sun.Position = v
	s.notify(Sun)
}

func (s *Scene) SetMoonPosition(v mgl32.Vec3) {
	s.Moon.Position = v
	s.notify(Moon)
}

// SetMoonRotation sets the moon's Euler angles in degrees
func (s *Scene) SetMoonRotation(v mgl32.Vec3) {
	s.Moon.Rotation = v
	s.notify(Moon)
}

// SetPlanetRotation sets the planet's Euler angles in degrees
func (s *Scene) SetPlanetRotation(v mgl32.Vec3) {
	s.Planet.Rotation = v
	s.notify(Planet)
}

func (s *Scene) SetCameraTarget(v mgl32.Vec3) {
	s.Camera.Target = v
	s.notify(View)
}

// SetCameraDirection stores a normalized copy of dir
func (s *Scene) SetCameraDirection(dir mgl32.Vec3) {
	s.Camera.Direction = dir.Normalize()
	s.notify(View)
}

// SetZoom stores the camera distance as given; clamping is the controller's job
func (s *Scene) SetZoom(z float32) {
	s.Camera.Zoom = z
	s.notify(View)
}

// Resize records the viewport size in pixels
func (s *Scene) Resize(w, h int) {
	s.width, s.height = w, h
	s.notify(Projection)
}

// Size returns the last viewport size
func (s *Scene) Size() (int, int) { return s.width, s.height }

// ViewMatrix is the shared camera view
func (s *Scene) ViewMatrix() mgl32.Mat4 { return s.Camera.ViewMatrix() }

// ProjectionMatrix is the lens projection for the current viewport
func (s *Scene) ProjectionMatrix() mgl32.Mat4 { return s.Lens.Matrix(s.width, s.height) }

// Satellites returns a copy of a category's satellites
func (s *Scene) Satellites(c Category) []Satellite {
	if !c.valid() {
		return nil
	}
	return append([]Satellite(nil), s.satellites[c]...)
}

// Len returns the number of satellites in a category
func (s *Scene) Len(c Category) int {
	if !c.valid() {
		return 0
	}
	return len(s.satellites[c])
}

// Each calls fn for every satellite of a category, in index order
func (s *Scene) Each(c Category, fn func(i int, sat Satellite)) {
	if !c.valid() {
		return
	}
	for i, sat := range s.satellites[c] {
		fn(i, sat)
	}
}

// SetSatellites replaces a category from index-aligned marker and orbit
// lists. Lists of different lengths are rejected and the scene is unchanged.
func (s *Scene) SetSatellites(c Category, markers []mgl32.Vec3, orbits []Orbit) error {
	if !c.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	if len(markers) != len(orbits) {
		return fmt.Errorf("%s: %d markers, %d orbits: %w", c, len(markers), len(orbits), ErrLengthMismatch)
	}
	sats := make([]Satellite, len(markers))
	for i := range markers {
		sats[i] = Satellite{Marker: markers[i], Orbit: orbits[i]}
	}
	s.satellites[c] = sats
	return nil
}

// AddSatellite appends a satellite to a category and returns its index
func (s *Scene) AddSatellite(c Category, sat Satellite) (int, error) {
	if !c.valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	s.satellites[c] = append(s.satellites[c], sat)
	return len(s.satellites[c]) - 1, nil
}

// RemoveSatellite deletes the satellite at index i, shifting later entries down
func (s *Scene) RemoveSatellite(c Category, i int) error {
	if err := s.checkIndex(c, i); err != nil {
		return err
	}
	s.satellites[c] = append(s.satellites[c][:i], s.satellites[c][i+1:]...)
	return nil
}

// SetMarker moves the marker at index i
func (s *Scene) SetMarker(c Category, i int, pos mgl32.Vec3) error {
	if err := s.checkIndex(c, i); err != nil {
		return err
	}
	s.satellites[c][i].Marker = pos
	return nil
}

// SetOrbit replaces the orbit at index i
func (s *Scene) SetOrbit(c Category, i int, o Orbit) error {
	if err := s.checkIndex(c, i); err != nil {
		return err
	}
	s.satellites[c][i].Orbit = o
	return nil
}

// ClearSatellites empties a category
func (s *Scene) ClearSatellites(c Category) {
	if c.valid() {
		s.satellites[c] = nil
	}
}

func (s *Scene) checkIndex(c Category, i int) error {
	if !c.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	if i < 0 || i >= len(s.satellites[c]) {
		return fmt.Errorf("%s[%d] of %d: %w", c, i, len(s.satellites[c]), ErrIndexOutOfRange)
	}
	return nil
}
