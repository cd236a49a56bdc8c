package opengl

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"orbitviz/core"
	"orbitviz/gpu"
	"orbitviz/rendering/geometry"
	"orbitviz/rendering/opengl/shaders"
	"orbitviz/rendering/textures"
)

// ErrClosed is returned by Init after Close
var ErrClosed = errors.New("visualizer closed")

var errNoLoader = errors.New("no decoder configured")

// DefaultTextures maps every texture to its stock file name
func DefaultTextures() map[textures.Name]string {
	return map[textures.Name]string{
		textures.EarthDay:      "earth_day.jpg",
		textures.EarthNight:    "earth_night.jpg",
		textures.EarthClouds:   "earth_clouds.png",
		textures.EarthNormal:   "earth_normal.tif",
		textures.EarthSpecular: "earth_specular.jpg",
		textures.MoonColor:     "moon.jpg",
		textures.MoonNormal:    "moon_normal.jpg",
		textures.MoonSpecular:  "moon_specular.jpg",
		textures.SunColor:      "sun.jpg",
		textures.Space:         "space.jpg",
	}
}

// Options configures a Visualizer
type Options struct {
	// AssetsDir is prepended to relative mesh and texture paths
	AssetsDir string
	// MeshPath is the sphere asset; empty generates the sphere procedurally
	MeshPath string
	Textures map[textures.Name]string

	Meshes geometry.MeshLoader
	Images textures.ImageDecoder

	Camera      core.CameraSettings
	Lens        core.Lens
	State       gpu.StateConfig
	CloudPeriod time.Duration
}

// DefaultOptions returns options with the stock camera, lens, state and
// texture names. Meshes and Images must still be supplied.
func DefaultOptions() Options {
	return Options{
		Textures: DefaultTextures(),
		Camera:   core.DefaultCameraSettings(),
		Lens:     core.DefaultLens(),
		State: gpu.StateConfig{
			ClearColor: mgl32.Vec4{0, 0, 0, 1},
			PointSize:  20,
			LineWidth:  5,
		},
		CloudPeriod: DefaultCloudPeriod,
	}
}

// Visualizer ties the scene, its GPU resources and the input controller
// together. Every method must run on the thread that owns the GL context.
type Visualizer struct {
	dev  gpu.Device
	log  zerolog.Logger
	opts Options

	scene    *core.Scene
	lib      *shaders.Library
	geo      *geometry.Store
	tex      *textures.Set
	sync     *Synchronizer
	renderer *Renderer
	camera   *core.CameraController

	ready  bool
	closed bool
}

// NewVisualizer creates the resource owners without touching the device.
// Call Init once the context is current.
func NewVisualizer(dev gpu.Device, opts Options, log zerolog.Logger) (*Visualizer, error) {
	v := &Visualizer{
		dev:   dev,
		log:   log.With().Str("component", "visualizer").Logger(),
		opts:  opts,
		scene: core.NewScene(),
		lib:   shaders.NewLibrary(dev, log),
		geo:   geometry.NewStore(dev, log),
		tex:   textures.NewSet(dev, log),
	}
	if opts.Lens != (core.Lens{}) {
		v.scene.Lens = opts.Lens
	}
	if opts.Meshes == nil {
		opts.Meshes = geometry.MeshLoaderFunc(func(string) ([]*core.Mesh, error) { return nil, errNoLoader })
	}
	if opts.Images == nil {
		opts.Images = textures.ImageDecoderFunc(func(string) (gpu.Image, error) { return gpu.Image{}, errNoLoader })
	}
	v.opts = opts
	if opts.Camera == (core.CameraSettings{}) {
		opts.Camera = core.DefaultCameraSettings()
	}
	v.camera = core.NewCameraController(v.scene, opts.Camera)
	v.sync = NewSynchronizer(dev, v.scene, v.lib)
	v.scene.OnChange(v.sync.Sync)

	r, err := NewRenderer(dev, v.scene, v.lib, v.geo, v.tex, log)
	if err != nil {
		return nil, err
	}
	if opts.CloudPeriod > 0 {
		r.CloudPeriod = opts.CloudPeriod
	}
	v.renderer = r
	return v, nil
}

// Init performs the one-time GPU setup. Failures of individual shaders,
// meshes or textures are logged and joined into the returned error; the
// visualizer is ready regardless and skips whatever is missing.
func (v *Visualizer) Init() error {
	if v.closed {
		return ErrClosed
	}
	if v.ready {
		return nil
	}

	v.dev.Setup(v.opts.State)

	var errs []error
	if err := v.lib.Build(); err != nil {
		errs = append(errs, err)
	}
	if err := v.geo.LoadSphere(v.opts.Meshes, v.resolve(v.opts.MeshPath)); err != nil {
		v.log.Error().Err(err).Str("path", v.opts.MeshPath).Msg("sphere mesh unavailable")
		errs = append(errs, err)
	}
	v.geo.BuildProcedural()
	if err := v.tex.Load(v.opts.Images, v.opts.AssetsDir, v.opts.Textures); err != nil {
		errs = append(errs, err)
	}

	v.sync.SyncAll()
	v.ready = true

	err := errors.Join(errs...)
	v.log.Info().Bool("degraded", err != nil).Msg("visualizer initialized")
	return err
}

func (v *Visualizer) resolve(path string) string {
	if path == "" || v.opts.AssetsDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(v.opts.AssetsDir, path)
}

// Ready reports whether Init has run
func (v *Visualizer) Ready() bool { return v.ready && !v.closed }

// Scene exposes the scene for read access
func (v *Visualizer) Scene() *core.Scene { return v.scene }

// Camera exposes the camera controller
func (v *Visualizer) Camera() *core.CameraController { return v.camera }

// Library exposes the built shader programs
func (v *Visualizer) Library() *shaders.Library { return v.lib }

// Tick renders one frame; before Init it does nothing
func (v *Visualizer) Tick(now time.Time) FrameStats {
	if !v.Ready() {
		return FrameStats{}
	}
	return v.renderer.Tick(now)
}

// Close releases every GPU handle. Calling it again is a no-op.
func (v *Visualizer) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.scene.OnChange(nil)
	v.tex.Release()
	v.geo.Release()
	v.lib.Release()
	v.log.Debug().Msg("visualizer released")
}

// Mutation API

func (v *Visualizer) SetSunPosition(p mgl32.Vec3)    { v.scene.SetSunPosition(p) }
func (v *Visualizer) SetMoonPosition(p mgl32.Vec3)   { v.scene.SetMoonPosition(p) }
func (v *Visualizer) SetMoonRotation(r mgl32.Vec3)   { v.scene.SetMoonRotation(r) }
func (v *Visualizer) SetPlanetRotation(r mgl32.Vec3) { v.scene.SetPlanetRotation(r) }
func (v *Visualizer) SetCameraTarget(p mgl32.Vec3)   { v.scene.SetCameraTarget(p) }

// SetSatellites replaces a category; lists of different lengths are rejected
func (v *Visualizer) SetSatellites(c core.Category, markers []mgl32.Vec3, orbits []core.Orbit) error {
	return v.scene.SetSatellites(c, markers, orbits)
}

func (v *Visualizer) AddSatellite(c core.Category, sat core.Satellite) (int, error) {
	return v.scene.AddSatellite(c, sat)
}

func (v *Visualizer) RemoveSatellite(c core.Category, i int) error {
	return v.scene.RemoveSatellite(c, i)
}

func (v *Visualizer) SetMarker(c core.Category, i int, pos mgl32.Vec3) error {
	return v.scene.SetMarker(c, i, pos)
}

func (v *Visualizer) SetOrbit(c core.Category, i int, o core.Orbit) error {
	return v.scene.SetOrbit(c, i, o)
}

func (v *Visualizer) ClearSatellites(c core.Category) { v.scene.ClearSatellites(c) }

// Input

func (v *Visualizer) PointerDown(b core.Button, x, y float32) { v.camera.PointerDown(b, x, y) }
func (v *Visualizer) PointerUp(b core.Button)                 { v.camera.PointerUp(b) }
func (v *Visualizer) PointerMove(x, y float32) bool           { return v.camera.PointerMove(x, y) }

// Wheel zooms by delta in 1/8 degree units
func (v *Visualizer) Wheel(delta float32) { v.camera.Wheel(delta) }

// Resize updates the projection and viewport for a new framebuffer size
func (v *Visualizer) Resize(w, h int) { v.scene.Resize(w, h) }
