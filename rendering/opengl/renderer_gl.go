package opengl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"orbitviz/core"
	"orbitviz/gpu"
	"orbitviz/rendering/geometry"
	"orbitviz/rendering/opengl/shaders"
	"orbitviz/rendering/textures"
)

const instrumentationName = "orbitviz/rendering/opengl"

// DefaultCloudPeriod is one full cycle of the cloud animation phase
const DefaultCloudPeriod = 1000 * time.Second

// FrameStats summarizes one tick
type FrameStats struct {
	DrawCalls int
	Markers   int
	Orbits    int
	Delta     time.Duration
}

// bodyPass draws the shared sphere with one program and its textures
type bodyPass struct {
	kind     shaders.Kind
	textures []textures.Name
	front    gpu.Winding
	depth    bool
}

// bodyPasses run in order before the satellites. The skybox is seen from
// inside the sphere, so it flips the front face and leaves depth alone.
var bodyPasses = []bodyPass{
	{shaders.Skybox, []textures.Name{textures.Space}, gpu.Clockwise, false},
	{shaders.Emissive, []textures.Name{textures.SunColor}, gpu.CounterClockwise, true},
	{shaders.Moon, []textures.Name{textures.MoonColor, textures.MoonNormal, textures.MoonSpecular}, gpu.CounterClockwise, true},
	{shaders.Surface, []textures.Name{
		textures.EarthDay, textures.EarthNight, textures.EarthClouds, textures.EarthNormal, textures.EarthSpecular,
	}, gpu.CounterClockwise, true},
}

// Renderer issues the draw calls of one frame. It only reads the scene; all
// matrices except per-satellite ones are already resident in the programs.
type Renderer struct {
	dev   gpu.Device
	scene *core.Scene
	lib   *shaders.Library
	geo   *geometry.Store
	tex   *textures.Set
	log   zerolog.Logger

	// CloudPeriod is the period of the phase uniform fed to the planet
	CloudPeriod time.Duration

	last   time.Time
	frames metric.Int64Counter
	draws  metric.Int64Counter
}

// NewRenderer creates a renderer over already-owned resources
func NewRenderer(dev gpu.Device, scene *core.Scene, lib *shaders.Library, geo *geometry.Store, tex *textures.Set, log zerolog.Logger) (*Renderer, error) {
	r := &Renderer{
		dev:         dev,
		scene:       scene,
		lib:         lib,
		geo:         geo,
		tex:         tex,
		log:         log.With().Str("component", "renderer").Logger(),
		CloudPeriod: DefaultCloudPeriod,
	}

	m := otel.Meter(instrumentationName)
	var err error
	r.frames, err = m.Int64Counter(
		"orbitviz.frames",
		metric.WithDescription("Frames rendered"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frames counter: %w", err)
	}
	r.draws, err = m.Int64Counter(
		"orbitviz.draw_calls",
		metric.WithDescription("Draw calls issued, by pass"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating draw counter: %w", err)
	}
	return r, nil
}

// Phase maps now onto [0,1) with the configured cloud period
func (r *Renderer) Phase(now time.Time) float32 {
	period := r.CloudPeriod.Milliseconds()
	if period <= 0 {
		return 0
	}
	return float32(now.UnixMilli()%period) / float32(period)
}

// Tick renders one frame. The host swaps buffers afterwards.
func (r *Renderer) Tick(now time.Time) FrameStats {
	var stats FrameStats
	if !r.last.IsZero() {
		stats.Delta = now.Sub(r.last)
	}
	r.last = now

	r.dev.Clear()
	for _, p := range bodyPasses {
		stats.DrawCalls += r.drawBody(p, now)
	}
	stats.Markers = r.drawMarkers()
	stats.Orbits = r.drawOrbits()
	stats.DrawCalls += stats.Markers + stats.Orbits

	r.dev.BindVertexArray(0)
	r.frames.Add(context.Background(), 1)
	return stats
}

func (r *Renderer) drawBody(p bodyPass, now time.Time) int {
	prog := r.lib.Program(p.kind)
	if prog.Handle == 0 || !r.geo.Bind(geometry.Sphere) {
		return 0
	}

	r.dev.SetDepthTest(p.depth)
	r.dev.SetDepthWrite(p.depth)
	if p.depth {
		r.dev.SetDepthLess()
	}
	r.dev.SetFrontFace(p.front)

	prog.Use()
	for unit, name := range p.textures {
		r.tex.Bind(uint32(unit), name)
	}
	if p.kind == shaders.Surface {
		prog.SetFloat(shaders.Phase, r.Phase(now))
	}
	r.geo.Draw(geometry.Sphere)
	r.count(p.kind, 1)
	return 1
}

// satelliteState restores depth and winding after the body passes
func (r *Renderer) satelliteState() {
	r.dev.SetDepthTest(true)
	r.dev.SetDepthWrite(true)
	r.dev.SetDepthLess()
	r.dev.SetFrontFace(gpu.CounterClockwise)
}

func (r *Renderer) drawMarkers() int {
	prog := r.lib.Program(shaders.Marker)
	if prog.Handle == 0 || !r.geo.Bind(geometry.Point) {
		return 0
	}
	r.satelliteState()
	prog.Use()

	n := 0
	for _, c := range core.Categories {
		if r.scene.Len(c) == 0 {
			continue
		}
		prog.SetVec3(shaders.Color, c.Color())
		r.scene.Each(c, func(_ int, sat core.Satellite) {
			prog.SetMat4(shaders.ModelMatrix, mgl32.Translate3D(sat.Marker.X(), sat.Marker.Y(), sat.Marker.Z()))
			r.geo.Draw(geometry.Point)
			n++
		})
	}
	r.count(shaders.Marker, n)
	return n
}

func (r *Renderer) drawOrbits() int {
	prog := r.lib.Program(shaders.Ring)
	if prog.Handle == 0 || !r.geo.Bind(geometry.Ring) {
		return 0
	}
	r.satelliteState()
	prog.Use()

	n := 0
	for _, c := range core.Categories {
		if r.scene.Len(c) == 0 {
			continue
		}
		prog.SetVec3(shaders.Color, c.Color())
		r.scene.Each(c, func(_ int, sat core.Satellite) {
			prog.SetMat4(shaders.ModelMatrix, sat.Orbit.Matrix())
			prog.SetVec3(shaders.TargetPos, sat.Marker)
			r.geo.Draw(geometry.Ring)
			n++
		})
	}
	r.count(shaders.Ring, n)
	return n
}

func (r *Renderer) count(k shaders.Kind, n int) {
	if n == 0 {
		return
	}
	r.draws.Add(context.Background(), int64(n), metric.WithAttributes(attribute.String("pass", k.String())))
}
