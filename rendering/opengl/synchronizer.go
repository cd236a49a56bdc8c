package opengl

import (
	"github.com/go-gl/mathgl/mgl32"

	"orbitviz/core"
	"orbitviz/gpu"
	"orbitviz/rendering/opengl/shaders"
)

// Synchronizer keeps resident uniforms consistent with the scene. Each field
// change recomputes only the values that depend on it and pushes them to the
// programs the registry lists for those semantics.
type Synchronizer struct {
	dev   gpu.Device
	scene *core.Scene
	lib   *shaders.Library
}

// NewSynchronizer binds a scene to the programs of lib
func NewSynchronizer(dev gpu.Device, scene *core.Scene, lib *shaders.Library) *Synchronizer {
	return &Synchronizer{dev: dev, scene: scene, lib: lib}
}

// Sync pushes every uniform that depends on f
func (s *Synchronizer) Sync(f core.Field) {
	switch f {
	case core.Sun:
		s.pushMat4(shaders.ModelMatrix, s.scene.Sun.Matrix(), shaders.Emissive)
		s.pushVec3(shaders.SunPos, s.scene.Sun.Position)
	case core.Moon:
		s.pushMat4(shaders.ModelMatrix, s.scene.Moon.Matrix(), shaders.Moon)
	case core.Planet:
		s.pushMat4(shaders.ModelMatrix, s.scene.Planet.Matrix(), shaders.Surface)
	case core.View:
		s.pushMat4(shaders.ViewMatrix, s.scene.ViewMatrix())
		s.pushVec3(shaders.CameraPos, s.scene.Camera.Eye())
	case core.Projection:
		s.pushMat4(shaders.ProjMatrix, s.scene.ProjectionMatrix())
		w, h := s.scene.Size()
		s.dev.Viewport(w, h)
	}
}

// SyncAll pushes every field once
func (s *Synchronizer) SyncAll() {
	for _, f := range core.Fields {
		s.Sync(f)
	}
}

// pushMat4 writes m to every consumer of sem, or only to the listed kinds
func (s *Synchronizer) pushMat4(sem shaders.Semantic, m mgl32.Mat4, only ...shaders.Kind) {
	reg := s.lib.Registry()
	for _, k := range targets(reg, sem, only) {
		loc, ok := reg.Lookup(k, sem)
		if !ok {
			continue
		}
		s.dev.UseProgram(s.lib.Program(k).Handle)
		s.dev.UniformMat4(loc, m)
	}
}

func (s *Synchronizer) pushVec3(sem shaders.Semantic, v mgl32.Vec3, only ...shaders.Kind) {
	reg := s.lib.Registry()
	for _, k := range targets(reg, sem, only) {
		loc, ok := reg.Lookup(k, sem)
		if !ok {
			continue
		}
		s.dev.UseProgram(s.lib.Program(k).Handle)
		s.dev.UniformVec3(loc, v)
	}
}

func targets(reg *shaders.Registry, sem shaders.Semantic, only []shaders.Kind) []shaders.Kind {
	if len(only) > 0 {
		return only
	}
	return reg.Consumers(sem)
}
