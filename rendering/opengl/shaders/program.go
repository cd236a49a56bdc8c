package shaders

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"orbitviz/gpu"
)

// Kind tags one of the six shader programs
type Kind int

const (
	Surface Kind = iota
	Moon
	Emissive
	Skybox
	Ring
	Marker
	kindCount
)

// Kinds lists every program kind in build order
var Kinds = [kindCount]Kind{Surface, Moon, Emissive, Skybox, Ring, Marker}

func (k Kind) String() string {
	switch k {
	case Surface:
		return "surface"
	case Moon:
		return "moon"
	case Emissive:
		return "emissive"
	case Skybox:
		return "skybox"
	case Ring:
		return "ring"
	case Marker:
		return "marker"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Semantic is the GLSL name of a uniform the renderer feeds
type Semantic string

const (
	ModelMatrix Semantic = "model_matrix"
	ViewMatrix  Semantic = "view_matrix"
	ProjMatrix  Semantic = "proj_matrix"
	CameraPos   Semantic = "camera_pos"
	SunPos      Semantic = "sun_pos"
	Phase       Semantic = "t"
	Color       Semantic = "col"
	TargetPos   Semantic = "target_pos"
)

// Semantics lists every semantic uniform
var Semantics = []Semantic{ModelMatrix, ViewMatrix, ProjMatrix, CameraPos, SunPos, Phase, Color, TargetPos}

// ShaderError reports a compile or link failure of one pass
type ShaderError struct {
	Pass  Kind
	Stage string // "vertex", "fragment" or "link"
	Log   string
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("%s %s shader: %s", e.Pass, e.Stage, e.Log)
}

// Program is a linked program and its resolved uniform locations
type Program struct {
	Kind   Kind
	Handle uint32

	dev       gpu.Device
	locations map[Semantic]int32
}

// Use makes the program current
func (p *Program) Use() { p.dev.UseProgram(p.Handle) }

// Location returns the location of s, or -1 when the program does not declare it
func (p *Program) Location(s Semantic) int32 {
	if loc, ok := p.locations[s]; ok {
		return loc
	}
	return -1
}

// Has reports whether the program declares s
func (p *Program) Has(s Semantic) bool {
	_, ok := p.locations[s]
	return ok
}

// Setters write to the program in use; unknown semantics are ignored.

func (p *Program) SetMat4(s Semantic, m mgl32.Mat4) {
	if loc := p.Location(s); loc >= 0 {
		p.dev.UniformMat4(loc, m)
	}
}

func (p *Program) SetVec3(s Semantic, v mgl32.Vec3) {
	if loc := p.Location(s); loc >= 0 {
		p.dev.UniformVec3(loc, v)
	}
}

func (p *Program) SetFloat(s Semantic, f float32) {
	if loc := p.Location(s); loc >= 0 {
		p.dev.UniformFloat(loc, f)
	}
}
