package gpu

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ShaderStage identifies a programmable pipeline stage
type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}

// Primitive is the topology used by a draw call
type Primitive int

const (
	Triangles Primitive = iota
	Points
	LineLoop
)

func (p Primitive) String() string {
	switch p {
	case Triangles:
		return "triangles"
	case Points:
		return "points"
	case LineLoop:
		return "line_loop"
	default:
		return "unknown"
	}
}

// Winding selects which polygon orientation is front-facing
type Winding int

const (
	CounterClockwise Winding = iota
	Clockwise
)

// Wrap is a texture coordinate wrapping mode
type Wrap int

const (
	Repeat Wrap = iota
	ClampToEdge
)

// Filter is a texture sampling filter
type Filter int

const (
	Linear Filter = iota
	Nearest
	LinearMipmapLinear
)

// Sampling describes how a 2D texture is sampled and whether mipmaps are generated
type Sampling struct {
	WrapS, WrapT Wrap
	MinFilter    Filter
	MagFilter    Filter
	Mipmaps      bool
}

// Image is decoded pixel data ready for upload. Pixels are tightly packed
// RGBA bytes, row-major, first row at the top of the image.
type Image struct {
	Width, Height int
	Pixels        []byte
}

// StateConfig holds the global pipeline state applied once per context
type StateConfig struct {
	ClearColor mgl32.Vec4
	PointSize  float32
	LineWidth  float32
}

// Device is the subset of the GL API the renderer needs. All methods must be
// called from the goroutine that owns the context.
type Device interface {
	// Programs
	CompileShader(stage ShaderStage, source string) (uint32, error)
	LinkProgram(vertex, fragment uint32) (uint32, error)
	DeleteShader(shader uint32)
	DeleteProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	UseProgram(program uint32)

	// Uniforms apply to the program in use
	UniformMat4(location int32, m mgl32.Mat4)
	UniformVec3(location int32, v mgl32.Vec3)
	UniformFloat(location int32, f float32)

	// Geometry
	CreateVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	// UploadAttribute creates a static buffer bound to the current vertex array
	// at the given attribute index with the given component count.
	UploadAttribute(index uint32, components int32, data []float32) uint32
	// UploadIndices creates a static element buffer bound to the current vertex array.
	UploadIndices(data []uint32) uint32
	DeleteBuffer(buffer uint32)

	// Textures
	CreateTexture2D(img Image, sampling Sampling) uint32
	BindTexture2D(unit uint32, texture uint32)
	DeleteTexture(texture uint32)

	// Pipeline state
	Setup(cfg StateConfig)
	Viewport(width, height int)
	Clear()
	SetDepthTest(enabled bool)
	SetDepthWrite(enabled bool)
	SetDepthLess()
	SetFrontFace(w Winding)

	// Draws
	DrawElements(mode Primitive, count int32)
	DrawArrays(mode Primitive, first, count int32)
}
