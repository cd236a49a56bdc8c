package gpu

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// GLDevice implements Device on top of an OpenGL 4.3 core context
type GLDevice struct{}

// NewGL loads the GL entry points for the current context.
// The caller must have made a context current on this thread.
func NewGL() (*GLDevice, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	return &GLDevice{}, nil
}

// Version returns the driver version string
func (d *GLDevice) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// CompileShader compiles a single shader stage and returns the driver log on failure
func (d *GLDevice) CompileShader(stage ShaderStage, source string) (uint32, error) {
	shaderType := uint32(gl.VERTEX_SHADER)
	if stage == FragmentStage {
		shaderType = gl.FRAGMENT_SHADER
	}
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(shader, logLength, nil, &log[0])
		// the shader object is still returned so the caller decides its fate
		return shader, fmt.Errorf("%s", strings.TrimRight(string(log), "\x00\n"))
	}

	return shader, nil
}

// LinkProgram links a vertex and fragment shader into a program
func (d *GLDevice) LinkProgram(vertShader, fragShader uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetProgramInfoLog(program, logLength, nil, &log[0])
		return program, fmt.Errorf("%s", strings.TrimRight(string(log), "\x00\n"))
	}

	return program, nil
}

func (d *GLDevice) DeleteShader(shader uint32)   { gl.DeleteShader(shader) }
func (d *GLDevice) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *GLDevice) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *GLDevice) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *GLDevice) UniformMat4(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (d *GLDevice) UniformVec3(location int32, v mgl32.Vec3) {
	gl.Uniform3f(location, v[0], v[1], v[2])
}

func (d *GLDevice) UniformFloat(location int32, f float32) {
	gl.Uniform1f(location, f)
}

func (d *GLDevice) CreateVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (d *GLDevice) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (d *GLDevice) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (d *GLDevice) UploadAttribute(index uint32, components int32, data []float32) uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(index)
	gl.VertexAttribPointerWithOffset(index, components, gl.FLOAT, false, 0, 0)
	return vbo
}

func (d *GLDevice) UploadIndices(data []uint32) uint32 {
	var ebo uint32
	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	return ebo
}

func (d *GLDevice) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (d *GLDevice) CreateTexture2D(img Image, s Sampling) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(s.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(s.WrapT))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(s.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(s.MagFilter))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	var pixels unsafe.Pointer
	if len(img.Pixels) > 0 {
		pixels = gl.Ptr(img.Pixels)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Width), int32(img.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, pixels)
	if s.Mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

func (d *GLDevice) BindTexture2D(unit uint32, texture uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, texture)
}

func (d *GLDevice) DeleteTexture(texture uint32) { gl.DeleteTextures(1, &texture) }

// Setup applies the global state every pass relies on
func (d *GLDevice) Setup(cfg StateConfig) {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.DepthFunc(gl.LESS)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.CullFace(gl.BACK)
	gl.ClearColor(cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2], cfg.ClearColor[3])
	gl.PointSize(cfg.PointSize)
	gl.LineWidth(cfg.LineWidth)
}

func (d *GLDevice) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *GLDevice) Clear() { gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT) }

func (d *GLDevice) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
}

func (d *GLDevice) SetDepthWrite(enabled bool) { gl.DepthMask(enabled) }

func (d *GLDevice) SetDepthLess() { gl.DepthFunc(gl.LESS) }

func (d *GLDevice) SetFrontFace(w Winding) {
	if w == Clockwise {
		gl.FrontFace(gl.CW)
	} else {
		gl.FrontFace(gl.CCW)
	}
}

func (d *GLDevice) DrawElements(mode Primitive, count int32) {
	gl.DrawElementsWithOffset(glPrimitive(mode), count, gl.UNSIGNED_INT, 0)
}

func (d *GLDevice) DrawArrays(mode Primitive, first, count int32) {
	gl.DrawArrays(glPrimitive(mode), first, count)
}

// Error drains the GL error queue and reports the first error, if any
func (d *GLDevice) Error() error {
	var first uint32
	for {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		if first == 0 {
			first = code
		}
	}
	if first != 0 {
		return fmt.Errorf("OpenGL error 0x%x", first)
	}
	return nil
}

func glPrimitive(p Primitive) uint32 {
	switch p {
	case Points:
		return gl.POINTS
	case LineLoop:
		return gl.LINE_LOOP
	default:
		return gl.TRIANGLES
	}
}

func glWrap(w Wrap) int32 {
	if w == ClampToEdge {
		return gl.CLAMP_TO_EDGE
	}
	return gl.REPEAT
}

func glFilter(f Filter) int32 {
	switch f {
	case Nearest:
		return gl.NEAREST
	case LinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	default:
		return gl.LINEAR
	}
}
