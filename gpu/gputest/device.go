// Package gputest provides a recording gpu.Device for tests that run without
// a GL context. It emulates uniform residency per program the way a driver
// does: uniform setters affect whichever program was last made current.
package gputest

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"orbitviz/gpu"
)

var uniformDecl = regexp.MustCompile(`uniform\s+\w+\s+(\w+)\s*;`)

type handleKind int

const (
	kindShader handleKind = iota
	kindProgram
	kindVertexArray
	kindBuffer
	kindTexture
)

func (k handleKind) String() string {
	return [...]string{"shader", "program", "vertex array", "buffer", "texture"}[k]
}

type program struct {
	uniforms map[string]int32
	names    map[int32]string
	values   map[int32]any
	linked   bool
}

// Draw is one recorded draw call with the state it was issued under
type Draw struct {
	Program    uint32
	Mode       gpu.Primitive
	First      int32
	Count      int32
	VertexArr  uint32
	DepthTest  bool
	DepthWrite bool
	DepthLess  bool
	FrontFace  gpu.Winding
	Textures   map[uint32]uint32
	Uniforms   map[string]any
}

// Texture records an uploaded texture
type Texture struct {
	Image    gpu.Image
	Sampling gpu.Sampling
}

// Attribute records one uploaded vertex attribute buffer
type Attribute struct {
	VertexArr  uint32
	Index      uint32
	Components int32
	Len        int
}

// Device is an in-memory gpu.Device
type Device struct {
	// FailCompile, when set, is consulted for every shader compile
	FailCompile func(stage gpu.ShaderStage, source string) error
	// FailLink, when set, is consulted for every link
	FailLink func(vertex, fragment uint32) error

	next     uint32
	live     map[uint32]handleKind
	deleted  map[uint32]handleKind
	sources  map[uint32]string
	programs map[uint32]*program

	current    uint32
	vertexArr  uint32
	textures   map[uint32]uint32
	depthTest  bool
	depthWrite bool
	depthLess  bool
	frontFace  gpu.Winding

	Draws      []Draw
	Uploads    map[uint32]Texture
	Attributes []Attribute
	Indices    map[uint32]int
	Clears     int
	ViewportW  int
	ViewportH  int
	State      *gpu.StateConfig
	// UniformWrites counts uniform setter calls per program
	UniformWrites map[uint32]int
	// Faults collects misuse such as double deletes or uniforms set with no program bound
	Faults []string
}

var _ gpu.Device = (*Device)(nil)

// New returns an empty device with depth test and depth writes enabled, as a
// fresh GL context would report after Setup.
func New() *Device {
	return &Device{
		live:          make(map[uint32]handleKind),
		deleted:       make(map[uint32]handleKind),
		sources:       make(map[uint32]string),
		programs:      make(map[uint32]*program),
		textures:      make(map[uint32]uint32),
		Uploads:       make(map[uint32]Texture),
		Indices:       make(map[uint32]int),
		UniformWrites: make(map[uint32]int),
		depthTest:     true,
		depthWrite:    true,
		depthLess:     true,
	}
}

func (d *Device) alloc(kind handleKind) uint32 {
	d.next++
	d.live[d.next] = kind
	return d.next
}

func (d *Device) free(h uint32, kind handleKind) {
	if h == 0 {
		return
	}
	got, ok := d.live[h]
	switch {
	case ok && got == kind:
		delete(d.live, h)
		d.deleted[h] = kind
	case d.deleted[h] == kind:
		d.Faults = append(d.Faults, fmt.Sprintf("double delete of %s %d", kind, h))
	default:
		d.Faults = append(d.Faults, fmt.Sprintf("delete of unknown %s %d", kind, h))
	}
}

// Live returns the number of live handles of every kind
func (d *Device) Live() int { return len(d.live) }

// LiveOf returns the number of live handles for the given kind name
// ("shader", "program", "vertex array", "buffer", "texture").
func (d *Device) LiveOf(kind string) int {
	n := 0
	for _, k := range d.live {
		if k.String() == kind {
			n++
		}
	}
	return n
}

// Allocated reports the total number of handles ever created
func (d *Device) Allocated() int { return int(d.next) }

func (d *Device) CompileShader(stage gpu.ShaderStage, source string) (uint32, error) {
	h := d.alloc(kindShader)
	d.sources[h] = source
	if d.FailCompile != nil {
		if err := d.FailCompile(stage, source); err != nil {
			return h, err
		}
	}
	return h, nil
}

func (d *Device) LinkProgram(vertex, fragment uint32) (uint32, error) {
	h := d.alloc(kindProgram)
	p := &program{
		uniforms: make(map[string]int32),
		names:    make(map[int32]string),
		values:   make(map[int32]any),
		linked:   true,
	}
	d.programs[h] = p

	if d.FailLink != nil {
		if err := d.FailLink(vertex, fragment); err != nil {
			p.linked = false
			return h, err
		}
	}

	var loc int32
	for _, src := range []string{d.sources[vertex], d.sources[fragment]} {
		for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
			if _, seen := p.uniforms[m[1]]; seen {
				continue
			}
			p.uniforms[m[1]] = loc
			p.names[loc] = m[1]
			loc++
		}
	}
	return h, nil
}

func (d *Device) DeleteShader(shader uint32)   { d.free(shader, kindShader) }
func (d *Device) DeleteProgram(program uint32) { d.free(program, kindProgram) }

func (d *Device) UniformLocation(prog uint32, name string) int32 {
	p, ok := d.programs[prog]
	if !ok || !p.linked {
		return -1
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (d *Device) UseProgram(prog uint32) { d.current = prog }

func (d *Device) set(loc int32, v any) {
	if loc < 0 {
		return
	}
	p, ok := d.programs[d.current]
	if !ok {
		d.Faults = append(d.Faults, fmt.Sprintf("uniform %d set with no program in use", loc))
		return
	}
	d.UniformWrites[d.current]++
	p.values[loc] = v
}

func (d *Device) UniformMat4(loc int32, m mgl32.Mat4) { d.set(loc, m) }
func (d *Device) UniformVec3(loc int32, v mgl32.Vec3) { d.set(loc, v) }
func (d *Device) UniformFloat(loc int32, f float32)   { d.set(loc, f) }

func (d *Device) CreateVertexArray() uint32    { return d.alloc(kindVertexArray) }
func (d *Device) BindVertexArray(vao uint32)   { d.vertexArr = vao }
func (d *Device) DeleteVertexArray(vao uint32) { d.free(vao, kindVertexArray) }

func (d *Device) UploadAttribute(index uint32, components int32, data []float32) uint32 {
	d.Attributes = append(d.Attributes, Attribute{
		VertexArr:  d.vertexArr,
		Index:      index,
		Components: components,
		Len:        len(data),
	})
	return d.alloc(kindBuffer)
}

func (d *Device) UploadIndices(data []uint32) uint32 {
	h := d.alloc(kindBuffer)
	d.Indices[d.vertexArr] = len(data)
	return h
}

func (d *Device) DeleteBuffer(buffer uint32) { d.free(buffer, kindBuffer) }

func (d *Device) CreateTexture2D(img gpu.Image, s gpu.Sampling) uint32 {
	h := d.alloc(kindTexture)
	d.Uploads[h] = Texture{Image: img, Sampling: s}
	return h
}

func (d *Device) BindTexture2D(unit uint32, texture uint32) { d.textures[unit] = texture }
func (d *Device) DeleteTexture(texture uint32)              { d.free(texture, kindTexture) }

func (d *Device) Setup(cfg gpu.StateConfig) {
	d.State = &cfg
	d.depthTest = true
	d.depthLess = true
}

func (d *Device) Viewport(w, h int) { d.ViewportW, d.ViewportH = w, h }
func (d *Device) Clear()            { d.Clears++ }

func (d *Device) SetDepthTest(enabled bool)  { d.depthTest = enabled }
func (d *Device) SetDepthWrite(enabled bool) { d.depthWrite = enabled }
func (d *Device) SetDepthLess()              { d.depthLess = true }
func (d *Device) SetFrontFace(w gpu.Winding) { d.frontFace = w }

func (d *Device) record(mode gpu.Primitive, first, count int32) {
	draw := Draw{
		Program:    d.current,
		Mode:       mode,
		First:      first,
		Count:      count,
		VertexArr:  d.vertexArr,
		DepthTest:  d.depthTest,
		DepthWrite: d.depthWrite,
		DepthLess:  d.depthLess,
		FrontFace:  d.frontFace,
		Textures:   make(map[uint32]uint32, len(d.textures)),
		Uniforms:   make(map[string]any),
	}
	for unit, tex := range d.textures {
		draw.Textures[unit] = tex
	}
	if p, ok := d.programs[d.current]; ok {
		for loc, v := range p.values {
			draw.Uniforms[p.names[loc]] = v
		}
	}
	d.Draws = append(d.Draws, draw)
}

func (d *Device) DrawElements(mode gpu.Primitive, count int32)      { d.record(mode, 0, count) }
func (d *Device) DrawArrays(mode gpu.Primitive, first, count int32) { d.record(mode, first, count) }

// Value returns the resident value of a named uniform in a program
func (d *Device) Value(prog uint32, name string) (any, bool) {
	p, ok := d.programs[prog]
	if !ok {
		return nil, false
	}
	loc, ok := p.uniforms[name]
	if !ok {
		return nil, false
	}
	v, ok := p.values[loc]
	return v, ok
}

// Mat4 returns a resident mat4 uniform
func (d *Device) Mat4(prog uint32, name string) (mgl32.Mat4, bool) {
	v, ok := d.Value(prog, name)
	m, isMat := v.(mgl32.Mat4)
	return m, ok && isMat
}

// Vec3 returns a resident vec3 uniform
func (d *Device) Vec3(prog uint32, name string) (mgl32.Vec3, bool) {
	v, ok := d.Value(prog, name)
	vec, isVec := v.(mgl32.Vec3)
	return vec, ok && isVec
}

// Float returns a resident float uniform
func (d *Device) Float(prog uint32, name string) (float32, bool) {
	v, ok := d.Value(prog, name)
	f, isFloat := v.(float32)
	return f, ok && isFloat
}

// Uniforms lists the uniform names a linked program declares, sorted
func (d *Device) Uniforms(prog uint32) []string {
	p, ok := d.programs[prog]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(p.uniforms))
	for n := range p.uniforms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ResetDraws clears recorded draws and per-program write counters
func (d *Device) ResetDraws() {
	d.Draws = nil
	d.UniformWrites = make(map[uint32]int)
}

// DrawsWith returns the draws issued while the given program was current
func (d *Device) DrawsWith(prog uint32) []Draw {
	var out []Draw
	for _, dr := range d.Draws {
		if dr.Program == prog {
			out = append(out, dr)
		}
	}
	return out
}
