// Package assets decodes the mesh and image files the renderer consumes.
//
// Only the subset of the Wavefront OBJ format needed for textured meshes is
// supported: v, vn, vt, f, o and g. Materials and smoothing groups are ignored.
package assets

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"orbitviz/core"
)

const invIndex = -1

type corner struct {
	v, vt, vn int
}

type object struct {
	name  string
	faces [][]corner
}

// OBJDecoder holds the state of a single OBJ parse
type OBJDecoder struct {
	Warnings []string

	positions []float32
	normals   []float32
	uvs       []float32
	objects   []*object
	current   *object
	line      int
}

// LoadOBJ reads an OBJ file and returns one mesh per object, in file order.
// UVs are flipped vertically so row zero of an uploaded image is v = 0.
func LoadOBJ(path string) ([]*core.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meshes, err := DecodeOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return meshes, nil
}

// OBJLoader loads OBJ files from disk
type OBJLoader struct{}

// LoadMeshes implements the geometry store's mesh loader
func (OBJLoader) LoadMeshes(path string) ([]*core.Mesh, error) {
	return LoadOBJ(path)
}

// DecodeOBJ parses OBJ data from r
func DecodeOBJ(r io.Reader) ([]*core.Mesh, error) {
	dec := &OBJDecoder{}
	if err := dec.parse(r); err != nil {
		return nil, err
	}
	return dec.build()
}

func (dec *OBJDecoder) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		dec.line++
		if err := dec.parseLine(scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (dec *OBJDecoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	switch fields[0] {
	case "o", "g":
		name := fmt.Sprintf("unnamed%d", dec.line)
		if len(fields) > 1 {
			name = fields[1]
		}
		// a group directly after an object names the same mesh
		if dec.current != nil && len(dec.current.faces) == 0 {
			dec.current.name = name
			return nil
		}
		dec.startObject(name)
	case "v":
		return dec.parseFloats(fields[1:], 3, &dec.positions)
	case "vn":
		return dec.parseFloats(fields[1:], 3, &dec.normals)
	case "vt":
		return dec.parseFloats(fields[1:], 2, &dec.uvs)
	case "f":
		return dec.parseFace(fields[1:])
	default:
		dec.Warnings = append(dec.Warnings, fmt.Sprintf("line %d: unsupported %q", dec.line, fields[0]))
	}
	return nil
}

func (dec *OBJDecoder) startObject(name string) {
	dec.current = &object{name: name}
	dec.objects = append(dec.objects, dec.current)
}

func (dec *OBJDecoder) parseFloats(fields []string, n int, dst *[]float32) error {
	if len(fields) < n {
		return dec.formatError(fmt.Sprintf("expected %d values, got %d", n, len(fields)))
	}
	for _, f := range fields[:n] {
		val, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return dec.formatError(err.Error())
		}
		*dst = append(*dst, float32(val))
	}
	return nil
}

// parseFace parses f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ...
func (dec *OBJDecoder) parseFace(fields []string) error {
	if dec.current == nil {
		dec.startObject(fmt.Sprintf("unnamed%d", dec.line))
	}
	if len(fields) < 3 {
		return dec.formatError("face with fewer than 3 vertices")
	}

	face := make([]corner, len(fields))
	for i, f := range fields {
		parts := strings.Split(f, "/")
		var err error
		if face[i].v, err = dec.resolve(parts[0], len(dec.positions)/3, true); err != nil {
			return err
		}
		face[i].vt, face[i].vn = invIndex, invIndex
		if len(parts) > 1 {
			if face[i].vt, err = dec.resolve(parts[1], len(dec.uvs)/2, false); err != nil {
				return err
			}
		}
		if len(parts) > 2 {
			if face[i].vn, err = dec.resolve(parts[2], len(dec.normals)/3, false); err != nil {
				return err
			}
		}
	}
	dec.current.faces = append(dec.current.faces, face)
	return nil
}

// resolve turns a 1-based or negative relative OBJ index into a 0-based one
func (dec *OBJDecoder) resolve(s string, count int, required bool) (int, error) {
	if s == "" {
		if required {
			return 0, dec.formatError("missing vertex index")
		}
		return invIndex, nil
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, dec.formatError(err.Error())
	}
	var idx int
	switch {
	case val > 0:
		idx = val - 1
	case val < 0:
		idx = count + val
	default:
		return 0, dec.formatError("index value equal to 0")
	}
	if idx < 0 || idx >= count {
		return 0, dec.formatError(fmt.Sprintf("index %d out of range", val))
	}
	return idx, nil
}

func (dec *OBJDecoder) formatError(msg string) error {
	return fmt.Errorf("%s in line:%d", msg, dec.line)
}

func (dec *OBJDecoder) build() ([]*core.Mesh, error) {
	var meshes []*core.Mesh
	for _, ob := range dec.objects {
		if len(ob.faces) == 0 {
			continue
		}
		m := dec.buildMesh(ob)
		if err := m.Validate(); err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// buildMesh de-duplicates corners into vertices and fan-triangulates faces.
// Normals and UVs are kept only if every corner of the object has them.
func (dec *OBJDecoder) buildMesh(ob *object) *core.Mesh {
	hasUV, hasNormal := true, true
	for _, face := range ob.faces {
		for _, c := range face {
			hasUV = hasUV && c.vt != invIndex
			hasNormal = hasNormal && c.vn != invIndex
		}
	}

	m := &core.Mesh{Name: ob.name}
	seen := make(map[corner]uint32)
	vertex := func(c corner) uint32 {
		if !hasUV {
			c.vt = invIndex
		}
		if !hasNormal {
			c.vn = invIndex
		}
		if idx, ok := seen[c]; ok {
			return idx
		}
		idx := uint32(m.VertexCount())
		m.Positions = append(m.Positions, dec.positions[c.v*3:c.v*3+3]...)
		if hasNormal {
			m.Normals = append(m.Normals, dec.normals[c.vn*3:c.vn*3+3]...)
		}
		if hasUV {
			m.UVs = append(m.UVs, dec.uvs[c.vt*2], 1-dec.uvs[c.vt*2+1])
		}
		seen[c] = idx
		return idx
	}

	for _, face := range ob.faces {
		first := vertex(face[0])
		for i := 1; i+1 < len(face); i++ {
			m.Indices = append(m.Indices, first, vertex(face[i]), vertex(face[i+1]))
		}
	}

	if hasUV {
		m.Bitangents = computeBitangents(m)
	}
	return m
}

// computeBitangents derives per-vertex bitangents (the direction of
// increasing v) from triangle UV gradients, orthogonalized against normals
// when present.
func computeBitangents(m *core.Mesh) []float32 {
	n := m.VertexCount()
	acc := make([]mgl32.Vec3, n)
	pos := func(i uint32) mgl32.Vec3 {
		return mgl32.Vec3{m.Positions[i*3], m.Positions[i*3+1], m.Positions[i*3+2]}
	}
	uv := func(i uint32) mgl32.Vec2 {
		return mgl32.Vec2{m.UVs[i*2], m.UVs[i*2+1]}
	}

	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		e1, e2 := pos(b).Sub(pos(a)), pos(c).Sub(pos(a))
		d1, d2 := uv(b).Sub(uv(a)), uv(c).Sub(uv(a))
		det := d1[0]*d2[1] - d2[0]*d1[1]
		if mgl32.Abs(det) < 1e-12 {
			continue
		}
		bt := e2.Mul(d1[0]).Sub(e1.Mul(d2[0])).Mul(1 / det)
		acc[a] = acc[a].Add(bt)
		acc[b] = acc[b].Add(bt)
		acc[c] = acc[c].Add(bt)
	}

	out := make([]float32, 0, n*3)
	for i, bt := range acc {
		if len(m.Normals) > 0 {
			nrm := mgl32.Vec3{m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2]}
			bt = bt.Sub(nrm.Mul(nrm.Dot(bt)))
		}
		if bt.Len() > 1e-12 {
			bt = bt.Normalize()
		}
		out = append(out, bt[0], bt[1], bt[2])
	}
	return out
}
