// Package geometry owns the static vertex data shared by every body: the
// sphere mesh, the orbit ring and the marker point.
package geometry

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"orbitviz/core"
	"orbitviz/gpu"
)

// ErrNoMeshes is returned when a mesh asset parses but contains nothing to draw
var ErrNoMeshes = errors.New("mesh asset contains no meshes")

// Vertex attribute indices, matching the layout qualifiers in the shaders
const (
	AttribPosition  = 0
	AttribNormal    = 1
	AttribBitangent = 2
	AttribUV        = 3
)

// Procedural sphere detail, used when no mesh asset is configured
const (
	sphereRadius   = 0.5
	sphereSegments = 64
	sphereRings    = 32
)

// MeshLoader loads every mesh in an asset file
type MeshLoader interface {
	LoadMeshes(path string) ([]*core.Mesh, error)
}

// MeshLoaderFunc adapts a function to MeshLoader
type MeshLoaderFunc func(path string) ([]*core.Mesh, error)

func (f MeshLoaderFunc) LoadMeshes(path string) ([]*core.Mesh, error) { return f(path) }

// Shape selects one of the stored geometries
type Shape int

const (
	Sphere Shape = iota
	Ring
	Point
)

func (s Shape) String() string {
	switch s {
	case Sphere:
		return "sphere"
	case Ring:
		return "ring"
	case Point:
		return "point"
	default:
		return "unknown"
	}
}

type buffers struct {
	vao     uint32
	vbos    []uint32
	count   int32
	indexed bool
	mode    gpu.Primitive
}

// Store uploads geometry once and owns every handle it allocated
type Store struct {
	dev    gpu.Device
	log    zerolog.Logger
	shapes map[Shape]*buffers
}

// NewStore creates an empty store on dev
func NewStore(dev gpu.Device, log zerolog.Logger) *Store {
	return &Store{
		dev:    dev,
		log:    log.With().Str("component", "geometry").Logger(),
		shapes: make(map[Shape]*buffers),
	}
}

// LoadSphere loads the first mesh of the asset at path. An empty path
// generates a UV sphere of diameter one instead.
func (s *Store) LoadSphere(loader MeshLoader, path string) error {
	var mesh *core.Mesh
	if path == "" {
		mesh = core.GenerateSphereMesh(sphereRadius, sphereSegments, sphereRings)
	} else {
		meshes, err := loader.LoadMeshes(path)
		if err != nil {
			return fmt.Errorf("mesh %s: %w", path, err)
		}
		if len(meshes) == 0 {
			return fmt.Errorf("mesh %s: %w", path, ErrNoMeshes)
		}
		if len(meshes) > 1 {
			s.log.Warn().Str("path", path).Int("meshes", len(meshes)).Msg("only the first mesh is used")
		}
		mesh = meshes[0]
	}
	return s.UploadMesh(mesh)
}

// UploadMesh uploads m as the sphere geometry. Optional attributes are only
// uploaded when present.
func (s *Store) UploadMesh(m *core.Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if _, ok := s.shapes[Sphere]; ok {
		return fmt.Errorf("sphere geometry already uploaded")
	}

	b := &buffers{indexed: true, mode: gpu.Triangles, count: int32(len(m.Indices))}
	b.vao = s.dev.CreateVertexArray()
	s.shapes[Sphere] = b
	s.dev.BindVertexArray(b.vao)

	b.vbos = append(b.vbos, s.dev.UploadAttribute(AttribPosition, 3, m.Positions))
	if len(m.Normals) > 0 {
		b.vbos = append(b.vbos, s.dev.UploadAttribute(AttribNormal, 3, m.Normals))
	}
	if len(m.Bitangents) > 0 {
		b.vbos = append(b.vbos, s.dev.UploadAttribute(AttribBitangent, 3, m.Bitangents))
	}
	if len(m.UVs) > 0 {
		b.vbos = append(b.vbos, s.dev.UploadAttribute(AttribUV, 2, m.UVs))
	}
	b.vbos = append(b.vbos, s.dev.UploadIndices(m.Indices))
	s.dev.BindVertexArray(0)

	s.log.Debug().
		Str("mesh", m.Name).
		Int("vertices", m.VertexCount()).
		Int32("indices", b.count).
		Bool("normals", len(m.Normals) > 0).
		Bool("bitangents", len(m.Bitangents) > 0).
		Bool("uvs", len(m.UVs) > 0).
		Msg("sphere uploaded")
	return nil
}

// BuildProcedural uploads the orbit ring and the marker point
func (s *Store) BuildProcedural() {
	s.uploadLine(Ring, core.GenerateRing(core.RingVertices), gpu.LineLoop)
	s.uploadLine(Point, core.GeneratePoint(), gpu.Points)
}

func (s *Store) uploadLine(shape Shape, verts []float32, mode gpu.Primitive) {
	if _, ok := s.shapes[shape]; ok {
		return
	}
	b := &buffers{mode: mode, count: int32(len(verts) / 3)}
	b.vao = s.dev.CreateVertexArray()
	s.shapes[shape] = b
	s.dev.BindVertexArray(b.vao)
	b.vbos = append(b.vbos, s.dev.UploadAttribute(AttribPosition, 3, verts))
	s.dev.BindVertexArray(0)
}

// Has reports whether shape was uploaded
func (s *Store) Has(shape Shape) bool {
	_, ok := s.shapes[shape]
	return ok
}

// Count returns the index count of the sphere or the vertex count of the others
func (s *Store) Count(shape Shape) int32 {
	if b, ok := s.shapes[shape]; ok {
		return b.count
	}
	return 0
}

// Bind makes shape's vertex array current. It reports false when the shape is absent.
func (s *Store) Bind(shape Shape) bool {
	b, ok := s.shapes[shape]
	if !ok {
		return false
	}
	s.dev.BindVertexArray(b.vao)
	return true
}

// Draw issues the draw for the currently bound shape
func (s *Store) Draw(shape Shape) {
	b, ok := s.shapes[shape]
	if !ok {
		return
	}
	if b.indexed {
		s.dev.DrawElements(b.mode, b.count)
	} else {
		s.dev.DrawArrays(b.mode, 0, b.count)
	}
}

// Release deletes every handle the store allocated. Calling it again is a no-op.
func (s *Store) Release() {
	for shape, b := range s.shapes {
		for _, vbo := range b.vbos {
			s.dev.DeleteBuffer(vbo)
		}
		s.dev.DeleteVertexArray(b.vao)
		delete(s.shapes, shape)
	}
}
