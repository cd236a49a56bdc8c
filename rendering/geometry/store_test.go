package geometry

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbitviz/core"
	"orbitviz/gpu"
	"orbitviz/gpu/gputest"
)

func triangle(name string) *core.Mesh {
	return &core.Mesh{
		Name:      name,
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		UVs:       []float32{0, 0, 1, 0, 0, 1},
		Indices:   []uint32{0, 1, 2},
	}
}

func loaderOf(meshes ...*core.Mesh) MeshLoader {
	return MeshLoaderFunc(func(string) ([]*core.Mesh, error) { return meshes, nil })
}

func TestLoadSphereUsesFirstMesh(t *testing.T) {
	dev := gputest.New()
	s := NewStore(dev, zerolog.Nop())

	require.NoError(t, s.LoadSphere(loaderOf(triangle("a"), triangle("b")), "sphere.obj"))
	assert.True(t, s.Has(Sphere))
	assert.Equal(t, int32(3), s.Count(Sphere))

	// positions, uvs, no normals or bitangents, plus the index buffer
	var indices []uint32
	for _, a := range dev.Attributes {
		indices = append(indices, a.Index)
	}
	assert.Equal(t, []uint32{AttribPosition, AttribUV}, indices)
	assert.Equal(t, 3, dev.LiveOf("buffer"))
	assert.Equal(t, 1, dev.LiveOf("vertex array"))
}

func TestLoadSphereFailures(t *testing.T) {
	boom := errors.New("parse failure")
	tests := []struct {
		name   string
		loader MeshLoader
		target error
	}{
		{"no meshes", loaderOf(), ErrNoMeshes},
		{"parse error", MeshLoaderFunc(func(string) ([]*core.Mesh, error) { return nil, boom }), boom},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dev := gputest.New()
			s := NewStore(dev, zerolog.Nop())
			err := s.LoadSphere(tc.loader, "earth.obj")
			require.ErrorIs(t, err, tc.target)
			assert.Contains(t, err.Error(), "earth.obj")
			assert.False(t, s.Has(Sphere))
			assert.Zero(t, dev.Live())
		})
	}
}

func TestProceduralSphereWhenNoPath(t *testing.T) {
	dev := gputest.New()
	s := NewStore(dev, zerolog.Nop())
	require.NoError(t, s.LoadSphere(nil, ""))

	assert.Equal(t, int32(64*32*6), s.Count(Sphere))
	// all four attributes plus indices
	assert.Len(t, dev.Attributes, 4)
	assert.Equal(t, 5, dev.LiveOf("buffer"))
}

func TestBuildProcedural(t *testing.T) {
	dev := gputest.New()
	s := NewStore(dev, zerolog.Nop())
	s.BuildProcedural()

	assert.Equal(t, int32(core.RingVertices), s.Count(Ring))
	assert.Equal(t, int32(1), s.Count(Point))

	require.True(t, s.Bind(Ring))
	s.Draw(Ring)
	require.True(t, s.Bind(Point))
	s.Draw(Point)
	require.Len(t, dev.Draws, 2)
	assert.Equal(t, gpu.LineLoop, dev.Draws[0].Mode)
	assert.Equal(t, int32(400), dev.Draws[0].Count)
	assert.Equal(t, gpu.Points, dev.Draws[1].Mode)
	assert.Equal(t, int32(1), dev.Draws[1].Count)

	assert.False(t, s.Bind(Sphere), "sphere was never loaded")
}

func TestReleaseIsIdempotent(t *testing.T) {
	dev := gputest.New()
	s := NewStore(dev, zerolog.Nop())
	require.NoError(t, s.LoadSphere(nil, ""))
	s.BuildProcedural()
	require.NotZero(t, dev.Live())

	s.Release()
	assert.Zero(t, dev.Live())
	s.Release()
	assert.Empty(t, dev.Faults)
	assert.False(t, s.Has(Ring))
}

func TestReleaseWithNothingAllocated(t *testing.T) {
	dev := gputest.New()
	s := NewStore(dev, zerolog.Nop())
	s.Release()
	assert.Empty(t, dev.Faults)
	assert.Zero(t, dev.Allocated())
}
