package assets

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbitviz/core"
)

func TestEncodeOBJPreservesTriangles(t *testing.T) {
	src := core.GenerateSphereMesh(0.5, 8, 4)

	var buf bytes.Buffer
	require.NoError(t, EncodeOBJ(&buf, src))

	meshes, err := DecodeOBJ(&buf)
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	got := meshes[0]
	require.Len(t, got.Indices, len(src.Indices))
	require.NotEmpty(t, got.Bitangents)

	for k := range src.Indices {
		a, b := src.Indices[k], got.Indices[k]
		for c := 0; c < 3; c++ {
			assert.InDelta(t, src.Positions[a*3+uint32(c)], got.Positions[b*3+uint32(c)], 1e-6)
			assert.InDelta(t, src.Normals[a*3+uint32(c)], got.Normals[b*3+uint32(c)], 1e-6)
		}
		for c := 0; c < 2; c++ {
			assert.InDelta(t, src.UVs[a*2+uint32(c)], got.UVs[b*2+uint32(c)], 1e-6)
		}
	}
}

func TestEncodeOBJFaceFormats(t *testing.T) {
	tri := &core.Mesh{
		Name:      "tri",
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 2},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeOBJ(&buf, tri))
	assert.Contains(t, buf.String(), "o tri\n")
	assert.Contains(t, buf.String(), "f 1 2 3\n")

	tri.Normals = []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}
	buf.Reset()
	require.NoError(t, EncodeOBJ(&buf, tri))
	assert.Contains(t, buf.String(), "f 1//1 2//2 3//3\n")

	tri.UVs = []float32{0, 0, 1, 0, 0, 1}
	buf.Reset()
	require.NoError(t, EncodeOBJ(&buf, tri))
	assert.Contains(t, buf.String(), "f 1/1/1 2/2/2 3/3/3\n")
	assert.Equal(t, 3, strings.Count(buf.String(), "\nvt "))
}

func TestEncodeOBJRejectsInvalidMesh(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeOBJ(&buf, &core.Mesh{Positions: []float32{0, 0, 0}, Indices: []uint32{0, 1, 2}})
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestWriteOBJ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sphere.obj")
	require.NoError(t, WriteOBJ(path, core.GenerateSphereMesh(0.5, 6, 3)))

	meshes, err := LoadOBJ(path)
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Equal(t, "sphere", meshes[0].Name)
}
