package shaders

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbitviz/gpu"
	"orbitviz/gpu/gputest"
)

func TestBuildResolvesSemantics(t *testing.T) {
	dev := gputest.New()
	lib := NewLibrary(dev, zerolog.Nop())
	require.NoError(t, lib.Build())

	want := map[Kind][]Semantic{
		Surface:  {ModelMatrix, ViewMatrix, ProjMatrix, CameraPos, SunPos, Phase},
		Moon:     {ModelMatrix, ViewMatrix, ProjMatrix, CameraPos, SunPos},
		Emissive: {ModelMatrix, ViewMatrix, ProjMatrix},
		Skybox:   {ViewMatrix, ProjMatrix},
		Ring:     {ModelMatrix, ViewMatrix, ProjMatrix, Color, TargetPos},
		Marker:   {ModelMatrix, ViewMatrix, ProjMatrix, Color},
	}
	for _, k := range Kinds {
		p := lib.Program(k)
		require.NotZero(t, p.Handle, k)
		for _, s := range Semantics {
			declared := false
			for _, w := range want[k] {
				declared = declared || w == s
			}
			assert.Equal(t, declared, p.Has(s), "%s %s", k, s)
			_, registered := lib.Registry().Lookup(k, s)
			assert.Equal(t, declared, registered, "%s %s registered", k, s)
		}
	}

	// shaders are deleted once linked
	assert.Equal(t, 0, dev.LiveOf("shader"))
	assert.Equal(t, 6, dev.LiveOf("program"))
}

func TestRegistryConsumers(t *testing.T) {
	lib := NewLibrary(gputest.New(), zerolog.Nop())
	require.NoError(t, lib.Build())
	reg := lib.Registry()

	assert.Equal(t, []Kind{Surface, Moon}, reg.Consumers(SunPos))
	assert.Equal(t, []Kind{Surface, Moon}, reg.Consumers(CameraPos))
	assert.Equal(t, []Kind{Surface}, reg.Consumers(Phase))
	assert.Equal(t, Kinds[:], reg.Consumers(ViewMatrix))
	assert.Equal(t, Kinds[:], reg.Consumers(ProjMatrix))
	assert.Equal(t, []Kind{Surface, Moon, Emissive, Ring, Marker}, reg.Consumers(ModelMatrix))
	assert.Equal(t, []Kind{Ring, Marker}, reg.Consumers(Color))
}

func TestBuildFailureIsReportedAndNonFatal(t *testing.T) {
	dev := gputest.New()
	dev.FailCompile = func(stage gpu.ShaderStage, src string) error {
		if stage == gpu.FragmentStage && strings.Contains(src, "clouds_map") {
			return errors.New("0:12: syntax error")
		}
		return nil
	}
	lib := NewLibrary(dev, zerolog.Nop())

	err := lib.Build()
	require.Error(t, err)
	var se *ShaderError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, Surface, se.Pass)
	assert.Equal(t, "fragment", se.Stage)
	assert.Equal(t, "0:12: syntax error", se.Log)
	assert.Contains(t, err.Error(), "surface fragment shader")

	assert.Zero(t, lib.Program(Surface).Handle)
	assert.Empty(t, lib.Registry().Consumers(Phase))
	for _, k := range Kinds[1:] {
		assert.NotZero(t, lib.Program(k).Handle, k)
	}
	assert.Equal(t, 0, dev.LiveOf("shader"), "no shader objects leak")

	lib.Release()
	lib.Release()
	assert.Zero(t, dev.Live())
	assert.Empty(t, dev.Faults)
}

func TestLinkFailureKeepsHandle(t *testing.T) {
	dev := gputest.New()
	linked := 0
	dev.FailLink = func(vs, fs uint32) error {
		linked++
		if linked == 4 {
			return errors.New("varying mismatch")
		}
		return nil
	}
	lib := NewLibrary(dev, zerolog.Nop())
	err := lib.Build()

	var se *ShaderError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, Skybox, se.Pass)
	assert.Equal(t, "link", se.Stage)
	assert.NotZero(t, lib.Program(Skybox).Handle)
	assert.Equal(t, int32(-1), lib.Program(Skybox).Location(ViewMatrix))

	lib.Release()
	assert.Zero(t, dev.Live())
	assert.Empty(t, dev.Faults)
}

func TestProgramSettersTargetProgramInUse(t *testing.T) {
	dev := gputest.New()
	lib := NewLibrary(dev, zerolog.Nop())
	require.NoError(t, lib.Build())

	ring := lib.Program(Ring)
	ring.Use()
	ring.SetVec3(Color, mgl32.Vec3{1, 0, 0})
	ring.SetFloat(Phase, 0.5) // not declared, ignored

	got, ok := dev.Vec3(ring.Handle, string(Color))
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, got)
	_, ok = dev.Vec3(lib.Program(Marker).Handle, string(Color))
	assert.False(t, ok)
	assert.Equal(t, 1, dev.UniformWrites[ring.Handle])
}

func TestSourcesDeclareVersion(t *testing.T) {
	for _, k := range Kinds {
		for _, stage := range []gpu.ShaderStage{gpu.VertexStage, gpu.FragmentStage} {
			src, err := Source(k, stage)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(src, "#version 420 core"), "%s %s", k, stage)
		}
	}
}
