package textures

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbitviz/gpu"
	"orbitviz/gpu/gputest"
)

func allFiles() map[Name]string {
	files := make(map[Name]string, len(Names))
	for _, n := range Names {
		files[n] = string(n) + ".png"
	}
	return files
}

func fakeDecoder(seen *[]string, fail map[string]bool) ImageDecoder {
	return ImageDecoderFunc(func(path string) (gpu.Image, error) {
		*seen = append(*seen, path)
		if fail[filepath.Base(path)] {
			return gpu.Image{}, errors.New("corrupt")
		}
		return gpu.Image{Width: 2, Height: 1, Pixels: make([]byte, 8)}, nil
	})
}

func TestLoadAllTextures(t *testing.T) {
	dev := gputest.New()
	set := NewSet(dev, zerolog.Nop())
	var seen []string

	require.NoError(t, set.Load(fakeDecoder(&seen, nil), "assets", allFiles()))
	assert.Len(t, seen, 10)
	assert.Equal(t, filepath.Join("assets", "earth_day.png"), seen[0])
	assert.Equal(t, 10, dev.LiveOf("texture"))

	for _, n := range Names {
		require.True(t, set.Has(n), n)
		up := dev.Uploads[set.Handle(n)]
		assert.Equal(t, Sampling, up.Sampling)
		assert.True(t, up.Sampling.Mipmaps)
		assert.Equal(t, gpu.Repeat, up.Sampling.WrapS)
		assert.Equal(t, gpu.Repeat, up.Sampling.WrapT)
		assert.Equal(t, gpu.LinearMipmapLinear, up.Sampling.MinFilter)
	}
}

func TestLoadReportsEveryFailure(t *testing.T) {
	dev := gputest.New()
	set := NewSet(dev, zerolog.Nop())
	files := allFiles()
	delete(files, SunColor)
	var seen []string

	err := set.Load(fakeDecoder(&seen, map[string]bool{"moon_normal.png": true}), "", files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moon_normal")
	assert.Contains(t, err.Error(), "moon_normal.png")
	assert.Contains(t, err.Error(), "sun_color: no file configured")

	assert.False(t, set.Has(MoonNormal))
	assert.False(t, set.Has(SunColor))
	assert.True(t, set.Has(EarthDay))
	assert.Equal(t, 8, dev.LiveOf("texture"))
}

func TestBindAndRelease(t *testing.T) {
	dev := gputest.New()
	set := NewSet(dev, zerolog.Nop())
	var seen []string
	require.NoError(t, set.LoadOne(fakeDecoder(&seen, nil), Space, "space.jpg"))
	assert.Error(t, set.LoadOne(fakeDecoder(&seen, nil), Space, "space.jpg"))

	set.Bind(0, Space)
	set.Bind(1, MoonColor)
	dev.DrawArrays(gpu.Points, 0, 1)
	require.Len(t, dev.Draws, 1)
	assert.Equal(t, set.Handle(Space), dev.Draws[0].Textures[0])
	assert.Equal(t, uint32(0), dev.Draws[0].Textures[1])

	set.Release()
	set.Release()
	assert.Zero(t, dev.Live())
	assert.Empty(t, dev.Faults)
}
