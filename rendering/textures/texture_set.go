// Package textures uploads and owns the image textures of every body.
package textures

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"orbitviz/gpu"
)

// Name identifies one logical texture
type Name string

const (
	EarthDay      Name = "earth_day"
	EarthNight    Name = "earth_night"
	EarthClouds   Name = "earth_clouds"
	EarthNormal   Name = "earth_normal"
	EarthSpecular Name = "earth_specular"
	MoonColor     Name = "moon_color"
	MoonNormal    Name = "moon_normal"
	MoonSpecular  Name = "moon_specular"
	SunColor      Name = "sun_color"
	Space         Name = "space"
)

// Names lists every texture in load order
var Names = []Name{
	EarthDay, EarthNight, EarthClouds, EarthNormal, EarthSpecular,
	MoonColor, MoonNormal, MoonSpecular,
	SunColor, Space,
}

// Sampling is shared by every texture
var Sampling = gpu.Sampling{
	WrapS:     gpu.Repeat,
	WrapT:     gpu.Repeat,
	MinFilter: gpu.LinearMipmapLinear,
	MagFilter: gpu.Linear,
	Mipmaps:   true,
}

// ImageDecoder decodes an image file
type ImageDecoder interface {
	Decode(path string) (gpu.Image, error)
}

// ImageDecoderFunc adapts a function to ImageDecoder
type ImageDecoderFunc func(path string) (gpu.Image, error)

func (f ImageDecoderFunc) Decode(path string) (gpu.Image, error) { return f(path) }

// Set holds one GPU texture per Name
type Set struct {
	dev     gpu.Device
	log     zerolog.Logger
	handles map[Name]uint32
}

// NewSet creates an empty set on dev
func NewSet(dev gpu.Device, log zerolog.Logger) *Set {
	return &Set{
		dev:     dev,
		log:     log.With().Str("component", "textures").Logger(),
		handles: make(map[Name]uint32),
	}
}

// Load decodes and uploads every texture in files, resolved against dir.
// Every failure is logged and the joined error names each texture and file;
// textures that did decode are still uploaded.
func (s *Set) Load(dec ImageDecoder, dir string, files map[Name]string) error {
	var errs []error
	for _, name := range Names {
		file, ok := files[name]
		if !ok || file == "" {
			err := fmt.Errorf("texture %s: no file configured", name)
			s.log.Error().Str("texture", string(name)).Msg("no file configured")
			errs = append(errs, err)
			continue
		}
		path := file
		if dir != "" && !filepath.IsAbs(file) {
			path = filepath.Join(dir, file)
		}
		if err := s.LoadOne(dec, name, path); err != nil {
			s.log.Error().Err(err).Str("texture", string(name)).Str("path", path).Msg("texture failed to load")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadOne decodes path and uploads it as name
func (s *Set) LoadOne(dec ImageDecoder, name Name, path string) error {
	if _, ok := s.handles[name]; ok {
		return fmt.Errorf("texture %s: already loaded", name)
	}
	img, err := dec.Decode(path)
	if err != nil {
		return fmt.Errorf("texture %s (%s): %w", name, path, err)
	}
	s.handles[name] = s.dev.CreateTexture2D(img, Sampling)
	s.log.Debug().Str("texture", string(name)).Int("width", img.Width).Int("height", img.Height).Msg("texture uploaded")
	return nil
}

// Has reports whether name was uploaded
func (s *Set) Has(name Name) bool {
	_, ok := s.handles[name]
	return ok
}

// Handle returns the GPU handle of name, or 0
func (s *Set) Handle(name Name) uint32 { return s.handles[name] }

// Bind binds name to a texture unit; a missing texture binds 0
func (s *Set) Bind(unit uint32, name Name) {
	s.dev.BindTexture2D(unit, s.handles[name])
}

// Release deletes every uploaded texture. Calling it again is a no-op.
func (s *Set) Release() {
	for name, h := range s.handles {
		s.dev.DeleteTexture(h)
		delete(s.handles, name)
	}
}
