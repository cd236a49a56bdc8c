// Package shaders builds the six shader programs and resolves their uniforms.
package shaders

import (
	"errors"

	"github.com/rs/zerolog"

	"orbitviz/gpu"
)

// Library owns every program. Build failures are reported but never fatal:
// a failed pass keeps whatever handle resulted, possibly 0.
type Library struct {
	dev      gpu.Device
	log      zerolog.Logger
	programs [kindCount]*Program
	registry *Registry
}

// NewLibrary creates a library with an empty program per kind
func NewLibrary(dev gpu.Device, log zerolog.Logger) *Library {
	l := &Library{
		dev:      dev,
		log:      log.With().Str("component", "shaders").Logger(),
		registry: NewRegistry(),
	}
	for _, k := range Kinds {
		l.programs[k] = &Program{Kind: k, dev: dev, locations: make(map[Semantic]int32)}
	}
	return l
}

// Build compiles and links every program and fills the registry. It returns
// the joined *ShaderError diagnostics of every failed pass.
func (l *Library) Build() error {
	var errs []error
	for _, k := range Kinds {
		if err := l.build(k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (l *Library) build(k Kind) error {
	p := l.programs[k]
	if p.Handle != 0 {
		return nil
	}

	vs, vErr := compileShader(l.dev, k, gpu.VertexStage)
	fs, fErr := compileShader(l.dev, k, gpu.FragmentStage)
	if vErr != nil || fErr != nil {
		if vs != 0 {
			l.dev.DeleteShader(vs)
		}
		if fs != 0 {
			l.dev.DeleteShader(fs)
		}
		err := errors.Join(vErr, fErr)
		l.report(err)
		return err
	}

	handle, err := linkProgram(l.dev, k, vs, fs)
	p.Handle = handle
	if err != nil {
		l.report(err)
		return err
	}

	for _, s := range Semantics {
		loc := l.dev.UniformLocation(handle, string(s))
		if loc < 0 {
			continue
		}
		p.locations[s] = loc
		l.registry.Register(k, s, loc)
	}
	l.log.Debug().Str("pass", k.String()).Uint32("program", handle).Int("uniforms", len(p.locations)).Msg("program built")
	return nil
}

func (l *Library) report(err error) {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}
	for _, e := range errs {
		var se *ShaderError
		if errors.As(e, &se) {
			l.log.Error().Str("pass", se.Pass.String()).Str("stage", se.Stage).Str("log", se.Log).Msg("shader build failed")
		} else {
			l.log.Error().Err(e).Msg("shader build failed")
		}
	}
}

// Program returns the program of kind k
func (l *Library) Program(k Kind) *Program { return l.programs[k] }

// Registry returns the location registry filled by Build
func (l *Library) Registry() *Registry { return l.registry }

// Release deletes every program handle that was created. Calling it again is a no-op.
func (l *Library) Release() {
	for _, p := range l.programs {
		if p.Handle != 0 {
			l.dev.DeleteProgram(p.Handle)
			p.Handle = 0
		}
		p.locations = make(map[Semantic]int32)
		l.registry.Forget(p.Kind)
	}
}
