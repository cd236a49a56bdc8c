package shaders

import (
	"embed"
	"fmt"

	"orbitviz/gpu"
)

//go:embed glsl/*.vert glsl/*.frag
var sources embed.FS

type stageFiles struct {
	vertex, fragment string
}

var programSources = [kindCount]stageFiles{
	Surface:  {"glsl/lit.vert", "glsl/surface.frag"},
	Moon:     {"glsl/lit.vert", "glsl/moon.frag"},
	Emissive: {"glsl/textured.vert", "glsl/emissive.frag"},
	Skybox:   {"glsl/skybox.vert", "glsl/skybox.frag"},
	Ring:     {"glsl/ring.vert", "glsl/ring.frag"},
	Marker:   {"glsl/marker.vert", "glsl/marker.frag"},
}

// Source returns the GLSL text of one stage of k
func Source(k Kind, stage gpu.ShaderStage) (string, error) {
	if k < 0 || k >= kindCount {
		return "", fmt.Errorf("no sources for %s", k)
	}
	name := programSources[k].vertex
	if stage == gpu.FragmentStage {
		name = programSources[k].fragment
	}
	b, err := sources.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// compileShader compiles a single stage of k. On failure the shader object,
// if any, is deleted and a *ShaderError carries the driver log.
func compileShader(dev gpu.Device, k Kind, stage gpu.ShaderStage) (uint32, error) {
	src, err := Source(k, stage)
	if err != nil {
		return 0, &ShaderError{Pass: k, Stage: stage.String(), Log: err.Error()}
	}
	shader, err := dev.CompileShader(stage, src)
	if err != nil {
		if shader != 0 {
			dev.DeleteShader(shader)
		}
		return 0, &ShaderError{Pass: k, Stage: stage.String(), Log: err.Error()}
	}
	return shader, nil
}

// linkProgram links vertex and fragment shaders into a program. The shaders
// are deleted either way. A failed link still returns the program handle so
// the caller owns it.
func linkProgram(dev gpu.Device, k Kind, vertShader, fragShader uint32) (uint32, error) {
	program, err := dev.LinkProgram(vertShader, fragShader)
	dev.DeleteShader(vertShader)
	dev.DeleteShader(fragShader)
	if err != nil {
		return program, &ShaderError{Pass: k, Stage: "link", Log: err.Error()}
	}
	return program, nil
}
