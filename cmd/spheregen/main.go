// Command spheregen writes the UV sphere the renderer generates as an OBJ
// file, for use as an editable mesh asset.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"orbitviz/assets"
	"orbitviz/core"
	"orbitviz/logging"
)

func main() {
	var (
		out      = pflag.StringP("out", "o", "sphere.obj", "output file")
		radius   = pflag.Float32("radius", 0.5, "sphere radius in scene units")
		segments = pflag.Int("segments", 64, "longitude subdivisions")
		rings    = pflag.Int("rings", 32, "latitude subdivisions")
	)
	pflag.Parse()
	log := logging.New("info", true)

	if *segments < 3 || *rings < 2 {
		fmt.Fprintln(os.Stderr, "segments must be at least 3 and rings at least 2")
		os.Exit(2)
	}

	mesh := core.GenerateSphereMesh(*radius, *segments, *rings)
	if err := assets.WriteOBJ(*out, mesh); err != nil {
		log.Fatal().Err(err).Msg("writing sphere")
	}
	log.Info().
		Str("path", *out).
		Int("vertices", mesh.VertexCount()).
		Int("triangles", len(mesh.Indices)/3).
		Msg("sphere written")
}
