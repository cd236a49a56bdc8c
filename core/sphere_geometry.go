package core

import (
	"math"
)

// RingVertices is the vertex count of the orbit ring
const RingVertices = 400

// GenerateSphereMesh generates a UV sphere with normals, bitangents and UVs.
// v runs from 0 at the north pole (+Y) to 1 at the south pole, so row 0 of a
// texture maps to the north. Triangles wind counter-clockwise seen from outside.
func GenerateSphereMesh(radius float32, segments, rings int) *Mesh {
	// Use default values if not specified
	if segments <= 0 {
		segments = 64
	}
	if rings <= 0 {
		rings = 32
	}

	count := (rings + 1) * (segments + 1)
	mesh := &Mesh{
		Name:       "sphere",
		Positions:  make([]float32, 0, count*3),
		Normals:    make([]float32, 0, count*3),
		Bitangents: make([]float32, 0, count*3),
		UVs:        make([]float32, 0, count*2),
		Indices:    make([]uint32, 0, rings*segments*6),
	}

	for ring := 0; ring <= rings; ring++ {
		theta := float64(ring) * math.Pi / float64(rings)
		sinTheta := float32(math.Sin(theta))
		cosTheta := float32(math.Cos(theta))

		for seg := 0; seg <= segments; seg++ {
			phi := float64(seg) * 2.0 * math.Pi / float64(segments)
			sinPhi := float32(math.Sin(phi))
			cosPhi := float32(math.Cos(phi))

			x := cosPhi * sinTheta
			y := cosTheta
			z := sinPhi * sinTheta

			mesh.Positions = append(mesh.Positions, x*radius, y*radius, z*radius)
			mesh.Normals = append(mesh.Normals, x, y, z)
			// d(position)/d(theta), i.e. along increasing v
			mesh.Bitangents = append(mesh.Bitangents, cosPhi*cosTheta, -sinTheta, sinPhi*cosTheta)
			mesh.UVs = append(mesh.UVs,
				float32(seg)/float32(segments),
				float32(ring)/float32(rings))
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments) + 1

			mesh.Indices = append(mesh.Indices, current, current+1, next)
			mesh.Indices = append(mesh.Indices, current+1, next+1, next)
		}
	}

	return mesh
}

// GenerateRing returns n points on the unit circle in the XZ plane, flat xyz
func GenerateRing(n int) []float32 {
	verts := make([]float32, 0, n*3)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		verts = append(verts, float32(math.Cos(a)), 0, float32(math.Sin(a)))
	}
	return verts
}

// GeneratePoint returns a single vertex at the origin
func GeneratePoint() []float32 {
	return []float32{0, 0, 0}
}
