package assets

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"orbitviz/core"
)

// EncodeOBJ writes m as a single OBJ object. UVs are flipped back so that
// DecodeOBJ restores them unchanged; bitangents are not stored.
func EncodeOBJ(w io.Writer, m *core.Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	name := m.Name
	if name == "" {
		name = "mesh"
	}
	fmt.Fprintf(bw, "o %s\n", name)
	for i := 0; i < len(m.Positions); i += 3 {
		fmt.Fprintf(bw, "v %g %g %g\n", m.Positions[i], m.Positions[i+1], m.Positions[i+2])
	}
	for i := 0; i < len(m.UVs); i += 2 {
		fmt.Fprintf(bw, "vt %g %g\n", m.UVs[i], 1-m.UVs[i+1])
	}
	for i := 0; i < len(m.Normals); i += 3 {
		fmt.Fprintf(bw, "vn %g %g %g\n", m.Normals[i], m.Normals[i+1], m.Normals[i+2])
	}

	hasUV, hasNormal := len(m.UVs) > 0, len(m.Normals) > 0
	for i := 0; i < len(m.Indices); i += 3 {
		bw.WriteString("f")
		for _, idx := range m.Indices[i : i+3] {
			n := idx + 1
			switch {
			case hasUV && hasNormal:
				fmt.Fprintf(bw, " %d/%d/%d", n, n, n)
			case hasUV:
				fmt.Fprintf(bw, " %d/%d", n, n)
			case hasNormal:
				fmt.Fprintf(bw, " %d//%d", n, n)
			default:
				fmt.Fprintf(bw, " %d", n)
			}
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// WriteOBJ writes m to path
func WriteOBJ(path string, m *core.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeOBJ(f, m); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
