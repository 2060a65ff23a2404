package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/mesh"
)

// ParseOBJ reads the vertices and triangular faces of a Wavefront OBJ
// stream. Texture coordinates, normals, groups and materials are skipped.
// A vertex with a w component is divided by it. Face indices start at 1;
// negative indices count back from the last vertex read so far. Vertices
// are kept as listed, without merging.
func ParseOBJ(r io.Reader, name string, attr mesh.Attribute) (*mesh.Mesh, error) {
	var (
		positions []math.Vec3
		indices   []uint32
		line      int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseOBJVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
			}
			positions = append(positions, v)
		case "f":
			if len(fields) != 4 {
				return nil, fmt.Errorf("%w: line %d: face has %d corners, want 3", ErrInvalidOBJ, line, len(fields)-1)
			}
			for _, elem := range fields[1:] {
				idx, err := parseOBJIndex(elem, len(positions))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
				}
				indices = append(indices, idx)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyMesh, name)
	}

	ib, err := mesh.NewIndexBuffer(mesh.IndexKindFor(max(len(indices), len(positions))), indices)
	if err != nil {
		return nil, err
	}
	m, err := mesh.FromOwned(name, mesh.NewVertexBuffer(mesh.Float64, positions), ib)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOBJ, err)
	}
	m.SetAllAttributes(attr)
	return m, nil
}

func parseOBJVertex(fields []string) (math.Vec3, error) {
	if len(fields) != 3 && len(fields) != 4 {
		return math.Vec3{}, fmt.Errorf("vertex has %d components", len(fields))
	}
	var c [4]float64
	c[3] = 1
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return math.Vec3{}, err
		}
		c[i] = v
	}
	if c[3] == 0 {
		return math.Vec3{}, fmt.Errorf("vertex has w = 0")
	}
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}.Scale(1 / c[3]), nil
}

// parseOBJIndex converts a face element such as "7", "7/1" or "-2//3" to a
// zero-based vertex index.
func parseOBJIndex(elem string, count int) (uint32, error) {
	s, _, _ := strings.Cut(elem, "/")
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", elem)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return 0, fmt.Errorf("face index 0")
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("face index %s refers to an undefined vertex", s)
	}
	return uint32(i), nil
}

// LoadOBJ reads an OBJ file, giving every vertex attr.
func LoadOBJ(path string, attr mesh.Attribute) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseOBJ(f, baseName(path), attr)
}

// WriteOBJ writes the vertices and faces of m.
func WriteOBJ(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d vertices, %d faces\n", m.VertexCount(), m.FaceCount())
	if m.Name != "" {
		fmt.Fprintf(bw, "o %s\n", m.Name)
	}
	for v := 0; v < m.VertexCount(); v++ {
		writeOBJVertex(bw, m.Position(v))
	}
	for f := 0; f < m.FaceCount(); f++ {
		t := m.FaceIndices(f)
		fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
	}
	return bw.Flush()
}

// SaveOBJ writes m to path as OBJ.
func SaveOBJ(path string, m *mesh.Mesh) error {
	return writeFile(path, func(w io.Writer) error { return WriteOBJ(w, m) })
}

func writeOBJVertex(w *bufio.Writer, p math.Vec3) {
	w.WriteString("v ")
	w.WriteString(strconv.FormatFloat(p.X, 'g', -1, 64))
	w.WriteByte(' ')
	w.WriteString(strconv.FormatFloat(p.Y, 'g', -1, 64))
	w.WriteByte(' ')
	w.WriteString(strconv.FormatFloat(p.Z, 'g', -1, 64))
	w.WriteByte('\n')
}
