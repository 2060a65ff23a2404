// Package formats reads and writes mesh files and dumps octree and medium
// boxes for inspection in a 3D viewer.
package formats

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/wavesim/pkg/mesh"
)

// File format errors.
var (
	ErrUnknownFormat = errors.New("unknown mesh file format")
	ErrEmptyMesh     = errors.New("mesh file has no faces")
	ErrInvalidSTL    = errors.New("invalid STL")
	ErrInvalidOBJ    = errors.New("invalid OBJ")
)

// LoadMesh reads an .stl or .obj file, giving every vertex attr.
func LoadMesh(path string, attr mesh.Attribute) (*mesh.Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		return LoadSTL(path, attr)
	case ".obj":
		return LoadOBJ(path, attr)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// SaveMesh writes m as .stl or .obj depending on the extension of path.
func SaveMesh(path string, m *mesh.Mesh) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		return SaveSTL(path, m)
	case ".obj":
		return SaveOBJ(path, m)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// writeFile creates path and hands it to write.
func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
