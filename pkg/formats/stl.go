package formats

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/mesh"
)

// LoadSTL reads an ASCII or binary STL file and merges shared corners into
// a mesh whose vertices all carry attr.
func LoadSTL(path string, attr mesh.Attribute) (*mesh.Mesh, error) {
	tris, err := loadSTL(path)
	if err != nil {
		return nil, err
	}
	if len(tris) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyMesh, path)
	}
	b := mesh.NewBuilder(baseName(path)).SetVertexKind(mesh.Float32)
	AddTriangles(b, tris, attr)
	return b.Build()
}

func loadSTL(path string) (tris []*sdf.Triangle3, err error) {
	// render.LoadSTL indexes past the end of its vertex list when an ASCII
	// file's vertex count is not a multiple of three.
	defer func() {
		if r := recover(); r != nil {
			tris = nil
			err = fmt.Errorf("%w: %s: %v", ErrInvalidSTL, path, r)
		}
	}()
	tris, err = render.LoadSTL(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSTL, path, err)
	}
	return tris, nil
}

// SaveSTL writes m to path as a binary STL file.
func SaveSTL(path string, m *mesh.Mesh) error {
	return render.SaveSTL(path, Triangles(m))
}

// AddTriangles appends sdfx triangles to b.
func AddTriangles(b *mesh.Builder, tris []*sdf.Triangle3, attr mesh.Attribute) {
	for _, t := range tris {
		b.AddTriangle(fromSDF(t[0]), fromSDF(t[1]), fromSDF(t[2]), attr)
	}
}

// Triangles returns the faces of m as sdfx triangles.
func Triangles(m *mesh.Mesh) []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, m.FaceCount())
	for f := range out {
		p := m.FaceVertices(f)
		out[f] = &sdf.Triangle3{toSDF(p[0]), toSDF(p[1]), toSDF(p[2])}
	}
	return out
}

func fromSDF(v v3.Vec) math.Vec3 { return math.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func toSDF(v math.Vec3) v3.Vec { return v3.Vec{X: v.X, Y: v.Y, Z: v.Z} }
