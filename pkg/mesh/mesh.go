// Package mesh provides the triangle mesh model: typed vertex and index
// buffers, per-vertex acoustic attributes, and a de-duplicating builder.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/wavesim/pkg/intersect"
	"github.com/Faultbox/wavesim/pkg/math"
)

// Mesh errors.
var (
	ErrNotTriangles    = errors.New("index count is not a multiple of 3")
	ErrBadVertexBuffer = errors.New("vertex buffer length is not a multiple of 3")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Mesh is a triangle mesh. Positions and indices live in typed buffers that
// are either borrowed from the caller or owned copies; the attribute buffer
// is always owned.
type Mesh struct {
	Name string

	vertices VertexBuffer
	indices  IndexBuffer
	attrs    []Attribute
	aabb     math.AABB
	borrowed bool
}

// New returns an empty mesh.
func New(name string) *Mesh {
	return &Mesh{Name: name, aabb: math.ResetAABB()}
}

// FromBorrowed returns a mesh referencing vb and ib. The caller must not
// modify the buffers while the mesh is in use.
func FromBorrowed(name string, vb VertexBuffer, ib IndexBuffer) (*Mesh, error) {
	m := New(name)
	if err := m.AssignBuffers(vb, ib); err != nil {
		return nil, err
	}
	return m, nil
}

// FromOwned returns a mesh holding copies of vb and ib.
func FromOwned(name string, vb VertexBuffer, ib IndexBuffer) (*Mesh, error) {
	m := New(name)
	if err := m.CopyFromBuffers(vb, ib); err != nil {
		return nil, err
	}
	return m, nil
}

// AssignBuffers makes the mesh reference vb and ib without copying. Every
// vertex attribute is reset to Solid. On error the mesh is unchanged.
func (m *Mesh) AssignBuffers(vb VertexBuffer, ib IndexBuffer) error {
	if err := validate(vb, ib); err != nil {
		return err
	}
	m.setBuffers(vb, ib, true)
	return nil
}

// CopyFromBuffers makes the mesh hold copies of vb and ib. Every vertex
// attribute is reset to Solid. On error the mesh is unchanged.
func (m *Mesh) CopyFromBuffers(vb VertexBuffer, ib IndexBuffer) error {
	if err := validate(vb, ib); err != nil {
		return err
	}
	m.setBuffers(vb.clone(), ib.clone(), false)
	return nil
}

func validate(vb VertexBuffer, ib IndexBuffer) error {
	if vb.Len()%3 != 0 {
		return fmt.Errorf("%w: %d scalars", ErrBadVertexBuffer, vb.Len())
	}
	if ib.Len()%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrNotTriangles, ib.Len())
	}
	vertexCount := uint32(vb.Len() / 3)
	for i := 0; i < ib.Len(); i++ {
		if idx := ib.At(i); idx >= vertexCount {
			return fmt.Errorf("%w: index %d at %d, %d vertices", ErrIndexOutOfRange, idx, i, vertexCount)
		}
	}
	return nil
}

func (m *Mesh) setBuffers(vb VertexBuffer, ib IndexBuffer, borrowed bool) {
	m.vertices = vb
	m.indices = ib
	m.borrowed = borrowed

	m.attrs = make([]Attribute, vb.Len()/3)
	for i := range m.attrs {
		m.attrs[i] = Solid()
	}

	m.aabb = math.ResetAABB()
	for i := 0; i < m.VertexCount(); i++ {
		m.aabb = m.aabb.Expand(m.vertices.Position(i))
	}
}

// Borrowed reports whether the position and index buffers belong to the
// caller.
func (m *Mesh) Borrowed() bool { return m.borrowed }

// VertexKind returns the position buffer element type.
func (m *Mesh) VertexKind() VertexKind { return m.vertices.Kind() }

// IndexKind returns the index buffer element type.
func (m *Mesh) IndexKind() IndexKind { return m.indices.Kind() }

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return m.vertices.Len() / 3 }

// IndexCount returns the number of indices.
func (m *Mesh) IndexCount() int { return m.indices.Len() }

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int { return m.indices.Len() / 3 }

// AABB returns the bounding box of all vertices, or the reset box for an
// empty mesh.
func (m *Mesh) AABB() math.AABB { return m.aabb }

// Index returns index i of the index buffer.
func (m *Mesh) Index(i int) uint32 { return m.indices.At(i) }

// Position returns the position of vertex v.
func (m *Mesh) Position(v int) math.Vec3 { return m.vertices.Position(v) }

// Attribute returns the attribute of vertex v.
func (m *Mesh) Attribute(v int) Attribute { return m.attrs[v] }

// SetAttribute replaces the attribute of vertex v.
func (m *Mesh) SetAttribute(v int, a Attribute) { m.attrs[v] = a }

// SetAllAttributes gives every vertex the attribute a.
func (m *Mesh) SetAllAttributes(a Attribute) {
	for i := range m.attrs {
		m.attrs[i] = a
	}
}

// FaceIndices returns the vertex indices of face f.
func (m *Mesh) FaceIndices(f int) Triplet {
	return Triplet{m.indices.At(f * 3), m.indices.At(f*3 + 1), m.indices.At(f*3 + 2)}
}

// FaceVertices returns the corner positions of face f.
func (m *Mesh) FaceVertices(f int) [3]math.Vec3 {
	return m.TripletVertices(m.FaceIndices(f))
}

// TripletVertices returns the corner positions named by t.
func (m *Mesh) TripletVertices(t Triplet) [3]math.Vec3 {
	return [3]math.Vec3{
		m.vertices.Position(int(t[0])),
		m.vertices.Position(int(t[1])),
		m.vertices.Position(int(t[2])),
	}
}

// Triangle returns the triangle named by t.
func (m *Mesh) Triangle(t Triplet) intersect.Triangle {
	return m.TripletVertices(t)
}

// Face returns face f with positions and attributes.
func (m *Mesh) Face(f int) Face {
	t := m.FaceIndices(f)
	var face Face
	for i, idx := range t {
		face[i] = Vertex{Position: m.vertices.Position(int(idx)), Attr: m.attrs[idx]}
	}
	return face
}

// Triplets returns the index triplet of every face.
func (m *Mesh) Triplets() []Triplet {
	out := make([]Triplet, m.FaceCount())
	for f := range out {
		out[f] = m.FaceIndices(f)
	}
	return out
}
