package mesh

import (
	"github.com/Faultbox/wavesim/pkg/container"
	"github.com/Faultbox/wavesim/pkg/math"
)

// Builder accumulates faces and merges vertices that are exactly equal in
// both position and attribute.
type Builder struct {
	name       string
	vertexKind VertexKind
	positions  []math.Vec3
	attrs      []Attribute
	indices    []uint32
	lookup     *container.HashMap[Vertex, uint32]
}

// NewBuilder returns an empty builder producing float64 vertices.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:       name,
		vertexKind: Float64,
		lookup:     container.NewHashMap[Vertex, uint32](hashVertex),
	}
}

// SetVertexKind selects the element type of the built vertex buffer.
func (b *Builder) SetVertexKind(kind VertexKind) *Builder {
	b.vertexKind = kind
	return b
}

// VertexCount returns the number of distinct vertices added so far.
func (b *Builder) VertexCount() int { return len(b.positions) }

// FaceCount returns the number of faces added so far.
func (b *Builder) FaceCount() int { return len(b.indices) / 3 }

// AddVertex returns the index of v, adding it if no equal vertex exists.
func (b *Builder) AddVertex(v Vertex) uint32 {
	if idx, ok := b.lookup.Find(v); ok {
		return idx
	}
	idx := uint32(len(b.positions))
	b.positions = append(b.positions, v.Position)
	b.attrs = append(b.attrs, v.Attr)
	_ = b.lookup.Insert(v, idx)
	return idx
}

// AddFace appends f.
func (b *Builder) AddFace(f Face) {
	for _, v := range f {
		b.indices = append(b.indices, b.AddVertex(v))
	}
}

// AddTriangle appends the triangle p0, p1, p2 with one attribute on all
// three corners.
func (b *Builder) AddTriangle(p0, p1, p2 math.Vec3, attr Attribute) {
	b.AddFace(Face{{p0, attr}, {p1, attr}, {p2, attr}})
}

// boxFaces lists the corners of each box triangle, wound counter-clockwise
// seen from outside. Corner i sits at (i&1, i>>1&1, i>>2&1).
var boxFaces = [12][3]int{
	{0, 4, 6}, {0, 6, 2}, // -X
	{1, 3, 7}, {1, 7, 5}, // +X
	{0, 1, 5}, {0, 5, 4}, // -Y
	{2, 6, 7}, {2, 7, 3}, // +Y
	{0, 2, 3}, {0, 3, 1}, // -Z
	{4, 5, 7}, {4, 7, 6}, // +Z
}

// AddBox appends the 12 outward-facing triangles of box.
func (b *Builder) AddBox(box math.AABB, attr Attribute) {
	var corners [8]math.Vec3
	for i := range corners {
		corners[i] = box.Min
		if i&1 != 0 {
			corners[i].X = box.Max.X
		}
		if i&2 != 0 {
			corners[i].Y = box.Max.Y
		}
		if i&4 != 0 {
			corners[i].Z = box.Max.Z
		}
	}
	for _, f := range boxFaces {
		b.AddTriangle(corners[f[0]], corners[f[1]], corners[f[2]], attr)
	}
}

// Build returns an owned mesh using the narrowest index kind for the face
// count.
func (b *Builder) Build() (*Mesh, error) {
	ib, err := NewIndexBuffer(IndexKindFor(len(b.indices)), b.indices)
	if err != nil {
		return nil, err
	}
	m := New(b.name)
	if err := m.AssignBuffers(NewVertexBuffer(b.vertexKind, b.positions), ib); err != nil {
		return nil, err
	}
	// both buffers are fresh copies
	m.borrowed = false
	copy(m.attrs, b.attrs)
	return m, nil
}

// Cube returns a closed box mesh with 8 vertices and 12 faces.
func Cube(name string, box math.AABB, attr Attribute) (*Mesh, error) {
	b := NewBuilder(name)
	b.AddBox(box, attr)
	return b.Build()
}
