package mesh

import (
	"errors"
	"testing"

	"github.com/Faultbox/wavesim/pkg/math"
)

var unitBox = math.NewAABB(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1})

func TestAttributePresets(t *testing.T) {
	solid := Solid()
	if solid.Absorption != 1 || solid.SoundVelocity != 2000 || solid.Transmission != 0 {
		t.Errorf("Solid() = %+v", solid)
	}
	air := Air()
	if air.Transmission != 1 || air.SoundVelocity != 340 || air.Absorption != 0 {
		t.Errorf("Air() = %+v", air)
	}
	if solid.Same(air) {
		t.Error("Solid().Same(Air()) = true")
	}
}

func TestAttributeNormalize(t *testing.T) {
	a := Attribute{Reflection: 1, Transmission: 2, Absorption: 1, SoundVelocity: 340}.Normalize()
	if a.Reflection != 0.25 || a.Transmission != 0.5 || a.Absorption != 0.25 {
		t.Errorf("Normalize() = %+v", a)
	}
	zero := Attribute{SoundVelocity: 1}
	if got := zero.Normalize(); got != zero {
		t.Errorf("Normalize() of zero fractions = %+v, want unchanged", got)
	}
}

func TestAttributeSimilar(t *testing.T) {
	a := Solid()
	b := a
	b.SoundVelocity += 1e-9
	if a.Same(b) {
		t.Error("Same() should be exact")
	}
	if !a.Similar(b, 1e-9) {
		t.Error("Similar() should tolerate rounding noise")
	}
	if a.Similar(Air(), 1e-6) {
		t.Error("Similar(Solid, Air) = true")
	}
}

func TestVertexSame(t *testing.T) {
	base := Vertex{Position: math.Vec3{X: 1, Y: 2, Z: 3}, Attr: Solid()}
	tests := []struct {
		name  string
		other Vertex
		want  bool
	}{
		{"identical", base, true},
		{"moved", Vertex{Position: math.Vec3{X: 1, Y: 2, Z: 3.0000001}, Attr: Solid()}, false},
		{"reflection", Vertex{Position: base.Position, Attr: Attribute{Reflection: 0.1, Absorption: 1, SoundVelocity: 2000}}, false},
		{"transmission", Vertex{Position: base.Position, Attr: Attribute{Transmission: 0.1, Absorption: 1, SoundVelocity: 2000}}, false},
		{"absorption", Vertex{Position: base.Position, Attr: Attribute{Absorption: 0.9, SoundVelocity: 2000}}, false},
		{"sound velocity", Vertex{Position: base.Position, Attr: Attribute{Absorption: 1, SoundVelocity: 2001}}, false},
		{"flow velocity", Vertex{Position: base.Position, Attr: Attribute{Absorption: 1, SoundVelocity: 2000, Velocity: math.Vec3{Z: 1}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Same(tt.other); got != tt.want {
				t.Errorf("Vertex.Same() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTripletSorted(t *testing.T) {
	for _, tr := range []Triplet{{3, 1, 2}, {2, 3, 1}, {1, 2, 3}, {3, 2, 1}} {
		if got := tr.Sorted(); got != (Triplet{1, 2, 3}) {
			t.Errorf("%v.Sorted() = %v", tr, got)
		}
		if HashTriplet(tr) != HashTriplet(Triplet{1, 2, 3}) {
			t.Errorf("HashTriplet(%v) differs from sorted", tr)
		}
	}
}

func TestNewTripletSetSize(t *testing.T) {
	for _, n := range []int{0, 1, 7, 12, 100} {
		set := NewTripletSetSize(n)
		size := set.TableSize()
		for i := 0; i < n; i++ {
			if err := set.Insert(Triplet{uint32(i), uint32(i + 1), uint32(i + 2)}, struct{}{}); err != nil {
				t.Fatalf("Insert(%d) error = %v", i, err)
			}
		}
		if set.TableSize() != size {
			t.Errorf("NewTripletSetSize(%d) grew from %d to %d slots", n, size, set.TableSize())
		}
	}
}

func TestFromBorrowedKeepsBuffers(t *testing.T) {
	verts := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	idx := []uint8{0, 1, 2}
	m, err := FromBorrowed("tri", Float32Vertices(verts), Uint8Indices(idx))
	if err != nil {
		t.Fatalf("FromBorrowed() error = %v", err)
	}
	if !m.Borrowed() {
		t.Error("Borrowed() = false")
	}
	verts[3] = 5
	if got := m.Position(1).X; got != 5 {
		t.Errorf("borrowed position = %v, want 5", got)
	}
	if m.Attribute(0) != Solid() {
		t.Errorf("default attribute = %+v, want solid", m.Attribute(0))
	}
}

func TestFromOwnedCopiesBuffers(t *testing.T) {
	verts := []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}
	idx := []uint16{0, 1, 2}
	m, err := FromOwned("tri", Float64Vertices(verts), Uint16Indices(idx))
	if err != nil {
		t.Fatalf("FromOwned() error = %v", err)
	}
	if m.Borrowed() {
		t.Error("Borrowed() = true")
	}
	verts[3] = 5
	idx[0] = 2
	if got := m.Position(1).X; got != 1 {
		t.Errorf("owned position = %v, want 1", got)
	}
	if got := m.FaceIndices(0); got != (Triplet{0, 1, 2}) {
		t.Errorf("FaceIndices(0) = %v", got)
	}
	want := math.NewAABB(math.Vec3{}, math.Vec3{X: 1, Y: 1})
	if m.AABB() != want {
		t.Errorf("AABB() = %v, want %v", m.AABB(), want)
	}
}

func TestAssignBuffersValidation(t *testing.T) {
	tests := []struct {
		name string
		vb   VertexBuffer
		ib   IndexBuffer
		want error
	}{
		{"not triangles", Float64Vertices([]float64{0, 0, 0, 1, 1, 1}), Uint8Indices([]uint8{0, 1}), ErrNotTriangles},
		{"bad vertex buffer", Float64Vertices([]float64{0, 0}), Uint8Indices(nil), ErrBadVertexBuffer},
		{"out of range", Float64Vertices([]float64{0, 0, 0, 1, 1, 1}), Uint32Indices([]uint32{0, 1, 2}), ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New("m")
			if err := m.AssignBuffers(tt.vb, tt.ib); !errors.Is(err, tt.want) {
				t.Errorf("AssignBuffers() error = %v, want %v", err, tt.want)
			}
			if m.VertexCount() != 0 || !m.AABB().IsEmpty() {
				t.Error("failed AssignBuffers() modified the mesh")
			}
		})
	}
}

func TestCube(t *testing.T) {
	m, err := Cube("cube", unitBox, Solid())
	if err != nil {
		t.Fatalf("Cube() error = %v", err)
	}
	if m.VertexCount() != 8 || m.FaceCount() != 12 || m.IndexCount() != 36 {
		t.Errorf("Cube() = %d vertices, %d faces, %d indices", m.VertexCount(), m.FaceCount(), m.IndexCount())
	}
	if m.IndexKind() != Uint8 {
		t.Errorf("IndexKind() = %v, want uint8", m.IndexKind())
	}
	if m.AABB() != unitBox {
		t.Errorf("AABB() = %v, want %v", m.AABB(), unitBox)
	}

	// every face normal points away from the centre
	centre := unitBox.Center()
	for f := 0; f < m.FaceCount(); f++ {
		face := m.Face(f)
		n := face.Triangle().Normal()
		if n.Dot(face[0].Position.Sub(centre)) <= 0 {
			t.Errorf("face %d winds inward", f)
		}
	}
}

func TestIsManifold(t *testing.T) {
	cube, _ := Cube("cube", unitBox, Solid())

	tri := NewBuilder("tri")
	tri.AddTriangle(math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Y: 1}, Solid())
	lone, _ := tri.Build()

	tests := []struct {
		name string
		m    *Mesh
		want bool
	}{
		{"cube", cube, true},
		{"lone triangle", lone, false},
		{"empty", New("empty"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.IsManifold(); got != tt.want {
				t.Errorf("IsManifold() = %v, want %v", got, tt.want)
			}
		})
	}
	if got := cube.EdgeCount(); got != 18 {
		t.Errorf("cube EdgeCount() = %d, want 18", got)
	}
}

func TestBuilderDeduplicates(t *testing.T) {
	b := NewBuilder("b")
	b.AddBox(unitBox, Solid())
	if b.VertexCount() != 8 {
		t.Errorf("VertexCount() = %d, want 8", b.VertexCount())
	}

	// same position, different attribute stays distinct
	b.AddTriangle(math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Y: 1}, Air())
	if b.VertexCount() != 11 {
		t.Errorf("VertexCount() = %d, want 11", b.VertexCount())
	}

	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := m.Attribute(int(m.FaceIndices(12)[0])); got != Air() {
		t.Errorf("attribute of added face = %+v, want air", got)
	}
}

func TestBuilderIndexKind(t *testing.T) {
	tests := []struct {
		count int
		want  IndexKind
	}{
		{0, Uint8},
		{255, Uint8},
		{256, Uint16},
		{1<<16 - 1, Uint16},
		{1 << 16, Uint32},
	}
	for _, tt := range tests {
		if got := IndexKindFor(tt.count); got != tt.want {
			t.Errorf("IndexKindFor(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}

	b := NewBuilder("strip").SetVertexKind(Float32)
	for i := 0; i < 100; i++ {
		x := float64(i)
		b.AddTriangle(math.Vec3{X: x}, math.Vec3{X: x + 1}, math.Vec3{X: x, Y: 1}, Solid())
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if m.IndexKind() != Uint16 || m.VertexKind() != Float32 {
		t.Errorf("kinds = %v/%v, want uint16/float32", m.IndexKind(), m.VertexKind())
	}
}

func TestNewIndexBufferRejectsWideValues(t *testing.T) {
	if _, err := NewIndexBuffer(Uint8, []uint32{0, 256, 1}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("NewIndexBuffer() error = %v, want ErrIndexOutOfRange", err)
	}
}
