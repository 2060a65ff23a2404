package mesh

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/Faultbox/wavesim/pkg/math"
)

// VertexKind is the element type of a vertex buffer.
type VertexKind uint8

// Vertex buffer element types.
const (
	Float32 VertexKind = iota
	Float64
)

func (k VertexKind) String() string {
	switch k {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return fmt.Sprintf("VertexKind(%d)", uint8(k))
}

// IndexKind is the element type of an index buffer.
type IndexKind uint8

// Index buffer element types.
const (
	Uint8 IndexKind = iota
	Uint16
	Uint32
)

func (k IndexKind) String() string {
	switch k {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	}
	return fmt.Sprintf("IndexKind(%d)", uint8(k))
}

// IndexKindFor returns the narrowest index kind for a buffer holding count
// indices. Indices are always below the vertex count, which never exceeds
// the index count in a built mesh.
func IndexKindFor(count int) IndexKind {
	switch {
	case count >= 1<<16:
		return Uint32
	case count >= 1<<8:
		return Uint16
	default:
		return Uint8
	}
}

// VertexBuffer holds positions as consecutive x, y, z scalars of one kind.
type VertexBuffer struct {
	kind VertexKind
	f32  []float32
	f64  []float64
}

// Float32Vertices wraps data without copying it.
func Float32Vertices(data []float32) VertexBuffer {
	return VertexBuffer{kind: Float32, f32: data}
}

// Float64Vertices wraps data without copying it.
func Float64Vertices(data []float64) VertexBuffer {
	return VertexBuffer{kind: Float64, f64: data}
}

// NewVertexBuffer packs positions into a fresh buffer of the given kind.
func NewVertexBuffer(kind VertexKind, positions []math.Vec3) VertexBuffer {
	switch kind {
	case Float32:
		return Float32Vertices(packFloats[float32](positions))
	default:
		return Float64Vertices(packFloats[float64](positions))
	}
}

func packFloats[T constraints.Float](positions []math.Vec3) []T {
	out := make([]T, 0, len(positions)*3)
	for _, p := range positions {
		out = append(out, T(p.X), T(p.Y), T(p.Z))
	}
	return out
}

func widenFloat[T constraints.Float](data []T, i int) math.Vec3 {
	return math.Vec3{X: float64(data[i*3]), Y: float64(data[i*3+1]), Z: float64(data[i*3+2])}
}

// Kind returns the element type.
func (b VertexBuffer) Kind() VertexKind { return b.kind }

// Len returns the number of scalars.
func (b VertexBuffer) Len() int {
	if b.kind == Float32 {
		return len(b.f32)
	}
	return len(b.f64)
}

// Position returns vertex i widened to float64.
func (b VertexBuffer) Position(i int) math.Vec3 {
	if b.kind == Float32 {
		return widenFloat(b.f32, i)
	}
	return widenFloat(b.f64, i)
}

func (b VertexBuffer) clone() VertexBuffer {
	return VertexBuffer{
		kind: b.kind,
		f32:  append([]float32(nil), b.f32...),
		f64:  append([]float64(nil), b.f64...),
	}
}

// IndexBuffer holds triangle vertex indices of one unsigned kind.
type IndexBuffer struct {
	kind IndexKind
	u8   []uint8
	u16  []uint16
	u32  []uint32
}

// Uint8Indices wraps data without copying it.
func Uint8Indices(data []uint8) IndexBuffer {
	return IndexBuffer{kind: Uint8, u8: data}
}

// Uint16Indices wraps data without copying it.
func Uint16Indices(data []uint16) IndexBuffer {
	return IndexBuffer{kind: Uint16, u16: data}
}

// Uint32Indices wraps data without copying it.
func Uint32Indices(data []uint32) IndexBuffer {
	return IndexBuffer{kind: Uint32, u32: data}
}

// NewIndexBuffer narrows indices into a fresh buffer of the given kind.
// Values that do not fit the kind are rejected.
func NewIndexBuffer(kind IndexKind, indices []uint32) (IndexBuffer, error) {
	switch kind {
	case Uint8:
		data, err := narrowIndices[uint8](indices, 1<<8-1)
		return Uint8Indices(data), err
	case Uint16:
		data, err := narrowIndices[uint16](indices, 1<<16-1)
		return Uint16Indices(data), err
	default:
		return Uint32Indices(append([]uint32(nil), indices...)), nil
	}
}

func narrowIndices[T constraints.Unsigned](indices []uint32, limit uint32) ([]T, error) {
	out := make([]T, len(indices))
	for i, v := range indices {
		if v > limit {
			return nil, fmt.Errorf("%w: index %d does not fit in %d", ErrIndexOutOfRange, v, limit)
		}
		out[i] = T(v)
	}
	return out, nil
}

// Kind returns the element type.
func (b IndexBuffer) Kind() IndexKind { return b.kind }

// Len returns the number of indices.
func (b IndexBuffer) Len() int {
	switch b.kind {
	case Uint8:
		return len(b.u8)
	case Uint16:
		return len(b.u16)
	default:
		return len(b.u32)
	}
}

// At returns index i widened to uint32.
func (b IndexBuffer) At(i int) uint32 {
	switch b.kind {
	case Uint8:
		return widenIndex(b.u8, i)
	case Uint16:
		return widenIndex(b.u16, i)
	default:
		return widenIndex(b.u32, i)
	}
}

func widenIndex[T constraints.Unsigned](data []T, i int) uint32 {
	return uint32(data[i])
}

func (b IndexBuffer) clone() IndexBuffer {
	return IndexBuffer{
		kind: b.kind,
		u8:   append([]uint8(nil), b.u8...),
		u16:  append([]uint16(nil), b.u16...),
		u32:  append([]uint32(nil), b.u32...),
	}
}
