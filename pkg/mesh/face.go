package mesh

import (
	"github.com/Faultbox/wavesim/pkg/container"
	"github.com/Faultbox/wavesim/pkg/intersect"
	"github.com/Faultbox/wavesim/pkg/math"
)

// Vertex is a position with its material.
type Vertex struct {
	Position math.Vec3
	Attr     Attribute
}

// Same reports exact equality of position and attribute.
func (v Vertex) Same(other Vertex) bool {
	return v == other
}

func hashVertex(v Vertex) uint32 {
	// +0 folds negative zero so equal vertices hash equally
	return container.HashFloat64s(
		v.Position.X+0, v.Position.Y+0, v.Position.Z+0,
		v.Attr.Reflection+0, v.Attr.Transmission+0, v.Attr.Absorption+0,
		v.Attr.SoundVelocity+0,
		v.Attr.Velocity.X+0, v.Attr.Velocity.Y+0, v.Attr.Velocity.Z+0,
	)
}

// Face is a triangle of three vertices.
type Face [3]Vertex

// NewFace returns the face a, b, c.
func NewFace(a, b, c Vertex) Face {
	return Face{a, b, c}
}

// Same reports whether all three vertices match exactly, in order.
func (f Face) Same(other Face) bool {
	return f == other
}

// Triangle returns the corner positions.
func (f Face) Triangle() intersect.Triangle {
	return intersect.Triangle{f[0].Position, f[1].Position, f[2].Position}
}

// AABB returns the bounding box of the face.
func (f Face) AABB() math.AABB {
	return math.AABBFromPoints(f[0].Position, f[1].Position, f[2].Position)
}

// Triplet is the three vertex indices of one face.
type Triplet [3]uint32

// Sorted returns the indices in ascending order, so two triplets naming the
// same face in different winding compare equal.
func (t Triplet) Sorted() Triplet {
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
	if t[1] > t[2] {
		t[1], t[2] = t[2], t[1]
	}
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
	return t
}

// HashTriplet hashes the sorted indices.
func HashTriplet(t Triplet) uint32 {
	s := t.Sorted()
	return container.HashUint32s(s[0], s[1], s[2])
}

// NewTripletSet returns a hash set keyed by sorted triplet. Callers insert
// Sorted() triplets.
func NewTripletSet() *container.HashMap[Triplet, struct{}] {
	return container.NewHashMap[Triplet, struct{}](HashTriplet)
}

// NewTripletSetSize is NewTripletSet with room for n triplets before the
// table grows.
func NewTripletSetSize(n int) *container.HashMap[Triplet, struct{}] {
	return container.NewHashMapSize[Triplet, struct{}](HashTriplet, n*10/7+1)
}
