// Package intersect provides the geometric intersection tests used to build
// and query the octree and to classify medium cells. All functions are pure.
package intersect

import (
	gomath "math"

	"github.com/Faultbox/wavesim/pkg/math"
)

// Epsilon is the tolerance used for every "is zero" comparison in this
// package.
const Epsilon = 1e-9

// Triangle is three corner positions.
type Triangle [3]math.Vec3

// AABB returns the bounding box of the triangle.
func (t Triangle) AABB() math.AABB {
	return math.AABBFromPoints(t[0], t[1], t[2])
}

// Normal returns the unnormalized face normal (v1-v0) x (v2-v0).
func (t Triangle) Normal() math.Vec3 {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
}

// PointInAABB reports whether p lies inside box, boundary included.
func PointInAABB(p math.Vec3, box math.AABB) bool {
	return box.Contains(p)
}

// AABBIntersectsAABB reports whether two boxes overlap. Boxes that only touch
// along a face, edge or corner do not intersect. On an axis where either box
// has zero extent the intervals are treated as closed, so a flat box still
// intersects itself and anything straddling its plane.
func AABBIntersectsAABB(a, b math.AABB) bool {
	for i := 0; i < 3; i++ {
		amin, amax := a.Min.Component(i), a.Max.Component(i)
		bmin, bmax := b.Min.Component(i), b.Max.Component(i)
		if amax <= amin || bmax <= bmin {
			if amax < bmin || amin > bmax {
				return false
			}
			continue
		}
		if amax <= bmin || amin >= bmax {
			return false
		}
	}
	return true
}

// nearZero compares v against Epsilon relative to scale.
func nearZero(v, scale float64) bool {
	return gomath.Abs(v) <= Epsilon*scale
}
