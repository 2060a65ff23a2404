package intersect

import (
	gomath "math"

	"github.com/Faultbox/wavesim/pkg/math"
)

// Ray is a half-line with an origin and a direction. The direction does not
// need to be normalized; distances are in units of its length.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box
// using the slab method. Returns the distance to the entry point, or the
// exit distance if the ray starts inside the box. The boundary is inclusive.
func (r Ray) IntersectAABB(box math.AABB) (t float64, hit bool) {
	tmin := -gomath.MaxFloat64
	tmax := gomath.MaxFloat64

	for i := 0; i < 3; i++ {
		o := r.Origin.Component(i)
		d := r.Direction.Component(i)
		lo, hi := box.Min.Component(i), box.Max.Component(i)
		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}
