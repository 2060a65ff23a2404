package intersect

import (
	"github.com/Faultbox/wavesim/pkg/math"
)

// LinePlane intersects the segment p0->p1 with the plane through v0, v1 and
// v2. It fails when the segment is parallel to the plane, points away from
// it, or ends before reaching it.
func LinePlane(p0, p1, v0, v1, v2 math.Vec3) (math.Vec3, bool) {
	r, ok := linePlaneParam(p0, p1, v0, v1.Sub(v0).Cross(v2.Sub(v0)))
	if !ok {
		return math.Vec3{}, false
	}
	return p0.Add(p1.Sub(p0).Scale(r)), true
}

// linePlaneParam returns the segment parameter in [0,1] at which p0->p1
// crosses the plane with normal n through v0.
func linePlaneParam(p0, p1, v0, n math.Vec3) (float64, bool) {
	dir := p1.Sub(p0)
	denom := n.Dot(dir)
	if nearZero(denom, n.Length()*dir.Length()) {
		return 0, false
	}
	r := n.Dot(v0.Sub(p0)) / denom
	if r < 0 || r > 1 {
		return 0, false
	}
	return r, true
}

// LineTriangleBarycentric intersects the segment p0->p1 with tri and returns
// the barycentric coordinates (s, t, w) of the hit, where the hit point is
// w*tri[0] + s*tri[1] + t*tri[2].
func LineTriangleBarycentric(p0, p1 math.Vec3, tri Triangle) (s, t, w float64, ok bool) {
	u := tri[1].Sub(tri[0])
	v := tri[2].Sub(tri[0])
	n := u.Cross(v)
	if nearZero(n.LengthSquared(), u.LengthSquared()*v.LengthSquared()) {
		return 0, 0, 0, false
	}

	r, ok := linePlaneParam(p0, p1, tri[0], n)
	if !ok {
		return 0, 0, 0, false
	}
	hit := p0.Add(p1.Sub(p0).Scale(r))

	uu := u.Dot(u)
	uv := u.Dot(v)
	vv := v.Dot(v)
	wp := hit.Sub(tri[0])
	wu := wp.Dot(u)
	wv := wp.Dot(v)
	d := uv*uv - uu*vv

	s = (uv*wv - vv*wu) / d
	if s < -Epsilon || s > 1+Epsilon {
		return 0, 0, 0, false
	}
	t = (uv*wu - uu*wv) / d
	if t < -Epsilon || s+t > 1+Epsilon {
		return 0, 0, 0, false
	}
	return s, t, 1 - s - t, true
}

// LineTriangle intersects the segment p0->p1 with tri and returns the hit
// point.
func LineTriangle(p0, p1 math.Vec3, tri Triangle) (math.Vec3, bool) {
	s, t, _, ok := LineTriangleBarycentric(p0, p1, tri)
	if !ok {
		return math.Vec3{}, false
	}
	u := tri[1].Sub(tri[0])
	v := tri[2].Sub(tri[0])
	return tri[0].Add(u.Scale(s)).Add(v.Scale(t)), true
}
