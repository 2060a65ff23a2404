package intersect

import (
	gomath "math"

	"github.com/Faultbox/wavesim/pkg/math"
)

var boxAxes = [3]math.Vec3{{X: 1}, {Y: 1}, {Z: 1}}

// TriangleAABB reports whether tri overlaps box using the separating axis
// theorem: the 9 cross products of triangle edges with box axes, the 3 box
// axes, and the triangle normal. Touching counts as overlapping.
func TriangleAABB(tri Triangle, box math.AABB) bool {
	c := box.Center()
	h := box.Dims().Scale(0.5)

	v0 := tri[0].Sub(c)
	v1 := tri[1].Sub(c)
	v2 := tri[2].Sub(c)

	edges := [3]math.Vec3{v1.Sub(v0), v2.Sub(v1), v0.Sub(v2)}
	for _, e := range edges {
		for _, a := range boxAxes {
			axis := a.Cross(e)
			if separated(axis, v0, v1, v2, h) {
				return false
			}
		}
	}

	for i := 0; i < 3; i++ {
		lo := gomath.Min(v0.Component(i), gomath.Min(v1.Component(i), v2.Component(i)))
		hi := gomath.Max(v0.Component(i), gomath.Max(v1.Component(i), v2.Component(i)))
		r := h.Component(i)
		if lo > r+Epsilon || hi < -r-Epsilon {
			return false
		}
	}

	return PlaneAABB(edges[0].Cross(edges[1]), v0, h)
}

func separated(axis, v0, v1, v2, h math.Vec3) bool {
	p0 := v0.Dot(axis)
	p1 := v1.Dot(axis)
	p2 := v2.Dot(axis)
	r := h.X*gomath.Abs(axis.X) + h.Y*gomath.Abs(axis.Y) + h.Z*gomath.Abs(axis.Z)
	lo := gomath.Min(p0, gomath.Min(p1, p2))
	hi := gomath.Max(p0, gomath.Max(p1, p2))
	return lo > r+Epsilon || hi < -r-Epsilon
}

// PlaneAABB reports whether the plane with the given normal through vert
// overlaps a box centred on the origin with half extents h.
func PlaneAABB(normal, vert, h math.Vec3) bool {
	var vmin, vmax math.Vec3
	for i := 0; i < 3; i++ {
		v := vert.Component(i)
		r := h.Component(i)
		if normal.Component(i) > 0 {
			vmin = vmin.WithComponent(i, -r-v)
			vmax = vmax.WithComponent(i, r-v)
		} else {
			vmin = vmin.WithComponent(i, r-v)
			vmax = vmax.WithComponent(i, -r-v)
		}
	}
	if normal.Dot(vmin) > Epsilon {
		return false
	}
	return normal.Dot(vmax) >= -Epsilon
}
