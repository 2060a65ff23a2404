package medium

import (
	gomath "math"

	"github.com/Faultbox/wavesim/pkg/intersect"
	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/mesh"
	"github.com/Faultbox/wavesim/pkg/octree"
)

// wallSlack is how far, relative to the cell size, a face may sit from a
// cell wall and still count as lying on it.
const wallSlack = 1e-6

// CellAttribute samples the material of cell from the vertices of every face
// that belongs to it, weighting each vertex by the inverse square of its
// distance to the cell centre. A cell with no faces is air.
func CellAttribute(tree *octree.Octree, cell math.AABB) mesh.Attribute {
	classificationsTotal.Inc()

	m := tree.Mesh()
	center := cell.Center()

	var (
		sum     mesh.Attribute
		weights float64
		first   mesh.Attribute
		uniform = true
		found   = false
	)
	for _, t := range tree.QueryPotentialFaces(cell) {
		if !faceInCell(m.Triangle(t), cell) {
			continue
		}
		for _, v := range t {
			attr := m.Attribute(int(v))
			d2 := m.Position(int(v)).DistanceSquared(center)
			if d2 == 0 {
				return attr.Normalize()
			}
			if !found {
				first = attr
				found = true
			} else if !attr.Same(first) {
				uniform = false
			}

			w := 1 / d2
			sum.Reflection += attr.Reflection * w
			sum.Transmission += attr.Transmission * w
			sum.Absorption += attr.Absorption * w
			sum.SoundVelocity += attr.SoundVelocity * w
			sum.Velocity = sum.Velocity.Add(attr.Velocity.Scale(w))
			weights += w
		}
	}

	if !found {
		return mesh.Air()
	}
	if uniform {
		return first.Normalize()
	}

	inv := 1 / weights
	sum.Reflection *= inv
	sum.Transmission *= inv
	sum.Absorption *= inv
	sum.SoundVelocity *= inv
	sum.Velocity = sum.Velocity.Scale(inv)
	return sum.Normalize()
}

// faceInCell reports whether tri belongs to cell. A face belongs to a cell
// when it reaches the cell's interior, or when it lies flat on one of the
// cell's walls with its normal pointing out of the cell. Faces that only
// meet a wall, edge or corner from outside do not belong, so a face on a
// grid plane belongs to exactly one of the two cells it separates.
func faceInCell(tri intersect.Triangle, cell math.AABB) bool {
	d := cell.Dims()
	e := wallSlack*gomath.Max(d.X, gomath.Max(d.Y, d.Z)) + 2*intersect.Epsilon
	inner := math.AABB{Min: cell.Min.Add(math.Splat(e)), Max: cell.Max.Sub(math.Splat(e))}
	if intersect.TriangleAABB(tri, inner) {
		return true
	}

	n := tri.Normal()
	for axis := 0; axis < 3; axis++ {
		walls := [2]struct {
			plane   float64
			outward float64
		}{
			{cell.Min.Component(axis), -1},
			{cell.Max.Component(axis), 1},
		}
		for _, w := range walls {
			if n.Component(axis)*w.outward <= 0 || !onPlane(tri, axis, w.plane, e) {
				continue
			}
			// the wall itself, minus a rim so edge contact does not count
			wall := inner
			wall.Min = wall.Min.WithComponent(axis, w.plane-e)
			wall.Max = wall.Max.WithComponent(axis, w.plane+e)
			if intersect.TriangleAABB(tri, wall) {
				return true
			}
		}
	}
	return false
}

func onPlane(tri intersect.Triangle, axis int, plane, e float64) bool {
	for _, v := range tri {
		if gomath.Abs(v.Component(axis)-plane) > e {
			return false
		}
	}
	return true
}
