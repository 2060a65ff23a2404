package octree

import (
	gomath "math"
	"sort"

	"github.com/Faultbox/wavesim/pkg/intersect"
	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/mesh"
)

// QueryPotentialFaces returns every face held by a leaf whose box overlaps
// box, without duplicates. The result is a superset of the faces that
// actually intersect box; callers refine it with intersect.TriangleAABB.
func (o *Octree) QueryPotentialFaces(box math.AABB) []mesh.Triplet {
	q := leafCollector{tree: o}
	q.query(0, box)
	if len(q.leaves) == 0 {
		return nil
	}
	if len(q.leaves) == 1 {
		return append([]mesh.Triplet(nil), o.nodes[q.leaves[0]].Faces...)
	}

	seen := mesh.NewTripletSetSize(q.faces)
	out := make([]mesh.Triplet, 0, q.faces)
	for _, id := range q.leaves {
		for _, t := range o.nodes[id].Faces {
			if err := seen.Insert(t.Sorted(), struct{}{}); err != nil {
				continue
			}
			out = append(out, t)
		}
	}
	return out
}

// leafCollector gathers the leaves under a query box and how many face
// references they hold.
type leafCollector struct {
	tree   *Octree
	leaves []int
	faces  int
}

func (q *leafCollector) query(id int, box math.AABB) {
	n := q.tree.nodes[id]
	if !intersect.AABBIntersectsAABB(n.AABB, box) {
		return
	}
	if n.IsLeaf() {
		q.add(id)
		return
	}

	// Once a node is no larger than the query every child below it
	// overlaps the query anyway.
	nd := n.AABB.Dims()
	qd := box.Dims()
	if nd.X <= qd.X && nd.Y <= qd.Y && nd.Z <= qd.Z {
		q.collect(id)
		return
	}
	for i := 0; i < 8; i++ {
		q.query(n.Child(i), box)
	}
}

func (q *leafCollector) collect(id int) {
	n := q.tree.nodes[id]
	if n.IsLeaf() {
		q.add(id)
		return
	}
	for i := 0; i < 8; i++ {
		q.collect(n.Child(i))
	}
}

func (q *leafCollector) add(id int) {
	if n := len(q.tree.nodes[id].Faces); n > 0 {
		q.leaves = append(q.leaves, id)
		q.faces += n
	}
}

// Crossings counts the surface crossings of the ray from p towards +Z, out
// to just beyond the top of the mesh. Only leaves the ray passes through are
// visited. A face stored in several leaves is tested once, and hits at the
// same height are one crossing, so a ray through an edge shared by two faces
// counts it once.
func (o *Octree) Crossings(p math.Vec3) int {
	root := o.nodes[0].AABB
	if root.IsEmpty() {
		return 0
	}
	ray := intersect.Ray{Origin: p, Direction: math.Vec3{Z: 1}}
	end := math.Vec3{X: p.X, Y: p.Y, Z: root.Max.Z + 1}
	if end.Z <= p.Z {
		return 0
	}

	seen := mesh.NewTripletSet()
	var hits []float64
	var visit func(id int)
	visit = func(id int) {
		n := o.nodes[id]
		if _, hit := ray.IntersectAABB(n.AABB); !hit {
			return
		}
		if !n.IsLeaf() {
			for i := 0; i < 8; i++ {
				visit(n.Child(i))
			}
			return
		}
		for _, t := range n.Faces {
			if err := seen.Insert(t.Sorted(), struct{}{}); err != nil {
				continue
			}
			if at, ok := intersect.LineTriangle(p, end, o.mesh.Triangle(t)); ok {
				hits = append(hits, at.Z)
			}
		}
	}
	visit(0)
	return distinctHits(hits, intersect.Epsilon*gomath.Max(1, end.Z-p.Z))
}

// distinctHits counts the values of hits that differ by more than tol.
func distinctHits(hits []float64, tol float64) int {
	if len(hits) == 0 {
		return 0
	}
	sort.Float64s(hits)
	count := 1
	last := hits[0]
	for _, z := range hits[1:] {
		if z-last > tol {
			count++
		}
		last = z
	}
	return count
}

// ContainsPoint reports whether p lies inside the mesh, using the parity of
// Crossings. The mesh should be closed; a ray grazing a shared edge or
// vertex may count the same crossing twice.
func (o *Octree) ContainsPoint(p math.Vec3) bool {
	return o.Crossings(p)%2 == 1
}
