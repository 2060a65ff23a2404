// Package octree provides a spatial index over mesh faces. Nodes live in a
// flat arena and refer to each other by index.
package octree

import (
	"errors"
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/wavesim/pkg/intersect"
	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/mesh"
)

// Octree errors.
var (
	ErrNilMesh           = errors.New("octree: nil mesh")
	ErrSubdividedNonLeaf = errors.New("octree: subdivided non-leaf node")
	ErrNodeOutOfRange    = errors.New("octree: node index out of range")
)

// NoNode marks a missing parent or child block.
const NoNode = -1

// Node is one cell of the tree. A node is either a leaf holding face index
// triplets, or internal with 8 children stored contiguously from Children.
type Node struct {
	AABB     math.AABB
	Parent   int
	Children int
	Depth    int
	Faces    []mesh.Triplet
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool { return n.Children == NoNode }

// Child returns the arena index of octant i, where i = x*4 + y*2 + z.
func (n Node) Child(i int) int { return n.Children + i }

// Config controls tree construction.
type Config struct {
	// SmallestSubdivision stops subdivision once a node is no larger than
	// this on every axis. Zero components are derived from the mesh.
	SmallestSubdivision math.Vec3
	// MaxDepth limits recursion; 0 means unlimited.
	MaxDepth int
	Logger   *zap.Logger
}

// Octree indexes the faces of one mesh. The mesh must not be modified while
// the tree is in use.
type Octree struct {
	mesh     *mesh.Mesh
	nodes    []Node
	smallest math.Vec3
	maxDepth int
	log      *zap.Logger

	subdivisions int
}

// Build constructs the tree for m.
func Build(m *mesh.Mesh, cfg Config) (*Octree, error) {
	if m == nil {
		return nil, ErrNilMesh
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	o := &Octree{
		mesh:     m,
		maxDepth: cfg.MaxDepth,
		log:      log,
	}
	o.smallest = resolveSmallest(cfg.SmallestSubdivision, SmallestFaceExtent(m))
	o.nodes = append(o.nodes, Node{
		AABB:     m.AABB(),
		Parent:   NoNode,
		Children: NoNode,
		Faces:    m.Triplets(),
	})
	o.build(0)

	nodesGauge.Set(float64(len(o.nodes)))
	log.Debug("Built octree",
		zap.String("mesh", m.Name),
		zap.Int("faces", m.FaceCount()),
		zap.Int("nodes", len(o.nodes)),
		zap.Int("subdivisions", o.subdivisions),
		zap.Int("depth", o.Depth()),
		zap.Float64("smallest_x", o.smallest.X),
		zap.Float64("smallest_y", o.smallest.Y),
		zap.Float64("smallest_z", o.smallest.Z),
	)
	return o, nil
}

func resolveSmallest(requested, derived math.Vec3) math.Vec3 {
	for i := 0; i < 3; i++ {
		if requested.Component(i) <= 0 {
			requested = requested.WithComponent(i, derived.Component(i))
		}
	}
	return requested
}

// SmallestFaceExtent returns, per axis, the smallest non-zero extent of any
// face's bounding box. An axis on which every face is flat takes the largest
// value found on the other axes. An empty mesh yields zero.
func SmallestFaceExtent(m *mesh.Mesh) math.Vec3 {
	inf := gomath.Inf(1)
	smallest := math.Splat(inf)
	for f := 0; f < m.FaceCount(); f++ {
		d := intersect.Triangle(m.FaceVertices(f)).AABB().Dims()
		for i := 0; i < 3; i++ {
			if c := d.Component(i); c > intersect.Epsilon && c < smallest.Component(i) {
				smallest = smallest.WithComponent(i, c)
			}
		}
	}

	fallback := 0.0
	for i := 0; i < 3; i++ {
		if c := smallest.Component(i); !gomath.IsInf(c, 1) && c > fallback {
			fallback = c
		}
	}
	if fallback == 0 && m.FaceCount() > 0 {
		// every face is a point; there is nothing to separate
		d := m.AABB().Dims()
		fallback = gomath.Max(d.X, gomath.Max(d.Y, d.Z))
	}
	for i := 0; i < 3; i++ {
		if gomath.IsInf(smallest.Component(i), 1) {
			smallest = smallest.WithComponent(i, fallback)
		}
	}
	return smallest
}

func (o *Octree) build(id int) {
	n := o.nodes[id]
	if len(n.Faces) <= 1 {
		return
	}
	if o.maxDepth > 0 && n.Depth >= o.maxDepth {
		return
	}
	d := n.AABB.Dims()
	if d.X <= o.smallest.X+intersect.Epsilon &&
		d.Y <= o.smallest.Y+intersect.Epsilon &&
		d.Z <= o.smallest.Z+intersect.Epsilon {
		return
	}

	if err := o.split(id); err != nil {
		// only reachable for internal nodes, which build never revisits
		o.log.Error("Subdivide failed", zap.Int("node", id), zap.Error(err))
		return
	}

	first := o.nodes[id].Children
	pointless := true
	for i := 0; i < 8; i++ {
		if len(o.nodes[first+i].Faces) != len(n.Faces) {
			pointless = false
			break
		}
	}
	if pointless {
		// children are the last 8 nodes in the arena
		o.nodes = o.nodes[:first]
		o.nodes[id].Children = NoNode
		o.nodes[id].Faces = n.Faces
		return
	}

	o.countSubdivision()
	for i := 0; i < 8; i++ {
		o.build(first + i)
	}
}

// Subdivide splits leaf id into 8 octants at its midpoint and distributes
// its faces to every child they touch. The node's own face list is
// drained. Subdividing an internal node fails and leaves the tree unchanged.
func (o *Octree) Subdivide(id int) error {
	if err := o.split(id); err != nil {
		return err
	}
	o.countSubdivision()
	return nil
}

func (o *Octree) countSubdivision() {
	o.subdivisions++
	subdivisionsTotal.Inc()
}

func (o *Octree) split(id int) error {
	if id < 0 || id >= len(o.nodes) {
		return fmt.Errorf("%w: %d", ErrNodeOutOfRange, id)
	}
	parent := o.nodes[id]
	if !parent.IsLeaf() {
		return fmt.Errorf("%w: node %d", ErrSubdividedNonLeaf, id)
	}

	mid := parent.AABB.Center()
	first := len(o.nodes)
	for i := 0; i < 8; i++ {
		box := octant(parent.AABB, mid, i)
		child := Node{
			AABB:     box,
			Parent:   id,
			Children: NoNode,
			Depth:    parent.Depth + 1,
		}
		for _, t := range parent.Faces {
			if intersect.TriangleAABB(o.mesh.Triangle(t), box) {
				child.Faces = append(child.Faces, t)
			}
		}
		o.nodes = append(o.nodes, child)
	}
	o.nodes[id].Children = first
	o.nodes[id].Faces = nil
	return nil
}

// octant returns child box i of b, where i = x*4 + y*2 + z and each bit
// selects the upper half along that axis.
func octant(b math.AABB, mid math.Vec3, i int) math.AABB {
	out := b
	if i&4 != 0 {
		out.Min.X = mid.X
	} else {
		out.Max.X = mid.X
	}
	if i&2 != 0 {
		out.Min.Y = mid.Y
	} else {
		out.Max.Y = mid.Y
	}
	if i&1 != 0 {
		out.Min.Z = mid.Z
	} else {
		out.Max.Z = mid.Z
	}
	return out
}

// Mesh returns the indexed mesh.
func (o *Octree) Mesh() *mesh.Mesh { return o.mesh }

// Root returns the arena index of the root node.
func (o *Octree) Root() int { return 0 }

// Node returns a copy of node id.
func (o *Octree) Node(id int) Node { return o.nodes[id] }

// NodeCount returns the number of nodes in the arena.
func (o *Octree) NodeCount() int { return len(o.nodes) }

// SmallestSubdivision returns the subdivision limit used during the build.
func (o *Octree) SmallestSubdivision() math.Vec3 { return o.smallest }

// Subdivisions returns how many splits the tree kept. Splits discarded
// during the build because every child held all of the parent's faces are
// not counted.
func (o *Octree) Subdivisions() int { return o.subdivisions }

// Depth returns the depth of the deepest node; a lone root has depth 0.
func (o *Octree) Depth() int {
	depth := 0
	for _, n := range o.nodes {
		if n.Depth > depth {
			depth = n.Depth
		}
	}
	return depth
}

// Leaves returns the arena indices of all leaves.
func (o *Octree) Leaves() []int {
	var out []int
	for i, n := range o.nodes {
		if n.IsLeaf() {
			out = append(out, i)
		}
	}
	return out
}

// FaceCount returns the number of distinct faces held by the leaves.
func (o *Octree) FaceCount() int {
	seen := mesh.NewTripletSet()
	for _, n := range o.nodes {
		for _, t := range n.Faces {
			_ = seen.Insert(t.Sorted(), struct{}{})
		}
	}
	return seen.Len()
}
