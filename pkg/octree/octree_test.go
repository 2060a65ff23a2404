package octree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/wavesim/pkg/intersect"
	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/mesh"
)

func vec(x, y, z float64) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }

func cubeMesh(t *testing.T, min, max float64) *mesh.Mesh {
	t.Helper()
	m, err := mesh.Cube("cube", math.NewAABB(vec(min, min, min), vec(max, max, max)), mesh.Solid())
	require.NoError(t, err)
	return m
}

// cubeWithTriangles is a cube spanning [-1,1] with two small triangles
// floating inside it.
func cubeWithTriangles(t *testing.T) (*mesh.Mesh, mesh.Triplet, mesh.Triplet) {
	t.Helper()
	b := mesh.NewBuilder("cube+2")
	b.AddBox(math.NewAABB(vec(-1, -1, -1), vec(1, 1, 1)), mesh.Solid())
	b.AddTriangle(vec(0.5, 0.5, 0.5), vec(0.6, 0.5, 0.5), vec(0.5, 0.6, 0.5), mesh.Solid())
	b.AddTriangle(vec(-0.5, -0.5, -0.5), vec(-0.4, -0.5, -0.5), vec(-0.5, -0.4, -0.5), mesh.Solid())
	m, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 14, m.FaceCount())
	return m, m.FaceIndices(12), m.FaceIndices(13)
}

func requireLeavesCoverMesh(t *testing.T, o *Octree) {
	t.Helper()
	require.Equal(t, o.Mesh().FaceCount(), o.FaceCount())
	for _, id := range o.Leaves() {
		n := o.Node(id)
		for _, f := range n.Faces {
			require.True(t, intersect.TriangleAABB(o.Mesh().Triangle(f), n.AABB),
				"face %v stored in leaf %d it does not touch", f, id)
		}
	}
	for i := 0; i < o.NodeCount(); i++ {
		n := o.Node(i)
		if !n.IsLeaf() {
			require.Empty(t, n.Faces, "internal node %d keeps faces", i)
		}
	}
}

func TestBuildNilMesh(t *testing.T) {
	_, err := Build(nil, Config{})
	require.ErrorIs(t, err, ErrNilMesh)
}

func TestBuildEmptyMesh(t *testing.T) {
	o, err := Build(mesh.New("empty"), Config{})
	require.NoError(t, err)
	require.Equal(t, 1, o.NodeCount())
	require.True(t, o.Node(o.Root()).IsLeaf())
	require.Equal(t, 0, o.FaceCount())
	require.Empty(t, o.QueryPotentialFaces(math.NewAABB(vec(-1, -1, -1), vec(1, 1, 1))))
	require.False(t, o.ContainsPoint(vec(0, 0, 0)))
}

func TestBuildSingleFaceStaysLeaf(t *testing.T) {
	b := mesh.NewBuilder("tri")
	b.AddTriangle(vec(0, 0, 0), vec(4, 0, 0), vec(0, 4, 1), mesh.Solid())
	m, err := b.Build()
	require.NoError(t, err)

	o, err := Build(m, Config{SmallestSubdivision: vec(0.1, 0.1, 0.1)})
	require.NoError(t, err)
	require.Equal(t, 1, o.NodeCount())
	require.Len(t, o.Node(0).Faces, 1)
}

func TestBuildCubeAutoSubdivision(t *testing.T) {
	m := cubeMesh(t, 0, 1)
	o, err := Build(m, Config{})
	require.NoError(t, err)

	require.Equal(t, vec(1, 1, 1), o.SmallestSubdivision())
	root := o.Node(o.Root())
	require.True(t, root.IsLeaf())
	require.Equal(t, NoNode, root.Parent)
	require.Equal(t, m.AABB(), root.AABB)
	require.Len(t, root.Faces, 12)
	require.Equal(t, 12, o.FaceCount())
}

func TestBuildCubeWithSmallTriangles(t *testing.T) {
	m, tri1, tri2 := cubeWithTriangles(t)
	o, err := Build(m, Config{})
	require.NoError(t, err)

	require.InDelta(t, 0.1, o.SmallestSubdivision().X, 1e-12)
	require.InDelta(t, 0.1, o.SmallestSubdivision().Y, 1e-12)
	require.Equal(t, 2.0, o.SmallestSubdivision().Z)

	require.False(t, o.Node(o.Root()).IsLeaf())
	require.Equal(t, vec(-1, -1, -1), o.Node(o.Root()).AABB.Min)
	require.Equal(t, vec(1, 1, 1), o.Node(o.Root()).AABB.Max)
	require.Equal(t, 14, o.FaceCount())
	requireLeavesCoverMesh(t, o)

	got := o.QueryPotentialFaces(math.NewAABB(vec(0.45, 0.45, 0.45), vec(0.65, 0.65, 0.55)))
	require.Contains(t, got, tri1)
	require.NotContains(t, got, tri2)
	requireUnique(t, got)
}

func TestBuildMaxDepth(t *testing.T) {
	m, _, _ := cubeWithTriangles(t)
	o, err := Build(m, Config{MaxDepth: 2})
	require.NoError(t, err)
	require.Equal(t, 2, o.Depth())
	requireLeavesCoverMesh(t, o)
}

func TestSubdivide(t *testing.T) {
	m := cubeMesh(t, 0, 1)
	o, err := Build(m, Config{})
	require.NoError(t, err)

	require.NoError(t, o.Subdivide(0))
	require.Equal(t, 9, o.NodeCount())

	root := o.Node(0)
	require.Empty(t, root.Faces)
	volume := 0.0
	for i := 0; i < 8; i++ {
		c := o.Node(root.Child(i))
		require.Equal(t, 0, c.Parent)
		require.Equal(t, 1, c.Depth)
		require.Equal(t, vec(0.5, 0.5, 0.5), c.AABB.Dims())
		volume += c.AABB.Volume()
	}
	require.Equal(t, root.AABB.Volume(), volume)
	require.Equal(t, vec(0, 0, 0), o.Node(root.Child(0)).AABB.Min)
	require.Equal(t, vec(0.5, 0, 0), o.Node(root.Child(4)).AABB.Min)
	require.Equal(t, vec(0, 0.5, 0), o.Node(root.Child(2)).AABB.Min)
	require.Equal(t, vec(0, 0, 0.5), o.Node(root.Child(1)).AABB.Min)
	require.Equal(t, vec(0.5, 0.5, 0.5), o.Node(root.Child(7)).AABB.Min)
	requireLeavesCoverMesh(t, o)
}

func TestSubdivideNonLeaf(t *testing.T) {
	o, err := Build(cubeMesh(t, 0, 1), Config{})
	require.NoError(t, err)
	require.NoError(t, o.Subdivide(0))

	before := o.NodeCount()
	err = o.Subdivide(0)
	require.ErrorIs(t, err, ErrSubdividedNonLeaf)
	require.Equal(t, before, o.NodeCount())
	require.Equal(t, 1, o.Node(0).Children)

	require.ErrorIs(t, o.Subdivide(100), ErrNodeOutOfRange)
}

func TestRandomMeshLeavesCoverFaces(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	b := mesh.NewBuilder("random")
	rv := func() math.Vec3 { return vec(rng.Float64()*10, rng.Float64()*10, rng.Float64()*10) }
	for i := 0; i < 40; i++ {
		p := rv()
		b.AddTriangle(p, p.Add(vec(rng.Float64(), 0, rng.Float64())), p.Add(vec(0, rng.Float64(), rng.Float64())), mesh.Solid())
	}
	m, err := b.Build()
	require.NoError(t, err)

	o, err := Build(m, Config{})
	require.NoError(t, err)
	requireLeavesCoverMesh(t, o)

	all := o.QueryPotentialFaces(m.AABB())
	require.Len(t, all, 40)
	requireUnique(t, all)
}

func requireUnique(t *testing.T, faces []mesh.Triplet) {
	t.Helper()
	seen := map[mesh.Triplet]bool{}
	for _, f := range faces {
		require.False(t, seen[f.Sorted()], "duplicate face %v", f)
		seen[f.Sorted()] = true
	}
}

func TestSubdivisionsSkipDiscardedSplits(t *testing.T) {
	// both triangles meet at the root centre, so every octant holds both
	b := mesh.NewBuilder("fan")
	b.AddTriangle(vec(1, 1, 1), vec(0, 0, 0), vec(2, 0, 0), mesh.Solid())
	b.AddTriangle(vec(1, 1, 1), vec(2, 2, 2), vec(0, 2, 2), mesh.Solid())
	m, err := b.Build()
	require.NoError(t, err)

	o, err := Build(m, Config{})
	require.NoError(t, err)
	require.Equal(t, 1, o.NodeCount())
	require.Equal(t, 0, o.Subdivisions())

	require.NoError(t, o.Subdivide(0))
	require.Equal(t, 1, o.Subdivisions())
}

func TestSubdivisionsMatchNodes(t *testing.T) {
	m, _, _ := cubeWithTriangles(t)
	o, err := Build(m, Config{})
	require.NoError(t, err)
	require.Greater(t, o.Subdivisions(), 0)
	require.Equal(t, o.NodeCount(), 1+8*o.Subdivisions())
}
