package octree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/mesh"
)

func TestQueryPotentialFaces(t *testing.T) {
	m := cubeMesh(t, 0, 1)
	o, err := Build(m, Config{SmallestSubdivision: math.Splat(0.25)})
	require.NoError(t, err)
	require.Greater(t, o.NodeCount(), 1)

	tests := []struct {
		name string
		box  math.AABB
		want int
	}{
		{"everything", math.NewAABB(vec(-1, -1, -1), vec(2, 2, 2)), 12},
		{"outside", math.NewAABB(vec(2, 2, 2), vec(3, 3, 3)), 0},
		{"touching", math.NewAABB(vec(1, 0, 0), vec(2, 1, 1)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := o.QueryPotentialFaces(tt.box)
			require.Len(t, got, tt.want)
			requireUnique(t, got)
		})
	}

	// a small box in one corner only reaches faces near that corner
	corner := o.QueryPotentialFaces(math.NewAABB(vec(-0.1, -0.1, -0.1), vec(0.1, 0.1, 0.1)))
	require.NotEmpty(t, corner)
	require.Less(t, len(corner), 12)
	requireUnique(t, corner)
}

func TestContainsPoint(t *testing.T) {
	for _, smallest := range []float64{0, 0.25} {
		o, err := Build(cubeMesh(t, 0, 1), Config{SmallestSubdivision: math.Splat(smallest)})
		require.NoError(t, err)

		tests := []struct {
			name      string
			p         math.Vec3
			crossings int
			inside    bool
		}{
			{"inside", vec(0.3, 0.6, 0.5), 1, true},
			{"inside near floor", vec(0.7, 0.2, 0.05), 1, true},
			{"centre", vec(0.5, 0.5, 0.5), 1, true},
			{"under the face diagonal", vec(0.25, 0.25, 0.5), 1, true},
			{"below the face diagonal", vec(0.75, 0.75, -0.5), 2, false},
			{"below", vec(0.3, 0.6, -0.5), 2, false},
			{"above", vec(0.3, 0.6, 1.5), 0, false},
			{"beside", vec(1.5, 0.6, 0.5), 0, false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				require.Equal(t, tt.crossings, o.Crossings(tt.p))
				require.Equal(t, tt.inside, o.ContainsPoint(tt.p))
			})
		}
	}
}

func TestContainsPointSeparateBoxes(t *testing.T) {
	m, _, _ := cubeWithTriangles(t)
	o, err := Build(m, Config{})
	require.NoError(t, err)

	// the ray from here passes beside both floating triangles
	require.True(t, o.ContainsPoint(vec(-0.2, 0.3, 0)))
	require.False(t, o.ContainsPoint(vec(-0.2, 0.3, 1.2)))
}

func TestDistinctHits(t *testing.T) {
	tests := []struct {
		name string
		hits []float64
		want int
	}{
		{"none", nil, 0},
		{"one", []float64{1}, 1},
		{"shared edge", []float64{1, 1 + 1e-12}, 1},
		{"unsorted pairs", []float64{2, 0, 2, 0}, 2},
		{"separate", []float64{0, 0.5, 1}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, distinctHits(tt.hits, 1e-9))
		})
	}
}

func TestQueryPotentialFacesReturnsCopy(t *testing.T) {
	o, err := Build(cubeMesh(t, 0, 1), Config{SmallestSubdivision: math.Splat(1)})
	require.NoError(t, err)
	require.Equal(t, 1, o.NodeCount())

	box := math.NewAABB(vec(0.2, 0.2, 0.2), vec(0.4, 0.4, 0.4))
	first := o.QueryPotentialFaces(box)
	require.Len(t, first, 12)
	first[0] = mesh.Triplet{}
	require.Equal(t, o.Node(0).Faces, o.QueryPotentialFaces(box))
}

func TestQueryPotentialFacesAcrossLeaves(t *testing.T) {
	m, small1, small2 := cubeWithTriangles(t)
	o, err := Build(m, Config{})
	require.NoError(t, err)

	// every leaf is visited; faces shared between them appear once
	got := o.QueryPotentialFaces(math.NewAABB(vec(-2, -2, -2), vec(2, 2, 2)))
	require.Len(t, got, 14)
	requireUnique(t, got)
	require.Contains(t, got, small1)
	require.Contains(t, got, small2)
}
