package mesh

import (
	"github.com/Faultbox/wavesim/pkg/container"
)

type edge [2]uint32

func hashEdge(e edge) uint32 {
	return container.HashUint32s(e[0], e[1])
}

func makeEdge(a, b uint32) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// EdgeCount returns the number of distinct undirected edges.
func (m *Mesh) EdgeCount() int {
	edges := container.NewHashMap[edge, struct{}](hashEdge)
	for f := 0; f < m.FaceCount(); f++ {
		t := m.FaceIndices(f)
		_ = edges.Insert(makeEdge(t[0], t[1]), struct{}{})
		_ = edges.Insert(makeEdge(t[1], t[2]), struct{}{})
		_ = edges.Insert(makeEdge(t[2], t[0]), struct{}{})
	}
	return edges.Len()
}

// IsManifold checks the Euler characteristic V + F - E == 2 of a closed
// genus-0 surface. It does not detect every non-manifold configuration.
func (m *Mesh) IsManifold() bool {
	return m.VertexCount()+m.FaceCount()-m.EdgeCount() == 2
}
