package formats

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Faultbox/wavesim/pkg/container"
	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/medium"
	"github.com/Faultbox/wavesim/pkg/octree"
)

// boxEdges joins the corners of a box, numbered x*4 + y*2 + z where each bit
// selects the max side on that axis.
var boxEdges = [12][2]int{
	{0, 1}, {0, 2}, {0, 4},
	{1, 3}, {1, 5},
	{2, 3}, {2, 6},
	{4, 5}, {4, 6},
	{3, 7}, {5, 7}, {6, 7},
}

// boxWriter writes box outlines as OBJ line elements. Corners shared by
// several boxes are written once.
type boxWriter struct {
	w       *bufio.Writer
	indices *container.HashMap[math.Vec3, int]
	next    int
}

func newBoxWriter(w io.Writer, comment string) *boxWriter {
	bw := &boxWriter{
		w:       bufio.NewWriter(w),
		indices: container.NewHashMap[math.Vec3, int](hashVec3),
		next:    1,
	}
	fmt.Fprintf(bw.w, "# %s\n", comment)
	return bw
}

func hashVec3(v math.Vec3) uint32 { return container.HashFloat64s(v.X, v.Y, v.Z) }

func (bw *boxWriter) vertex(p math.Vec3) int {
	if i, ok := bw.indices.Find(p); ok {
		return i
	}
	i := bw.next
	bw.next++
	_ = bw.indices.Insert(p, i)
	writeOBJVertex(bw.w, p)
	return i
}

func (bw *boxWriter) box(b math.AABB) {
	var idx [8]int
	for c := range idx {
		p := b.Min
		if c&4 != 0 {
			p.X = b.Max.X
		}
		if c&2 != 0 {
			p.Y = b.Max.Y
		}
		if c&1 != 0 {
			p.Z = b.Max.Z
		}
		idx[c] = bw.vertex(p)
	}
	for _, e := range boxEdges {
		fmt.Fprintf(bw.w, "l %d %d\n", idx[e[0]], idx[e[1]])
	}
}

// WriteBoxes writes the 12 edges of every box as OBJ lines.
func WriteBoxes(w io.Writer, comment string, boxes []math.AABB) error {
	bw := newBoxWriter(w, comment)
	for _, b := range boxes {
		bw.box(b)
	}
	return bw.w.Flush()
}

// ExportOctree writes the box of every octree node, internal nodes
// included, so the subdivision can be inspected in a viewer.
func ExportOctree(w io.Writer, tree *octree.Octree) error {
	boxes := make([]math.AABB, tree.NodeCount())
	for i := range boxes {
		boxes[i] = tree.Node(i).AABB
	}
	return WriteBoxes(w, fmt.Sprintf("octree of %s: %d nodes", tree.Mesh().Name, len(boxes)), boxes)
}

// ExportMedium writes the box of every medium partition.
func ExportMedium(w io.Writer, med *medium.Medium) error {
	boxes := make([]math.AABB, len(med.Partitions))
	for i, p := range med.Partitions {
		boxes[i] = p.AABB
	}
	return WriteBoxes(w, fmt.Sprintf("medium: %d partitions", len(boxes)), boxes)
}

// ExportOctreeFile writes ExportOctree output to path.
func ExportOctreeFile(path string, tree *octree.Octree) error {
	return writeFile(path, func(w io.Writer) error { return ExportOctree(w, tree) })
}

// ExportMediumFile writes ExportMedium output to path.
func ExportMediumFile(path string, med *medium.Medium) error {
	return writeFile(path, func(w io.Writer) error { return ExportMedium(w, med) })
}
