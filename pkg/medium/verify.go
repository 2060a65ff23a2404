package medium

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/wavesim/pkg/math"
)

// Verify checks that no two partitions overlap and that the centre of every
// grid cell in the boundary lies in some partition. All problems found are
// returned together.
func (m *Medium) Verify() error {
	var errs error
	for i := range m.Partitions {
		for j := i + 1; j < len(m.Partitions); j++ {
			if overlaps(m.Partitions[i].AABB, m.Partitions[j].AABB) {
				errs = multierr.Append(errs, fmt.Errorf("%w: %d and %d", ErrOverlap, i, j))
			}
		}
	}

	if m.Boundary.IsEmpty() || len(m.Partitions) == 0 {
		return errs
	}
	var counts [3]int
	for i := 0; i < 3; i++ {
		counts[i] = cellsAlong(m.Boundary.Dims().Component(i), m.GridSize.Component(i))
	}
	cellBox{hi: counts}.each(func(c cell) bool {
		center := math.Vec3{
			X: m.Boundary.Min.X + (float64(c[0])+0.5)*m.GridSize.X,
			Y: m.Boundary.Min.Y + (float64(c[1])+0.5)*m.GridSize.Y,
			Z: m.Boundary.Min.Z + (float64(c[2])+0.5)*m.GridSize.Z,
		}
		if m.PartitionAt(center) < 0 {
			errs = multierr.Append(errs, fmt.Errorf("%w: %v", ErrUncovered, c))
		}
		return true
	})
	return errs
}

// overlaps reports whether two boxes share volume. Boxes that only touch do
// not overlap.
func overlaps(a, b math.AABB) bool {
	const eps = 1e-9
	return a.Min.X < b.Max.X-eps && b.Min.X < a.Max.X-eps &&
		a.Min.Y < b.Max.Y-eps && b.Min.Y < a.Max.Y-eps &&
		a.Min.Z < b.Max.Z-eps && b.Min.Z < a.Max.Z-eps
}
