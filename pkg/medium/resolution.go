package medium

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/mesh"
)

// Cell tolerance limits for SetResolution.
const (
	MinCellTolerance = 0.001
	MaxCellTolerance = 1.0

	maxResolutionIterations = 1000
)

func newPartition(box math.AABB, attr mesh.Attribute, cells cellBox) Partition {
	return Partition{
		AABB:     box,
		Attr:     attr,
		CellSize: gomath.Inf(1),
		TimeStep: gomath.Inf(1),
		cells:    cells,
	}
}

// SetResolution sizes the simulation cells of every partition so that
// maxFrequency is resolved at the partition's speed of sound. cellTolerance
// is the fraction of a cell by which the cells may overshoot the partition
// on any axis; it is clamped to [MinCellTolerance, MaxCellTolerance].
// On error no partition is changed.
func (m *Medium) SetResolution(maxFrequency, cellTolerance float64) error {
	if !(maxFrequency > 0) || gomath.IsInf(maxFrequency, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidFrequency, maxFrequency)
	}
	for i, p := range m.Partitions {
		c := p.Attr.SoundVelocity
		if !(c > 0) || gomath.IsInf(c, 1) {
			return fmt.Errorf("%w: partition %d has %v", ErrInvalidVelocity, i, c)
		}
	}

	tol := cellTolerance
	switch {
	case gomath.IsNaN(tol) || tol > MaxCellTolerance:
		tol = MaxCellTolerance
	case tol < MinCellTolerance:
		tol = MinCellTolerance
	}
	if tol != cellTolerance {
		m.log.Warn("Cell tolerance out of range, clamping",
			zap.Float64("requested", cellTolerance),
			zap.Float64("used", tol),
		)
	}

	tooFine := 0
	for i := range m.Partitions {
		p := &m.Partitions[i]
		c := p.Attr.SoundVelocity
		naive := c / (2 * maxFrequency)
		dims := p.AABB.Dims()

		h, converged := fitCellSize(dims, naive, tol)
		if !converged {
			m.log.Warn("Cell size did not settle",
				zap.Int("partition", i),
				zap.Float64("cell_size", h),
			)
		}
		if h < 0.1*naive {
			tooFine++
		}

		p.CellSize = h
		p.TimeStep = h / (c * gomath.Sqrt(3))
		for axis := 0; axis < 3; axis++ {
			p.CellCount[axis] = cellsAlong(dims.Component(axis), h)
		}
	}

	if tooFine > 0 {
		m.log.Warn("Some partitions need cells far smaller than the frequency requires; consider a coarser grid or a higher tolerance",
			zap.Int("partitions", tooFine),
			zap.Int("total", len(m.Partitions)),
		)
	}
	m.log.Info("Set medium resolution",
		zap.Float64("max_frequency", maxFrequency),
		zap.Float64("tolerance", tol),
		zap.Int("cells", m.CellCount()),
	)
	return nil
}

// fitCellSize shrinks h from start until a whole number of cells spans
// every axis of dims with an overshoot of at most tol cells.
func fitCellSize(dims math.Vec3, start, tol float64) (float64, bool) {
	h := start
	for iter := 0; iter < maxResolutionIterations; iter++ {
		changed := false
		for axis := 0; axis < 3; axis++ {
			dim := dims.Component(axis)
			if dim <= 0 {
				continue
			}
			n := cellsAlong(dim, h)
			if float64(n)*h > dim+tol*h {
				h = dim / (float64(n) - tol/2)
				changed = true
				break
			}
		}
		if !changed {
			return h, true
		}
	}
	return h, false
}

// cellsAlong returns how many cells of size h cover dim, at least one.
func cellsAlong(dim, h float64) int {
	n := int(gomath.Ceil(dim/h - 1e-9))
	if n < 1 {
		n = 1
	}
	return n
}
