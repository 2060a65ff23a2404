// Package medium decomposes the volume around a mesh into axis-aligned
// partitions of homogeneous acoustic material and sizes their simulation
// cells.
package medium

import (
	"errors"
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/mesh"
	"github.com/Faultbox/wavesim/pkg/octree"
)

// Medium errors.
var (
	ErrNilMesh          = errors.New("medium: nil mesh")
	ErrInvalidGridSize  = errors.New("medium: grid size must be positive")
	ErrEmptyBoundary    = errors.New("medium: boundary has no volume")
	ErrOctreeMismatch   = errors.New("medium: octree was built from a different mesh")
	ErrTooManyCells     = errors.New("medium: too many grid cells")
	ErrPartitionLimit   = errors.New("medium: partition limit reached")
	ErrUnknownMethod    = errors.New("medium: unknown decomposition method")
	ErrInvalidFrequency = errors.New("medium: max frequency must be positive")
	ErrInvalidVelocity  = errors.New("medium: sound velocity must be positive")
	ErrOverlap          = errors.New("medium: partitions overlap")
	ErrUncovered        = errors.New("medium: cell not covered by any partition")
)

// Method selects the decomposition strategy.
type Method int

// Decomposition strategies.
const (
	// Systematic grows partitions depth-first from the boundary's min corner.
	Systematic Method = iota
	// GreedyRandom grows partitions from unclaimed cells visited in random
	// order.
	GreedyRandom
)

func (m Method) String() string {
	switch m {
	case Systematic:
		return "systematic"
	case GreedyRandom:
		return "greedy_random"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod converts a method name to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "systematic":
		return Systematic, nil
	case "greedy_random", "random":
		return GreedyRandom, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// DefaultMaxCells bounds the grid so a tiny grid size cannot exhaust memory.
const DefaultMaxCells = 1 << 24

// Config controls decomposition.
type Config struct {
	Method Method
	// Seed drives GreedyRandom.
	Seed int64
	// MaxPartitions aborts decomposition with ErrPartitionLimit; 0 means
	// unlimited.
	MaxPartitions int
	// MaxCells limits the grid size; 0 means DefaultMaxCells.
	MaxCells int
	// Verify runs the integrity check after decomposition.
	Verify bool
	// Octree reuses a tree built from the same mesh instead of building one
	// with the grid size as smallest subdivision.
	Octree *octree.Octree
	Logger *zap.Logger
}

// Definition describes the simulated volume.
type Definition struct {
	Boundary math.AABB
}

// Partition is a box of homogeneous material.
type Partition struct {
	AABB math.AABB
	Attr mesh.Attribute
	// CellSize and TimeStep are +Inf until SetResolution runs.
	CellSize  float64
	TimeStep  float64
	CellCount [3]int
	// Adjacent holds indices of neighbouring partitions in the same Medium.
	Adjacent []int

	cells cellBox
}

// Cells returns the number of simulation cells in the partition.
func (p Partition) Cells() int {
	return p.CellCount[0] * p.CellCount[1] * p.CellCount[2]
}

// Medium is the set of partitions covering a boundary volume.
type Medium struct {
	Boundary   math.AABB
	GridSize   math.Vec3
	Partitions []Partition

	cfg Config
	log *zap.Logger
}

// New returns an empty medium.
func New(cfg Config) *Medium {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Medium{cfg: cfg, log: log, Boundary: math.ResetAABB()}
}

// Clear removes all partitions.
func (m *Medium) Clear() {
	m.Partitions = nil
}

// BuildFromMesh replaces the partitions with a decomposition of the
// boundary around msh into boxes of gridSize cells. A nil definition uses
// the mesh bounding box. On error the partitions committed so far are kept.
func (m *Medium) BuildFromMesh(msh *mesh.Mesh, gridSize math.Vec3, def *Definition) error {
	m.Clear()
	if msh == nil {
		return ErrNilMesh
	}
	if !(gridSize.X > 0 && gridSize.Y > 0 && gridSize.Z > 0) || !gridSize.IsFinite() {
		return fmt.Errorf("%w: %v", ErrInvalidGridSize, gridSize)
	}
	m.GridSize = gridSize

	if def == nil {
		m.log.Warn("No medium definition was provided. Falling back to mesh AABB and default parameters.")
		m.Boundary = msh.AABB()
	} else {
		m.Boundary = def.Boundary
	}
	if !m.Boundary.Min.Less(m.Boundary.Max) || !m.Boundary.Min.IsFinite() || !m.Boundary.Max.IsFinite() {
		return fmt.Errorf("%w: %v", ErrEmptyBoundary, m.Boundary)
	}

	counts, err := m.snapBoundary()
	if err != nil {
		return err
	}

	tree := m.cfg.Octree
	if tree == nil {
		tree, err = octree.Build(msh, octree.Config{SmallestSubdivision: gridSize, Logger: m.log})
		if err != nil {
			return err
		}
	} else if tree.Mesh() != msh {
		return ErrOctreeMismatch
	}

	d := newDecomposer(m, tree, counts)
	switch m.cfg.Method {
	case Systematic:
		err = d.systematic()
	case GreedyRandom:
		err = d.greedyRandom(m.cfg.Seed)
	default:
		err = fmt.Errorf("%w: %v", ErrUnknownMethod, m.cfg.Method)
	}
	if err != nil {
		return err
	}

	if m.cfg.Verify {
		if err := m.Verify(); err != nil {
			return err
		}
	}

	m.log.Info("Decomposed mesh into partitions",
		zap.String("mesh", msh.Name),
		zap.Int("partitions", len(m.Partitions)),
		zap.Int("grid_cells", counts[0]*counts[1]*counts[2]),
	)
	return nil
}

// snapBoundary returns the number of grid cells per axis, extending the
// boundary's max corner to a whole number of cells if needed.
func (m *Medium) snapBoundary() ([3]int, error) {
	var counts [3]int
	dims := m.Boundary.Dims()
	snapped := false
	for i := 0; i < 3; i++ {
		g := m.GridSize.Component(i)
		ratio := dims.Component(i) / g
		n := int(gomath.Ceil(ratio - 1e-9))
		if n < 1 {
			n = 1
		}
		if gomath.Abs(float64(n)-ratio) > 1e-9 {
			snapped = true
		}
		counts[i] = n
	}

	maxCells := m.cfg.MaxCells
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	total := float64(counts[0]) * float64(counts[1]) * float64(counts[2])
	if total > float64(maxCells) {
		return counts, fmt.Errorf("%w: %.0f cells, limit %d", ErrTooManyCells, total, maxCells)
	}

	if snapped {
		corner := m.Boundary.Min.Add(math.Vec3{
			X: float64(counts[0]) * m.GridSize.X,
			Y: float64(counts[1]) * m.GridSize.Y,
			Z: float64(counts[2]) * m.GridSize.Z,
		})
		m.log.Warn("Boundary is not a whole number of grid cells, extending it",
			zap.Any("from", m.Boundary.Max),
			zap.Any("to", corner),
		)
		m.Boundary.Max = corner
	}
	return counts, nil
}

// CellCount returns the total number of simulation cells over all
// partitions.
func (m *Medium) CellCount() int {
	total := 0
	for _, p := range m.Partitions {
		total += p.Cells()
	}
	return total
}

// PartitionAt returns the index of the partition containing p, or -1.
func (m *Medium) PartitionAt(p math.Vec3) int {
	for i, part := range m.Partitions {
		if part.AABB.Contains(p) {
			return i
		}
	}
	return -1
}

// Attribute returns the material at p, or Air outside every partition.
func (m *Medium) Attribute(p math.Vec3) mesh.Attribute {
	if i := m.PartitionAt(p); i >= 0 {
		return m.Partitions[i].Attr
	}
	return mesh.Air()
}
