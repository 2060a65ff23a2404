package medium

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/Faultbox/wavesim/pkg/container"
	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/mesh"
	"github.com/Faultbox/wavesim/pkg/octree"
)

// attrTolerance decides when two sampled cells count as the same material.
const attrTolerance = 1e-9

type cell [3]int

// cellBox is a half-open range of grid cells [lo, hi).
type cellBox struct {
	lo, hi cell
}

func unitBox(c cell) cellBox {
	return cellBox{lo: c, hi: cell{c[0] + 1, c[1] + 1, c[2] + 1}}
}

func (b cellBox) size(axis int) int { return b.hi[axis] - b.lo[axis] }

func (b cellBox) count() int { return b.size(0) * b.size(1) * b.size(2) }

func (b cellBox) union(o cellBox) cellBox {
	for i := 0; i < 3; i++ {
		b.lo[i] = min(b.lo[i], o.lo[i])
		b.hi[i] = max(b.hi[i], o.hi[i])
	}
	return b
}

// each visits every cell in x, y, z order until fn returns false.
func (b cellBox) each(fn func(c cell) bool) {
	for x := b.lo[0]; x < b.hi[0]; x++ {
		for y := b.lo[1]; y < b.hi[1]; y++ {
			for z := b.lo[2]; z < b.hi[2]; z++ {
				if !fn(cell{x, y, z}) {
					return
				}
			}
		}
	}
}

// touches reports whether two disjoint boxes share part of a face.
func (b cellBox) touches(o cellBox) bool {
	contact := 0
	for i := 0; i < 3; i++ {
		switch {
		case b.hi[i] == o.lo[i] || o.hi[i] == b.lo[i]:
			contact++
		case b.hi[i] <= o.lo[i] || o.hi[i] <= b.lo[i]:
			return false
		}
	}
	return contact == 1
}

// direction is a growth step along one axis.
type direction struct {
	axis int
	sign int
}

// Growth order: up, down, left, right, front, back.
var directions = [6]direction{
	{axis: 1, sign: +1},
	{axis: 1, sign: -1},
	{axis: 0, sign: -1},
	{axis: 0, sign: +1},
	{axis: 2, sign: -1},
	{axis: 2, sign: +1},
}

// slice returns the one-cell-thick layer adjacent to b in direction d.
func (b cellBox) slice(d direction) cellBox {
	s := b
	if d.sign > 0 {
		s.lo[d.axis] = b.hi[d.axis]
		s.hi[d.axis] = b.hi[d.axis] + 1
	} else {
		s.hi[d.axis] = b.lo[d.axis]
		s.lo[d.axis] = b.lo[d.axis] - 1
	}
	return s
}

type decomposer struct {
	medium *Medium
	tree   *octree.Octree
	counts cell
	owner  []int
	attrs  *container.HashMap[cell, mesh.Attribute]
}

func newDecomposer(m *Medium, tree *octree.Octree, counts [3]int) *decomposer {
	owner := make([]int, counts[0]*counts[1]*counts[2])
	for i := range owner {
		owner[i] = -1
	}
	return &decomposer{
		medium: m,
		tree:   tree,
		counts: counts,
		owner:  owner,
		attrs: container.NewHashMap[cell, mesh.Attribute](func(c cell) uint32 {
			return container.HashInts(c[0], c[1], c[2])
		}),
	}
}

func (d *decomposer) index(c cell) int {
	return (c[0]*d.counts[1]+c[1])*d.counts[2] + c[2]
}

func (d *decomposer) inBounds(b cellBox) bool {
	for i := 0; i < 3; i++ {
		if b.lo[i] < 0 || b.hi[i] > d.counts[i] {
			return false
		}
	}
	return true
}

func (d *decomposer) owned(c cell) bool { return d.owner[d.index(c)] >= 0 }

// worldBox converts a cell range to world coordinates.
func (d *decomposer) worldBox(b cellBox) math.AABB {
	origin := d.medium.Boundary.Min
	g := d.medium.GridSize
	corner := func(c cell) math.Vec3 {
		return math.Vec3{
			X: origin.X + float64(c[0])*g.X,
			Y: origin.Y + float64(c[1])*g.Y,
			Z: origin.Z + float64(c[2])*g.Z,
		}
	}
	return math.NewAABB(corner(b.lo), corner(b.hi))
}

// attribute classifies a cell once and caches the result.
func (d *decomposer) attribute(c cell) mesh.Attribute {
	if a, ok := d.attrs.Find(c); ok {
		return a
	}
	a := CellAttribute(d.tree, d.worldBox(unitBox(c)))
	_ = d.attrs.Insert(c, a)
	return a
}

// grow expands a box from seed one slice at a time for as long as some
// slice is free and made of the seed's material. When collect is set, the
// free cells of every rejected in-bounds slice are returned as seeds for
// neighbouring partitions.
func (d *decomposer) grow(seed cell, collect bool) (cellBox, mesh.Attribute, []cell) {
	box := unitBox(seed)
	attr := d.attribute(seed)
	var candidates []cell

	for {
		blocked := 0
		for _, dir := range directions {
			s := box.slice(dir)
			if !d.inBounds(s) {
				blocked++
				continue
			}
			ok := true
			s.each(func(c cell) bool {
				if d.owned(c) || !d.attribute(c).Similar(attr, attrTolerance) {
					ok = false
					return false
				}
				return true
			})
			if ok {
				box = box.union(s)
				continue
			}
			blocked++
			if collect {
				s.each(func(c cell) bool {
					if !d.owned(c) {
						candidates = append(candidates, c)
					}
					return true
				})
			}
		}
		if blocked == len(directions) {
			return box, attr, candidates
		}
	}
}

// commit claims the cells of box for a new partition and links it to
// parent, if any.
func (d *decomposer) commit(box cellBox, attr mesh.Attribute, parent int) (int, error) {
	m := d.medium
	if limit := m.cfg.MaxPartitions; limit > 0 && len(m.Partitions) >= limit {
		return -1, fmt.Errorf("%w: %d", ErrPartitionLimit, limit)
	}

	idx := len(m.Partitions)
	box.each(func(c cell) bool {
		d.owner[d.index(c)] = idx
		return true
	})
	p := newPartition(d.worldBox(box), attr, box)
	if parent >= 0 {
		p.Adjacent = append(p.Adjacent, parent)
		m.Partitions[parent].Adjacent = append(m.Partitions[parent].Adjacent, idx)
	}
	m.Partitions = append(m.Partitions, p)

	partitionsTotal.Inc()
	partitionCells.Observe(float64(box.count()))
	return idx, nil
}

// systematic decomposes depth-first from the first grid cell. Each
// partition seeds its neighbours from the cells that stopped its growth.
func (d *decomposer) systematic() error {
	return d.expand(cell{0, 0, 0}, -1)
}

func (d *decomposer) expand(seed cell, parent int) error {
	box, attr, candidates := d.grow(seed, true)
	idx, err := d.commit(box, attr, parent)
	if err != nil {
		return err
	}
	for _, c := range candidates {
		if d.owned(c) {
			continue
		}
		if err := d.expand(c, idx); err != nil {
			return err
		}
	}
	return nil
}

// greedyRandom grows a partition from every unclaimed cell, visiting cells
// in an order shuffled by seed, then links partitions that share a face.
func (d *decomposer) greedyRandom(seed int64) error {
	order := make([]cell, 0, len(d.owner))
	cellBox{hi: d.counts}.each(func(c cell) bool {
		order = append(order, c)
		return true
	})
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, c := range order {
		if d.owned(c) {
			continue
		}
		box, attr, _ := d.grow(c, false)
		if _, err := d.commit(box, attr, -1); err != nil {
			return err
		}
	}
	d.linkTouching()
	d.medium.log.Debug("Linked partitions", zap.Int("partitions", len(d.medium.Partitions)))
	return nil
}

func (d *decomposer) linkTouching() {
	parts := d.medium.Partitions
	for i := range parts {
		for j := i + 1; j < len(parts); j++ {
			if parts[i].cells.touches(parts[j].cells) {
				parts[i].Adjacent = append(parts[i].Adjacent, j)
				parts[j].Adjacent = append(parts[j].Adjacent, i)
			}
		}
	}
}
