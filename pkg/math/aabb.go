package math

import "math"

// AABB is an axis-aligned bounding box described by its min and max corners.
type AABB struct {
	Min, Max Vec3
}

// ResetAABB returns the empty box (min=+Inf, max=-Inf). Expanding it by any
// point yields a box around that point alone.
func ResetAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// NewAABB returns a box with the given corners.
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// AABBFromPoints returns the smallest box containing all points.
func AABBFromPoints(points ...Vec3) AABB {
	b := ResetAABB()
	for _, p := range points {
		b = b.Expand(p)
	}
	return b
}

// Expand returns the box grown to include p.
func (b AABB) Expand(p Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(other AABB) AABB {
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// IsEmpty reports whether min > max on any axis, as for the reset box.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Dims returns the extents along each axis.
func (b AABB) Dims() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Volume returns the product of the extents.
func (b AABB) Volume() float64 {
	d := b.Dims()
	return d.X * d.Y * d.Z
}

// Contains reports whether p lies inside the box, boundary included.
func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Translate returns the box moved by v.
func (b AABB) Translate(v Vec3) AABB {
	return AABB{Min: b.Min.Add(v), Max: b.Max.Add(v)}
}
