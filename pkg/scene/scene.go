// Package scene builds triangle meshes from simple solid primitives.
//
// Boxes are emitted exactly. Curved shapes are tessellated from signed
// distance functions with github.com/deadsy/sdfx.
package scene

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/Faultbox/wavesim/pkg/formats"
	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/mesh"
)

// Scene errors.
var (
	ErrUnknownShape    = errors.New("scene: unknown shape kind")
	ErrInvalidShape    = errors.New("scene: invalid shape dimensions")
	ErrUnknownMaterial = errors.New("scene: unknown material")
	ErrEmptyScene      = errors.New("scene: no shapes")
)

// DefaultCells is the marching cubes resolution along a curved shape's
// longest axis.
const DefaultCells = 32

// Kind names a primitive.
type Kind string

// Supported primitives.
const (
	Box      Kind = "box"
	Sphere   Kind = "sphere"
	Cylinder Kind = "cylinder"
)

// Material selects the attribute assigned to a shape's vertices. Preset is
// "solid" (the default) or "air"; Custom overrides the preset.
type Material struct {
	Preset string          `yaml:"preset,omitempty"`
	Custom *mesh.Attribute `yaml:"custom,omitempty"`
}

// Attribute resolves the material.
func (m Material) Attribute() (mesh.Attribute, error) {
	if m.Custom != nil {
		return m.Custom.Normalize(), nil
	}
	switch m.Preset {
	case "", "solid":
		return mesh.Solid(), nil
	case "air":
		return mesh.Air(), nil
	}
	return mesh.Attribute{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, m.Preset)
}

// Shape is one primitive. Size applies to boxes; Radius to spheres and
// cylinders; Height to cylinders, whose axis is Z.
type Shape struct {
	Kind     Kind      `yaml:"kind"`
	Center   math.Vec3 `yaml:"center"`
	Size     math.Vec3 `yaml:"size,omitempty"`
	Radius   float64   `yaml:"radius,omitempty"`
	Height   float64   `yaml:"height,omitempty"`
	Material Material  `yaml:"material,omitempty"`
}

// Bounds returns the shape's bounding box.
func (s Shape) Bounds() math.AABB {
	var half math.Vec3
	switch s.Kind {
	case Box:
		half = s.Size.Scale(0.5)
	case Sphere:
		half = math.Splat(s.Radius)
	case Cylinder:
		half = math.Vec3{X: s.Radius, Y: s.Radius, Z: s.Height / 2}
	}
	return math.NewAABB(s.Center.Sub(half), s.Center.Add(half))
}

func (s Shape) validate() error {
	switch s.Kind {
	case Box:
		if !(s.Size.X > 0 && s.Size.Y > 0 && s.Size.Z > 0) {
			return fmt.Errorf("%w: box size %v", ErrInvalidShape, s.Size)
		}
	case Sphere:
		if !(s.Radius > 0) {
			return fmt.Errorf("%w: sphere radius %v", ErrInvalidShape, s.Radius)
		}
	case Cylinder:
		if !(s.Radius > 0 && s.Height > 0) {
			return fmt.Errorf("%w: cylinder radius %v height %v", ErrInvalidShape, s.Radius, s.Height)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownShape, s.Kind)
	}
	return nil
}

// Scene is a named list of shapes.
type Scene struct {
	Name   string  `yaml:"name"`
	Shapes []Shape `yaml:"shapes"`
	// Cells is the marching cubes resolution; 0 means DefaultCells.
	Cells int `yaml:"cells,omitempty"`
}

// Build tessellates every shape into one mesh. Vertices shared between
// triangles of the same material are merged.
func (sc Scene) Build() (*mesh.Mesh, error) {
	if len(sc.Shapes) == 0 {
		return nil, ErrEmptyScene
	}
	cells := sc.Cells
	if cells <= 0 {
		cells = DefaultCells
	}

	b := mesh.NewBuilder(sc.Name)
	for i, s := range sc.Shapes {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		attr, err := s.Material.Attribute()
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}

		if s.Kind == Box {
			b.AddBox(s.Bounds(), attr)
			continue
		}
		solid, err := s.sdf()
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		addTriangles(b, solid, cells, attr)
	}
	return b.Build()
}

// sdf returns the shape as a signed distance function centred on Center.
func (s Shape) sdf() (sdf.SDF3, error) {
	var (
		solid sdf.SDF3
		err   error
	)
	switch s.Kind {
	case Sphere:
		solid, err = sdf.Sphere3D(s.Radius)
	case Cylinder:
		solid, err = sdf.Cylinder3D(s.Height, s.Radius, 0)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, s.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	m := sdf.Translate3d(v3.Vec{X: s.Center.X, Y: s.Center.Y, Z: s.Center.Z})
	return sdf.Transform3D(solid, m), nil
}

func addTriangles(b *mesh.Builder, s sdf.SDF3, cells int, attr mesh.Attribute) {
	formats.AddTriangles(b, render.ToTriangles(s, render.NewMarchingCubesUniform(cells)), attr)
}
