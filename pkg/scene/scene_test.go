package scene

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/mesh"
)

func vec(x, y, z float64) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }

func TestBuildBox(t *testing.T) {
	sc := Scene{Name: "room", Shapes: []Shape{
		{Kind: Box, Center: vec(0.5, 0.5, 0.5), Size: vec(0.5, 0.5, 0.5)},
	}}
	m, err := sc.Build()
	require.NoError(t, err)

	require.Equal(t, "room", m.Name)
	require.Equal(t, 8, m.VertexCount())
	require.Equal(t, 12, m.FaceCount())
	require.Equal(t, math.NewAABB(vec(0.25, 0.25, 0.25), vec(0.75, 0.75, 0.75)), m.AABB())
	require.True(t, m.IsManifold())
	require.Equal(t, mesh.Solid(), m.Attribute(0))
}

func TestBuildSphere(t *testing.T) {
	sc := Scene{Cells: 16, Shapes: []Shape{
		{Kind: Sphere, Center: vec(1, 2, 3), Radius: 2, Material: Material{Preset: "air"}},
	}}
	m, err := sc.Build()
	require.NoError(t, err)
	require.Greater(t, m.FaceCount(), 0)

	tol := 2 * 4.0 / 16
	for v := 0; v < m.VertexCount(); v++ {
		d := m.Position(v).Distance(vec(1, 2, 3))
		require.InDelta(t, 2.0, d, tol, "vertex %d", v)
		require.Equal(t, mesh.Air(), m.Attribute(v))
	}
	box := m.AABB()
	require.InDelta(t, -1.0, box.Min.X, tol)
	require.InDelta(t, 3.0, box.Max.X, tol)
}

func TestBuildCylinder(t *testing.T) {
	sc := Scene{Cells: 16, Shapes: []Shape{
		{Kind: Cylinder, Radius: 1, Height: 4},
	}}
	m, err := sc.Build()
	require.NoError(t, err)
	require.Greater(t, m.FaceCount(), 0)

	box := m.AABB()
	tol := 2 * 4.0 / 16
	require.InDelta(t, -2.0, box.Min.Z, tol)
	require.InDelta(t, 2.0, box.Max.Z, tol)
	require.InDelta(t, 1.0, box.Max.X, tol)
	require.True(t, (Shape{Kind: Cylinder, Radius: 1, Height: 4}).Bounds().Contains(box.Center()))
}

func TestBuildMixedMaterials(t *testing.T) {
	custom := mesh.Attribute{Reflection: 1, Absorption: 3, SoundVelocity: 1500}
	sc := Scene{Shapes: []Shape{
		{Kind: Box, Center: vec(0, 0, 0), Size: vec(1, 1, 1)},
		{Kind: Box, Center: vec(3, 0, 0), Size: vec(1, 1, 1), Material: Material{Custom: &custom}},
	}}
	m, err := sc.Build()
	require.NoError(t, err)
	require.Equal(t, 16, m.VertexCount())
	require.Equal(t, 24, m.FaceCount())

	want := mesh.Attribute{Reflection: 0.25, Absorption: 0.75, SoundVelocity: 1500}
	found := false
	for v := 0; v < m.VertexCount(); v++ {
		if m.Position(v).X > 2 {
			require.Equal(t, want, m.Attribute(v))
			found = true
		}
	}
	require.True(t, found)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		scene Scene
		want  error
	}{
		{"empty", Scene{}, ErrEmptyScene},
		{"unknown kind", Scene{Shapes: []Shape{{Kind: "torus", Radius: 1}}}, ErrUnknownShape},
		{"flat box", Scene{Shapes: []Shape{{Kind: Box, Size: vec(1, 0, 1)}}}, ErrInvalidShape},
		{"no radius", Scene{Shapes: []Shape{{Kind: Sphere}}}, ErrInvalidShape},
		{"no height", Scene{Shapes: []Shape{{Kind: Cylinder, Radius: 1}}}, ErrInvalidShape},
		{"bad material", Scene{Shapes: []Shape{{Kind: Box, Size: vec(1, 1, 1), Material: Material{Preset: "lava"}}}}, ErrUnknownMaterial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.scene.Build()
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSceneYAML(t *testing.T) {
	doc := `
name: hall
cells: 24
shapes:
  - kind: box
    center: {x: 0, y: 0, z: 0}
    size: {x: 2, y: 1, z: 1}
  - kind: sphere
    center: {x: 3, y: 0, z: 0}
    radius: 0.5
    material:
      preset: air
`
	var sc Scene
	require.NoError(t, yaml.Unmarshal([]byte(doc), &sc))
	require.Equal(t, "hall", sc.Name)
	require.Equal(t, 24, sc.Cells)
	require.Len(t, sc.Shapes, 2)
	require.Equal(t, Box, sc.Shapes[0].Kind)
	require.Equal(t, vec(2, 1, 1), sc.Shapes[0].Size)
	require.Equal(t, "air", sc.Shapes[1].Material.Preset)
}
