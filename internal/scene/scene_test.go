package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quad returns a 2x1 rectangle in the XY plane centered at the origin with UVs spanning [0,1].
func quad() *Geometry {
	return NewGeometry(
		[]mgl32.Vec3{{-1, -0.5, 0}, {1, -0.5, 0}, {1, 0.5, 0}, {-1, 0.5, 0}},
		[]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		[]uint32{0, 1, 2, 0, 2, 3},
	)
}

type countingReleaser struct {
	geometries int
	materials  int
}

func (c *countingReleaser) ReleaseGeometry(*Geometry) { c.geometries++ }
func (c *countingReleaser) ReleaseMaterial(*Material) { c.materials++ }

func TestRaycastReturnsUVAndWorldPoint(t *testing.T) {
	n := NewMeshNode("Screen", &Mesh{Geometry: quad(), Materials: []*Material{NewMaterial("m")}})
	n.SetTransform(mgl32.Vec3{0, 2, 0}, mgl32.Vec3{}, mgl32.Vec3{2, 2, 1})

	ray := Ray{Origin: mgl32.Vec3{1, 2.5, 10}, Direction: mgl32.Vec3{0, 0, -1}}
	hits := Raycast(ray, []*Node{n})
	require.NotEmpty(t, hits)
	h := hits[0]
	assert.Same(t, n, h.Node)
	assert.InDelta(t, 10, h.Distance, 1e-4)
	assert.InDelta(t, 1, h.Point[0], 1e-4)
	assert.InDelta(t, 2.5, h.Point[1], 1e-4)
	assert.True(t, h.HasUV)
	assert.InDelta(t, 0.75, h.UV[0], 1e-4)
	assert.InDelta(t, 0.75, h.UV[1], 1e-4)
}

func TestRaycastMissAndNearestFirst(t *testing.T) {
	near := NewMeshNode("near", &Mesh{Geometry: quad()})
	near.SetTransform(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	far := NewMeshNode("far", &Mesh{Geometry: quad()})
	far.SetTransform(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})

	hits := Raycast(Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}}, []*Node{far, near})
	require.Len(t, hits, 2)
	assert.Same(t, near, hits[0].Node)
	got, ok := First(hits, far)
	require.True(t, ok)
	assert.InDelta(t, 6, got.Distance, 1e-4)

	assert.Empty(t, Raycast(Ray{Origin: mgl32.Vec3{5, 5, 5}, Direction: mgl32.Vec3{0, 0, -1}}, []*Node{near}))
}

func TestChildWorldMatrixFollowsParent(t *testing.T) {
	root := NewNode("root")
	child := NewMeshNode("child", &Mesh{Geometry: quad()})
	root.Add(child)
	child.Position = mgl32.Vec3{1, 0, 0}
	root.SetTransform(mgl32.Vec3{0, 3, 0}, mgl32.Vec3{0, mgl32.DegToRad(90), 0}, mgl32.Vec3{1, 1, 1})

	p := mgl32.TransformCoordinate(mgl32.Vec3{}, child.WorldMatrix())
	assert.InDelta(t, 0, p[0], 1e-5)
	assert.InDelta(t, 3, p[1], 1e-5)
	assert.InDelta(t, -1, p[2], 1e-5)
	assert.True(t, root.Contains(child))
	assert.False(t, child.Contains(root))
}

func TestCloneCopiesMaterialsAndSharesGeometry(t *testing.T) {
	g := quad()
	mat := NewMaterial("body")
	mat.Map = &Texture{Width: 2000, Height: 800}
	root := NewNode("monitor")
	root.Add(NewMeshNode("Screen", &Mesh{Geometry: g, Materials: []*Material{mat}}))

	clone, err := root.Clone()
	require.NoError(t, err)
	require.Len(t, clone.Children(), 1)
	cm := clone.Children()[0].Mesh
	assert.Same(t, g, cm.Geometry)
	assert.Equal(t, 2, g.Refs())
	assert.NotSame(t, mat, cm.Materials[0])
	assert.NotEqual(t, mat.ID, cm.Materials[0].ID)

	cm.Materials[0].Map.Width = 10
	assert.Equal(t, 2000, mat.Map.Width, "material edits must not bleed across clones")

	rel := &countingReleaser{}
	clone.Release(rel)
	assert.Equal(t, 0, rel.geometries, "base still holds the geometry")
	assert.Equal(t, 1, rel.materials)
	assert.Equal(t, 1, g.Refs())

	root.Release(rel)
	assert.Equal(t, 1, rel.geometries)
}

func TestBoxTransformAndBounds(t *testing.T) {
	n := NewMeshNode("q", &Mesh{Geometry: quad()})
	n.SetTransform(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{}, mgl32.Vec3{3, 2, 1})
	b := n.WorldBounds()
	assert.InDelta(t, -2, b.Min[0], 1e-5)
	assert.InDelta(t, 4, b.Max[0], 1e-5)
	assert.InDelta(t, 0, b.Min[1], 1e-5)
	assert.InDelta(t, 2, b.Max[1], 1e-5)
	assert.InDelta(t, 0, b.Size()[2], 1e-5)
	assert.True(t, EmptyBox().IsEmpty())
}

func TestSceneAddRemove(t *testing.T) {
	s := New()
	a, b := NewNode("a"), NewNode("b")
	s.Add(a)
	s.Add(a)
	s.Add(b)
	assert.Len(t, s.Roots(), 2)
	assert.True(t, s.Remove(a))
	assert.False(t, s.Remove(a))
	assert.False(t, s.Contains(a))
	assert.True(t, s.Contains(b))
}
