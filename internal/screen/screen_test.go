package screen

import (
	"testing"

	"chart-workspace/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(w, h, d float32, withUV bool) *scene.Geometry {
	x, y, z := w/2, h/2, d/2
	pos := []mgl32.Vec3{{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z}, {-x, -y, -z}, {x, -y, -z}, {x, y, -z}, {-x, y, -z}}
	var uvs []mgl32.Vec2
	if withUV {
		uvs = make([]mgl32.Vec2, len(pos))
	}
	return scene.NewGeometry(pos, uvs, []uint32{0, 1, 2, 0, 2, 3, 4, 6, 5, 4, 7, 6})
}

func meshNode(name string, g *scene.Geometry, tex *scene.Texture) *scene.Node {
	m := scene.NewMaterial(name + "_mat")
	m.Map = tex
	return scene.NewMeshNode(name, &scene.Mesh{Geometry: g, Materials: []*scene.Material{m}})
}

func TestScoreComponents(t *testing.T) {
	assert.InDelta(t, 0, Score(Candidate{}), 1e-9)
	assert.InDelta(t, 25+10, Score(Candidate{Name: "screen"}), 1e-9)
	assert.InDelta(t, 10, Score(Candidate{Name: "MonitorFrame"}), 1e-9)
	assert.InDelta(t, 2, Score(Candidate{HasUV: true}), 1e-9)
	assert.InDelta(t, 20, Score(Candidate{TextureAspects: []float32{1, 2.5, 3}}), 1e-9)
	// 4x2x0.1 panel: area 8 plus flat bonus.
	assert.InDelta(t, 0.08+5, Score(Candidate{Size: [3]float32{4, 2, 0.1}}), 1e-6)
	// Area bonus is capped.
	assert.InDelta(t, 10, Score(Candidate{Size: [3]float32{100, 100, 100}}), 1e-6)
}

func TestLocatePrefersScreenSurface(t *testing.T) {
	root := scene.NewNode("ultrawide_monitor")
	root.Add(meshNode("Stand", box(1, 3, 1, true), nil))
	root.Add(meshNode("Bezel", box(4.2, 1.6, 0.3, true), nil))
	screen := meshNode("Object_7", box(4, 1.5, 0.02, true), &scene.Texture{Width: 3440, Height: 1440})
	root.Add(screen)

	assert.Same(t, screen, Locate(root))
}

func TestLocateIsDeterministic(t *testing.T) {
	root := scene.NewNode("monitor")
	a := meshNode("PanelA", box(2, 1, 0.05, true), nil)
	b := meshNode("PanelB", box(2, 1, 0.05, true), nil)
	root.Add(a)
	root.Add(b)

	first := Locate(root)
	require.Same(t, a, first, "ties keep traversal order")
	for i := 0; i < 20; i++ {
		assert.Same(t, first, Locate(root))
	}
}

func TestLocateWithoutMeshes(t *testing.T) {
	root := scene.NewNode("empty")
	root.Add(scene.NewNode("child"))
	assert.Nil(t, Locate(root))
	assert.Nil(t, Locate(nil))
}

func TestProjectCentersFacingQuad(t *testing.T) {
	n := meshNode("Screen", box(2, 2, 0, true), nil)
	n.UpdateWorldMatrix()
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	vp := Viewport{Width: 1000, Height: 1000}

	b, ok := Project(n, proj.Mul4(view), vp)
	require.True(t, ok)
	// tan(45deg)*10 = 10 half-extent at the quad depth, so the 2-wide quad covers a tenth of half the view.
	assert.InDelta(t, 450, b.Left, 0.5)
	assert.InDelta(t, 550, b.Right, 0.5)
	assert.InDelta(t, 450, b.Top, 0.5)
	assert.InDelta(t, 550, b.Bottom, 0.5)
	assert.InDelta(t, 100, b.Width, 0.5)
	assert.True(t, b.Contains(500, 500))

	n.Position = mgl32.Vec3{5, 0, 0}
	n.UpdateWorldMatrix()
	moved, ok := Project(n, proj.Mul4(view), vp)
	require.True(t, ok)
	assert.Greater(t, moved.Left, b.Left)

	_, ok = Project(nil, proj, vp)
	assert.False(t, ok)
}
