package interaction

import (
	"math/rand"
	"testing"
	"time"

	"chart-workspace/internal/chart"
	"chart-workspace/internal/gizmo"
	"chart-workspace/internal/objects"
	"chart-workspace/internal/orbit"
	"chart-workspace/internal/overlay"
	"chart-workspace/internal/scene"
	"chart-workspace/internal/screen"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	insts    []*objects.Instance
	selected *objects.Instance
}

func (f *fakeObjects) Roots() []*scene.Node {
	var out []*scene.Node
	for _, i := range f.insts {
		out = append(out, i.Node)
	}
	return out
}

func (f *fakeObjects) FindRoot(n *scene.Node) *objects.Instance {
	for _, i := range f.insts {
		if i.Node.Contains(n) {
			return i
		}
	}
	return nil
}

func (f *fakeObjects) Select(inst *objects.Instance) { f.selected = inst }
func (f *fakeObjects) Deselect()                     { f.selected = nil }
func (f *fakeObjects) Selected() *objects.Instance   { return f.selected }

type fakeChart struct {
	surface *scene.Node
	series  []chart.Candle
	vp      chart.Viewport
	redraws int
}

func (f *fakeChart) Surface() *scene.Node      { return f.surface }
func (f *fakeChart) Series() []chart.Candle    { return f.series }
func (f *fakeChart) Viewport() *chart.Viewport { return &f.vp }
func (f *fakeChart) Scale() chart.Scale        { return chart.Scale{Min: 100, Max: 200} }
func (f *fakeChart) Redraw()                   { f.redraws++ }

// quad builds a w x h panel in the XY plane with glTF-style texcoords (v=0 on the top edge).
func quad(name string, w, h float32) *scene.Node {
	x, y := w/2, h/2
	g := scene.NewGeometry(
		[]mgl32.Vec3{{-x, -y, 0}, {x, -y, 0}, {x, y, 0}, {-x, y, 0}},
		[]mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}},
		[]uint32{0, 1, 2, 0, 2, 3},
	)
	return scene.NewMeshNode(name, &scene.Mesh{Geometry: g, Materials: []*scene.Material{scene.NewMaterial(name)}})
}

type rig struct {
	c       *Controller
	cam     *orbit.Camera
	objs    *fakeObjects
	chart   *fakeChart
	ov      *overlay.State
	gz      *gizmo.Gizmo
	monitor *objects.Instance
	lamp    *objects.Instance
	moved   []mgl32.Vec3
}

const viewSize = 800

func newRig(t *testing.T) *rig {
	t.Helper()
	monitor := scene.NewNode("ultrawide_monitor")
	surface := quad("Screen", 4, 2)
	monitor.Add(surface)
	monitor.UpdateWorldMatrix()

	lamp := scene.NewNode("lamp")
	lamp.Add(quad("Shade", 1, 1))
	lamp.Position = mgl32.Vec3{5, 0, 0}
	lamp.UpdateWorldMatrix()

	eng := chart.NewEngine(rand.New(rand.NewSource(1)), func() time.Time { return time.Unix(1700000000, 0) })
	r := &rig{
		cam:     orbit.New(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}),
		objs:    &fakeObjects{},
		chart:   &fakeChart{surface: surface, series: eng.Generate(200, 856), vp: chart.Viewport{Start: 0, Count: 120}},
		ov:      &overlay.State{},
		gz:      gizmo.New(),
		monitor: &objects.Instance{Node: monitor, BaseKey: objects.Ultrawide, IsBase: true},
		lamp:    &objects.Instance{Node: lamp, BaseKey: objects.Monitor},
	}
	r.objs.insts = []*objects.Instance{r.monitor, r.lamp}
	r.c = New(r.cam, r.objs, r.chart, r.gz, r.ov, Callbacks{
		OnPositionChange: func(p mgl32.Vec3) { r.moved = append(r.moved, p) },
	})
	r.c.SetViewport(screen.Viewport{Width: viewSize, Height: viewSize})
	return r
}

// px returns the pixel column of world x on the z=0 plane.
func (r *rig) px(worldX float32) float32 {
	vp := screen.Viewport{Width: viewSize, Height: viewSize}
	ndc := mgl32.TransformCoordinate(mgl32.Vec3{worldX, 0, 0}, r.cam.ViewProjection(vp))
	x, _ := screen.ToPixels(ndc, vp)
	return x
}

func TestHoverPublishesStatsAndMarker(t *testing.T) {
	r := newRig(t)
	r.c.PointerMove(viewSize/2, viewSize/2)

	assert.True(t, r.c.Hovering())
	assert.False(t, r.cam.EnableZoom)
	assert.Equal(t, overlay.CursorGrab, r.ov.Cursor)
	require.True(t, r.ov.Marker.Visible)
	assert.InDelta(t, 150, r.ov.Marker.Price, 0.1)
	assert.InDelta(t, viewSize/2, r.ov.Marker.Y, 0.5)
	// u lands on 0.5 within float error, so either neighbour of 59.5 is acceptable.
	left, _ := chart.StatsAt(r.chart.series, 59)
	right, _ := chart.StatsAt(r.chart.series, 60)
	assert.Contains(t, []chart.Stats{left, right}, r.ov.Stats)

	r.c.PointerMove(10, 10)
	assert.False(t, r.c.Hovering())
	assert.True(t, r.cam.EnableZoom)
	assert.Equal(t, overlay.CursorDefault, r.ov.Cursor)
	assert.False(t, r.ov.Marker.Visible)
	latest, _ := chart.Latest(r.chart.series)
	assert.Equal(t, latest, r.ov.Stats)
}

func TestUpperHalfMapsToHigherPrice(t *testing.T) {
	r := newRig(t)
	r.c.PointerMove(viewSize/2, viewSize/2-20)
	assert.Greater(t, r.ov.Marker.Price, 150.0)
}

func TestDragPansChart(t *testing.T) {
	r := newRig(t)
	r.c.PointerDown(r.px(0), viewSize/2)
	require.True(t, r.c.Dragging())
	assert.False(t, r.cam.Enabled)

	// One world unit left is a quarter of the 4-wide surface.
	r.c.PointerMove(r.px(-1), viewSize/2)
	assert.Equal(t, 30, r.chart.vp.Start)
	assert.False(t, r.chart.vp.AutoFollow)
	assert.Equal(t, 1, r.chart.redraws)
	assert.Equal(t, overlay.CursorGrabbing, r.ov.Cursor)

	r.c.PointerUp()
	assert.False(t, r.c.Dragging())
	assert.True(t, r.cam.Enabled)
	assert.Equal(t, overlay.CursorGrab, r.ov.Cursor)
}

func TestWheelZoomsOnlyOverSurface(t *testing.T) {
	r := newRig(t)
	assert.True(t, r.c.Wheel(viewSize/2, viewSize/2, -1))
	assert.Equal(t, 108, r.chart.vp.Count)
	assert.Equal(t, 1, r.chart.redraws)
	assert.True(t, r.ov.Marker.Visible)

	assert.False(t, r.c.Wheel(10, 10, -1))
	assert.Equal(t, 108, r.chart.vp.Count)
}

func TestClickSelectsAndDeselects(t *testing.T) {
	r := newRig(t)
	r.c.PointerDown(r.px(5), viewSize/2)
	assert.Same(t, r.lamp, r.objs.selected)
	assert.Same(t, r.lamp.Node, r.gz.Target())
	assert.False(t, r.c.Dragging())

	r.c.PointerUp()
	require.Len(t, r.moved, 1)
	assert.Equal(t, mgl32.Vec3{5, 0, 0}, r.moved[0])

	r.c.PointerDown(r.px(-7), 40)
	assert.Nil(t, r.objs.selected)
	assert.Nil(t, r.gz.Target())
}

func TestNoSurfaceIgnoresChartInput(t *testing.T) {
	r := newRig(t)
	r.chart.surface = nil
	r.c.PointerMove(viewSize/2, viewSize/2)
	assert.False(t, r.c.Hovering())
	assert.False(t, r.c.Wheel(viewSize/2, viewSize/2, 1))
}
