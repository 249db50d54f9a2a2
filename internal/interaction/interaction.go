// Package interaction turns pointer and wheel input into chart pan/zoom, hover statistics, object
// selection and gizmo drags.
package interaction

import (
	"chart-workspace/internal/chart"
	"chart-workspace/internal/gizmo"
	"chart-workspace/internal/objects"
	"chart-workspace/internal/orbit"
	"chart-workspace/internal/overlay"
	"chart-workspace/internal/scene"
	"chart-workspace/internal/screen"

	"github.com/go-gl/mathgl/mgl32"
)

// Objects is the pickable, selectable set of instances.
type Objects interface {
	Roots() []*scene.Node
	FindRoot(n *scene.Node) *objects.Instance
	Select(inst *objects.Instance)
	Deselect()
	Selected() *objects.Instance
}

// Chart is the live chart bound to the located display surface.
type Chart interface {
	// Surface returns the located display mesh, or nil while none is bound.
	Surface() *scene.Node
	Series() []chart.Candle
	Viewport() *chart.Viewport
	// Scale returns the unpadded price range of the last redraw.
	Scale() chart.Scale
	Redraw()
}

// Transform is reported while a gizmo drag is in progress.
type Transform struct {
	Position, Rotation, Scale mgl32.Vec3
}

// Callbacks notify the host. Any may be nil.
type Callbacks struct {
	OnPositionChange func(pos mgl32.Vec3)
	OnTransform      func(t Transform)
}

// Controller is driven from the main thread by the shell's input polling.
type Controller struct {
	cam     *orbit.Camera
	objs    Objects
	chart   Chart
	gizmo   *gizmo.Gizmo
	overlay *overlay.State
	cb      Callbacks
	vp      screen.Viewport

	hovering bool
	dragging bool
	hasLastU bool
	lastU    float64
}

// New wires a controller. gz may be nil to disable selection transforms.
func New(cam *orbit.Camera, objs Objects, ch Chart, gz *gizmo.Gizmo, ov *overlay.State, cb Callbacks) *Controller {
	return &Controller{cam: cam, objs: objs, chart: ch, gizmo: gz, overlay: ov, cb: cb}
}

// SetViewport updates the pixel rectangle pointer coordinates refer to.
func (c *Controller) SetViewport(vp screen.Viewport) { c.vp = vp }

// SetCallbacks replaces the host callbacks.
func (c *Controller) SetCallbacks(cb Callbacks) { c.cb = cb }

// Hovering reports whether the pointer is over the chart surface.
func (c *Controller) Hovering() bool { return c.hovering }

// Dragging reports whether a chart pan is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

type surfaceHit struct {
	hit scene.Hit
	ok  bool
}

// chartUV converts a hit's texture coordinates into chart space, v growing upwards.
func (s surfaceHit) chartUV() (u, v float64, ok bool) {
	if !s.ok || !s.hit.HasUV {
		return 0, 0, false
	}
	return float64(s.hit.UV[0]), 1 - float64(s.hit.UV[1]), true
}

func (c *Controller) cast(px, py float32) (scene.Ray, []scene.Hit, surfaceHit) {
	ray := c.cam.Ray(px, py, c.vp)
	hits := scene.Raycast(ray, c.objs.Roots())
	var sh surfaceHit
	if surf := c.chart.Surface(); surf != nil {
		sh.hit, sh.ok = scene.First(hits, surf)
	}
	return ray, hits, sh
}

// PointerMove handles a pointer move to pixel (px, py).
func (c *Controller) PointerMove(px, py float32) {
	ray, _, sh := c.cast(px, py)

	if c.gizmo != nil && c.gizmo.Dragging() {
		if c.gizmo.Drag(ray) && c.cb.OnTransform != nil {
			n := c.gizmo.Target()
			c.cb.OnTransform(Transform{Position: n.Position, Rotation: n.Rotation, Scale: n.Scale})
		}
		c.overlay.Cursor = overlay.CursorGrabbing
		return
	}
	if c.gizmo != nil {
		c.gizmo.Hover(ray)
	}

	c.hovering = sh.ok
	c.overlay.Hovering = sh.ok
	c.cam.EnableZoom = !sh.ok

	if c.dragging {
		if u, v, ok := sh.chartUV(); ok {
			if !c.hasLastU {
				c.lastU, c.hasLastU = u, true
			}
			vw := c.chart.Viewport()
			if vw.Pan(u-c.lastU, len(c.chart.Series())) {
				c.lastU = u
				c.chart.Redraw()
			}
			c.publishHover(u, v, sh.hit.Point)
		}
		c.overlay.Cursor = overlay.CursorGrabbing
		return
	}

	if !sh.ok {
		c.overlay.Cursor = overlay.CursorDefault
		c.overlay.SetStats(chart.Latest(c.chart.Series()))
		c.overlay.HideMarker()
		return
	}
	c.overlay.Cursor = overlay.CursorGrab
	if u, v, ok := sh.chartUV(); ok && len(c.chart.Series()) > 0 {
		c.publishHover(u, v, sh.hit.Point)
	}
}

// PointerDown handles a button press at pixel (px, py): a chart drag on the surface, a gizmo
// drag on a handle, or a selection change otherwise.
func (c *Controller) PointerDown(px, py float32) {
	ray, hits, sh := c.cast(px, py)

	if sh.ok {
		c.dragging = true
		c.hasLastU = false
		if u, _, ok := sh.chartUV(); ok {
			c.lastU, c.hasLastU = u, true
		}
		c.cam.Enabled = false
		c.overlay.Cursor = overlay.CursorGrabbing
		return
	}

	if c.gizmo == nil {
		return
	}
	if c.gizmo.Begin(ray) {
		c.cam.Enabled = false
		return
	}
	var picked *objects.Instance
	if len(hits) > 0 {
		picked = c.objs.FindRoot(hits[0].Node)
	}
	if picked == nil {
		c.objs.Deselect()
		c.gizmo.Detach()
		return
	}
	c.objs.Select(picked)
	c.gizmo.Attach(picked.Node)
}

// PointerUp ends any drag and reports the selected instance's position.
func (c *Controller) PointerUp() {
	if c.gizmo != nil && c.gizmo.End() {
		c.cam.Enabled = true
	}
	if sel := c.objs.Selected(); sel != nil && c.cb.OnPositionChange != nil {
		c.cb.OnPositionChange(sel.Node.Position)
	}
	if c.dragging {
		c.dragging = false
		c.hasLastU = false
		c.cam.Enabled = true
		if c.hovering {
			c.overlay.Cursor = overlay.CursorGrab
		} else {
			c.overlay.Cursor = overlay.CursorDefault
		}
	}
}

// Wheel handles a wheel step at pixel (px, py). zoomOut follows browser wheel sign (positive moves
// away). It reports whether the chart consumed the event; when false the camera may zoom.
func (c *Controller) Wheel(px, py float32, zoomOut float32) bool {
	if c.chart.Surface() == nil || zoomOut == 0 {
		return false
	}
	_, _, sh := c.cast(px, py)
	if !sh.ok {
		return false
	}
	series := c.chart.Series()
	if len(series) == 0 {
		return true
	}
	u, v, ok := sh.chartUV()
	if !ok {
		u, v = 0.5, 0.5
	}
	sign := 1
	if zoomOut < 0 {
		sign = -1
	}
	c.chart.Viewport().Zoom(sign, u, len(series))
	c.chart.Redraw()
	c.publishHover(u, v, sh.hit.Point)
	return true
}

// Tick refreshes hover stats after new data when the pointer is off the surface.
func (c *Controller) Tick() {
	if !c.hovering {
		c.overlay.SetStats(chart.Latest(c.chart.Series()))
	}
}

func (c *Controller) publishHover(u, v float64, point mgl32.Vec3) {
	series := c.chart.Series()
	idx := c.chart.Viewport().HoverIndex(u, len(series))
	c.overlay.SetStats(chart.StatsAt(series, idx))
	ndc := mgl32.TransformCoordinate(point, c.cam.ViewProjection(c.vp))
	_, y := screen.ToPixels(ndc, c.vp)
	c.overlay.Marker = overlay.Marker{Visible: true, Price: c.chart.Scale().Price(v), Y: y}
}
