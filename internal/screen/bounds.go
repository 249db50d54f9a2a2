package screen

import (
	"chart-workspace/internal/scene"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Viewport is the pixel rectangle the scene is rendered into.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// Bounds is an axis-aligned pixel rectangle.
type Bounds struct {
	Left   float32 `json:"left"`
	Right  float32 `json:"right"`
	Top    float32 `json:"top"`
	Bottom float32 `json:"bottom"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// Contains reports whether the pixel (x, y) lies inside b.
func (b Bounds) Contains(x, y float32) bool {
	return x >= b.Left && x <= b.Right && y >= b.Top && y <= b.Bottom
}

// ToPixels converts normalized device coordinates to pixels in vp, y growing downwards.
func ToPixels(ndc mgl32.Vec3, vp Viewport) (x, y float32) {
	x = vp.X + (ndc[0]+1)/2*vp.Width
	y = vp.Y + (1-(ndc[1]+1)/2)*vp.Height
	return x, y
}

// Project maps the corners of surface's local bounding box through its world matrix and viewProj
// and returns the enclosing pixel rectangle. It reports false for a nil or empty surface. Callers
// run it every frame.
func Project(surface *scene.Node, viewProj mgl32.Mat4, vp Viewport) (Bounds, bool) {
	if surface == nil || surface.Mesh == nil || surface.Mesh.Geometry == nil {
		return Bounds{}, false
	}
	local := surface.Mesh.Geometry.Bounds()
	if local.IsEmpty() {
		return Bounds{}, false
	}
	mvp := viewProj.Mul4(surface.WorldMatrix())
	minX, minY := math32.Inf(1), math32.Inf(1)
	maxX, maxY := math32.Inf(-1), math32.Inf(-1)
	for _, c := range local.Corners() {
		x, y := ToPixels(mgl32.TransformCoordinate(c, mvp), vp)
		minX, maxX = math32.Min(minX, x), math32.Max(maxX, x)
		minY, maxY = math32.Min(minY, y), math32.Max(maxY, y)
	}
	return Bounds{
		Left: minX, Right: maxX, Top: minY, Bottom: maxY,
		Width: maxX - minX, Height: maxY - minY,
	}, true
}
