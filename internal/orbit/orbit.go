// Package orbit is the orbiting camera: spherical coordinates around a target with dolly zoom and a
// polar limit that keeps the eye above the ground.
package orbit

import (
	"math"

	"chart-workspace/internal/scene"
	"chart-workspace/internal/screen"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Defaults for the workspace camera.
var (
	DefaultEye    = mgl32.Vec3{-1.43, 3.43, 22.99}
	DefaultTarget = mgl32.Vec3{-0.15, 0.12, -0.03}
)

const (
	DefaultFovY        = 75
	DefaultNear        = 0.1
	DefaultFar         = 1000
	DefaultMinDistance = 5
	DefaultMaxDistance = 50

	minPolar   = 1e-4
	dollyScale = 0.95
)

// Camera orbits Target. Enabled gates rotation and zoom; EnableZoom gates zoom alone.
type Camera struct {
	Target mgl32.Vec3
	Up     mgl32.Vec3

	// Theta is the azimuth around +Y measured from +Z; Phi is the polar angle from +Y.
	Theta, Phi float32
	Distance   float32

	FovY      float32
	Near, Far float32

	MinDistance, MaxDistance float32
	MaxPolar                 float32
	RotateSpeed              float32
	ZoomSpeed                float32

	Enabled    bool
	EnableZoom bool
}

// New returns a camera looking from eye at target.
func New(eye, target mgl32.Vec3) *Camera {
	c := &Camera{
		Target:      target,
		Up:          mgl32.Vec3{0, 1, 0},
		FovY:        DefaultFovY,
		Near:        DefaultNear,
		Far:         DefaultFar,
		MinDistance: DefaultMinDistance,
		MaxDistance: DefaultMaxDistance,
		MaxPolar:    math.Pi / 2,
		RotateSpeed: 1,
		ZoomSpeed:   1,
		Enabled:     true,
		EnableZoom:  true,
	}
	c.SetEye(eye)
	return c
}

// Default returns the workspace's initial camera.
func Default() *Camera { return New(DefaultEye, DefaultTarget) }

// SetEye re-derives the spherical coordinates from an eye position.
func (c *Camera) SetEye(eye mgl32.Vec3) {
	off := eye.Sub(c.Target)
	c.Distance = off.Len()
	if c.Distance == 0 {
		c.Phi = minPolar
		return
	}
	c.Theta = math32.Atan2(off[0], off[2])
	c.Phi = math32.Acos(clamp(off[1]/c.Distance, -1, 1))
	c.clamp()
}

// Eye returns the camera position.
func (c *Camera) Eye() mgl32.Vec3 {
	sp := math32.Sin(c.Phi)
	return c.Target.Add(mgl32.Vec3{
		c.Distance * sp * math32.Sin(c.Theta),
		c.Distance * math32.Cos(c.Phi),
		c.Distance * sp * math32.Cos(c.Theta),
	})
}

// Rotate orbits by a pointer delta in pixels over a viewport of the given height.
func (c *Camera) Rotate(dx, dy, height float32) {
	if !c.Enabled || height <= 0 {
		return
	}
	c.Theta -= 2 * math.Pi * dx / height * c.RotateSpeed
	c.Phi -= 2 * math.Pi * dy / height * c.RotateSpeed
	c.clamp()
}

// Zoom dollies by wheel notches; positive moves closer.
func (c *Camera) Zoom(notches float32) {
	if !c.Enabled || !c.EnableZoom || notches == 0 {
		return
	}
	c.Distance *= math32.Pow(dollyScale, notches*c.ZoomSpeed)
	c.clamp()
}

func (c *Camera) clamp() {
	c.Phi = clamp(c.Phi, minPolar, c.MaxPolar)
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, c.Up)
}

// Projection returns the perspective matrix for aspect (width/height).
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View for the viewport.
func (c *Camera) ViewProjection(vp screen.Viewport) mgl32.Mat4 {
	return c.Projection(aspect(vp)).Mul4(c.View())
}

// Ray returns the world-space pick ray through pixel (px, py).
func (c *Camera) Ray(px, py float32, vp screen.Viewport) scene.Ray {
	x := (px-vp.X)/vp.Width*2 - 1
	y := -(py-vp.Y)/vp.Height*2 + 1
	inv := c.ViewProjection(vp).Inv()
	near := mgl32.TransformCoordinate(mgl32.Vec3{x, y, -1}, inv)
	far := mgl32.TransformCoordinate(mgl32.Vec3{x, y, 1}, inv)
	return scene.Ray{Origin: c.Eye(), Direction: far.Sub(near).Normalize()}
}

func aspect(vp screen.Viewport) float32 {
	if vp.Height <= 0 {
		return 1
	}
	return vp.Width / vp.Height
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
