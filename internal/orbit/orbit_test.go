package orbit

import (
	"math"
	"testing"

	"chart-workspace/internal/screen"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], delta, "component %d", i)
	}
}

func TestEyeRoundTrip(t *testing.T) {
	c := Default()
	assertVec(t, DefaultEye, c.Eye(), 1e-4)
}

func TestCenterRayHitsTarget(t *testing.T) {
	c := Default()
	vp := screen.Viewport{Width: 1280, Height: 720}
	r := c.Ray(640, 360, vp)
	assertVec(t, c.Eye(), r.Origin, 1e-5)
	want := c.Target.Sub(c.Eye()).Normalize()
	assertVec(t, want, r.Direction, 1e-3)
}

func TestRayProjectsBackToPixel(t *testing.T) {
	c := Default()
	vp := screen.Viewport{Width: 800, Height: 600}
	r := c.Ray(100, 450, vp)
	p := r.At(10)
	ndc := mgl32.TransformCoordinate(p, c.ViewProjection(vp))
	x, y := screen.ToPixels(ndc, vp)
	assert.InDelta(t, 100, x, 0.5)
	assert.InDelta(t, 450, y, 0.5)
}

func TestZoomAndRotateLimits(t *testing.T) {
	c := Default()
	c.Zoom(1000)
	assert.InDelta(t, DefaultMinDistance, c.Distance, 1e-5)
	c.Zoom(-1000)
	assert.InDelta(t, DefaultMaxDistance, c.Distance, 1e-3)

	c.Rotate(0, -10000, 720)
	assert.LessOrEqual(t, c.Phi, float32(math.Pi/2))
	assert.GreaterOrEqual(t, c.Eye()[1]-c.Target[1], float32(-1e-4))

	d := c.Distance
	c.EnableZoom = false
	c.Zoom(3)
	assert.Equal(t, d, c.Distance)

	theta := c.Theta
	c.Enabled = false
	c.Rotate(50, 0, 720)
	assert.Equal(t, theta, c.Theta)
}
