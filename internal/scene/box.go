package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Box is an axis-aligned bounding box. The zero value is not empty; use EmptyBox.
type Box struct {
	Min, Max mgl32.Vec3
}

// EmptyBox returns a box that any Expand call will replace.
func EmptyBox() Box {
	inf := math32.Inf(1)
	return Box{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no points.
func (b Box) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Expand grows the box to contain p.
func (b *Box) Expand(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
}

// Union grows the box to contain o.
func (b *Box) Union(o Box) {
	if o.IsEmpty() {
		return
	}
	b.Expand(o.Min)
	b.Expand(o.Max)
}

// Size returns the extent along each axis (zero for an empty box).
func (b Box) Size() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Corners returns the 8 corners in a fixed order.
func (b Box) Corners() [8]mgl32.Vec3 {
	lo, hi := b.Min, b.Max
	return [8]mgl32.Vec3{
		{lo[0], lo[1], lo[2]},
		{lo[0], lo[1], hi[2]},
		{lo[0], hi[1], lo[2]},
		{lo[0], hi[1], hi[2]},
		{hi[0], lo[1], lo[2]},
		{hi[0], lo[1], hi[2]},
		{hi[0], hi[1], lo[2]},
		{hi[0], hi[1], hi[2]},
	}
}

// Transform returns the axis-aligned box enclosing b after applying m to each corner.
func (b Box) Transform(m mgl32.Mat4) Box {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBox()
	for _, c := range b.Corners() {
		out.Expand(mgl32.TransformCoordinate(c, m))
	}
	return out
}

// intersectRay is the slab test; it reports whether the ray (origin o, direction d) touches the box
// at a non-negative parameter.
func (b Box) intersectRay(o, d mgl32.Vec3) bool {
	tmin := -math32.Inf(1)
	tmax := math32.Inf(1)
	for i := 0; i < 3; i++ {
		if math32.Abs(d[i]) < 1e-12 {
			if o[i] < b.Min[i] || o[i] > b.Max[i] {
				return false
			}
			continue
		}
		inv := 1 / d[i]
		t1 := (b.Min[i] - o[i]) * inv
		t2 := (b.Max[i] - o[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return tmax >= 0
}
