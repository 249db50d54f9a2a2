// Package gizmo implements an axis-handle transform gizmo: translate, rotate and scale a node by
// dragging one of its world-aligned X/Y/Z handles.
package gizmo

import (
	"strings"

	"chart-workspace/internal/scene"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mode selects what a drag changes.
type Mode int

const (
	Translate Mode = iota
	Rotate
	Scale
)

func (m Mode) String() string {
	switch m {
	case Rotate:
		return "rotate"
	case Scale:
		return "scale"
	default:
		return "translate"
	}
}

// ParseMode accepts "translate", "rotate" or "scale" (or t, r, s).
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "translate", "t", "move":
		return Translate, true
	case "rotate", "r":
		return Rotate, true
	case "scale", "s":
		return Scale, true
	}
	return Translate, false
}

// Axis identifies a handle. None means no handle.
type Axis int

const (
	None Axis = iota - 1
	X
	Y
	Z
)

// Dir returns the world direction of a.
func (a Axis) Dir() mgl32.Vec3 {
	var d mgl32.Vec3
	if a >= X && a <= Z {
		d[a] = 1
	}
	return d
}

const (
	DefaultSize = 2
	minScale    = 0.01
	parallelEps = 1e-6
)

// Gizmo drags the attached node. All methods are main-thread only.
type Gizmo struct {
	Mode Mode
	// Size is the handle length, and the ring radius in rotate mode.
	Size float32
	// Threshold is the pick distance from a handle.
	Threshold float32

	target   *scene.Node
	active   Axis
	hover    Axis
	dragging bool

	startPos, startRot, startScale mgl32.Vec3
	startT                         float32
	startVec                       mgl32.Vec3
}

// New returns a translate gizmo with default handle size.
func New() *Gizmo {
	return &Gizmo{Size: DefaultSize, Threshold: DefaultSize * 0.12, active: None, hover: None}
}

// Attach targets n, ending any drag in progress.
func (g *Gizmo) Attach(n *scene.Node) {
	g.End()
	g.target = n
}

// Detach clears the target.
func (g *Gizmo) Detach() { g.Attach(nil) }

// Target returns the attached node.
func (g *Gizmo) Target() *scene.Node { return g.target }

// Dragging reports whether a handle is being dragged.
func (g *Gizmo) Dragging() bool { return g.dragging }

// Active returns the dragged axis, or the hovered one when idle.
func (g *Gizmo) Active() Axis {
	if g.dragging {
		return g.active
	}
	return g.hover
}

// Hover updates the highlighted handle and returns it.
func (g *Gizmo) Hover(ray scene.Ray) Axis {
	if !g.dragging {
		g.hover = g.Pick(ray)
	}
	return g.hover
}

// Pick returns the handle under ray, nearest first.
func (g *Gizmo) Pick(ray scene.Ray) Axis {
	if g.target == nil {
		return None
	}
	center := g.target.Position
	best, bestDist := None, g.Threshold
	for a := X; a <= Z; a++ {
		var dist float32
		if g.Mode == Rotate {
			q, ok := planeHit(ray, center, a.Dir())
			if !ok {
				continue
			}
			dist = math32.Abs(q.Sub(center).Len() - g.Size)
		} else {
			s, t, ok := closest(ray, center, a.Dir())
			if !ok || s < 0 || t < 0 || t > g.Size {
				continue
			}
			dist = ray.At(s).Sub(center.Add(a.Dir().Mul(t))).Len()
		}
		if dist < bestDist {
			best, bestDist = a, dist
		}
	}
	return best
}

// Begin starts dragging the handle under ray. It reports whether a drag began.
func (g *Gizmo) Begin(ray scene.Ray) bool {
	a := g.Pick(ray)
	if a == None {
		return false
	}
	n := g.target
	g.active = a
	g.startPos, g.startRot, g.startScale = n.Position, n.Rotation, n.Scale
	if g.Mode == Rotate {
		q, ok := planeHit(ray, n.Position, a.Dir())
		if !ok {
			return false
		}
		g.startVec = q.Sub(n.Position)
	} else {
		_, t, ok := closest(ray, n.Position, a.Dir())
		if !ok {
			return false
		}
		g.startT = t
	}
	g.dragging = true
	return true
}

// Drag applies the current ray to the target. It reports whether the transform changed.
func (g *Gizmo) Drag(ray scene.Ray) bool {
	if !g.dragging || g.target == nil {
		return false
	}
	n := g.target
	dir := g.active.Dir()
	pos, rot, scl := g.startPos, g.startRot, g.startScale
	switch g.Mode {
	case Translate:
		_, t, ok := closest(ray, g.startPos, dir)
		if !ok {
			return false
		}
		pos = g.startPos.Add(dir.Mul(t - g.startT))
	case Rotate:
		q, ok := planeHit(ray, g.startPos, dir)
		if !ok {
			return false
		}
		v := q.Sub(g.startPos)
		rot[g.active] += math32.Atan2(dir.Dot(g.startVec.Cross(v)), g.startVec.Dot(v))
	case Scale:
		_, t, ok := closest(ray, g.startPos, dir)
		if !ok || math32.Abs(g.startT) < parallelEps {
			return false
		}
		scl[g.active] = math32.Max(minScale, g.startScale[g.active]*t/g.startT)
	}
	n.SetTransform(pos, rot, scl)
	return true
}

// End finishes a drag. It reports whether one was in progress.
func (g *Gizmo) End() bool {
	was := g.dragging
	g.dragging = false
	g.active = None
	return was
}

// closest returns the ray parameter s and line parameter t of the closest points between ray and
// the line through p along unit a. ok is false when they are parallel.
func closest(ray scene.Ray, p, a mgl32.Vec3) (s, t float32, ok bool) {
	d := ray.Direction
	w := ray.Origin.Sub(p)
	b := d.Dot(a)
	denom := d.Dot(d) - b*b
	if math32.Abs(denom) < parallelEps {
		return 0, 0, false
	}
	dw, aw := d.Dot(w), a.Dot(w)
	s = (b*aw - dw) / denom
	t = (d.Dot(d)*aw - b*dw) / denom
	return s, t, true
}

func planeHit(ray scene.Ray, p, n mgl32.Vec3) (mgl32.Vec3, bool) {
	den := ray.Direction.Dot(n)
	if math32.Abs(den) < parallelEps {
		return mgl32.Vec3{}, false
	}
	s := p.Sub(ray.Origin).Dot(n) / den
	if s < 0 {
		return mgl32.Vec3{}, false
	}
	return ray.At(s), true
}
