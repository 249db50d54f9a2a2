package scene

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a half-line in world space. Direction need not be normalized.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Hit is one ray/triangle intersection.
type Hit struct {
	Node     *Node
	Distance float32    // world units from the ray origin
	Point    mgl32.Vec3 // world space
	// UV is the interpolated texture coordinate at the hit, as stored in the geometry.
	UV    mgl32.Vec2
	HasUV bool
	Face  int
}

const (
	detEpsilon = 1e-12
	rayEpsilon = 1e-6
)

// Raycast intersects ray with every mesh under roots and returns all hits nearest first.
// Triangles are treated as double sided.
func Raycast(ray Ray, roots []*Node) []Hit {
	var hits []Hit
	for _, root := range roots {
		if root == nil {
			continue
		}
		root.Traverse(func(n *Node) {
			if n.IsMesh() {
				hits = appendMeshHits(hits, ray, n)
			}
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// First returns the nearest hit on target, if any.
func First(hits []Hit, target *Node) (Hit, bool) {
	for _, h := range hits {
		if h.Node == target {
			return h, true
		}
	}
	return Hit{}, false
}

func appendMeshHits(hits []Hit, ray Ray, n *Node) []Hit {
	world := n.WorldMatrix()
	inv := world.Inv()
	if inv == (mgl32.Mat4{}) {
		return hits
	}
	// Intersect in local space so non-uniform scale is handled exactly.
	o := mgl32.TransformCoordinate(ray.Origin, inv)
	d := mgl32.TransformNormal(ray.Direction, inv)
	g := n.Mesh.Geometry
	if !g.Bounds().intersectRay(o, d) {
		return hits
	}
	hasUV := g.HasUV()
	for i := 0; i < g.TriangleCount(); i++ {
		ia, ib, ic := g.Triangle(i)
		if ic >= len(g.Positions) || ia >= len(g.Positions) || ib >= len(g.Positions) {
			continue
		}
		t, bu, bv, ok := intersectTriangle(o, d, g.Positions[ia], g.Positions[ib], g.Positions[ic])
		if !ok {
			continue
		}
		local := o.Add(d.Mul(t))
		wp := mgl32.TransformCoordinate(local, world)
		h := Hit{
			Node:     n,
			Distance: wp.Sub(ray.Origin).Len(),
			Point:    wp,
			Face:     i,
			HasUV:    hasUV,
		}
		if hasUV {
			w := 1 - bu - bv
			h.UV = g.UVs[ia].Mul(w).Add(g.UVs[ib].Mul(bu)).Add(g.UVs[ic].Mul(bv))
		}
		hits = append(hits, h)
	}
	return hits
}

// intersectTriangle is Möller–Trumbore. It returns the ray parameter and the barycentric weights of
// b and c.
func intersectTriangle(o, d, a, b, c mgl32.Vec3) (t, u, v float32, ok bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := d.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < detEpsilon {
		return 0, 0, 0, false
	}
	invDet := 1 / det
	s := o.Sub(a)
	u = s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	q := s.Cross(e1)
	v = d.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	t = e2.Dot(q) * invDet
	if t < rayEpsilon {
		return 0, 0, 0, false
	}
	return t, u, v, true
}
