package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// Geometry is triangle data shared between a base asset and its clones. It is reference counted:
// clones retain it, and the backend resource is released only when the last holder lets go.
type Geometry struct {
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2 // optional, parallel to Positions
	Indices   []uint32     // optional; nil means consecutive triples of Positions
	// Handle identifies the backend (GPU) mesh this geometry was built from.
	Handle int

	refs   int
	bounds *Box
}

// NewGeometry returns geometry with one reference held by the caller.
func NewGeometry(positions []mgl32.Vec3, uvs []mgl32.Vec2, indices []uint32) *Geometry {
	return &Geometry{Positions: positions, UVs: uvs, Indices: indices, refs: 1}
}

// HasUV reports whether every vertex has a texture coordinate.
func (g *Geometry) HasUV() bool {
	return g != nil && len(g.UVs) > 0 && len(g.UVs) == len(g.Positions)
}

// Refs returns the number of live holders.
func (g *Geometry) Refs() int { return g.refs }

// Retain adds a holder and returns g for chaining.
func (g *Geometry) Retain() *Geometry {
	g.refs++
	return g
}

// unref drops a holder and reports whether it was the last one.
func (g *Geometry) unref() bool {
	if g.refs <= 0 {
		return false
	}
	g.refs--
	return g.refs == 0
}

// Bounds returns the local-space bounding box (computed once).
func (g *Geometry) Bounds() Box {
	if g.bounds == nil {
		b := EmptyBox()
		for _, p := range g.Positions {
			b.Expand(p)
		}
		g.bounds = &b
	}
	return *g.bounds
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	if g.Indices != nil {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// Triangle returns the vertex indices of triangle i.
func (g *Geometry) Triangle(i int) (a, b, c int) {
	if g.Indices != nil {
		return int(g.Indices[3*i]), int(g.Indices[3*i+1]), int(g.Indices[3*i+2])
	}
	return 3 * i, 3*i + 1, 3*i + 2
}

// Texture describes an image bound to a material slot.
type Texture struct {
	Width, Height int
	Handle        int
	// Chart marks the live chart raster.
	Chart bool
}

// Aspect returns width/height, or 0 when the size is unknown.
func (t *Texture) Aspect() float32 {
	if t == nil || t.Width <= 0 || t.Height <= 0 {
		return 0
	}
	return float32(t.Width) / float32(t.Height)
}

// Material is a per-instance surface description. Clones get their own copy so mutating one
// (e.g. swapping in the chart texture) never affects another instance.
type Material struct {
	ID    string
	Name  string
	Map   *Texture
	Color [4]uint8
	// Unlit materials ignore scene lighting (the chart screen).
	Unlit bool
	// Handle is the backend material slot; -1 for materials created at runtime.
	Handle int
}

// NewMaterial returns a white material with a fresh ID.
func NewMaterial(name string) *Material {
	return &Material{ID: uuid.NewString(), Name: name, Color: [4]uint8{255, 255, 255, 255}, Handle: -1}
}

// Clone returns a deep copy with a new ID.
func (m *Material) Clone() (*Material, error) {
	out := &Material{}
	if err := copier.CopyWithOption(out, m, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("clone material %q: %w", m.Name, err)
	}
	out.ID = uuid.NewString()
	return out, nil
}

// Mesh binds geometry to one or more material slots.
type Mesh struct {
	Geometry  *Geometry
	Materials []*Material
}

// Releaser frees backend resources when a cloned instance is destroyed.
type Releaser interface {
	ReleaseGeometry(g *Geometry)
	ReleaseMaterial(m *Material)
}
