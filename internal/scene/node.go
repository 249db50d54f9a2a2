package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Node is one element of the scene graph. A node with a Mesh is drawable; any node may have children.
// Rotation is an XYZ Euler triple in radians.
type Node struct {
	ID       string
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
	Mesh     *Mesh

	CastShadow    bool
	ReceiveShadow bool

	name     string
	parent   *Node
	children []*Node
	world    mgl32.Mat4
}

// NewNode returns an identity-transformed node.
func NewNode(name string) *Node {
	return &Node{
		ID:    uuid.NewString(),
		name:  name,
		Scale: mgl32.Vec3{1, 1, 1},
		world: mgl32.Ident4(),
	}
}

// NewMeshNode returns a node carrying mesh.
func NewMeshNode(name string, mesh *Mesh) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	return n
}

func (n *Node) Name() string        { return n.name }
func (n *Node) SetName(name string) { n.name = name }
func (n *Node) Parent() *Node       { return n.parent }
func (n *Node) Children() []*Node   { return n.children }
func (n *Node) IsMesh() bool        { return n.Mesh != nil && n.Mesh.Geometry != nil }

// Add attaches child, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child if it is a direct child of n.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Traverse visits n and all descendants depth-first, parents before children.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// Contains reports whether target is n or one of its descendants.
func (n *Node) Contains(target *Node) bool {
	for t := target; t != nil; t = t.parent {
		if t == n {
			return true
		}
	}
	return false
}

// SetTransform sets position, rotation (radians) and scale, then refreshes world matrices below n.
func (n *Node) SetTransform(position, rotation, scale mgl32.Vec3) {
	n.Position = position
	n.Rotation = rotation
	n.Scale = scale
	n.UpdateWorldMatrix()
}

// LocalMatrix composes T * Rx * Ry * Rz * S.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	r := mgl32.HomogRotate3DX(n.Rotation[0]).
		Mul4(mgl32.HomogRotate3DY(n.Rotation[1])).
		Mul4(mgl32.HomogRotate3DZ(n.Rotation[2]))
	s := mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// UpdateWorldMatrix recomputes the world matrix of n from its parent's cached world matrix and
// propagates to all descendants.
func (n *Node) UpdateWorldMatrix() {
	local := n.LocalMatrix()
	if n.parent != nil {
		n.world = n.parent.world.Mul4(local)
	} else {
		n.world = local
	}
	for _, c := range n.children {
		c.UpdateWorldMatrix()
	}
}

// WorldMatrix returns the cached world matrix. Call UpdateWorldMatrix after editing transforms.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	return n.world
}

// WorldBounds returns the world-space box enclosing every mesh under n.
func (n *Node) WorldBounds() Box {
	out := EmptyBox()
	n.Traverse(func(c *Node) {
		if c.IsMesh() {
			out.Union(c.Mesh.Geometry.Bounds().Transform(c.world))
		}
	})
	return out
}

// Clone deep-copies n and its subtree. Geometry is shared (retained), materials are copied so
// per-instance material edits stay local. The clone has no parent.
func (n *Node) Clone() (*Node, error) {
	out := &Node{
		ID:            uuid.NewString(),
		name:          n.name,
		Position:      n.Position,
		Rotation:      n.Rotation,
		Scale:         n.Scale,
		CastShadow:    n.CastShadow,
		ReceiveShadow: n.ReceiveShadow,
		world:         n.world,
	}
	if n.Mesh != nil {
		m := &Mesh{Materials: make([]*Material, 0, len(n.Mesh.Materials))}
		if n.Mesh.Geometry != nil {
			m.Geometry = n.Mesh.Geometry.Retain()
		}
		for _, mat := range n.Mesh.Materials {
			if mat == nil {
				m.Materials = append(m.Materials, nil)
				continue
			}
			cp, err := mat.Clone()
			if err != nil {
				return nil, err
			}
			m.Materials = append(m.Materials, cp)
		}
		out.Mesh = m
	}
	for _, c := range n.children {
		cc, err := c.Clone()
		if err != nil {
			return nil, err
		}
		out.Add(cc)
	}
	return out, nil
}

// Release drops this subtree's hold on its geometry and hands its materials to r. Geometry reaches
// r only when no other holder remains. The node must not be drawn afterwards.
func (n *Node) Release(r Releaser) {
	n.Traverse(func(c *Node) {
		if c.Mesh == nil {
			return
		}
		if g := c.Mesh.Geometry; g != nil && g.unref() && r != nil {
			r.ReleaseGeometry(g)
		}
		for _, m := range c.Mesh.Materials {
			if m != nil && r != nil {
				r.ReleaseMaterial(m)
			}
		}
		c.Mesh = nil
	})
}
