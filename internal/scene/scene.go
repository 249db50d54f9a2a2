package scene

// Scene is the renderable set of root nodes. Nodes that are detached from the scene still exist
// (base assets kept as clone sources) but are neither drawn nor ray-cast.
type Scene struct {
	roots []*Node
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// Add appends root if not already present.
func (s *Scene) Add(root *Node) {
	if root == nil || s.Contains(root) {
		return
	}
	s.roots = append(s.roots, root)
}

// Remove detaches root; it reports whether root was present.
func (s *Scene) Remove(root *Node) bool {
	for i, r := range s.roots {
		if r == root {
			s.roots = append(s.roots[:i], s.roots[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether root is attached.
func (s *Scene) Contains(root *Node) bool {
	for _, r := range s.roots {
		if r == root {
			return true
		}
	}
	return false
}

// Roots returns the attached roots in insertion order. The slice must not be modified.
func (s *Scene) Roots() []*Node {
	return s.roots
}

// Traverse visits every node of every attached root.
func (s *Scene) Traverse(fn func(*Node)) {
	for _, r := range s.roots {
		r.Traverse(fn)
	}
}
