// Package screen finds the display surface inside a loaded model and keeps its on-screen
// rectangle current.
package screen

import (
	"math"
	"regexp"
	"strings"

	"chart-workspace/internal/scene"

	"github.com/chewxy/math32"
)

var (
	exactNames  = []string{"Screen", "Display", "Panel", "LCD", "Monitor", "ScreenSurface", "Screen_Mat", "ScreenMesh"}
	namePattern = regexp.MustCompile(`(?i)(screen|display|panel|monitor|lcd)`)
)

// Score weights.
const (
	exactBonus    = 25
	patternBonus  = 10
	uvBonus       = 2
	areaCap       = 1000
	areaWeight    = 0.01
	wideAspect    = 2.0
	wideBonus     = 20
	flatBonus     = 5
	flatDepthFrac = 0.2
)

// Candidate is the structural description of one mesh that the score is computed from.
type Candidate struct {
	Name  string
	HasUV bool
	// Size is the world-space bounding box extent.
	Size [3]float32
	// TextureAspects holds width/height for each material slot with a sized texture.
	TextureAspects []float32
}

// Score rates how likely c is the display surface. It is a pure function of c.
func Score(c Candidate) float64 {
	var score float64
	for _, n := range exactNames {
		if strings.EqualFold(c.Name, n) {
			score += exactBonus
			break
		}
	}
	if c.Name != "" && namePattern.MatchString(c.Name) {
		score += patternBonus
	}
	if c.HasUV {
		score += uvBonus
	}
	x, y, z := c.Size[0], c.Size[1], c.Size[2]
	score += float64(math32.Min(x*y, areaCap)) * areaWeight
	for _, a := range c.TextureAspects {
		if a >= wideAspect {
			score += wideBonus
			break
		}
	}
	if x > y && z < math32.Min(x, y)*flatDepthFrac {
		score += flatBonus
	}
	return score
}

// Describe builds the Candidate for a mesh node. The node's world matrix must be current.
func Describe(n *scene.Node) Candidate {
	c := Candidate{Name: n.Name()}
	if n.Mesh == nil || n.Mesh.Geometry == nil {
		return c
	}
	c.HasUV = n.Mesh.Geometry.HasUV()
	if b := n.WorldBounds(); !b.IsEmpty() {
		s := b.Size()
		c.Size = [3]float32{s[0], s[1], s[2]}
	}
	for _, m := range n.Mesh.Materials {
		if m == nil {
			continue
		}
		if a := m.Map.Aspect(); a > 0 {
			c.TextureAspects = append(c.TextureAspects, a)
		}
	}
	return c
}

// Locate returns the highest-scoring mesh under root, or nil when root has no meshes. Ties keep
// the first mesh in traversal order.
func Locate(root *scene.Node) *scene.Node {
	if root == nil {
		return nil
	}
	root.UpdateWorldMatrix()
	var best *scene.Node
	bestScore := math.Inf(-1)
	root.Traverse(func(n *scene.Node) {
		if !n.IsMesh() {
			return
		}
		if s := Score(Describe(n)); best == nil || s > bestScore {
			best, bestScore = n, s
		}
	})
	return best
}
