// Package gltf reads the part names of a glTF or GLB asset and assembles loaded primitives into a
// scene subtree. The GPU loader drops names; the screen locator needs them.
package gltf

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"chart-workspace/internal/scene"
)

const (
	glbMagic     = 0x46546c67 // "glTF"
	chunkJSON    = 0x4e4f534a // "JSON"
	glbHeaderLen = 12
)

// modeTriangles is the glTF primitive mode the loader keeps; absent mode means triangles.
const modeTriangles = 4

// ErrNotGLB reports a truncated or malformed GLB header.
var ErrNotGLB = errors.New("gltf: not a GLB container")

type document struct {
	Nodes []struct {
		Name string `json:"name"`
		Mesh *int   `json:"mesh"`
	} `json:"nodes"`
	Meshes []struct {
		Name       string `json:"name"`
		Primitives []struct {
			Mode *int `json:"mode"`
		} `json:"primitives"`
	} `json:"meshes"`
}

// ReadPartNames returns one name per triangle primitive of the file at path, in node order.
func ReadPartNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return PartNames(data)
}

// PartNames parses a GLB container or a bare glTF JSON document. Each triangle primitive of each
// node that references a mesh yields the node name, else the mesh name, else "". Multi-primitive
// meshes repeat the name.
func PartNames(data []byte) ([]string, error) {
	js := data
	if len(data) >= 4 && binary.LittleEndian.Uint32(data) == glbMagic {
		var err error
		if js, err = jsonChunk(data); err != nil {
			return nil, err
		}
	}
	var doc document
	if err := json.Unmarshal(bytes.TrimRight(js, " \x00"), &doc); err != nil {
		return nil, fmt.Errorf("gltf: parse json: %w", err)
	}
	var names []string
	for _, n := range doc.Nodes {
		if n.Mesh == nil || *n.Mesh < 0 || *n.Mesh >= len(doc.Meshes) {
			continue
		}
		m := doc.Meshes[*n.Mesh]
		name := n.Name
		if name == "" {
			name = m.Name
		}
		for _, p := range m.Primitives {
			if p.Mode != nil && *p.Mode != modeTriangles {
				continue
			}
			names = append(names, name)
		}
	}
	return names, nil
}

func jsonChunk(data []byte) ([]byte, error) {
	if len(data) < glbHeaderLen+8 {
		return nil, ErrNotGLB
	}
	length := int(binary.LittleEndian.Uint32(data[8:]))
	if length > len(data) {
		length = len(data)
	}
	chunkLen := int(binary.LittleEndian.Uint32(data[12:]))
	chunkType := binary.LittleEndian.Uint32(data[16:])
	start := glbHeaderLen + 8
	if chunkType != chunkJSON || start+chunkLen > length {
		return nil, ErrNotGLB
	}
	return data[start : start+chunkLen], nil
}

// Primitive is one loaded mesh part with its vertex data already in model space.
type Primitive struct {
	Name      string
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
	// Handle is the backend mesh index.
	Handle   int
	Material *scene.Material
}

// Build returns a root node named name with one mesh child per primitive. Children without a part
// name are called "<name>_<index>".
func Build(name string, prims []Primitive) *scene.Node {
	root := scene.NewNode(name)
	for i, p := range prims {
		g := scene.NewGeometry(p.Positions, p.UVs, p.Indices)
		g.Handle = p.Handle
		mat := p.Material
		if mat == nil {
			mat = scene.NewMaterial("")
		}
		child := p.Name
		if child == "" {
			child = fmt.Sprintf("%s_%d", name, i)
		}
		root.Add(scene.NewMeshNode(child, &scene.Mesh{Geometry: g, Materials: []*scene.Material{mat}}))
	}
	root.UpdateWorldMatrix()
	return root
}
