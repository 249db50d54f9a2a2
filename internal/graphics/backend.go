package graphics

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"chart-workspace/internal/gltf"
	"chart-workspace/internal/scene"
)

// Backend owns every GPU resource: loaded models, their materials and the chart texture. GPU mesh
// buffers belong to their model and are freed with it in Close.
type Backend struct {
	log zerolog.Logger

	models    []rl.Model
	meshes    []rl.Mesh
	live      []bool
	materials []rl.Material
	textures  []rl.Texture2D

	defaultMat rl.Material
	hasDefault bool

	chartTex   rl.Texture2D
	chartMat   rl.Material
	chartReady bool

	Released struct {
		Geometries, Materials, Textures int
	}
}

// NewBackend returns an empty backend. GPU calls start with the first Load.
func NewBackend(log zerolog.Logger) *Backend {
	return &Backend{log: log.With().Str("component", "graphics").Logger()}
}

// Load reads the model at path and returns it as a scene subtree named name. Part names come from
// the glTF document when its primitive count matches the loaded meshes.
func (b *Backend) Load(name, path string) (*scene.Node, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	model := rl.LoadModel(path)
	if !rl.IsModelValid(model) {
		return nil, fmt.Errorf("load %s: %s is not a valid model", name, path)
	}
	b.models = append(b.models, model)

	meshes := unsafe.Slice(model.Meshes, model.MeshCount)
	mats := unsafe.Slice(model.Materials, model.MaterialCount)
	meshMat := unsafe.Slice(model.MeshMaterial, model.MeshCount)

	var names []string
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".glb" || ext == ".gltf" {
		n, err := gltf.ReadPartNames(path)
		switch {
		case err != nil:
			b.log.Debug().Err(err).Str("model", name).Msg("part names unavailable")
		case len(n) != len(meshes):
			b.log.Debug().Str("model", name).Int("names", len(n)).Int("meshes", len(meshes)).Msg("part names do not line up")
		default:
			names = n
		}
	}

	matBase := len(b.materials)
	b.materials = append(b.materials, mats...)

	prims := make([]gltf.Primitive, 0, len(meshes))
	for i, m := range meshes {
		p := convertMesh(m)
		p.Handle = len(b.meshes)
		b.meshes = append(b.meshes, m)
		b.live = append(b.live, true)
		if names != nil {
			p.Name = names[i]
		}
		if mi := int(meshMat[i]); mi >= 0 && mi < len(mats) {
			p.Material = b.sceneMaterial(mats[mi], matBase+mi)
		}
		prims = append(prims, p)
	}
	b.log.Info().Str("model", name).Str("path", path).Int("meshes", len(prims)).Msg("model loaded")
	return gltf.Build(name, prims), nil
}

func convertMesh(m rl.Mesh) gltf.Primitive {
	var p gltf.Primitive
	n := int(m.VertexCount)
	if m.Vertices != nil && n > 0 {
		v := unsafe.Slice(m.Vertices, 3*n)
		p.Positions = make([]mgl32.Vec3, n)
		for i := range p.Positions {
			p.Positions[i] = mgl32.Vec3{v[3*i], v[3*i+1], v[3*i+2]}
		}
	}
	if m.Texcoords != nil && n > 0 {
		t := unsafe.Slice(m.Texcoords, 2*n)
		p.UVs = make([]mgl32.Vec2, n)
		for i := range p.UVs {
			p.UVs[i] = mgl32.Vec2{t[2*i], t[2*i+1]}
		}
	}
	if m.Indices != nil && m.TriangleCount > 0 {
		idx := unsafe.Slice(m.Indices, 3*int(m.TriangleCount))
		p.Indices = make([]uint32, len(idx))
		for i, x := range idx {
			p.Indices[i] = uint32(x)
		}
	}
	return p
}

func (b *Backend) sceneMaterial(m rl.Material, handle int) *scene.Material {
	out := scene.NewMaterial(fmt.Sprintf("material_%d", handle))
	out.Handle = handle
	if m.Maps == nil {
		return out
	}
	albedo := *m.Maps
	out.Color = [4]uint8{albedo.Color.R, albedo.Color.G, albedo.Color.B, albedo.Color.A}
	// raylib binds a 1x1 white texture to untextured slots.
	if tex := albedo.Texture; tex.ID != 0 && tex.Width > 1 && tex.Height > 1 {
		out.Map = &scene.Texture{Width: int(tex.Width), Height: int(tex.Height), Handle: len(b.textures)}
		b.textures = append(b.textures, tex)
	}
	return out
}

// UploadChart copies img into the chart texture, creating it on first use.
func (b *Backend) UploadChart(img *image.RGBA) {
	if img == nil || len(img.Pix) == 0 {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if !b.chartReady {
		blank := rl.GenImageColor(w, h, rl.Black)
		b.chartTex = rl.LoadTextureFromImage(blank)
		rl.UnloadImage(blank)
		rl.SetTextureFilter(b.chartTex, rl.FilterBilinear)
		b.chartMat = rl.LoadMaterialDefault()
		rl.SetMaterialTexture(&b.chartMat, rl.MapAlbedo, b.chartTex)
		b.chartReady = true
	}
	pixels := unsafe.Slice((*color.RGBA)(unsafe.Pointer(&img.Pix[0])), w*h)
	rl.UpdateTexture(b.chartTex, pixels)
}

// drawMaterial picks the GPU material for m.
func (b *Backend) drawMaterial(m *scene.Material) rl.Material {
	switch {
	case m != nil && m.Map != nil && m.Map.Chart && b.chartReady:
		return b.chartMat
	case m != nil && m.Handle >= 0 && m.Handle < len(b.materials):
		return b.materials[m.Handle]
	}
	if !b.hasDefault {
		b.defaultMat = rl.LoadMaterialDefault()
		b.hasDefault = true
	}
	return b.defaultMat
}

// mesh returns the GPU mesh for g, or false once g has been released.
func (b *Backend) mesh(g *scene.Geometry) (rl.Mesh, bool) {
	if g == nil || g.Handle < 0 || g.Handle >= len(b.meshes) || !b.live[g.Handle] {
		return rl.Mesh{}, false
	}
	return b.meshes[g.Handle], true
}

// ReleaseGeometry stops drawing g. The buffers stay with their model until Close.
func (b *Backend) ReleaseGeometry(g *scene.Geometry) {
	if g.Handle >= 0 && g.Handle < len(b.live) {
		b.live[g.Handle] = false
	}
	b.Released.Geometries++
}

// ReleaseMaterial drops a clone's material. Material slots are shared with the loaded model.
func (b *Backend) ReleaseMaterial(*scene.Material) {
	b.Released.Materials++
}

// ReleaseTexture frees the chart texture. Model textures go with their model.
func (b *Backend) ReleaseTexture(t *scene.Texture) {
	if t == nil || !t.Chart || !b.chartReady {
		return
	}
	rl.UnloadTexture(b.chartTex)
	b.chartReady = false
	b.Released.Textures++
}

// Close unloads every model. The window must still be open.
func (b *Backend) Close() error {
	var errs []error
	if b.chartReady {
		errs = append(errs, errors.New("chart texture still bound"))
		rl.UnloadTexture(b.chartTex)
		b.chartReady = false
	}
	for _, m := range b.models {
		rl.UnloadModel(m)
	}
	b.models, b.meshes, b.live, b.materials, b.textures = nil, nil, nil, nil, nil
	b.log.Debug().
		Int("geometries", b.Released.Geometries).
		Int("materials", b.Released.Materials).
		Int("textures", b.Released.Textures).
		Msg("backend closed")
	return errors.Join(errs...)
}
