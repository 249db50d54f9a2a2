package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"chart-workspace/internal/gizmo"
	"chart-workspace/internal/objects"
	"chart-workspace/internal/orbit"
	"chart-workspace/internal/scene"
)

const (
	gridExtent     = objects.GridSize / 2
	gridMinorStep  = 1
	gridMajorStep  = 5
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220
	gizmoCubeSize  = 0.18
)

var (
	groundColor    = rl.NewColor(17, 24, 39, 255)
	selectionColor = rl.NewColor(250, 204, 21, 255)
	axisColors     = [3]rl.Color{
		rl.NewColor(220, 80, 80, 255),
		rl.NewColor(80, 220, 80, 255),
		rl.NewColor(80, 80, 220, 255),
	}
)

// World draws the scene graph, the floor and the gizmo in 3D.
type World struct {
	Backend     *Backend
	GridVisible bool
}

// NewWorld returns a world drawing through b. Grid is visible by default.
func NewWorld(b *Backend) *World {
	return &World{Backend: b, GridVisible: true}
}

// SetGridVisible sets whether the floor grid is drawn.
func (w *World) SetGridVisible(visible bool) {
	w.GridVisible = visible
}

// Draw renders every attached node seen from cam. selected is outlined; gz is drawn on top.
func (w *World) Draw(cam *orbit.Camera, scn *scene.Scene, selected *scene.Node, gz *gizmo.Gizmo) {
	rl.BeginMode3D(camera3D(cam))
	rl.DrawPlane(rl.NewVector3(0, -0.001, 0), rl.NewVector2(objects.GridSize, objects.GridSize), groundColor)
	if w.GridVisible {
		drawEditorGrid()
	}
	scn.Traverse(func(n *scene.Node) {
		if !n.IsMesh() {
			return
		}
		mesh, ok := w.Backend.mesh(n.Mesh.Geometry)
		if !ok {
			return
		}
		var mat *scene.Material
		if len(n.Mesh.Materials) > 0 {
			mat = n.Mesh.Materials[0]
		}
		rl.DrawMesh(mesh, w.Backend.drawMaterial(mat), matrix(n.WorldMatrix()))
	})
	if selected != nil {
		b := selected.WorldBounds()
		if !b.IsEmpty() {
			rl.DrawBoundingBox(rl.NewBoundingBox(vec3(b.Min), vec3(b.Max)), selectionColor)
		}
	}
	if gz != nil && gz.Target() != nil {
		rl.DrawRenderBatchActive()
		rl.DisableDepthTest()
		drawGizmo(gz)
		rl.DrawRenderBatchActive()
		rl.EnableDepthTest()
	}
	rl.EndMode3D()
}

func camera3D(c *orbit.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   vec3(c.Eye()),
		Target:     vec3(c.Target),
		Up:         vec3(c.Up),
		Fovy:       c.FovY,
		Projection: rl.CameraPerspective,
	}
}

func vec3(v mgl32.Vec3) rl.Vector3 { return rl.NewVector3(v[0], v[1], v[2]) }

// matrix converts a column-major mgl32 matrix; raylib's M0..M15 follow the same order.
func matrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

func drawGizmo(g *gizmo.Gizmo) {
	center := g.Target().Position
	active := g.Active()
	for a := gizmo.X; a <= gizmo.Z; a++ {
		c := axisColors[a]
		if a == active {
			c = selectionColor
		}
		end := center.Add(a.Dir().Mul(g.Size))
		switch g.Mode {
		case gizmo.Rotate:
			// DrawCircle3D draws in the XY plane; turn it so its normal is the axis.
			switch a {
			case gizmo.X:
				rl.DrawCircle3D(vec3(center), g.Size, rl.NewVector3(0, 1, 0), 90, c)
			case gizmo.Y:
				rl.DrawCircle3D(vec3(center), g.Size, rl.NewVector3(1, 0, 0), 90, c)
			default:
				rl.DrawCircle3D(vec3(center), g.Size, rl.NewVector3(0, 0, 1), 0, c)
			}
		case gizmo.Scale:
			rl.DrawLine3D(vec3(center), vec3(end), c)
			rl.DrawCube(vec3(end), gizmoCubeSize, gizmoCubeSize, gizmoCubeSize, c)
		default:
			rl.DrawLine3D(vec3(center), vec3(end), c)
			rl.DrawCylinderEx(vec3(end), vec3(end.Add(a.Dir().Mul(gizmoCubeSize*2))), gizmoCubeSize, 0, 8, c)
		}
	}
}

// drawEditorGrid draws the floor grid on the XZ plane with major/minor lines and axis lines.
// Reuses start/end vectors to avoid per-frame allocations in the hot loop.
func drawEditorGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)

	var start, end rl.Vector3
	for x := -gridExtent; x <= gridExtent; x += gridMinorStep {
		c := major
		if x%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(x), 0, float32(-gridExtent)
		end.X, end.Y, end.Z = float32(x), 0, float32(gridExtent)
		rl.DrawLine3D(start, end, c)
	}
	for z := -gridExtent; z <= gridExtent; z += gridMinorStep {
		c := major
		if z%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(-gridExtent), 0, float32(z)
		end.X, end.Y, end.Z = float32(gridExtent), 0, float32(z)
		rl.DrawLine3D(start, end, c)
	}

	// Axis lines through origin (X=red, Z=blue)
	axisX := axisColors[0]
	axisX.A = axisLineAlpha
	axisZ := axisColors[2]
	axisZ.A = axisLineAlpha
	start.X, start.Y, start.Z = float32(-gridExtent), 0, 0
	end.X, end.Y, end.Z = float32(gridExtent), 0, 0
	rl.DrawLine3D(start, end, axisX)
	start.X, start.Y, start.Z = 0, 0, float32(-gridExtent)
	end.X, end.Y, end.Z = 0, 0, float32(gridExtent)
	rl.DrawLine3D(start, end, axisZ)
}
