package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"chart-workspace/internal/gizmo"
	"chart-workspace/internal/overlay"
	"chart-workspace/internal/workspace"
)

// Input polls raylib's mouse and keyboard once per frame and feeds the workspace.
type Input struct {
	svc    *workspace.Service
	last   rl.Vector2
	down   bool
	cursor overlay.Cursor
	vp     rl.Vector2
}

// NewInput binds polling to svc.
func NewInput(svc *workspace.Service) *Input {
	return &Input{svc: svc, cursor: -1}
}

// Poll handles this frame's events. keys is false while the terminal owns the keyboard.
func (in *Input) Poll(keys bool) {
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	if w != in.vp.X || h != in.vp.Y || rl.IsWindowResized() {
		in.vp = rl.NewVector2(w, h)
		in.svc.Resize(viewport())
	}

	ctrl := in.svc.Input()
	cam := in.svc.Camera()
	pos := rl.GetMousePosition()
	if pos != in.last {
		ctrl.PointerMove(pos.X, pos.Y)
		if in.down {
			// Rotate is a no-op while a chart or gizmo drag has the camera disabled.
			cam.Rotate(pos.X-in.last.X, pos.Y-in.last.Y, h)
		}
		in.last = pos
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		in.down = true
		ctrl.PointerDown(pos.X, pos.Y)
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		in.down = false
		ctrl.PointerUp()
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		// raylib reports wheel-up as positive; the controller expects positive to zoom out.
		if !ctrl.Wheel(pos.X, pos.Y, -wheel) {
			cam.Zoom(wheel)
		}
	}

	if keys {
		switch {
		case rl.IsKeyPressed(rl.KeyT):
			in.svc.SetGizmoMode(gizmo.Translate)
		case rl.IsKeyPressed(rl.KeyR):
			in.svc.SetGizmoMode(gizmo.Rotate)
		case rl.IsKeyPressed(rl.KeyS):
			in.svc.SetGizmoMode(gizmo.Scale)
		}
	}

	if c := in.svc.Overlay().Cursor; c != in.cursor {
		in.cursor = c
		setCursor(c)
	}
}

func setCursor(c overlay.Cursor) {
	switch c {
	case overlay.CursorGrab:
		rl.SetMouseCursor(rl.MouseCursorPointingHand)
	case overlay.CursorGrabbing:
		rl.SetMouseCursor(rl.MouseCursorResizeAll)
	default:
		rl.SetMouseCursor(rl.MouseCursorDefault)
	}
}
