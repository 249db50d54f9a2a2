package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"chart-workspace/internal/screen"
)

const fontAtlasSize = 32

// Window is the startup window configuration.
type Window struct {
	Width, Height int
	Title         string
	Fullscreen    bool
	TargetFPS     int
}

// Loop is the per-frame work. Init runs once after the GL context exists; Close runs before the
// window is destroyed. Any field may be nil.
type Loop struct {
	Init   func()
	Update func()
	Draw   func()
	Close  func()
}

// Run opens the window and drives loop until the window is closed. Each frame it calls Update
// (input, timers), then clears the screen and calls Draw.
// ESC toggles the terminal, so the window closes only via its close button.
func Run(win Window, loop Loop) {
	w, h := int32(win.Width), int32(win.Height)
	flags := uint32(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	if win.Fullscreen {
		flags |= rl.FlagFullscreenMode
	}
	rl.SetConfigFlags(flags)
	if win.Fullscreen {
		w, h = int32(rl.GetMonitorWidth(0)), int32(rl.GetMonitorHeight(0))
	}
	rl.InitWindow(w, h, win.Title)
	defer rl.CloseWindow()

	rl.SetExitKey(rl.KeyNull)
	fps := int32(win.TargetFPS)
	if fps <= 0 {
		fps = 60
	}
	rl.SetTargetFPS(fps)

	if loop.Init != nil {
		loop.Init()
	}
	for !rl.WindowShouldClose() {
		if loop.Update != nil {
			loop.Update()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(11, 15, 20, 255))
		if loop.Draw != nil {
			loop.Draw()
		}
		rl.EndDrawing()
	}
	if loop.Close != nil {
		loop.Close()
	}
}

// LoadFont loads a TTF/OTF file for HUD text. It reports false when raylib could not load it.
func LoadFont(path string) (rl.Font, bool) {
	f := rl.LoadFontEx(path, fontAtlasSize, nil)
	if !rl.IsFontValid(f) {
		return rl.Font{}, false
	}
	rl.SetTextureFilter(f.Texture, rl.FilterBilinear)
	return f, true
}

// viewport returns the current render area in pixels.
func viewport() screen.Viewport {
	return screen.Viewport{Width: float32(rl.GetScreenWidth()), Height: float32(rl.GetScreenHeight())}
}
