package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"chart-workspace/internal/chart"
	"chart-workspace/internal/overlay"
)

const (
	hudFontSize  = 16
	hudSmallFont = 14
	hudPadding   = 10
	hudGap       = 14
	hudMargin    = 12
	dashLen      = 8
)

var (
	hudPanel     = rl.NewColor(17, 24, 39, 153)
	hudText      = rl.NewColor(229, 231, 235, 255)
	hudSymbol    = rl.NewColor(209, 213, 219, 255)
	hudUp        = rl.NewColor(52, 211, 153, 255)
	hudDown      = rl.NewColor(248, 113, 113, 255)
	hudVolume    = rl.NewColor(96, 165, 250, 255)
	hudLive      = rl.NewColor(16, 185, 129, 255)
	hudPill      = rl.NewColor(107, 114, 128, 255)
	hudGuideline = rl.NewColor(229, 231, 235, 153)
)

// HUD draws the 2D overlay: stats header, price ticks and the hover guideline.
type HUD struct {
	// Subtitle follows the symbol in the header, e.g. "· 1 · NSE".
	Subtitle string
	font     rl.Font
}

// SetFont sets the HUD font. Zero texture ID = use raylib default.
func (h *HUD) SetFont(f rl.Font) { h.font = f }

// Draw renders st over a screen of width screenW.
func (h *HUD) Draw(st *overlay.State, screenW float32) {
	h.header(st, screenW)
	if st.Marker.Visible && st.HasBounds {
		h.marker(st, screenW)
	}
	if st.Hovering {
		h.ticks(st, screenW)
	}
}

func (h *HUD) header(st *overlay.State, screenW float32) {
	y := float32(8)
	rl.DrawRectangleRounded(rl.NewRectangle(hudMargin, y, screenW-2*hudMargin, hudFontSize+2*6), 0.3, 6, hudPanel)
	x := float32(hudMargin + hudPadding)
	ty := y + 6
	x = h.run(st.Symbol, x, ty, hudSymbol)
	if h.Subtitle != "" {
		x = h.run(h.Subtitle, x, ty, hudText)
	}
	rl.DrawCircleV(rl.NewVector2(x+4, ty+hudFontSize/2), 4, hudLive)
	x += 8 + hudGap
	if !st.HasStats {
		return
	}
	s := st.Stats
	dir := hudDown
	if s.Up {
		dir = hudUp
	}
	x = h.run("O "+chart.FormatNumber(s.Open), x, ty, hudUp)
	x = h.run("H "+chart.FormatNumber(s.High), x, ty, hudUp)
	x = h.run("L "+chart.FormatNumber(s.Low), x, ty, hudUp)
	x = h.run("C "+chart.FormatNumber(s.Close), x, ty, dir)
	x = h.run(chart.FormatSigned(chart.FormatNumber(s.Change), s.Up), x, ty, dir)
	x = h.run("("+chart.FormatSigned(chart.FormatPct(s.ChangePct), s.Up)+")", x, ty, dir)
	h.run("Volume "+chart.FormatVolume(s.Volume), x, ty, hudVolume)
}

func (h *HUD) marker(st *overlay.State, screenW float32) {
	b := st.Bounds
	y := st.MarkerY()
	for x := b.Left; x < b.Right; x += 2 * dashLen {
		rl.DrawLineEx(rl.NewVector2(x, y), rl.NewVector2(min(x+dashLen, b.Right), y), 2, hudGuideline)
	}
	label := chart.FormatNumber(st.Marker.Price)
	w := h.measure(label, hudSmallFont) + 16 + 6 + 16
	px := screenW - hudMargin - w
	rl.DrawRectangleRounded(rl.NewRectangle(px, y-12, w, 24), 0.3, 6, hudPill)
	rl.DrawCircleLinesV(rl.NewVector2(px+8+8, y), 7, hudText)
	h.text(label, px+8+16+6, y-hudSmallFont/2, hudSmallFont, rl.White)
}

func (h *HUD) ticks(st *overlay.State, screenW float32) {
	top, height := float32(rl.GetScreenHeight())/2-120, float32(240)
	if st.HasBounds {
		top, height = st.Bounds.Top, st.Bounds.Height
	}
	var w float32
	for _, t := range st.Ticks {
		w = max(w, h.measure(t, hudSmallFont))
	}
	w += 2 * hudPadding
	x := screenW - hudMargin - w
	rl.DrawRectangleRounded(rl.NewRectangle(x, top, w, height), 0.1, 6, hudPanel)
	n := len(st.Ticks)
	inner := height - 2*8 - hudSmallFont
	for i, t := range st.Ticks {
		ty := top + 8 + inner*float32(i)/float32(n-1)
		h.text(t, x+hudPadding, ty, hudSmallFont, hudText)
	}
}

// run draws s at (x, y) and returns the x where the next item starts.
func (h *HUD) run(s string, x, y float32, c rl.Color) float32 {
	h.text(s, x, y, hudFontSize, c)
	return x + h.measure(s, hudFontSize) + hudGap
}

func (h *HUD) text(s string, x, y float32, size int32, c rl.Color) {
	if h.font.Texture.ID != 0 {
		rl.DrawTextEx(h.font, s, rl.NewVector2(x, y), float32(size), 1, c)
		return
	}
	rl.DrawText(s, int32(x), int32(y), size, c)
}

func (h *HUD) measure(s string, size int32) float32 {
	if h.font.Texture.ID != 0 {
		return rl.MeasureTextEx(h.font, s, float32(size), 1).X
	}
	return float32(rl.MeasureText(s, size))
}
