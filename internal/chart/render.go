package chart

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/floats"
)

// Raster defaults.
const (
	DefaultWidth  = 1600
	DefaultHeight = 720

	marginLeft   = 60
	marginRight  = 20
	marginTop    = 20
	marginBottom = 28
	volumeFrac   = 0.22
	volumeGap    = 8
	pricePad     = 0.05
	gridLevels   = 5
	minBarBudget = 30
	bodyFrac     = 0.8
	volBarFrac   = 0.9
)

// Palette.
var (
	Background = color.RGBA{0x0b, 0x0f, 0x14, 0xff}
	GridColor  = color.RGBA{0x1f, 0x29, 0x37, 0xff}
	UpColor    = color.RGBA{0x10, 0xb9, 0x81, 0xff}
	DownColor  = color.RGBA{0xef, 0x44, 0x44, 0xff}
	upVolume   = color.NRGBA{0x10, 0xb9, 0x81, 0x80}
	downVolume = color.NRGBA{0xef, 0x44, 0x44, 0x80}
)

// Scale is the unpadded price range of the last drawn window.
type Scale struct {
	Min, Max float64
}

// Price interpolates a price at fraction v of the range, 0 being Min.
func (s Scale) Price(v float64) float64 {
	return s.Min + v*(s.Max-s.Min)
}

// Frame describes what Draw rendered.
type Frame struct {
	Start, Count int
	Scale        Scale
	// Ticks holds the price labels from the top of the padded range to the bottom.
	Ticks [gridLevels]string
}

// Renderer rasterizes candle windows into an RGBA image. Each Draw call repaints the whole image.
type Renderer struct {
	rz *vector.Rasterizer
}

// NewRenderer returns a renderer. Its rasterizer is resized to each target image.
func NewRenderer() *Renderer {
	return &Renderer{rz: vector.NewRasterizer(DefaultWidth, DefaultHeight)}
}

// Draw paints series[start:start+count], clamped, into dst.
func (r *Renderer) Draw(dst *image.RGBA, series []Candle, start, count int) Frame {
	b := dst.Bounds()
	draw.Draw(dst, b, image.NewUniform(Background), image.Point{}, draw.Src)
	if len(series) == 0 {
		return Frame{}
	}

	w, h := float32(b.Dx()), float32(b.Dy())
	volPaneH := float32(int(h * volumeFrac))
	priceTop := float32(marginTop)
	priceBottom := h - volPaneH - marginBottom
	volTop := priceBottom + volumeGap
	volBottom := h - marginBottom
	plotW := w - marginLeft - marginRight

	n := max(1, min(count, len(series)))
	start = clampInt(start, 0, max(0, len(series)-n))
	view := series[start:min(len(series), start+n)]
	n = len(view)

	lows := make([]float64, n)
	highs := make([]float64, n)
	vols := make([]float64, n)
	for i, c := range view {
		lows[i], highs[i], vols[i] = c.Low, c.High, float64(c.Volume)
	}
	scale := Scale{Min: floats.Min(lows), Max: floats.Max(highs)}
	vMax := floats.Max(vols)
	if vMax <= 0 {
		vMax = 1
	}
	pad := (scale.Max - scale.Min) * pricePad
	if pad == 0 {
		pad = 1
	}
	pMin, pMax := scale.Min-pad, scale.Max+pad

	yPrice := func(p float64) float32 {
		return priceBottom - float32((p-pMin)/(pMax-pMin))*(priceBottom-priceTop)
	}
	yVol := func(v float64) float32 {
		return volBottom - float32(v/vMax)*(volBottom-volTop)
	}
	xs := func(i int) float32 {
		return marginLeft + float32(i)*plotW/float32(max(1, n-1))
	}

	r.begin(b)
	for g := 0; g < gridLevels; g++ {
		y := priceTop + float32(g)*(priceBottom-priceTop)/(gridLevels-1)
		rect(r.rz, marginLeft, y-0.5, w-marginRight, y+0.5)
	}
	r.fill(dst, GridColor)

	bodyW := max(2, plotW/float32(max(minBarBudget, n))*bodyFrac)
	volW := max(1, bodyW*volBarFrac)
	for _, up := range []bool{true, false} {
		r.begin(b)
		for i, c := range view {
			if c.Up() != up {
				continue
			}
			x := xs(i)
			rect(r.rz, x-0.5, yPrice(c.High), x+0.5, yPrice(c.Low))
			yo, yc := yPrice(c.Open), yPrice(c.Close)
			top := min(yo, yc)
			rect(r.rz, x-bodyW/2, top, x+bodyW/2, top+max(1, abs32(yo-yc)))
		}
		r.fill(dst, pick(up, UpColor, DownColor))

		r.begin(b)
		for i, c := range view {
			if c.Up() != up {
				continue
			}
			x := xs(i)
			rect(r.rz, x-volW/2, yVol(float64(c.Volume)), x+volW/2, volBottom)
		}
		r.fill(dst, pick[color.Color](up, upVolume, downVolume))
	}

	f := Frame{Start: start, Count: n, Scale: scale}
	for g := 0; g < gridLevels; g++ {
		p := pMax - float64(g)*(pMax-pMin)/(gridLevels-1)
		f.Ticks[g] = strconv.FormatFloat(p, 'f', 2, 64)
	}
	return f
}

func (r *Renderer) begin(b image.Rectangle) {
	r.rz.Reset(b.Dx(), b.Dy())
}

func (r *Renderer) fill(dst *image.RGBA, c color.Color) {
	r.rz.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// rect adds a clockwise rectangle path.
func rect(z *vector.Rasterizer, x0, y0, x1, y1 float32) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	z.MoveTo(x0, y0)
	z.LineTo(x1, y0)
	z.LineTo(x1, y1)
	z.LineTo(x0, y1)
	z.ClosePath()
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func pick[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
