package chart

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatSeries(n int) []Candle {
	t0 := time.Unix(0, 0)
	out := make([]Candle, n)
	for i := range out {
		p := 100 + float64(i)
		out[i] = Candle{Time: t0.Add(time.Duration(i) * time.Minute), Open: p, High: p + 2, Low: p - 1, Close: p + 1, Volume: 1000}
	}
	return out
}

func TestDrawReportsScaleAndTicks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, DefaultWidth, DefaultHeight))
	r := NewRenderer()
	series := flatSeries(50)

	f := r.Draw(img, series, 10, 20)
	assert.Equal(t, 10, f.Start)
	assert.Equal(t, 20, f.Count)
	assert.Equal(t, Scale{Min: 109, Max: 131}, f.Scale)
	// 5% of 22 pads both ends.
	assert.Equal(t, [5]string{"132.10", "126.05", "120.00", "113.95", "107.90"}, f.Ticks)
	assert.InDelta(t, 120, f.Scale.Price(0.5), 1e-9)
}

func TestDrawClampsWindow(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 320, 200))
	r := NewRenderer()
	series := flatSeries(30)

	f := r.Draw(img, series, 25, 20)
	assert.Equal(t, 10, f.Start)
	assert.Equal(t, 20, f.Count)

	f = r.Draw(img, series, 0, 500)
	assert.Equal(t, 0, f.Start)
	assert.Equal(t, 30, f.Count)
}

func TestDrawPaintsBackgroundAndCandles(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, DefaultWidth, DefaultHeight))
	r := NewRenderer()
	series := flatSeries(2)
	f := r.Draw(img, series, 0, 2)
	require.Equal(t, 2, f.Count)

	assert.Equal(t, Background, img.RGBAAt(5, 5))
	// The second candle sits on the right edge of the plot; its body covers mid-body height.
	x := DefaultWidth - marginRight
	y := 360
	found := false
	for dy := -200; dy <= 200 && !found; dy++ {
		found = img.RGBAAt(x-1, y+dy) == UpColor
	}
	assert.True(t, found, "up candle body drawn")
}

func TestDrawIsRepeatable(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 400, 200))
	b := image.NewRGBA(image.Rect(0, 0, 400, 200))
	r := NewRenderer()
	series := flatSeries(40)
	r.Draw(a, series, 0, 40)
	r.Draw(a, series, 0, 40)
	r.Draw(b, series, 0, 40)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestDrawEmptySeries(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	f := NewRenderer().Draw(img, nil, 0, 0)
	assert.Equal(t, Frame{}, f)
	assert.Equal(t, Background, img.RGBAAt(9, 9))
}
