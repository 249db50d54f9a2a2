package chart

// MinBars is the narrowest visible window.
const MinBars = 20

// zoomStep scales the window per wheel notch.
const zoomStep = 0.1

// Viewport is the visible window over a series. AutoFollow keeps the window pinned to the newest
// candle as data arrives.
type Viewport struct {
	Start      int
	Count      int
	AutoFollow bool
}

// NewViewport shows the last initial candles of a series of the given length.
func NewViewport(initial, length int) Viewport {
	count := min(initial, length)
	return Viewport{Start: max(0, length-count), Count: count, AutoFollow: true}
}

func maxCount(length int) int { return max(MinBars, length) }

func maxStart(count, length int) int { return max(0, length-count) }

// atRightEdge is the auto-follow test. A window ending one candle short of the newest still counts.
func atRightEdge(start, count, length int) bool { return start+count >= length-1 }

// Tick re-clamps the window after the series changed length.
func (v *Viewport) Tick(length int) {
	v.Count = clampInt(v.Count, MinBars, maxCount(length))
	if v.AutoFollow {
		v.Start = maxStart(v.Count, length)
		return
	}
	v.Start = clampInt(v.Start, 0, maxStart(v.Count, length))
}

// Pan shifts the window by a horizontal UV delta; a negative du moves towards newer candles. It
// reports whether the window moved. Sub-candle deltas are ignored so callers can keep accumulating
// from their last applied sample.
func (v *Viewport) Pan(du float64, length int) bool {
	shift := int(round(-du * float64(v.Count)))
	if shift == 0 {
		return false
	}
	v.Start = clampInt(v.Start+shift, 0, maxStart(v.Count, length))
	v.AutoFollow = atRightEdge(v.Start, v.Count, length)
	return true
}

// Zoom rescales the window by one notch around anchorU. A positive deltaSign zooms out. The series
// index under the anchor stays under it.
func (v *Viewport) Zoom(deltaSign int, anchorU float64, length int) {
	switch {
	case deltaSign > 0:
		deltaSign = 1
	case deltaSign < 0:
		deltaSign = -1
	}
	old := v.Count
	count := clampInt(int(round(float64(old)*(1+float64(deltaSign)*zoomStep))), MinBars, maxCount(length))
	anchor := float64(v.Start) + anchorU*float64(old)
	start := int(round(anchor - anchorU*float64(count)))
	v.Start = clampInt(start, 0, maxStart(count, length))
	v.Count = count
	v.AutoFollow = atRightEdge(v.Start, v.Count, length)
}

// HoverIndex maps a horizontal UV to the nearest candle index, clamped to the series.
func (v Viewport) HoverIndex(u float64, length int) int {
	return clampInt(int(round(float64(v.Start)+u*float64(v.Count-1))), 0, max(0, length-1))
}
