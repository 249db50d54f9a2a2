// Package chart synthesizes a candle series, rasterizes it, and tracks the visible window.
package chart

import (
	"math"
	"time"
)

// Candle is one OHLCV bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Up reports whether the candle closed at or above its open.
func (c Candle) Up() bool { return c.Close >= c.Open }

// round rounds half away from negative infinity, matching browser Math.round.
func round(x float64) float64 { return math.Floor(x + 0.5) }

func round2(x float64) float64 { return round(x*100) / 100 }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
