package chart

import (
	"math/rand"
	"time"
)

// Random-walk parameters.
const (
	DefaultStep      = time.Minute
	DefaultRetention = 360
	driftRange       = 1.8
	wickRange        = 0.9
	volumeMin        = 10000
	volumeRange      = 50000
)

// Engine produces candles from an injected random source and clock.
type Engine struct {
	rnd *rand.Rand
	now func() time.Time

	// Step is the spacing between candles.
	Step time.Duration
	// Retention caps the series length after AppendNext.
	Retention int
	// StartPrice seeds AppendNext on an empty series.
	StartPrice float64
}

// NewEngine returns an engine with the default step and retention. A nil clock means time.Now.
func NewEngine(rnd *rand.Rand, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rnd: rnd, now: now, Step: DefaultStep, Retention: DefaultRetention, StartPrice: 100}
}

// Generate returns n candles ending at the current time, the first opening at startPrice.
func (e *Engine) Generate(n int, startPrice float64) []Candle {
	if n <= 0 {
		return nil
	}
	t := e.now().Add(-time.Duration(n) * e.Step)
	out := make([]Candle, 0, n)
	price := startPrice
	for i := 0; i < n; i++ {
		c := e.next(price, t)
		out = append(out, c)
		price = c.Close
		t = t.Add(e.Step)
	}
	return out
}

// AppendNext adds one candle chained off the last close and evicts from the front past Retention.
func (e *Engine) AppendNext(series []Candle) []Candle {
	if len(series) == 0 {
		return e.Generate(1, e.StartPrice)
	}
	last := series[len(series)-1]
	series = append(series, e.next(last.Close, last.Time.Add(e.Step)))
	if e.Retention > 0 && len(series) > e.Retention {
		series = series[len(series)-e.Retention:]
	}
	return series
}

func (e *Engine) next(open float64, t time.Time) Candle {
	closePrice := open + (e.rnd.Float64()-0.5)*driftRange
	high := max(open, closePrice) + e.rnd.Float64()*wickRange
	low := min(open, closePrice) - e.rnd.Float64()*wickRange
	vol := int64(volumeMin + e.rnd.Float64()*volumeRange)
	return Candle{
		Time:   t,
		Open:   round2(open),
		High:   round2(high),
		Low:    round2(low),
		Close:  round2(closePrice),
		Volume: vol,
	}
}
