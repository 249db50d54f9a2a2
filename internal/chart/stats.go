package chart

import "strconv"

// Stats summarizes one candle against the previous close.
type Stats struct {
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Change    float64 `json:"chg"`
	ChangePct float64 `json:"chgPct"`
	Volume    int64   `json:"vol"`
	Up        bool    `json:"up"`
}

// StatsAt returns the stats for series[idx], clamping idx. ok is false for an empty series.
func StatsAt(series []Candle, idx int) (s Stats, ok bool) {
	if len(series) == 0 {
		return Stats{}, false
	}
	idx = clampInt(idx, 0, len(series)-1)
	d := series[idx]
	ref := series[max(0, idx-1)]
	chg := d.Close - ref.Close
	base := ref.Close
	if base == 0 {
		base = 1
	}
	return Stats{
		Open:      d.Open,
		High:      d.High,
		Low:       d.Low,
		Close:     d.Close,
		Change:    chg,
		ChangePct: chg / base * 100,
		Volume:    d.Volume,
		Up:        chg >= 0,
	}, true
}

// Latest returns the stats for the newest candle.
func Latest(series []Candle) (Stats, bool) {
	return StatsAt(series, len(series)-1)
}

// FormatNumber renders a price with two decimals.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(round2(n), 'f', 2, 64)
}

// FormatPct renders a percentage with two decimals and a trailing %.
func FormatPct(n float64) string {
	return FormatNumber(n) + "%"
}

// FormatSigned prefixes s with + when up is true.
func FormatSigned(s string, up bool) string {
	if up {
		return "+" + s
	}
	return s
}

// FormatVolume abbreviates with K, M or B.
func FormatVolume(v int64) string {
	f := float64(v)
	switch {
	case f >= 1e9:
		return strconv.FormatFloat(f/1e9, 'f', 1, 64) + "B"
	case f >= 1e6:
		return strconv.FormatFloat(f/1e6, 'f', 1, 64) + "M"
	case f >= 1e3:
		return strconv.FormatFloat(f/1e3, 'f', 1, 64) + "K"
	default:
		return strconv.FormatInt(v, 10)
	}
}
