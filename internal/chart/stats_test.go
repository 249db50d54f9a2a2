package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsAt(t *testing.T) {
	series := []Candle{
		{Open: 100, High: 102, Low: 99, Close: 101, Volume: 1200},
		{Open: 101, High: 101.5, Low: 98, Close: 99, Volume: 4500000},
	}
	s, ok := StatsAt(series, 1)
	require.True(t, ok)
	assert.InDelta(t, -2, s.Change, 1e-9)
	assert.InDelta(t, -2.0/101*100, s.ChangePct, 1e-9)
	assert.False(t, s.Up)

	first, ok := StatsAt(series, -5)
	require.True(t, ok)
	assert.Equal(t, 0.0, first.Change)
	assert.True(t, first.Up)

	last, _ := Latest(series)
	assert.Equal(t, s, last)

	_, ok = StatsAt(nil, 0)
	assert.False(t, ok)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "856.37", FormatNumber(856.3749))
	assert.Equal(t, "-1.98%", FormatPct(-1.980198))
	assert.Equal(t, "+0.50", FormatSigned(FormatNumber(0.5), true))
	assert.Equal(t, "999", FormatVolume(999))
	assert.Equal(t, "12.3K", FormatVolume(12345))
	assert.Equal(t, "4.5M", FormatVolume(4500000))
	assert.Equal(t, "2.0B", FormatVolume(2e9))
}
