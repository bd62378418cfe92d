package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var windowed = Instrument{
	ID:         "btc",
	Symbol:     "BTC",
	MarketCap:  1.1e12,
	Volume:     3.2e10,
	Change1h:   0.4,
	Change24h:  -2.1,
	Change7d:   5.6,
	Change30d:  -11.3,
	Change365d: 88.9,
}

func TestChangePercent(t *testing.T) {
	tests := []struct {
		tf   Timeframe
		want float64
	}{
		{TimeframeHour, 0.4},
		{TimeframeDay, -2.1},
		{TimeframeWeek, 5.6},
		{TimeframeMonth, -11.3},
		{TimeframeYear, 88.9},
		{Timeframe("3m"), -2.1}, // unknown window reads 24h
	}
	for _, tt := range tests {
		t.Run(string(tt.tf), func(t *testing.T) {
			assert.Equal(t, tt.want, ChangePercent(windowed, tt.tf))
		})
	}
}

func TestChangePercentZeroValue(t *testing.T) {
	var inst Instrument
	for _, tf := range Timeframes {
		assert.Zero(t, ChangePercent(inst, tf))
	}
}

func TestExtract(t *testing.T) {
	m := Extract(windowed, TimeframeDay)
	assert.Equal(t, 1.1e12, m.Cap)
	assert.Equal(t, 3.2e10, m.Volume)
	assert.Equal(t, 2.1, m.AbsChange, "losses size by magnitude")
}

func TestRawSize(t *testing.T) {
	tests := []struct {
		mode SizeMode
		want float64
	}{
		{SizeByCap, 1.1e12},
		{SizeByVolume, 3.2e10},
		{SizeByPercent, 2.1},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.want, RawSize(windowed, tt.mode, TimeframeDay))
		})
	}
}
