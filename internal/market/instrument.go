package market

// Instrument is one row of a market listing page. The JSON tags follow the
// CoinGecko /coins/markets payload so exported fixtures can be fed back in
// unchanged. The layout core treats instruments as read-only.
type Instrument struct {
	ID         string  `json:"id"`
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Image      string  `json:"image,omitempty"`
	Price      float64 `json:"current_price"`
	MarketCap  float64 `json:"market_cap"`
	Rank       int     `json:"market_cap_rank"`
	Volume     float64 `json:"total_volume"`
	Change1h   float64 `json:"price_change_percentage_1h_in_currency"`
	Change24h  float64 `json:"price_change_percentage_24h_in_currency"`
	Change7d   float64 `json:"price_change_percentage_7d_in_currency"`
	Change30d  float64 `json:"price_change_percentage_30d_in_currency"`
	Change365d float64 `json:"price_change_percentage_1y_in_currency"`
}

// Timeframe selects which percent-change window drives the percent metric.
type Timeframe string

const (
	TimeframeHour  Timeframe = "1h"
	TimeframeDay   Timeframe = "24h"
	TimeframeWeek  Timeframe = "7d"
	TimeframeMonth Timeframe = "30d"
	TimeframeYear  Timeframe = "365d"
)

// Timeframes lists the supported windows in display order.
var Timeframes = []Timeframe{TimeframeHour, TimeframeDay, TimeframeWeek, TimeframeMonth, TimeframeYear}

// ParseTimeframe maps a window name to a Timeframe. Unknown names fall back
// to the 24h window rather than erroring.
func ParseTimeframe(s string) Timeframe {
	switch Timeframe(s) {
	case TimeframeHour, TimeframeDay, TimeframeWeek, TimeframeMonth, TimeframeYear:
		return Timeframe(s)
	default:
		return TimeframeDay
	}
}

// SizeMode selects which metric drives bubble radius.
type SizeMode string

const (
	SizeByCap     SizeMode = "cap"
	SizeByPercent SizeMode = "percent"
	SizeByVolume  SizeMode = "volume"
)

// SizeModes lists the supported sizing modes in display order.
var SizeModes = []SizeMode{SizeByCap, SizeByPercent, SizeByVolume}

// ParseSizeMode maps a mode name to a SizeMode, defaulting to cap.
func ParseSizeMode(s string) SizeMode {
	switch SizeMode(s) {
	case SizeByCap, SizeByPercent, SizeByVolume:
		return SizeMode(s)
	default:
		return SizeByCap
	}
}
