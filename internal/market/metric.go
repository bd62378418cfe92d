package market

import "math"

// Metric is the per-instrument scalar set derived on every build. It is
// ephemeral: recomputed from the instrument each time, never stored.
type Metric struct {
	Cap       float64
	AbsChange float64
	Volume    float64
}

// ChangePercent returns the percent change for the given window, 0 when the
// field is absent. Unknown windows read the 24h field. Total over all inputs.
func ChangePercent(inst Instrument, tf Timeframe) float64 {
	switch tf {
	case TimeframeHour:
		return inst.Change1h
	case TimeframeWeek:
		return inst.Change7d
	case TimeframeMonth:
		return inst.Change30d
	case TimeframeYear:
		return inst.Change365d
	default:
		return inst.Change24h
	}
}

// Extract derives the sizing metrics for one instrument under the selected
// window.
func Extract(inst Instrument, tf Timeframe) Metric {
	return Metric{
		Cap:       inst.MarketCap,
		AbsChange: math.Abs(ChangePercent(inst, tf)),
		Volume:    inst.Volume,
	}
}

// RawSize returns the value the ranked radius chain orders by for the given
// mode. Percent mode has no ranked raw value; it returns the absolute change
// for completeness.
func RawSize(inst Instrument, mode SizeMode, tf Timeframe) float64 {
	switch mode {
	case SizeByVolume:
		return inst.Volume
	case SizeByPercent:
		return math.Abs(ChangePercent(inst, tf))
	default:
		return inst.MarketCap
	}
}
