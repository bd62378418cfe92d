package bubble

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/bubblesim/internal/market"
)

// Radius bounds in pixels. The ranked chain may exceed MaxRadius by at most
// the anchor multiplier and undershoot MinRadius by at most the chain floor.
const (
	MinRadius = 10.0
	MaxRadius = 60.0

	// anchorScale sizes the top-ranked instrument past MaxRadius so page
	// leaders stay visually dominant.
	anchorScale = 1.55
	// chainFloor bounds each link of the ranked chain; globalFloor bounds
	// the batch after the spread correction.
	chainFloor  = MinRadius * 0.65
	globalFloor = MinRadius * 0.7

	// Each rank keeps at least half of its predecessor's radius; the easing
	// exponent flattens the drop-off between neighbors.
	ratioBlendFloor = 0.5
	ratioEaseExp    = 0.5

	// Batches whose max/min raw spread is at or below spreadSmall shrink to
	// shrinkScale; spreads at or above spreadLarge keep full size.
	spreadSmall = 2.0
	spreadLarge = 12.0
	shrinkScale = 0.72
)

// Radii derives one display radius per instrument for the given sizing mode.
// Order matches the input. Empty input yields an empty slice.
func Radii(instruments []market.Instrument, mode market.SizeMode, tf market.Timeframe) []float64 {
	if len(instruments) == 0 {
		return nil
	}
	if mode == market.SizeByPercent {
		return percentRadii(instruments, tf)
	}
	return rankedRadii(instruments, mode, tf)
}

// percentRadii min-max normalizes the absolute percent change across the
// batch into [MinRadius, MaxRadius]. A zero range (all values equal) is
// treated as a range of 1, so uniform batches land exactly on MinRadius.
func percentRadii(instruments []market.Instrument, tf market.Timeframe) []float64 {
	vals := make([]float64, len(instruments))
	for i, inst := range instruments {
		vals[i] = math.Abs(market.ChangePercent(inst, tf))
	}

	lo, hi := floats.Min(vals), floats.Max(vals)
	span := hi - lo
	if span == 0 {
		span = 1
	}

	radii := make([]float64, len(vals))
	for i, v := range vals {
		radii[i] = MinRadius + (v-lo)/span*(MaxRadius-MinRadius)
	}
	return radii
}

// rankedRadii sizes bubbles by descending raw value (capitalization or
// volume). Instead of normalizing against the batch extremes, each rank's
// radius is derived from its predecessor's: the raw ratio between neighbors
// is eased and blended with a 50% floor, which compresses the dynamic range
// enough that page 5 of a listing doesn't render as one giant bubble among
// dust. Strict ordering is preserved: a larger raw value never yields a
// smaller radius.
func rankedRadii(instruments []market.Instrument, mode market.SizeMode, tf market.Timeframe) []float64 {
	n := len(instruments)
	raws := make([]float64, n)
	for i, inst := range instruments {
		raws[i] = math.Max(1, market.RawSize(inst, mode, tf))
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return raws[order[a]] > raws[order[b]]
	})

	radii := make([]float64, n)
	prevRadius := MaxRadius * anchorScale
	prevRaw := raws[order[0]]
	for k, idx := range order {
		if k == 0 {
			radii[idx] = prevRadius
			continue
		}
		ratio := clamp01(raws[idx] / prevRaw)
		eased := math.Pow(ratio, ratioEaseExp)
		weighted := ratioBlendFloor + (1-ratioBlendFloor)*eased
		r := math.Max(prevRadius*weighted, chainFloor)
		radii[idx] = r
		prevRadius, prevRaw = r, raws[idx]
	}

	// Re-derived per batch on purpose: the same instrument may render at a
	// different radius after a page switch because its siblings changed.
	scale := globalScale(floats.Max(raws) / floats.Min(raws))
	for i := range radii {
		radii[i] = math.Max(radii[i]*scale, globalFloor)
	}
	return radii
}

// globalScale maps the batch's raw max/min spread to a uniform shrink. Tight
// spreads (a page of near-equal caps) shrink toward shrinkScale to keep the
// canvas from crowding; wide spreads keep full size.
func globalScale(spread float64) float64 {
	if spread <= spreadSmall {
		return shrinkScale
	}
	if spread >= spreadLarge {
		return 1.0
	}
	t := (spread - spreadSmall) / (spreadLarge - spreadSmall)
	return shrinkScale + t*(1-shrinkScale)
}

// sizeFactor renormalizes a radius into [0,1] over the nominal bounds.
func sizeFactor(radius float64) float64 {
	return clamp01((radius - MinRadius) / (MaxRadius - MinRadius))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
