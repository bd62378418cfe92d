package bubble

import "github.com/san-kum/bubblesim/internal/market"

// DepthRange is the interval unit-sphere z is mapped into when deriving a
// node's depth scalar.
type DepthRange struct {
	Min float64
	Max float64
}

// Options control a single build pass.
//
// Width and Height describe the viewport the host will render into. When
// both are positive the scene runs pack layout and overlap resolution so
// every node comes back with 2D layout state; otherwise nodes carry only
// their sphere coordinates. Seed feeds the layout's random source; zero
// means "seed from entropy".
type Options struct {
	Timeframe market.Timeframe
	Mode      market.SizeMode
	Width     float64
	Height    float64
	Depth     DepthRange
	Seed      int64

	// Prior is the node set from the previous build, if any. Layout state
	// is carried over by instrument ID so a rebuild does not re-randomize
	// positions of instruments that stayed on screen.
	Prior []*Node
}

// DefaultOptions returns the canonical build options: 24h timeframe,
// capitalization sizing, depth in [-1,1], no viewport.
func DefaultOptions() Options {
	return Options{
		Timeframe: market.TimeframeDay,
		Mode:      market.SizeByCap,
		Depth:     DepthRange{Min: -1, Max: 1},
	}
}

// Normalized fills zero-valued fields with their defaults.
func (o Options) Normalized() Options {
	if o.Timeframe == "" {
		o.Timeframe = market.TimeframeDay
	}
	if o.Mode == "" {
		o.Mode = market.SizeByCap
	}
	if o.Depth == (DepthRange{}) {
		o.Depth = DepthRange{Min: -1, Max: 1}
	}
	return o
}
