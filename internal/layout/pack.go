package layout

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/bubblesim/internal/bubble"
)

const (
	// MinViewport floors both viewport axes so degenerate geometry never
	// reaches the packing math.
	MinViewport = 200.0

	// Gap is the target clearance between bubble rims, px.
	Gap = 8.0
	// BoundaryMargin insets bubbles from the viewport edge, px.
	BoundaryMargin = 12.0
	// packInset keeps fresh random placements off the very edge, px.
	packInset = 8.0

	// Effective scale per node before area correction: small bubbles start
	// at 0.75, the largest at 1.2.
	effBase = 0.75
	effSpan = 0.45

	minAreaScale = 0.85
	maxAreaScale = 1.35

	minCoverage = 0.62
)

// ClampViewport floors both axes to MinViewport.
func ClampViewport(w, h float64) (float64, float64) {
	return math.Max(w, MinViewport), math.Max(h, MinViewport)
}

// Pack assigns every node a uniform area-coverage scale and, for nodes
// without prior layout state, a random position and velocity inside the
// viewport. Nodes that already carry layout state keep position and velocity
// and only have their scale recomputed, so instruments stay put across
// rebuilds.
//
// Placement consumes rng in descending radius order regardless of input
// order, so two packs over the same batch and seed land identically.
func Pack(nodes []*bubble.Node, w, h float64, rng *rand.Rand) {
	if len(nodes) == 0 {
		return
	}
	w, h = ClampViewport(w, h)

	order := make([]*bubble.Node, len(nodes))
	copy(order, nodes)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Radius > order[j].Radius
	})

	radii := make([]float64, len(order))
	eff := make([]float64, len(order))
	footprint := 0.0
	for i, n := range order {
		radii[i] = n.Radius
		eff[i] = effBase + effSpan*n.SizeFactor
		r := n.Radius * eff[i]
		footprint += math.Pi * r * r
	}

	target := coverage(len(order), stat.Mean(radii, nil)) * w * h
	areaScale := math.Sqrt(target / math.Max(1, footprint))
	if areaScale < minAreaScale {
		areaScale = minAreaScale
	}
	if areaScale > maxAreaScale {
		areaScale = maxAreaScale
	}

	for i, n := range order {
		scale := eff[i] * areaScale
		if st := n.Layout; st != nil {
			st.Scale = scale
			continue
		}
		st := &bubble.LayoutState{Scale: scale}
		inset := n.Radius*scale + packInset
		st.X = inset + rng.Float64()*math.Max(0, w-2*inset)
		st.Y = inset + rng.Float64()*math.Max(0, h-2*inset)
		st.VX = rng.Float64()*10 - 5
		st.VY = rng.Float64()*10 - 5
		st.Seed = rng.Float64() * 1000
		n.Layout = st
	}
}

// coverage picks the viewport area fraction the batch should fill. Larger
// batches get less headroom, and a high average radius (closely sized
// bubbles) pulls coverage down toward minCoverage to avoid a crowded canvas.
func coverage(count int, avgRadius float64) float64 {
	c := 0.82
	switch {
	case count > 80:
		c = 0.75
	case count > 60:
		c = 0.78
	}
	over := clamp01((avgRadius - 0.5*bubble.MaxRadius) / (0.5 * bubble.MaxRadius))
	return c - over*(c-minCoverage)
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
