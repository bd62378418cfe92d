package sim

import (
	"math"

	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/layout"
)

// Metric accumulates one scalar over a sequence of observed frames.
type Metric interface {
	Name() string
	Observe(nodes []*bubble.Node, w, h, t float64)
	Value() float64
	Reset()
}

// Observer receives every frame the host emits, with the simulated time the
// frame represents. Runners in this repo emit each frame before stepping it,
// so the initial packing is observable.
type Observer interface {
	OnStep(nodes []*bubble.Node, t float64)
}

var (
	_ Metric = (*AvgSpeed)(nil)
	_ Metric = (*MaxSpeed)(nil)
	_ Metric = (*OverlapPairs)(nil)
	_ Metric = (*Coverage)(nil)
	_ Metric = (*WallContacts)(nil)
)

// DefaultMetrics returns the standard instrumentation set for headless runs.
func DefaultMetrics() []Metric {
	return []Metric{
		NewAvgSpeed(),
		NewMaxSpeed(),
		NewOverlapPairs(),
		NewCoverage(),
		NewWallContacts(),
	}
}

// AvgSpeed reports the mean node speed across all observed frames, px/s.
type AvgSpeed struct {
	sum     float64
	samples int
}

func NewAvgSpeed() *AvgSpeed { return &AvgSpeed{} }

func (m *AvgSpeed) Name() string { return "avg_speed" }

func (m *AvgSpeed) Observe(nodes []*bubble.Node, w, h, t float64) {
	for _, n := range nodes {
		if n.Layout == nil {
			continue
		}
		m.sum += math.Hypot(n.Layout.VX, n.Layout.VY)
		m.samples++
	}
}

func (m *AvgSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *AvgSpeed) Reset() { m.sum, m.samples = 0, 0 }

// MaxSpeed reports the fastest node speed seen over the run, px/s.
type MaxSpeed struct {
	max float64
}

func NewMaxSpeed() *MaxSpeed { return &MaxSpeed{} }

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(nodes []*bubble.Node, w, h, t float64) {
	for _, n := range nodes {
		if n.Layout == nil {
			continue
		}
		if v := math.Hypot(n.Layout.VX, n.Layout.VY); v > m.max {
			m.max = v
		}
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max = 0 }

// OverlapPairs reports the mean number of interpenetrating pairs per frame.
// A pair counts when the rims themselves cross, ignoring the layout gap, so
// a settled scene reads zero.
type OverlapPairs struct {
	total  int
	frames int
}

func NewOverlapPairs() *OverlapPairs { return &OverlapPairs{} }

func (m *OverlapPairs) Name() string { return "overlap_pairs" }

func (m *OverlapPairs) Observe(nodes []*bubble.Node, w, h, t float64) {
	m.frames++
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			if a.Layout == nil || b.Layout == nil {
				continue
			}
			dist := math.Hypot(b.Layout.X-a.Layout.X, b.Layout.Y-a.Layout.Y)
			if dist < a.ScaledRadius()+b.ScaledRadius() {
				m.total++
			}
		}
	}
}

func (m *OverlapPairs) Value() float64 {
	if m.frames == 0 {
		return 0
	}
	return float64(m.total) / float64(m.frames)
}

func (m *OverlapPairs) Reset() { m.total, m.frames = 0, 0 }

// Coverage reports the mean fraction of viewport area covered by scaled
// bubble area. Overlapping area counts twice; it is a crowding signal, not
// exact geometry.
type Coverage struct {
	sum    float64
	frames int
}

func NewCoverage() *Coverage { return &Coverage{} }

func (m *Coverage) Name() string { return "coverage" }

func (m *Coverage) Observe(nodes []*bubble.Node, w, h, t float64) {
	w, h = layout.ClampViewport(w, h)
	area := 0.0
	for _, n := range nodes {
		if n.Layout == nil {
			continue
		}
		r := n.ScaledRadius()
		area += math.Pi * r * r
	}
	m.sum += area / (w * h)
	m.frames++
}

func (m *Coverage) Value() float64 {
	if m.frames == 0 {
		return 0
	}
	return m.sum / float64(m.frames)
}

func (m *Coverage) Reset() { m.sum, m.frames = 0, 0 }

// WallContacts reports the mean number of nodes per frame resting against
// the inset viewport boundary.
type WallContacts struct {
	total  int
	frames int
}

func NewWallContacts() *WallContacts { return &WallContacts{} }

func (m *WallContacts) Name() string { return "wall_contacts" }

func (m *WallContacts) Observe(nodes []*bubble.Node, w, h, t float64) {
	const eps = 0.5
	w, h = layout.ClampViewport(w, h)
	m.frames++
	for _, n := range nodes {
		st := n.Layout
		if st == nil {
			continue
		}
		r := n.ScaledRadius() + layout.BoundaryMargin
		if st.X <= r+eps || st.X >= w-r-eps || st.Y <= r+eps || st.Y >= h-r-eps {
			m.total++
		}
	}
}

func (m *WallContacts) Value() float64 {
	if m.frames == 0 {
		return 0
	}
	return float64(m.total) / float64(m.frames)
}

func (m *WallContacts) Reset() { m.total, m.frames = 0, 0 }
