package bubble

import "github.com/san-kum/bubblesim/internal/market"

// Node is the mutable simulation entity for one instrument. Radius and the
// unit-sphere coordinates are fixed at build time; the 2D layout state is
// attached by the pack layout and mutated by the resolver and the stepper
// until the node set is rebuilt.
type Node struct {
	Instrument market.Instrument

	// Radius in pixels, within [MinRadius*0.65, MaxRadius*anchorScale].
	Radius float64
	// SizeFactor renormalizes Radius into [0,1] for consumers that do not
	// want raw pixels.
	SizeFactor float64

	// Unit-sphere coordinates from the Fibonacci scatter, and Z remapped
	// into the build's depth range.
	X, Y, Z float64
	Depth   float64

	// Layout is nil until the node has been packed. A nil layout means
	// "not yet renderable in 2D": steppers and renderers skip the node.
	Layout *LayoutState
}

// LayoutState is the on-screen state of a packed node.
type LayoutState struct {
	X, Y   float64
	VX, VY float64

	// Scale multiplies Radius on screen. It carries the pack layout's
	// area-coverage correction and is distinct from the radius itself.
	Scale float64

	// Free-running wander phase: Seed is fixed at pack time, T accumulates
	// stepped seconds.
	Seed float64
	T    float64
}

// ScaledRadius is the node's on-screen radius in pixels. Unpacked nodes
// report their raw radius.
func (n *Node) ScaledRadius() float64 {
	if n.Layout == nil {
		return n.Radius
	}
	return n.Radius * n.Layout.Scale
}

// ID is the instrument identity used for layout continuity across rebuilds.
func (n *Node) ID() string {
	return n.Instrument.ID
}
