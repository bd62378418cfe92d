package bubble

import "github.com/san-kum/bubblesim/internal/market"

// New derives one Node per instrument, in input order: radius and size
// factor from the sizing mode, a Fibonacci-sphere position with its mapped
// depth, and any prior 2D layout state carried over by instrument ID. It
// does not assign viewport positions; pack layout owns those.
func New(instruments []market.Instrument, opts Options) []*Node {
	if len(instruments) == 0 {
		return nil
	}
	opts = opts.Normalized()

	prior := make(map[string]*LayoutState, len(opts.Prior))
	for _, p := range opts.Prior {
		if p != nil && p.Layout != nil {
			prior[p.ID()] = p.Layout
		}
	}

	radii := Radii(instruments, opts.Mode, opts.Timeframe)
	depthSpan := opts.Depth.Max - opts.Depth.Min

	nodes := make([]*Node, len(instruments))
	for i, inst := range instruments {
		x, y, z := SpherePoint(i, len(instruments))
		n := &Node{
			Instrument: inst,
			Radius:     radii[i],
			SizeFactor: sizeFactor(radii[i]),
			X:          x,
			Y:          y,
			Z:          z,
			Depth:      opts.Depth.Min + (z+1)/2*depthSpan,
		}
		if st, ok := prior[inst.ID]; ok {
			n.Layout = st
		}
		nodes[i] = n
	}
	return nodes
}
