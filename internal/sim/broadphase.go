package sim

import (
	"math"

	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/layout"
)

// bruteForceLimit is the node count up to which the stepper sweeps all
// unordered pairs directly. Beyond it a uniform grid prunes the candidate
// set; the per-pair contact handling is identical either way.
const bruteForceLimit = 250

// forEachPair invokes fn once per unordered candidate pair. Iteration order
// is deterministic for both strategies.
func forEachPair(nodes []*bubble.Node, fn func(a, b *bubble.Node)) {
	if len(nodes) <= bruteForceLimit {
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				fn(nodes[i], nodes[j])
			}
		}
		return
	}
	gridPairs(nodes, fn)
}

type cell struct{ cx, cy int }

// gridPairs buckets nodes into a uniform grid sized to the largest scaled
// diameter, then pairs each node against higher-indexed nodes in its 3x3
// neighborhood. Buckets are built once per step; a node pushed across a cell
// boundary mid-step is picked up correctly next frame.
func gridPairs(nodes []*bubble.Node, fn func(a, b *bubble.Node)) {
	size := math.Max(1, maxDiameter(nodes)+layout.Gap)

	buckets := make(map[cell][]int, len(nodes))
	for i, n := range nodes {
		if n.Layout == nil {
			continue
		}
		k := cellOf(n, size)
		buckets[k] = append(buckets[k], i)
	}

	for i, a := range nodes {
		if a.Layout == nil {
			continue
		}
		k := cellOf(a, size)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, j := range buckets[cell{k.cx + dx, k.cy + dy}] {
					if j > i {
						fn(a, nodes[j])
					}
				}
			}
		}
	}
}

func cellOf(n *bubble.Node, size float64) cell {
	return cell{
		cx: int(math.Floor(n.Layout.X / size)),
		cy: int(math.Floor(n.Layout.Y / size)),
	}
}

func maxDiameter(nodes []*bubble.Node) float64 {
	d := 0.0
	for _, n := range nodes {
		if n.Layout == nil {
			continue
		}
		if r := 2 * n.ScaledRadius(); r > d {
			d = r
		}
	}
	return d
}
