package layout

import (
	"math"
	"math/rand"

	"github.com/san-kum/bubblesim/internal/bubble"
)

// relaxIterations fixes the number of Gauss-Seidel passes. Convergence is
// not guaranteed; 14 passes is enough for visually clean packing at the
// expected batch sizes.
const relaxIterations = 14

// Init runs the one-time placement sequence, pack then relax. Called
// whenever the node set is rebuilt and must finish before stepping resumes.
func Init(nodes []*bubble.Node, w, h float64, rng *rand.Rand) {
	Pack(nodes, w, h, rng)
	Resolve(nodes, w, h)
}

// Resolve relaxes residual interpenetration left by the random placement.
// Each pass pushes every overlapping pair apart symmetrically, then clamps
// every node back inside the viewport. Purely positional; velocities are
// untouched.
func Resolve(nodes []*bubble.Node, w, h float64) {
	w, h = ClampViewport(w, h)
	for it := 0; it < relaxIterations; it++ {
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				Separate(nodes[i], nodes[j])
			}
		}
		for _, n := range nodes {
			ClampInside(n, w, h)
		}
	}
}

// Separate pushes two overlapping nodes apart by half the overlap each, along
// the line between centers, until their rims clear the configured Gap. It
// reports the a-to-b contact normal and whether contact occurred; nodes
// without layout state never touch anything.
func Separate(a, b *bubble.Node) (nx, ny float64, touching bool) {
	la, lb := a.Layout, b.Layout
	if la == nil || lb == nil {
		return 0, 0, false
	}

	dx := lb.X - la.X
	dy := lb.Y - la.Y
	dist := math.Hypot(dx, dy)
	minDist := a.ScaledRadius() + b.ScaledRadius() + Gap
	if dist >= minDist {
		return 0, 0, false
	}

	if dist == 0 {
		// Coincident centers have no separating direction; use a fixed one
		// so resolution stays deterministic.
		nx, ny = 1, 0
	} else {
		nx, ny = dx/dist, dy/dist
	}

	half := (minDist - dist) / 2
	la.X -= nx * half
	la.Y -= ny * half
	lb.X += nx * half
	lb.Y += ny * half
	return nx, ny, true
}

// ClampInside pins a node's center so its scaled rim stays BoundaryMargin px
// inside the viewport. No-op for nodes without layout state.
func ClampInside(n *bubble.Node, w, h float64) {
	st := n.Layout
	if st == nil {
		return
	}
	r := n.ScaledRadius() + BoundaryMargin
	if st.X < r {
		st.X = r
	}
	if st.X > w-r {
		st.X = w - r
	}
	if st.Y < r {
		st.Y = r
	}
	if st.Y > h-r {
		st.Y = h - r
	}
}
