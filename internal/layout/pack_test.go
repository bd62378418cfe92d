package layout_test

import (
	"context"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/layout"
	"github.com/san-kum/bubblesim/internal/market"
)

func buildNodes(count int, seed int64) []*bubble.Node {
	src := market.NewSyntheticSource(count, seed)
	batch, err := src.Instruments(context.Background())
	Expect(err).NotTo(HaveOccurred())
	return bubble.New(batch, bubble.DefaultOptions())
}

var _ = Describe("Pack", func() {
	const w, h = 900.0, 700.0

	It("assigns layout state to every node inside the viewport", func() {
		nodes := buildNodes(40, 7)
		layout.Pack(nodes, w, h, rand.New(rand.NewSource(42)))

		for _, n := range nodes {
			Expect(n.Layout).NotTo(BeNil())
			Expect(n.Layout.X).To(BeNumerically(">=", 0))
			Expect(n.Layout.X).To(BeNumerically("<=", w))
			Expect(n.Layout.Y).To(BeNumerically(">=", 0))
			Expect(n.Layout.Y).To(BeNumerically("<=", h))
			Expect(n.Layout.Scale).To(BeNumerically(">", 0))
		}
	})

	It("keeps initial velocities within the documented range", func() {
		nodes := buildNodes(40, 7)
		layout.Pack(nodes, w, h, rand.New(rand.NewSource(42)))

		for _, n := range nodes {
			Expect(math.Abs(n.Layout.VX)).To(BeNumerically("<=", 5))
			Expect(math.Abs(n.Layout.VY)).To(BeNumerically("<=", 5))
		}
	})

	It("derives scales inside the clamped area-correction range", func() {
		nodes := buildNodes(40, 7)
		layout.Pack(nodes, w, h, rand.New(rand.NewSource(42)))

		for _, n := range nodes {
			Expect(n.Layout.Scale).To(BeNumerically(">=", 0.75*0.85-1e-9))
			Expect(n.Layout.Scale).To(BeNumerically("<=", 1.20*1.35+1e-9))
		}
	})

	It("is deterministic for a fixed seed", func() {
		a := buildNodes(30, 3)
		b := buildNodes(30, 3)
		layout.Pack(a, w, h, rand.New(rand.NewSource(11)))
		layout.Pack(b, w, h, rand.New(rand.NewSource(11)))

		for i := range a {
			Expect(a[i].Layout.X).To(Equal(b[i].Layout.X))
			Expect(a[i].Layout.Y).To(Equal(b[i].Layout.Y))
			Expect(a[i].Layout.VX).To(Equal(b[i].Layout.VX))
			Expect(a[i].Layout.Seed).To(Equal(b[i].Layout.Seed))
		}
	})

	It("only recomputes scale for nodes with prior layout state", func() {
		nodes := buildNodes(20, 5)
		layout.Pack(nodes, w, h, rand.New(rand.NewSource(1)))

		type snapshot struct{ x, y, vx, vy, seed, t float64 }
		before := make([]snapshot, len(nodes))
		for i, n := range nodes {
			st := n.Layout
			before[i] = snapshot{st.X, st.Y, st.VX, st.VY, st.Seed, st.T}
		}

		// Different rng; positions must still survive untouched.
		layout.Pack(nodes, w, h, rand.New(rand.NewSource(999)))

		for i, n := range nodes {
			st := n.Layout
			Expect(st.X).To(Equal(before[i].x))
			Expect(st.Y).To(Equal(before[i].y))
			Expect(st.VX).To(Equal(before[i].vx))
			Expect(st.VY).To(Equal(before[i].vy))
			Expect(st.Seed).To(Equal(before[i].seed))
			Expect(st.T).To(Equal(before[i].t))
		}
	})

	It("floors degenerate viewports", func() {
		nodes := buildNodes(5, 2)
		layout.Pack(nodes, 50, 50, rand.New(rand.NewSource(8)))

		for _, n := range nodes {
			Expect(n.Layout.X).To(BeNumerically("<=", layout.MinViewport))
			Expect(n.Layout.Y).To(BeNumerically("<=", layout.MinViewport))
		}
	})

	It("tolerates an empty batch", func() {
		Expect(func() {
			layout.Pack(nil, w, h, rand.New(rand.NewSource(1)))
		}).NotTo(Panic())
	})
})

var _ = Describe("Resolve", func() {
	const w, h = 900.0, 700.0

	It("separates at least 90% of pairs to the target clearance", func() {
		nodes := buildNodes(80, 7)
		layout.Init(nodes, w, h, rand.New(rand.NewSource(42)))

		var pairs, clear int
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				a, b := nodes[i], nodes[j]
				pairs++
				dist := math.Hypot(b.Layout.X-a.Layout.X, b.Layout.Y-a.Layout.Y)
				want := a.ScaledRadius() + b.ScaledRadius() + layout.Gap
				if dist >= want-1.0 {
					clear++
				}
			}
		}
		Expect(float64(clear) / float64(pairs)).To(BeNumerically(">=", 0.9))
	})

	It("pushes coincident nodes apart along a deterministic axis", func() {
		nodes := buildNodes(2, 4)
		for _, n := range nodes {
			n.Layout = &bubble.LayoutState{X: 300, Y: 300, Scale: 1}
		}

		layout.Resolve(nodes, w, h)

		a, b := nodes[0].Layout, nodes[1].Layout
		Expect(a.Y).To(Equal(b.Y))
		dist := math.Abs(b.X - a.X)
		want := nodes[0].ScaledRadius() + nodes[1].ScaledRadius() + layout.Gap
		Expect(dist).To(BeNumerically(">=", want-1e-6))
	})

	It("keeps every node inside the margin after relaxation", func() {
		nodes := buildNodes(60, 9)
		layout.Init(nodes, w, h, rand.New(rand.NewSource(12)))

		for _, n := range nodes {
			r := n.ScaledRadius() + layout.BoundaryMargin
			Expect(n.Layout.X).To(BeNumerically(">=", r-1e-6))
			Expect(n.Layout.X).To(BeNumerically("<=", w-r+1e-6))
			Expect(n.Layout.Y).To(BeNumerically(">=", r-1e-6))
			Expect(n.Layout.Y).To(BeNumerically("<=", h-r+1e-6))
		}
	})

	It("skips nodes without layout state", func() {
		nodes := buildNodes(3, 6)
		nodes[0].Layout = &bubble.LayoutState{X: 100, Y: 100, Scale: 1}

		Expect(func() {
			layout.Resolve(nodes, w, h)
		}).NotTo(Panic())
		Expect(nodes[1].Layout).To(BeNil())
	})
})
