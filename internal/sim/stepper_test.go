package sim

import (
	"math"
	"testing"

	"github.com/san-kum/bubblesim/internal/bubble"
)

func makeNode(radius, x, y, vx, vy float64) *bubble.Node {
	return &bubble.Node{
		Radius: radius,
		Layout: &bubble.LayoutState{X: x, Y: y, VX: vx, VY: vy, Scale: 1},
	}
}

// quiet returns a stepper with wander neutralized so collision and boundary
// behavior can be asserted exactly.
func quiet() *Stepper {
	s := New(1)
	s.WanderDamping = 1
	s.WanderStrength = 0
	s.JitterStrength = 0
	return s
}

func TestStepEmpty(t *testing.T) {
	s := New(1)
	s.Step(nil, 800, 600, 0.016)
	s.Step([]*bubble.Node{}, 800, 600, 0.016)
}

func TestStepZeroDtKeepsPositions(t *testing.T) {
	s := New(1)
	nodes := []*bubble.Node{
		makeNode(20, 200, 200, 3, -4),
		makeNode(15, 500, 400, -2, 1),
	}

	s.Step(nodes, 800, 600, 0)

	if nodes[0].Layout.X != 200 || nodes[0].Layout.Y != 200 {
		t.Errorf("expected position unchanged, got (%f, %f)", nodes[0].Layout.X, nodes[0].Layout.Y)
	}
	if got, want := nodes[0].Layout.VX, 3*0.992; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected velocity damped to %f, got %f", want, got)
	}
	if got, want := nodes[0].Layout.VY, -4*0.992; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected velocity damped to %f, got %f", want, got)
	}
}

func TestBoundaryBounce(t *testing.T) {
	s := quiet()
	n := makeNode(20, 32, 300, -40, 0) // pinned at the left margin, moving out
	nodes := []*bubble.Node{n}

	s.Step(nodes, 800, 600, 0.01)

	if got, want := n.Layout.X, 32.0; got != want {
		t.Errorf("expected position clamped to %f, got %f", want, got)
	}
	if got, want := n.Layout.VX, 40*0.85; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected velocity reflected to %f, got %f", want, got)
	}
}

func TestBoundaryBounceFarEdge(t *testing.T) {
	s := quiet()
	n := makeNode(20, 768, 300, 50, 0) // pinned at the right margin
	nodes := []*bubble.Node{n}

	s.Step(nodes, 800, 600, 0.01)

	if got, want := n.Layout.X, 768.0; got != want {
		t.Errorf("expected position clamped to %f, got %f", want, got)
	}
	if got, want := n.Layout.VX, -50*0.85; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected velocity reflected to %f, got %f", want, got)
	}
}

func TestTouchingPairImpulse(t *testing.T) {
	s := quiet()
	a := makeNode(20, 300, 300, 20, 0)
	b := makeNode(30, 350, 300, -20, 0) // centers exactly radius(a)+radius(b) apart
	nodes := []*bubble.Node{a, b}

	before := b.Layout.X - a.Layout.X
	s.Step(nodes, 900, 700, 0.01)

	after := math.Hypot(b.Layout.X-a.Layout.X, b.Layout.Y-a.Layout.Y)
	if after <= before {
		t.Errorf("expected pair pushed apart, had %f now %f", before, after)
	}
	if after < a.ScaledRadius()+b.ScaledRadius() {
		t.Errorf("expected rims clear, distance %f", after)
	}

	// Impulse is 0.45 of the 40 px/s closing speed, applied to both.
	if got, want := a.Layout.VX, 20.0-18.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("expected a.vx %f, got %f", want, got)
	}
	if got, want := b.Layout.VX, -20.0+18.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("expected b.vx %f, got %f", want, got)
	}
}

func TestSeparatingPairGetsNoImpulse(t *testing.T) {
	s := quiet()
	a := makeNode(20, 300, 300, -5, 0)
	b := makeNode(30, 340, 300, 5, 0) // overlapping but already separating
	nodes := []*bubble.Node{a, b}

	s.Step(nodes, 900, 700, 0)

	if got := a.Layout.VX; got != -5 {
		t.Errorf("expected a.vx untouched at -5, got %f", got)
	}
	if got := b.Layout.VX; got != 5 {
		t.Errorf("expected b.vx untouched at 5, got %f", got)
	}

	// Positional separation still applies.
	dist := b.Layout.X - a.Layout.X
	if want := a.ScaledRadius() + b.ScaledRadius() + 8; math.Abs(dist-want) > 1e-9 {
		t.Errorf("expected centers %f apart, got %f", want, dist)
	}
}

func TestStepSkipsNodesWithoutLayout(t *testing.T) {
	s := New(1)
	bare := &bubble.Node{Radius: 25}
	nodes := []*bubble.Node{bare, makeNode(20, 400, 300, 1, 1)}

	s.Step(nodes, 800, 600, 0.016)

	if bare.Layout != nil {
		t.Error("expected node without layout state to stay bare")
	}
}

func TestStepDeterministicForSeed(t *testing.T) {
	build := func() []*bubble.Node {
		return []*bubble.Node{
			makeNode(20, 200, 200, 3, -2),
			makeNode(25, 500, 350, -4, 1),
			makeNode(15, 300, 450, 2, 2),
		}
	}

	a, b := build(), build()
	sa, sb := New(7), New(7)
	for i := 0; i < 60; i++ {
		sa.Step(a, 800, 600, 0.016)
		sb.Step(b, 800, 600, 0.016)
	}

	for i := range a {
		if a[i].Layout.X != b[i].Layout.X || a[i].Layout.Y != b[i].Layout.Y {
			t.Errorf("node %d diverged: (%f,%f) vs (%f,%f)",
				i, a[i].Layout.X, a[i].Layout.Y, b[i].Layout.X, b[i].Layout.Y)
		}
	}
}

func TestWanderAdvancesPhase(t *testing.T) {
	s := New(1)
	n := makeNode(20, 400, 300, 0, 0)

	s.Step([]*bubble.Node{n}, 800, 600, 0.02)

	if got, want := n.Layout.T, 0.02; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected phase advanced to %f, got %f", want, got)
	}
}

func TestSetParam(t *testing.T) {
	s := New(1)
	if err := s.SetParam("bounce", 0.5); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if s.BounceDamping != 0.5 {
		t.Errorf("expected bounce 0.5, got %f", s.BounceDamping)
	}
	if err := s.SetParam("gravity", 9.81); err == nil {
		t.Error("expected error for unknown param, got nil")
	}
}

func TestGetParamsRoundTrip(t *testing.T) {
	s := New(1)
	params := s.GetParams()

	for name, v := range params {
		if err := s.SetParam(name, v*2); err != nil {
			t.Errorf("param %s not settable: %v", name, err)
		}
	}
	if got := s.GetParams()["wander"]; got != 28 {
		t.Errorf("expected wander doubled to 28, got %f", got)
	}
}
