package sim

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/layout"
)

// MaxDt is the recommended ceiling on a single step, in seconds. The stepper
// does not clamp dt itself; hosts clamp before calling so that a long pause
// (suspended window, stopped ticker) cannot tunnel bubbles through walls.
const MaxDt = 0.05

// Stepper advances a node set one frame at a time: integrate, bounce off the
// viewport, resolve pairwise contacts, then wander. It never fails; nodes
// without layout state are skipped for the frame. Not safe for concurrent
// use; the host owns the node slice between frames and hands it in by
// reference.
type Stepper struct {
	BounceDamping  float64 // velocity kept after a wall bounce
	Restitution    float64 // impulse fraction of the closing speed
	WanderDamping  float64 // per-frame velocity decay, not time-scaled
	WanderStrength float64 // steering amplitude, px/s^2
	JitterStrength float64 // uniform jitter amplitude, px/s^2
	FreqX          float64 // steering phase rate, x axis
	FreqY          float64 // steering phase rate, y axis

	rng *rand.Rand
}

// New returns a stepper with the stock motion constants. Seed drives the
// jitter stream; zero seeds from the clock.
func New(seed int64) *Stepper {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Stepper{
		BounceDamping:  0.85,
		Restitution:    0.45,
		WanderDamping:  0.992,
		WanderStrength: 14,
		JitterStrength: 4,
		FreqX:          1.2,
		FreqY:          1.35,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

// Step advances every node by dt seconds, in place. The viewport is floored
// to the layout minimum. Phases run batch-wide in order: integration and
// boundary bounce, pairwise contact response, then wander.
func (s *Stepper) Step(nodes []*bubble.Node, w, h float64, dt float64) {
	if len(nodes) == 0 {
		return
	}
	w, h = layout.ClampViewport(w, h)

	for _, n := range nodes {
		st := n.Layout
		if st == nil {
			continue
		}
		st.X += st.VX * dt
		st.Y += st.VY * dt
		s.bounce(n, w, h)
	}

	forEachPair(nodes, s.collide)

	for _, n := range nodes {
		if n.Layout == nil {
			continue
		}
		s.wander(n.Layout, dt)
	}
}

// bounce clamps a node that crossed the inset viewport bounds and reflects
// the offending velocity component, damped.
func (s *Stepper) bounce(n *bubble.Node, w, h float64) {
	st := n.Layout
	r := n.ScaledRadius() + layout.BoundaryMargin

	if st.X < r {
		st.X = r
		if st.VX < 0 {
			st.VX = -st.VX * s.BounceDamping
		}
	} else if st.X > w-r {
		st.X = w - r
		if st.VX > 0 {
			st.VX = -st.VX * s.BounceDamping
		}
	}

	if st.Y < r {
		st.Y = r
		if st.VY < 0 {
			st.VY = -st.VY * s.BounceDamping
		}
	} else if st.Y > h-r {
		st.Y = h - r
		if st.VY > 0 {
			st.VY = -st.VY * s.BounceDamping
		}
	}
}

// collide separates an overlapping pair positionally, then applies an
// equal-and-opposite impulse when the pair is still approaching. Mass is not
// modeled; both nodes receive the same impulse magnitude.
func (s *Stepper) collide(a, b *bubble.Node) {
	nx, ny, touching := layout.Separate(a, b)
	if !touching {
		return
	}

	la, lb := a.Layout, b.Layout
	rel := (lb.VX-la.VX)*nx + (lb.VY-la.VY)*ny
	if rel >= 0 {
		return
	}

	j := -rel * s.Restitution
	la.VX -= j * nx
	la.VY -= j * ny
	lb.VX += j * nx
	lb.VY += j * ny
}

// wander damps velocity, then steers it with the node's free-running phase
// accumulators plus a little uniform jitter. Damping is per frame rather
// than per second; the quirk is part of the motion's look and is kept.
func (s *Stepper) wander(st *bubble.LayoutState, dt float64) {
	st.VX *= s.WanderDamping
	st.VY *= s.WanderDamping

	st.T += dt
	st.VX += math.Cos(st.Seed+st.T*s.FreqX) * s.WanderStrength * dt
	st.VY += math.Sin(st.Seed+st.T*s.FreqY) * s.WanderStrength * dt

	st.VX += (s.rng.Float64()*2 - 1) * s.JitterStrength * dt
	st.VY += (s.rng.Float64()*2 - 1) * s.JitterStrength * dt
}

// GetParams implements live tuning for TUI hosts.
func (s *Stepper) GetParams() map[string]float64 {
	return map[string]float64{
		"bounce":      s.BounceDamping,
		"restitution": s.Restitution,
		"damping":     s.WanderDamping,
		"wander":      s.WanderStrength,
		"jitter":      s.JitterStrength,
	}
}

func (s *Stepper) SetParam(name string, value float64) error {
	switch name {
	case "bounce":
		s.BounceDamping = value
	case "restitution":
		s.Restitution = value
	case "damping":
		s.WanderDamping = value
	case "wander":
		s.WanderStrength = value
	case "jitter":
		s.JitterStrength = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
