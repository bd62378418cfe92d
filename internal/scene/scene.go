package scene

import (
	"math/rand"
	"time"

	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/layout"
	"github.com/san-kum/bubblesim/internal/market"
	"github.com/san-kum/bubblesim/internal/sim"
)

// Build runs the one-shot pipeline: nodes from instruments, then pack and
// relax when the options carry a viewport. Hosts that animate should use a
// Scene instead, which keeps continuity across rebuilds.
func Build(instruments []market.Instrument, opts bubble.Options) []*bubble.Node {
	opts = opts.Normalized()
	nodes := bubble.New(instruments, opts)
	if len(nodes) == 0 {
		return nodes
	}
	if opts.Width > 0 && opts.Height > 0 {
		layout.Init(nodes, opts.Width, opts.Height, rand.New(rand.NewSource(seedOrClock(opts.Seed))))
	}
	return nodes
}

// Scene owns a node set and the machinery that animates it. Rebuilds keep
// on-screen identity: nodes for instruments that survive a batch, mode,
// timeframe, or viewport change keep their position and velocity and only
// pick up fresh radii and scale.
//
// Not safe for concurrent use. The host drives it one frame at a time.
type Scene struct {
	opts    bubble.Options
	batch   []market.Instrument
	nodes   []*bubble.Node
	stepper *sim.Stepper
	rng     *rand.Rand
	w, h    float64

	// Viewport of the last relaxation, to detect resizes across rebuilds.
	packedW, packedH float64
}

// New creates an empty scene. Call SetBatch to populate it.
func New(opts bubble.Options) *Scene {
	opts = opts.Normalized()
	seed := seedOrClock(opts.Seed)
	return &Scene{
		opts: opts,
		// Offset so the jitter stream differs from the placement stream.
		stepper: sim.New(seed + 1),
		rng:     rand.New(rand.NewSource(seed)),
		w:       opts.Width,
		h:       opts.Height,
	}
}

func seedOrClock(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}

// SetBatch replaces the instrument set and rebuilds the node set.
func (s *Scene) SetBatch(instruments []market.Instrument) {
	s.batch = instruments
	s.rebuild()
}

// SetMode switches the sizing mode and rebuilds.
func (s *Scene) SetMode(mode market.SizeMode) {
	s.opts.Mode = mode
	s.rebuild()
}

// SetTimeframe switches the change window and rebuilds.
func (s *Scene) SetTimeframe(tf market.Timeframe) {
	s.opts.Timeframe = tf
	s.rebuild()
}

// Resize updates the viewport and rebuilds, so scales track the new area and
// stragglers are pulled back inside.
func (s *Scene) Resize(w, h float64) {
	s.w, s.h = w, h
	s.opts.Width, s.opts.Height = w, h
	s.rebuild()
}

// rebuild rederives nodes from the current batch, carrying layout state over
// from the previous set. Pack and relax run only when a viewport exists.
// The relaxation pass is skipped when no node's footprint changed: resolving
// is best effort, so re-running it over an unchanged layout could nudge
// pairs the previous pass left tight, and carried positions must hold
// exactly across a no-op rebuild.
func (s *Scene) rebuild() {
	opts := s.opts
	opts.Prior = s.nodes
	opts.Width, opts.Height = s.w, s.h

	// Footprints before Pack mutates the shared layout state in place.
	type footprint struct{ radius, scale float64 }
	prev := make(map[string]footprint, len(s.nodes))
	for _, n := range s.nodes {
		if n.Layout != nil {
			prev[n.ID()] = footprint{n.Radius, n.Layout.Scale}
		}
	}

	nodes := bubble.New(s.batch, opts)
	if len(nodes) == 0 || s.w <= 0 || s.h <= 0 {
		s.nodes = nodes
		return
	}

	layout.Pack(nodes, s.w, s.h, s.rng)

	dirty := s.w != s.packedW || s.h != s.packedH
	for _, n := range nodes {
		if dirty {
			break
		}
		p, ok := prev[n.ID()]
		if !ok || p.radius != n.Radius || p.scale != n.Layout.Scale {
			dirty = true
		}
	}
	if dirty {
		layout.Resolve(nodes, s.w, s.h)
	}
	s.packedW, s.packedH = s.w, s.h
	s.nodes = nodes
}

// Step advances the scene by dt seconds. dt is clamped to the stepper's
// documented ceiling so a stalled host cannot fling bubbles through walls.
func (s *Scene) Step(dt float64) {
	if dt > sim.MaxDt {
		dt = sim.MaxDt
	}
	s.stepper.Step(s.nodes, s.w, s.h, dt)
}

// Nodes returns the live node slice. Callers may read it freely between
// frames but must not mutate it while a step is running.
func (s *Scene) Nodes() []*bubble.Node { return s.nodes }

// Stepper exposes the motion parameters for live tuning.
func (s *Scene) Stepper() *sim.Stepper { return s.stepper }

// Options returns the scene's current build options.
func (s *Scene) Options() bubble.Options { return s.opts }

// Viewport returns the current width and height.
func (s *Scene) Viewport() (w, h float64) { return s.w, s.h }
