package scene

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/market"
	"github.com/san-kum/bubblesim/internal/sim"
)

func testBatch(t *testing.T, n int) []market.Instrument {
	t.Helper()
	batch, err := market.NewSyntheticSource(n, 21).Instruments(context.Background())
	if err != nil {
		t.Fatalf("synthetic source failed: %v", err)
	}
	return batch
}

func testScene(t *testing.T, n int) *Scene {
	t.Helper()
	opts := bubble.DefaultOptions()
	opts.Width, opts.Height = 900, 700
	opts.Seed = 42

	s := New(opts)
	s.SetBatch(testBatch(t, n))
	return s
}

func TestBuildWithViewport(t *testing.T) {
	opts := bubble.DefaultOptions()
	opts.Width, opts.Height = 800, 600
	opts.Seed = 5

	nodes := Build(testBatch(t, 25), opts)

	if len(nodes) != 25 {
		t.Fatalf("expected 25 nodes, got %d", len(nodes))
	}
	for i, n := range nodes {
		if n.Layout == nil {
			t.Errorf("node %d missing layout state", i)
		}
	}
}

func TestBuildWithoutViewport(t *testing.T) {
	nodes := Build(testBatch(t, 10), bubble.DefaultOptions())

	for i, n := range nodes {
		if n.Layout != nil {
			t.Errorf("node %d should have no layout state without a viewport", i)
		}
	}
}

func TestBuildEmptyBatch(t *testing.T) {
	if nodes := Build(nil, bubble.DefaultOptions()); len(nodes) != 0 {
		t.Errorf("expected no nodes, got %d", len(nodes))
	}
}

func TestSceneRebuildKeepsPositions(t *testing.T) {
	s := testScene(t, 30)

	type pos struct{ x, y float64 }
	before := make(map[string]pos)
	for _, n := range s.Nodes() {
		before[n.ID()] = pos{n.Layout.X, n.Layout.Y}
	}

	s.SetTimeframe(market.TimeframeWeek)

	for _, n := range s.Nodes() {
		b, ok := before[n.ID()]
		if !ok {
			t.Fatalf("node %s appeared from nowhere", n.ID())
		}
		if n.Layout.X != b.x || n.Layout.Y != b.y {
			t.Errorf("node %s moved on rebuild: (%f,%f) -> (%f,%f)",
				n.ID(), b.x, b.y, n.Layout.X, n.Layout.Y)
		}
	}
}

func TestSceneResizePullsNodesInside(t *testing.T) {
	s := testScene(t, 20)

	s.Resize(400, 300)

	w, h := s.Viewport()
	for _, n := range s.Nodes() {
		r := n.ScaledRadius() + 12
		if n.Layout.X < r-1e-6 || n.Layout.X > w-r+1e-6 ||
			n.Layout.Y < r-1e-6 || n.Layout.Y > h-r+1e-6 {
			t.Errorf("node %s outside the resized viewport: (%f,%f)", n.ID(), n.Layout.X, n.Layout.Y)
		}
	}
}

func TestSceneModeSwitchRederivesRadii(t *testing.T) {
	s := testScene(t, 30)

	capRadii := make(map[string]float64)
	for _, n := range s.Nodes() {
		capRadii[n.ID()] = n.Radius
	}

	s.SetMode(market.SizeByPercent)

	changed := false
	for _, n := range s.Nodes() {
		if math.Abs(n.Radius-capRadii[n.ID()]) > 1e-9 {
			changed = true
		}
		if n.Radius < bubble.MinRadius*0.65-1e-9 || n.Radius > bubble.MaxRadius*1.55+1e-9 {
			t.Errorf("node %s radius out of bounds after mode switch: %f", n.ID(), n.Radius)
		}
	}
	if !changed {
		t.Error("expected at least one radius to change across modes")
	}
}

func TestSceneStepClampsDt(t *testing.T) {
	s := testScene(t, 1)
	st := s.Nodes()[0].Layout
	st.X, st.Y = 400, 350
	st.VX, st.VY = 100, 0

	s.Stepper().WanderStrength = 0
	s.Stepper().JitterStrength = 0

	s.Step(10) // absurd dt, must be treated as 0.05

	if got := st.X; math.Abs(got-405) > 1e-9 {
		t.Errorf("expected x advanced by 5px under the clamped step, got %f", got)
	}
}

func TestSceneEmptyStepIsSafe(t *testing.T) {
	s := New(bubble.DefaultOptions())
	s.Step(0.016)

	if got := len(s.Nodes()); got != 0 {
		t.Errorf("expected empty scene, got %d nodes", got)
	}
}

func TestRunnerCollectsMetrics(t *testing.T) {
	s := testScene(t, 20)
	r := NewRunner(s)
	for _, m := range sim.DefaultMetrics() {
		r.AddMetric(m)
	}

	result, err := r.Run(context.Background(), RunConfig{Duration: 1, Dt: 0.02})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Steps != 50 {
		t.Errorf("expected 50 steps, got %d", result.Steps)
	}
	if _, ok := result.Metrics["avg_speed"]; !ok {
		t.Error("avg_speed missing from result")
	}
	if result.Metrics["coverage"] <= 0 {
		t.Errorf("expected positive coverage, got %f", result.Metrics["coverage"])
	}
}

func TestRunnerInvalidConfig(t *testing.T) {
	r := NewRunner(testScene(t, 5))

	tests := []struct {
		name string
		cfg  RunConfig
	}{
		{"zero dt", RunConfig{Duration: 1, Dt: 0}},
		{"negative dt", RunConfig{Duration: 1, Dt: -0.01}},
		{"oversized dt", RunConfig{Duration: 1, Dt: 0.2}},
		{"zero duration", RunConfig{Duration: 0, Dt: 0.02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRunnerCallbackStopsEarly(t *testing.T) {
	r := NewRunner(testScene(t, 5))

	frames := 0
	err := r.RunWithCallback(context.Background(), RunConfig{Duration: 10, Dt: 0.05}, func(nodes []*bubble.Node, t float64) bool {
		frames++
		return frames < 3
	})
	if err != nil {
		t.Fatalf("callback run failed: %v", err)
	}
	if frames != 3 {
		t.Errorf("expected 3 frames, got %d", frames)
	}
}

func TestRunnerHonorsContext(t *testing.T) {
	r := NewRunner(testScene(t, 5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx, RunConfig{Duration: 1, Dt: 0.02}); err == nil {
		t.Error("expected context error, got nil")
	}
}
