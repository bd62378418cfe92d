package scene

import (
	"context"
	"fmt"

	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/sim"
)

// RunConfig drives a headless run.
type RunConfig struct {
	Duration float64 // simulated seconds
	Dt       float64 // fixed frame step, seconds
}

// RunResult summarizes a completed run.
type RunResult struct {
	Steps   int
	Elapsed float64
	Metrics map[string]float64
}

// Runner steps a scene without a display, feeding metrics and observers
// every frame. Used by the run and bench commands.
type Runner struct {
	scene     *Scene
	metrics   []sim.Metric
	observers []sim.Observer
}

func NewRunner(s *Scene) *Runner {
	return &Runner{
		scene:     s,
		metrics:   make([]sim.Metric, 0),
		observers: make([]sim.Observer, 0),
	}
}

func (r *Runner) AddMetric(m sim.Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o sim.Observer) { r.observers = append(r.observers, o) }

// Run steps the scene for cfg.Duration simulated seconds. Each frame is
// observed before it is stepped, so frame zero captures the initial packing.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &RunResult{Metrics: make(map[string]float64)}

	w, h := r.scene.Viewport()
	t := 0.0
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		nodes := r.scene.Nodes()
		for _, m := range r.metrics {
			m.Observe(nodes, w, h, t)
		}
		for _, obs := range r.observers {
			obs.OnStep(nodes, t)
		}

		r.scene.Step(cfg.Dt)
		t += cfg.Dt
		result.Steps++
	}

	result.Elapsed = t
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

// RunWithCallback steps the scene until the callback returns false or the
// duration elapses. The callback sees each frame before it is stepped.
func (r *Runner) RunWithCallback(ctx context.Context, cfg RunConfig, fn func(nodes []*bubble.Node, t float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	t := 0.0
	for t < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !fn(r.scene.Nodes(), t) {
			return nil
		}

		r.scene.Step(cfg.Dt)
		t += cfg.Dt
	}
	return nil
}

func validateConfig(cfg RunConfig) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Dt > sim.MaxDt {
		return fmt.Errorf("dt must not exceed %.2fs, got %f", sim.MaxDt, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
