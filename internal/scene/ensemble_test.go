package scene

import (
	"context"
	"testing"

	"github.com/san-kum/bubblesim/internal/bubble"
)

func TestEnsembleRunsAllSeeds(t *testing.T) {
	opts := bubble.DefaultOptions()
	opts.Width, opts.Height = 800, 600

	e := NewEnsemble(opts, testBatch(t, 15), 4, 100)
	results, err := e.Run(context.Background(), RunConfig{Duration: 0.5, Dt: 0.025})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r == nil {
			t.Fatalf("result %d is nil", i)
		}
		if r.Steps != 20 {
			t.Errorf("result %d: expected 20 steps, got %d", i, r.Steps)
		}
		if _, ok := r.Metrics["coverage"]; !ok {
			t.Errorf("result %d: coverage missing", i)
		}
	}
}

func TestEnsembleDeterministic(t *testing.T) {
	opts := bubble.DefaultOptions()
	opts.Width, opts.Height = 800, 600
	batch := testBatch(t, 10)
	cfg := RunConfig{Duration: 0.5, Dt: 0.05}

	a, err := NewEnsemble(opts, batch, 3, 7).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	b, err := NewEnsemble(opts, batch, 3, 7).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	for i := range a {
		for name, v := range a[i].Metrics {
			if b[i].Metrics[name] != v {
				t.Errorf("run %d metric %s diverged: %f vs %f", i, name, v, b[i].Metrics[name])
			}
		}
	}
}
