package scene

import (
	"context"
	"sync"

	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/market"
	"github.com/san-kum/bubblesim/internal/sim"
)

// Ensemble runs the same instrument batch across consecutive seeds, one
// scene per seed, and collects per-run results. The bench command uses it to
// characterize packing and motion quality independent of any single layout
// roll.
type Ensemble struct {
	opts      bubble.Options
	batch     []market.Instrument
	numRuns   int
	seedStart int64
}

func NewEnsemble(opts bubble.Options, batch []market.Instrument, numRuns int, seedStart int64) *Ensemble {
	if numRuns < 1 {
		numRuns = 1
	}
	return &Ensemble{opts: opts, batch: batch, numRuns: numRuns, seedStart: seedStart}
}

// Run executes every seed concurrently. Each goroutine owns its scene and
// its metric set; instruments are shared read-only. The first run error
// wins.
func (e *Ensemble) Run(ctx context.Context, cfg RunConfig) ([]*RunResult, error) {
	results := make([]*RunResult, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			opts := e.opts
			opts.Seed = e.seedStart + int64(idx)

			s := New(opts)
			s.SetBatch(e.batch)

			r := NewRunner(s)
			for _, m := range sim.DefaultMetrics() {
				r.AddMetric(m)
			}

			results[idx], errs[idx] = r.Run(ctx, cfg)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
