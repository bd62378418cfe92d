package market

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/san-kum/bubblesim/internal/logger"
)

// Source supplies instrument batches to the host. Implementations must return
// a fresh slice on every call; callers may reorder or truncate it.
type Source interface {
	Instruments(ctx context.Context) ([]Instrument, error)
}

// Compile-time interface checks.
var (
	_ Source = (*FixtureSource)(nil)
	_ Source = (*SyntheticSource)(nil)
)

// FixtureSource reads a CoinGecko-shaped JSON array from disk. Reads are
// throttled so a host refreshing every frame does not hammer the filesystem;
// between refresh windows the previous batch is served from cache.
type FixtureSource struct {
	path    string
	limiter *rate.Limiter

	mu     sync.Mutex
	cached []Instrument
}

// NewFixtureSource creates a source for the given fixture path. refreshEvery
// bounds how often the file is re-read; zero or negative means once per
// second.
func NewFixtureSource(path string, refreshEvery time.Duration) *FixtureSource {
	if refreshEvery <= 0 {
		refreshEvery = time.Second
	}
	return &FixtureSource{
		path:    path,
		limiter: rate.NewLimiter(rate.Every(refreshEvery), 1),
	}
}

func (s *FixtureSource) Instruments(ctx context.Context) ([]Instrument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && !s.limiter.Allow() {
		out := make([]Instrument, len(s.cached))
		copy(out, s.cached)
		return out, nil
	}

	batch, err := readFixture(s.path)
	if err != nil {
		if s.cached != nil {
			// Serve the stale batch rather than blanking the canvas.
			logger.Get().WithComponent("market").WithError(err).Warn("fixture re-read failed, serving cached batch")
			out := make([]Instrument, len(s.cached))
			copy(out, s.cached)
			return out, nil
		}
		return nil, err
	}

	s.cached = batch
	logger.Get().WithComponent("market").WithFields(logger.Fields{
		"path":  s.path,
		"count": len(batch),
	}).Debug("fixture loaded")

	out := make([]Instrument, len(batch))
	copy(out, batch)
	return out, nil
}

func readFixture(path string) ([]Instrument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var batch []Instrument
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return batch, nil
}

// WriteFixture saves a batch as an indented JSON array, the same shape
// FixtureSource reads.
func WriteFixture(path string, batch []Instrument) error {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
