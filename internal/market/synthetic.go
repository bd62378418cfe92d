package market

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
)

// wellKnown seeds the top of the synthetic listing so demos look familiar.
var wellKnown = []string{
	"BTC", "ETH", "USDT", "BNB", "SOL", "XRP", "USDC", "ADA", "DOGE", "TRX",
	"AVAX", "LINK", "DOT", "MATIC", "TON", "SHIB", "LTC", "BCH", "UNI", "ATOM",
	"XLM", "ETC", "FIL", "APT", "ARB", "NEAR", "OP", "VET", "ALGO", "INJ",
}

// SyntheticSource produces a deterministic market listing from a seed: caps
// decay by rank with noise, volumes track caps, and percent changes drift a
// little on every refresh so an animated host has something to show. Two
// sources built with the same seed emit identical batches.
type SyntheticSource struct {
	mu    sync.Mutex
	rng   *rand.Rand
	batch []Instrument
}

// NewSyntheticSource generates n instruments from the given seed.
func NewSyntheticSource(n int, seed int64) *SyntheticSource {
	if n < 1 {
		n = 1
	}
	rng := rand.New(rand.NewSource(seed))
	s := &SyntheticSource{rng: rng}
	s.batch = generateBatch(n, rng)
	return s
}

func (s *SyntheticSource) Instruments(ctx context.Context) ([]Instrument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.drift()
	out := make([]Instrument, len(s.batch))
	copy(out, s.batch)
	return out, nil
}

// drift nudges prices and short-window changes between refreshes. Long
// windows move an order of magnitude slower, like real listings do.
func (s *SyntheticSource) drift() {
	for i := range s.batch {
		inst := &s.batch[i]
		tick := s.rng.NormFloat64()
		inst.Price *= 1 + tick*0.002
		inst.Change1h += tick * 0.05
		inst.Change24h += tick * 0.02
		inst.Change7d += tick * 0.01
		inst.Change30d += tick * 0.004
		inst.Change365d += tick * 0.001
	}
}

func generateBatch(n int, rng *rand.Rand) []Instrument {
	batch := make([]Instrument, 0, n)
	topCap := 1.2e12 * (0.9 + rng.Float64()*0.2)

	for i := 0; i < n; i++ {
		sym := syntheticSymbol(i, rng)
		// Power-law cap decay with per-rank noise keeps the ranked radius
		// chain exercised across its whole dynamic range.
		mcap := topCap * math.Pow(float64(i+1), -1.15) * (0.85 + rng.Float64()*0.3)
		price := math.Pow(10, rng.Float64()*5-2)

		batch = append(batch, Instrument{
			ID:         strings.ToLower(sym),
			Symbol:     sym,
			Name:       titleCase(sym),
			Price:      price,
			MarketCap:  mcap,
			Rank:       i + 1,
			Volume:     mcap * (0.02 + rng.Float64()*0.25),
			Change1h:   rng.NormFloat64() * 0.8,
			Change24h:  rng.NormFloat64() * 3.5,
			Change7d:   rng.NormFloat64() * 8,
			Change30d:  rng.NormFloat64() * 18,
			Change365d: rng.NormFloat64() * 60,
		})
	}
	return batch
}

func titleCase(sym string) string {
	low := strings.ToLower(sym)
	return strings.ToUpper(low[:1]) + low[1:]
}

func syntheticSymbol(i int, rng *rand.Rand) string {
	if i < len(wellKnown) {
		return wellKnown[i]
	}
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	var b strings.Builder
	for j := 0; j < 3; j++ {
		b.WriteByte(letters[rng.Intn(len(letters))])
	}
	// Suffix by index so duplicate draws still produce unique ids.
	return fmt.Sprintf("%s%d", b.String(), i-len(wellKnown)+1)
}
