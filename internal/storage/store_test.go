package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/market"
)

func sampleNodes() []*bubble.Node {
	batch := []market.Instrument{
		{ID: "btc", Symbol: "BTC", MarketCap: 1e12, Volume: 3e10, Change24h: 2.1},
		{ID: "eth", Symbol: "ETH", MarketCap: 4e11, Volume: 2e10, Change24h: -1.3},
	}
	nodes := bubble.New(batch, bubble.DefaultOptions())
	nodes[0].Layout = &bubble.LayoutState{X: 100, Y: 120, VX: 1, VY: -1, Scale: 1.1}
	return nodes
}

func TestSaveAndLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	meta := RunMetadata{
		Source:    "synthetic",
		Mode:      "cap",
		Timeframe: "24h",
		Count:     2,
		Seed:      42,
		Dt:        0.02,
		Duration:  1,
		Width:     800,
		Height:    600,
		Metrics:   map[string]float64{"avg_speed": 3.2},
	}
	frames := []FrameRow{
		{Time: 0, ID: "btc", X: 100, Y: 120, VX: 1, VY: -1},
		{Time: 0.02, ID: "btc", X: 100.02, Y: 119.98, VX: 1, VY: -1},
	}

	runID, err := st.Save(meta, sampleNodes(), frames)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	loaded, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "cap", loaded.Mode)
	assert.Equal(t, int64(42), loaded.Seed)
	assert.Equal(t, 3.2, loaded.Metrics["avg_speed"])
	assert.False(t, loaded.Timestamp.IsZero())
}

func TestSaveWritesNodeSnapshot(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{}, sampleNodes(), nil)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, runID, "nodes.csv"))
	assert.NoError(t, err)

	// No frames recorded, no frames file.
	_, err = os.Stat(filepath.Join(dir, runID, "frames.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoadFramesRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	frames := []FrameRow{
		{Time: 0, ID: "btc", X: 100, Y: 120, VX: 1, VY: -1},
		{Time: 0.05, ID: "eth", X: 300.5, Y: 240.25, VX: -2.5, VY: 0.75},
	}
	runID, err := st.Save(RunMetadata{}, sampleNodes(), frames)
	require.NoError(t, err)

	got, err := st.LoadFrames(runID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "eth", got[1].ID)
	assert.InDelta(t, 300.5, got[1].X, 1e-6)
	assert.InDelta(t, 0.75, got[1].VY, 1e-6)
}

func TestListRuns(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = st.Save(RunMetadata{Mode: "cap"}, sampleNodes(), nil)
	require.NoError(t, err)
	_, err = st.Save(RunMetadata{Mode: "percent"}, sampleNodes(), nil)
	require.NoError(t, err)

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestListMissingBaseDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never-created"))

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	_, err := st.Load("run_missing")
	assert.Error(t, err)
}

func TestRecorderSamplesEveryNth(t *testing.T) {
	rec := NewRecorder(2)
	nodes := sampleNodes() // only one node has layout state

	rec.OnStep(nodes, 0)    // kept
	rec.OnStep(nodes, 0.02) // skipped
	rec.OnStep(nodes, 0.04) // kept

	frames := rec.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, 0.0, frames[0].Time)
	assert.Equal(t, 0.04, frames[1].Time)
	assert.Equal(t, "btc", frames[0].ID)
}
