package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/bubblesim/internal/bubble"
)

// Store persists headless runs under a base directory, one subdirectory per
// run: metadata.json with the run parameters and final metric values,
// nodes.csv with the final node snapshot, frames.csv with recorded motion.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Source    string             `json:"source"`
	Mode      string             `json:"mode"`
	Timeframe string             `json:"timeframe"`
	Count     int                `json:"count"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Metrics   map[string]float64 `json:"metrics"`
}

// FrameRow is one node observation at one recorded frame.
type FrameRow struct {
	Time float64
	ID   string
	X    float64
	Y    float64
	VX   float64
	VY   float64
}

// Save writes one run. The metadata's ID and Timestamp are assigned here;
// frames may be empty when recording was disabled.
func (s *Store) Save(meta RunMetadata, nodes []*bubble.Node, frames []FrameRow) (string, error) {
	runID := fmt.Sprintf("run_%s", uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.writeNodes(runDir, nodes); err != nil {
		return "", err
	}
	if len(frames) > 0 {
		if err := s.writeFrames(runDir, frames); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func (s *Store) writeNodes(runDir string, nodes []*bubble.Node) error {
	f, err := os.Create(filepath.Join(runDir, "nodes.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"id", "symbol", "radius", "size_factor", "scale", "x", "y", "vx", "vy", "depth"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, n := range nodes {
		var scale, x, y, vx, vy float64
		if st := n.Layout; st != nil {
			scale, x, y, vx, vy = st.Scale, st.X, st.Y, st.VX, st.VY
		}
		row := []string{
			n.ID(),
			n.Instrument.Symbol,
			ffmt(n.Radius),
			ffmt(n.SizeFactor),
			ffmt(scale),
			ffmt(x),
			ffmt(y),
			ffmt(vx),
			ffmt(vy),
			ffmt(n.Depth),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeFrames(runDir string, frames []FrameRow) error {
	f, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "id", "x", "y", "vx", "vy"}); err != nil {
		return err
	}
	for _, fr := range frames {
		row := []string{ffmt(fr.Time), fr.ID, ffmt(fr.X), ffmt(fr.Y), ffmt(fr.VX), ffmt(fr.VY)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func ffmt(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List reads every run's metadata, skipping entries that fail to parse.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFrames reads a run's recorded motion. Malformed rows are skipped.
func (s *Store) LoadFrames(runID string) ([]FrameRow, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []FrameRow{}, nil
	}

	frames := make([]FrameRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 6 {
			continue
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			continue
		}
		x, _ := strconv.ParseFloat(rec[2], 64)
		y, _ := strconv.ParseFloat(rec[3], 64)
		vx, _ := strconv.ParseFloat(rec[4], 64)
		vy, _ := strconv.ParseFloat(rec[5], 64)
		frames = append(frames, FrameRow{Time: t, ID: rec[1], X: x, Y: y, VX: vx, VY: vy})
	}
	return frames, nil
}
