package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bubblesim/internal/bubble"
	"github.com/san-kum/bubblesim/internal/market"
	"github.com/san-kum/bubblesim/internal/sim"
)

const (
	DefaultWidth  = 1280.0
	DefaultHeight = 800.0
	DefaultFPS    = 30
	DefaultCount  = 50

	// How often a fixture-backed source re-reads its file.
	fixtureRefresh = 30 * time.Second
)

// Config holds everything a host needs to build and animate a scene.
type Config struct {
	// Source selects where instruments come from: "synthetic" or "fixture".
	Source  string `yaml:"source"`
	Fixture string `yaml:"fixture"`
	Count   int    `yaml:"count"`

	Mode      string  `yaml:"mode"`
	Timeframe string  `yaml:"timeframe"`
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	FPS       int     `yaml:"fps"`
	Seed      int64   `yaml:"seed"`

	Motion  MotionConfig  `yaml:"motion"`
	Logging LoggingConfig `yaml:"logging"`
}

// MotionConfig overrides stepper parameters. Zero values keep the stock
// tuning.
type MotionConfig struct {
	Bounce      float64 `yaml:"bounce"`
	Restitution float64 `yaml:"restitution"`
	Damping     float64 `yaml:"damping"`
	Wander      float64 `yaml:"wander"`
	Jitter      float64 `yaml:"jitter"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func DefaultConfig() *Config {
	return &Config{
		Source:    "synthetic",
		Count:     DefaultCount,
		Mode:      string(market.SizeByCap),
		Timeframe: string(market.TimeframeDay),
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		FPS:       DefaultFPS,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads a YAML config, overlaying it on the defaults so partial files
// only override what they name.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GetOptions maps the config onto build options. Unknown mode or timeframe
// names fall back to their defaults rather than erroring.
func (c *Config) GetOptions() bubble.Options {
	return bubble.Options{
		Timeframe: market.ParseTimeframe(c.Timeframe),
		Mode:      market.ParseSizeMode(c.Mode),
		Width:     c.Width,
		Height:    c.Height,
		Seed:      c.Seed,
	}
}

// GetSource builds the instrument source the config names. Anything other
// than a usable fixture falls back to the synthetic market.
func (c *Config) GetSource() market.Source {
	if c.Source == "fixture" && c.Fixture != "" {
		return market.NewFixtureSource(c.Fixture, fixtureRefresh)
	}
	return market.NewSyntheticSource(c.Count, c.Seed)
}

// ApplyMotion pushes non-zero motion overrides into the stepper.
func (c *Config) ApplyMotion(s *sim.Stepper) error {
	overrides := map[string]float64{
		"bounce":      c.Motion.Bounce,
		"restitution": c.Motion.Restitution,
		"damping":     c.Motion.Damping,
		"wander":      c.Motion.Wander,
		"jitter":      c.Motion.Jitter,
	}
	for name, v := range overrides {
		if v == 0 {
			continue
		}
		if err := s.SetParam(name, v); err != nil {
			return err
		}
	}
	return nil
}
