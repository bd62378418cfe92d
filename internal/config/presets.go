package config

import "sort"

// Presets are named starting points for the live view and headless runs.
// They are complete configs; hosts may still override individual fields.
var Presets = map[string]*Config{
	"default": {
		Source: "synthetic", Count: DefaultCount,
		Mode: "cap", Timeframe: "24h",
		Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS,
	},
	"dense": {
		Source: "synthetic", Count: 120,
		Mode: "cap", Timeframe: "24h",
		Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS,
	},
	"sparse": {
		Source: "synthetic", Count: 18,
		Mode: "cap", Timeframe: "24h",
		Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS,
	},
	"calm": {
		Source: "synthetic", Count: DefaultCount,
		Mode: "cap", Timeframe: "24h",
		Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS,
		Motion: MotionConfig{Wander: 6, Jitter: 1.5, Damping: 0.988},
	},
	"frantic": {
		Source: "synthetic", Count: 80,
		Mode: "cap", Timeframe: "24h",
		Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS,
		Motion: MotionConfig{Wander: 28, Jitter: 9, Restitution: 0.6, Damping: 0.996},
	},
	"yearly": {
		Source: "synthetic", Count: DefaultCount,
		Mode: "percent", Timeframe: "365d",
		Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS,
	},
}

// PresetInfo describes each preset for menus.
var PresetInfo = map[string]string{
	"default": "fifty instruments, cap sizing",
	"dense":   "crowded board, 120 instruments",
	"sparse":  "a handful of large bubbles",
	"calm":    "gentle drift, heavy damping",
	"frantic": "fast wander, bouncy contacts",
	"yearly":  "percent sizing over a year",
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

// ListPresets returns preset names in stable order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
