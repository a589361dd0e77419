package config

import "math"

// DifficultyManager calculates gravity based on lines cleared or time played.
type DifficultyManager struct {
	cfg          DifficultyConfig
	initialLevel float64
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{
		cfg:          cfg,
		initialLevel: clampF(cfg.InitialLevel, 0.0, 1.0),
	}
}

// IsEnabled returns whether difficulty progression is active.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled && d.cfg.Progression.Type != "none"
}

// Level returns the current difficulty level (0.0 to 1.0) based on lines/ticks.
func (d *DifficultyManager) Level(lines int, ticks int) float64 {
	if !d.IsEnabled() {
		return d.initialLevel
	}

	maxAt := float64(d.cfg.Progression.MaxAt)
	if maxAt <= 0 {
		maxAt = 1 // Prevent division by zero
	}

	var progress float64
	switch d.cfg.Progression.Type {
	case "lines", "":
		progress = float64(lines) / maxAt
	case "time":
		progress = float64(ticks) / maxAt
	default:
		return d.initialLevel
	}

	progress = clampF(progress, 0.0, 1.0)

	// Interpolate from initial level to 1.0
	return d.initialLevel + progress*(1.0-d.initialLevel)
}

// Speed returns the gravity speed factor: 1 at level 0, 1+SpeedMultiplier at level 1.
func (d *DifficultyManager) Speed(lines int, ticks int) float64 {
	return 1.0 + d.Level(lines, ticks)*d.cfg.Scaling.SpeedMultiplier
}

// FramesPerRow returns how many frames a piece waits before falling one row.
// The result never drops below minFrames or 1.
func (d *DifficultyManager) FramesPerRow(base, minFrames, lines, ticks int) int {
	speed := d.Speed(lines, ticks)
	if speed <= 0 {
		speed = 1
	}
	frames := int(math.Round(float64(base) / speed))
	return max(frames, minFrames, 1)
}

// clampF restricts a float64 to [lo, hi].
func clampF(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}
