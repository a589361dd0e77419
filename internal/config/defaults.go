package config

import (
	_ "embed"
)

//go:embed defaults/tetris.yaml
var defaultTetrisYAML []byte

// DefaultTetrisConfig returns the hardcoded configuration, used when even the
// embedded YAML cannot be parsed.
func DefaultTetrisConfig() TetrisConfig {
	return TetrisConfig{
		Board: BoardConfig{Width: 10, Height: 20},
		Mini:  BoardConfig{Width: 8, Height: 14},
		Gravity: GravityConfig{
			FramesPerRow:    48, // 0.8s per row at 60fps
			MinFramesPerRow: 4,
			SoftDropRows:    1,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "lines",
				MaxAt: 100,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier: 8.0,
			},
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultTetrisYAML
}
