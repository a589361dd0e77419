// Package config provides YAML/TOML game configuration loading and
// difficulty management for the tetris variants.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Board size limits. A board must be wide enough to spawn the widest shape at
// the centre column and tall enough to spawn the tallest one.
const (
	MinBoardWidth  = 7
	MinBoardHeight = 4
	MaxBoardWidth  = 40
	MaxBoardHeight = 40
)

// TetrisConfig contains all configuration for the tetris variants.
type TetrisConfig struct {
	Board      BoardConfig      `yaml:"board" toml:"board"`
	Mini       BoardConfig      `yaml:"mini" toml:"mini"`
	Gravity    GravityConfig    `yaml:"gravity" toml:"gravity"`
	Difficulty DifficultyConfig `yaml:"difficulty" toml:"difficulty"`
}

// BoardConfig is a grid size in cells.
type BoardConfig struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
}

// GravityConfig controls how fast pieces fall, in platform frames.
type GravityConfig struct {
	FramesPerRow    int `yaml:"frames_per_row" toml:"frames_per_row"`         // Frames per row at the lowest level
	MinFramesPerRow int `yaml:"min_frames_per_row" toml:"min_frames_per_row"` // Fastest gravity allowed
	SoftDropRows    int `yaml:"soft_drop_rows" toml:"soft_drop_rows"`         // Extra rows per soft drop press
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled" toml:"enabled"`
	InitialLevel float64           `yaml:"initial_level" toml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression" toml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling" toml:"scaling"`
}

// ProgressionConfig defines how difficulty increases during a game.
type ProgressionConfig struct {
	Type  string `yaml:"type" toml:"type"`     // "lines", "time", or "none"
	MaxAt int    `yaml:"max_at" toml:"max_at"` // Lines/frames at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier" toml:"speed_multiplier"` // Gravity speed-up at max difficulty
}

// Validate checks the config for values the game cannot run with.
func (c TetrisConfig) Validate() error {
	var errs []error
	errs = append(errs, c.Board.validate("board"), c.Mini.validate("mini"))

	g := c.Gravity
	if g.FramesPerRow <= 0 {
		errs = append(errs, fmt.Errorf("config: gravity.frames_per_row must be positive, got %d: %w", g.FramesPerRow, ErrInvalidConfig))
	}
	if g.MinFramesPerRow <= 0 || g.MinFramesPerRow > g.FramesPerRow {
		errs = append(errs, fmt.Errorf("config: gravity.min_frames_per_row must be in [1, %d], got %d: %w", g.FramesPerRow, g.MinFramesPerRow, ErrInvalidConfig))
	}
	if g.SoftDropRows < 0 {
		errs = append(errs, fmt.Errorf("config: gravity.soft_drop_rows must not be negative: %w", ErrInvalidConfig))
	}

	switch c.Difficulty.Progression.Type {
	case "lines", "time", "none", "":
	default:
		errs = append(errs, fmt.Errorf("config: unknown progression type %q: %w", c.Difficulty.Progression.Type, ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

func (b BoardConfig) validate(name string) error {
	if b.Width < MinBoardWidth || b.Width > MaxBoardWidth {
		return fmt.Errorf("config: %s.width must be in [%d, %d], got %d: %w", name, MinBoardWidth, MaxBoardWidth, b.Width, ErrInvalidConfig)
	}
	if b.Height < MinBoardHeight || b.Height > MaxBoardHeight {
		return fmt.Errorf("config: %s.height must be in [%d, %d], got %d: %w", name, MinBoardHeight, MaxBoardHeight, b.Height, ErrInvalidConfig)
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// ApplyPreset adjusts the difficulty section for a named preset.
// An empty preset leaves the config untouched.
func ApplyPreset(cfg *TetrisConfig, preset DifficultyPreset) {
	switch preset {
	case "":
		return
	case DifficultyFixed:
		cfg.Difficulty.Enabled = false
	default:
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}
}
