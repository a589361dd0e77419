// Package tetris adapts the falling-block engine to the game platform:
// input actions become engine moves, gravity runs on a frame cadence and the
// board is drawn into a screen buffer.
package tetris

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	tcore "github.com/vovakirdan/tui-tetris/internal/games/tetris/core"
	"github.com/vovakirdan/tui-tetris/internal/registry"
)

// Variant selects which board size from the config a game uses.
type Variant string

const (
	VariantStandard Variant = "tetris"
	VariantMini     Variant = "tetris_mini"
)

// Layout constants, in screen cells.
const (
	hudHeight = 2 // HUD line plus separator
	cellWidth = 2 // Each board cell is drawn two characters wide
)

// Game implements registry.Game on top of the engine board.
type Game struct {
	variant    Variant
	runtime    core.RuntimeConfig
	cfg        config.TetrisConfig
	difficulty *config.DifficultyManager
	rng        *rand.Rand
	board      *tcore.Board
	boardErr   error // Set when the configured board could not be built

	// newSelector builds the piece source for a seed. Tests swap it for a
	// scripted sequence.
	newSelector func(seed int64) tcore.Selector

	frames       int // Frames since reset
	gravityTicks int // Frames since the last gravity step
	paused       bool
	tooSmall     bool
}

// configPath stores the custom config path set via CLI
var configPath string
var difficultyPreset config.DifficultyPreset

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset.
func SetDifficultyPreset(preset string) {
	switch preset {
	case "easy":
		difficultyPreset = config.DifficultyEasy
	case "normal":
		difficultyPreset = config.DifficultyNormal
	case "hard":
		difficultyPreset = config.DifficultyHard
	case "fixed":
		difficultyPreset = config.DifficultyFixed
	default:
		difficultyPreset = "" // Use config default
	}
}

// New creates the standard 10x20 variant.
func New() *Game {
	return NewVariant(VariantStandard)
}

// NewMini creates the small sprint board variant.
func NewMini() *Game {
	return NewVariant(VariantMini)
}

// NewVariant creates a game for the given variant.
func NewVariant(v Variant) *Game {
	return &Game{
		variant: v,
		newSelector: func(seed int64) tcore.Selector {
			return tcore.NewRandomSelector(seed)
		},
	}
}

func init() {
	registry.Register(string(VariantStandard), func() registry.Game {
		return New()
	})
	registry.Register(string(VariantMini), func() registry.Game {
		return NewMini()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return string(g.variant)
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.variant == VariantMini {
		return "Tetris (Mini)"
	}
	return "Tetris"
}

// Reset loads the config and starts a fresh board.
func (g *Game) Reset(rc core.RuntimeConfig) {
	cfg, err := config.Load(configPath)
	if err != nil {
		cfg = config.DefaultTetrisConfig()
	}
	config.ApplyPreset(&cfg, difficultyPreset)
	g.ResetWithConfig(rc, cfg)
}

// ResetWithConfig starts a fresh board using cfg instead of loading one.
func (g *Game) ResetWithConfig(rc core.RuntimeConfig, cfg config.TetrisConfig) {
	if rc.TickRate <= 0 {
		rc.TickRate = 60
	}
	g.runtime = rc
	g.cfg = cfg
	g.difficulty = config.NewDifficultyManager(cfg.Difficulty)
	g.rng = rand.New(rand.NewSource(rc.Seed))
	g.frames = 0
	g.gravityTicks = 0
	g.paused = false

	size := g.boardSize()
	g.board, g.boardErr = tcore.New(size.Width, size.Height, g.newSelector(g.rng.Int63()))
	g.tooSmall = !g.fits(rc.ScreenW, rc.ScreenH)
}

// ApplyConfig retunes gravity and difficulty from a reloaded config without
// touching the board. A new board size takes effect on the next restart.
func (g *Game) ApplyConfig(cfg config.TetrisConfig) {
	config.ApplyPreset(&cfg, difficultyPreset)
	g.cfg = cfg
	g.difficulty = config.NewDifficultyManager(cfg.Difficulty)
}

// Resize updates the screen size while keeping the game going.
func (g *Game) Resize(w, h int) {
	g.runtime.ScreenW = w
	g.runtime.ScreenH = h
	g.tooSmall = !g.fits(w, h)
}

// boardSize returns the configured size for this variant.
func (g *Game) boardSize() config.BoardConfig {
	if g.variant == VariantMini {
		return g.cfg.Mini
	}
	return g.cfg.Board
}

// requiredSize is the screen area the board and HUD need.
func (g *Game) requiredSize() (w, h int) {
	if g.board == nil {
		return 0, 0
	}
	return g.board.Width()*cellWidth + 2, g.board.Height() + 2 + hudHeight
}

// fits reports whether a w*h screen can show the whole board.
func (g *Game) fits(w, h int) bool {
	rw, rh := g.requiredSize()
	return w >= rw && h >= rh
}

// Board returns the engine board, or nil if it could not be built.
func (g *Game) Board() *tcore.Board {
	return g.board
}

// Err returns why the board could not be built, if it could not.
func (g *Game) Err() error {
	return g.boardErr
}

// Step advances the game by one frame.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.board == nil {
		return core.StepResult{State: g.State()}
	}

	// Handle restart
	if in.Has(core.ActionRestart) && g.board.IsLost() {
		g.ResetWithConfig(core.RuntimeConfig{
			ScreenW:  g.runtime.ScreenW,
			ScreenH:  g.runtime.ScreenH,
			TickRate: g.runtime.TickRate,
			Seed:     g.rng.Int63(),
		}, g.cfg)
		return core.StepResult{State: g.State()}
	}

	// Handle pause toggle
	if in.Has(core.ActionPause) && !g.board.IsLost() {
		g.paused = !g.paused
	}

	if g.board.IsLost() || g.paused || g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	g.frames++
	g.applyInput(in)

	g.gravityTicks++
	if g.gravityTicks >= g.FramesPerRow() {
		g.gravityTicks = 0
		g.board.Tick()
	}

	return core.StepResult{State: g.State()}
}

// applyInput turns the frame's actions into engine moves. Moves the engine
// rejects are simply dropped.
func (g *Game) applyInput(in core.InputFrame) {
	for range in.Count(core.ActionLeft) {
		g.board.Shift(tcore.Left)
	}
	for range in.Count(core.ActionRight) {
		g.board.Shift(tcore.Right)
	}
	for range in.Count(core.ActionRotate) {
		g.board.Rotate()
	}
	for range in.Count(core.ActionSoftDrop) * g.cfg.Gravity.SoftDropRows {
		g.board.Tick()
	}
	if in.Has(core.ActionHardDrop) {
		g.hardDrop()
		g.gravityTicks = 0
	}
}

// hardDrop ticks until the current block is fixed.
func (g *Game) hardDrop() {
	placed := g.board.PiecesPlaced()
	for !g.board.IsLost() && g.board.PiecesPlaced() == placed {
		g.board.Tick()
	}
}

// FramesPerRow returns the current gravity interval in frames.
func (g *Game) FramesPerRow() int {
	return g.difficulty.FramesPerRow(
		g.cfg.Gravity.FramesPerRow,
		g.cfg.Gravity.MinFramesPerRow,
		g.board.LinesCleared(),
		g.frames,
	)
}

// level maps the difficulty level to 1..10 for display.
func (g *Game) level() int {
	return 1 + int(g.difficulty.Level(g.board.LinesCleared(), g.frames)*9)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.board == nil {
		return core.GameState{GameOver: true}
	}
	return core.GameState{
		Lines:    g.board.LinesCleared(),
		Pieces:   g.board.PiecesPlaced(),
		Level:    g.level(),
		GameOver: g.board.IsLost(),
		Paused:   g.paused,
	}
}

// BoardSize returns the dimensions of the current board, or zeros if there is
// none.
func (g *Game) BoardSize() (w, h int) {
	if g.board == nil {
		return 0, 0
	}
	return g.board.Width(), g.board.Height()
}

// Frames returns the number of simulated frames since reset.
func (g *Game) Frames() int {
	return g.frames
}

// Snapshot returns a compact view of the game for determinism tests.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Frames: g.frames,
		Paused: g.paused,
	}
	if g.board == nil {
		return s
	}
	s.Lines = g.board.LinesCleared()
	s.Pieces = g.board.PiecesPlaced()
	s.Lost = g.board.IsLost()
	s.Current = g.board.Current().Type()
	s.Grid = Grid(g.board)
	return s
}

// Snapshot captures the observable state of a game.
type Snapshot struct {
	Frames  int
	Lines   int
	Pieces  int
	Lost    bool
	Paused  bool
	Current tcore.Kind
	Grid    []string // One string per row, kind letters or '.'
}

// Grid renders the board as rows of kind letters, '.' for empty cells.
func Grid(b *tcore.Board) []string {
	rows := make([]string, b.Height())
	line := make([]rune, 0, b.Width())
	for pos := range b.Positions() {
		if kind, ok := b.Get(pos); ok {
			line = append(line, []rune(kind.String())[0])
		} else {
			line = append(line, '.')
		}
		if pos.X == b.Width()-1 {
			rows[pos.Y] = string(line)
			line = line[:0]
		}
	}
	return rows
}

// String summarizes the game for debug output.
func (s Snapshot) String() string {
	return fmt.Sprintf("frames=%d lines=%d pieces=%d lost=%v current=%s", s.Frames, s.Lines, s.Pieces, s.Lost, s.Current)
}
