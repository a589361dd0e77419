package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

// statusTTL is how long a status line stays on screen, in frames.
const statusTTL = 180

// configurable is implemented by games that accept a reloaded config.
type configurable interface {
	ApplyConfig(cfg config.TetrisConfig)
}

// resizable is implemented by games that can follow a window resize without
// restarting.
type resizable interface {
	Resize(w, h int)
}

// recorded is implemented by games that report the details stored with a
// finished result.
type recorded interface {
	Frames() int
	BoardSize() (w, h int)
}

// Model is the Bubble Tea model that runs one game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	config     core.RuntimeConfig
	keyMapper  *KeyMapper
	inputFrame core.InputFrame
	gameState  core.GameState
	reloads    <-chan config.Reload
	logger     *log.Logger

	status      string
	statusTicks int

	inSession   bool // Back returns to the menu instead of being ignored
	quitting    bool
	backToMenu  bool
	resultSaved bool // Whether the result has been saved for current game over
	lastResult  *storage.Result
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithReloads feeds config reloads from a watcher into the running game.
func WithReloads(ch <-chan config.Reload) ModelOption {
	return func(m *Model) {
		m.reloads = ch
	}
}

// WithLogger sets the logger used for storage and reload problems.
func WithLogger(l *log.Logger) ModelOption {
	return func(m *Model) {
		m.logger = l
	}
}

// withSession makes Back leave the game for the menu.
func withSession() ModelOption {
	return func(m *Model) {
		m.inSession = true
	}
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts ...ModelOption) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	m := Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		config:     cfg,
		keyMapper:  NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the game and the tick loop.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tea.Batch(tickCmd(m.config.TickRate), waitForReload(m.reloads))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()

	case ReloadMsg:
		return m.handleReload(config.Reload(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMapper.Game.Screenshot) {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}

	if action == core.ActionBack {
		if m.inSession && (m.gameState.GameOver || m.gameState.Paused) {
			m.backToMenu = true
		}
		return m, nil
	}

	if action != core.ActionNone {
		m.inputFrame.Set(action)
	}
	return m, nil
}

// handleResize keeps the game running when it can follow the new size.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	if r, ok := m.game.(resizable); ok {
		r.Resize(msg.Width, msg.Height)
	} else if !m.gameState.GameOver {
		m.game.Reset(m.config)
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.statusTicks > 0 {
		m.statusTicks--
	}

	// Restart is handled by the game itself; a new round needs a new save.
	result := m.game.Step(m.inputFrame)
	if m.gameState.GameOver && !result.State.GameOver {
		m.resultSaved = false
	}
	m.gameState = result.State

	// Save the result on game over (once)
	if m.gameState.GameOver && !m.resultSaved {
		m.saveResult()
		m.resultSaved = true
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// saveResult records the finished game. Games that never placed a piece are
// not worth keeping.
func (m *Model) saveResult() {
	if m.store == nil || m.gameState.Pieces == 0 {
		return
	}

	r := storage.Result{
		GameID: m.game.ID(),
		Lines:  m.gameState.Lines,
		Pieces: m.gameState.Pieces,
	}
	if rec, ok := m.game.(recorded); ok {
		r.Ticks = rec.Frames()
		r.Width, r.Height = rec.BoardSize()
	}

	saved, err := m.store.SaveResult(r)
	if err != nil {
		m.setStatus("could not save result")
		if m.logger != nil {
			m.logger.Warn("could not save result", "game", r.GameID, "error", err)
		}
		return
	}
	m.lastResult = &saved
	m.setStatus("saved run " + saved.RunID.String())
}

// handleReload applies a reloaded config and waits for the next one.
func (m Model) handleReload(r config.Reload) (tea.Model, tea.Cmd) {
	next := waitForReload(m.reloads)

	if r.Err != nil {
		m.setStatus("config error: " + r.Err.Error())
		if m.logger != nil {
			m.logger.Warn("config reload failed", "error", r.Err)
		}
		return m, next
	}

	if c, ok := m.game.(configurable); ok {
		c.ApplyConfig(r.Config)
		m.setStatus("config reloaded")
		if m.logger != nil {
			m.logger.Info("config reloaded", "game", m.game.ID())
		}
	}
	return m, next
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusTicks = statusTTL
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".tetris", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.setStatus("screenshot failed")
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))

	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.setStatus("screenshot failed")
		return
	}
	m.setStatus("saved " + path)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	if m.statusTicks > 0 && m.screen.Height() > 0 {
		m.screen.DrawColorText(1, m.screen.Height()-1, m.status, core.ColorYellow)
	}
	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// GameState returns the state reported by the last simulated frame.
func (m Model) GameState() core.GameState {
	return m.gameState
}

// LastResult returns the most recently saved result, if any.
func (m Model) LastResult() *storage.Result {
	return m.lastResult
}

// Run starts the Bubble Tea program with the given model.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts ...ModelOption) error {
	model := NewModel(game, store, cfg, opts...)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
