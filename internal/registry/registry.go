// Package registry keeps the factories of every playable variant.
// Variants register themselves in init() functions so the CLI, the menu and
// the SSH server can list and create them without hardcoded imports.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-tetris/internal/core"
)

// Game is what the platform drives: one fixed-rate frame at a time.
// Implementations hold pure simulation logic; the platform owns input mapping,
// timing and terminal output.
type Game interface {
	// ID returns the unique variant identifier (e.g. "tetris", "tetris_mini").
	// Used for CLI arguments and result storage.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset starts a fresh game. Called once at start and again on restart.
	Reset(cfg core.RuntimeConfig)

	// Step advances one frame with the actions collected since the last one.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current state into a pre-cleared screen buffer.
	Render(dst *core.Screen)

	// State returns the current status (lines, pieces, game over, paused).
	State() core.GameState
}

// GameInfo describes a registered variant.
type GameInfo struct {
	ID    string
	Title string
}

// Factory creates a new game instance.
type Factory func() Game

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
)

// Register adds a variant. It panics on a duplicate ID, which is a
// programming error caught at init time.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns all registered variants sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(factories))
	for id := range factories {
		result = append(result, GameInfo{ID: id, Title: titles[id]})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates a variant by ID.
func Create(id string) (Game, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}
	return f(), nil
}

// Exists reports whether a variant with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
