package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
	"github.com/vovakirdan/tui-tetris/internal/platform/tui"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagWatch      bool
)

var playCmd = &cobra.Command{
	Use:   "play <variant>",
	Short: "Play a variant",
	Long: `Start playing the specified variant.

Controls:
  Left/Right/A/D  - Move piece
  Up/W            - Rotate
  Down/S          - Soft drop
  Space           - Hard drop
  P               - Pause
  R               - Restart (after game over)
  Ctrl+S          - Screenshot
  Q/Ctrl+C        - Quit

Difficulty options:
  easy   - Start at the slowest gravity, speeds up with cleared lines
  normal - Start at 30% speed, speeds up with cleared lines
  hard   - Start at 70% speed, speeds up with cleared lines
  fixed  - No progression, stays at the config's initial level

With --watch the config file is re-read whenever it changes and gravity is
retuned without restarting the game.

Examples:
  tetris play tetris
  tetris play tetris_mini --difficulty easy
  tetris play tetris --config ./my-tetris.toml --watch`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config (YAML or TOML)")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload the game config when the file changes")
}

func runPlay(cmd *cobra.Command, args []string) {
	gameID := args[0]
	logger := newLogger("tetris")

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown variant %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'tetris list' to see available variants.")
		os.Exit(1)
	}

	tetris.SetConfigPath(flagConfig)
	tetris.SetDifficultyPreset(flagDifficulty)

	// A broken --config is reported up front instead of silently playing
	// with defaults.
	if flagConfig != "" {
		if _, err := config.LoadFile(flagConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(dbPath())
	if err != nil {
		logger.Warn("could not open results database", "error", err)
		store = nil
	}
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	opts := []tui.ModelOption{tui.WithLogger(logger)}
	if flagWatch {
		if w := startWatcher(logger); w != nil {
			defer w.Stop()
			opts = append(opts, tui.WithReloads(w.Reloads))
		}
	}

	if err := tui.Run(game, store, runtimeConfig(), opts...); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}

// startWatcher watches --config, or the config file found on the search path.
// It returns nil when there is nothing to watch.
func startWatcher(logger *log.Logger) *config.Watcher {
	path := flagConfig
	if path == "" {
		found, ok := config.Find()
		if !ok {
			logger.Warn("no config file to watch; using defaults")
			return nil
		}
		path = found
	}

	w, err := config.NewWatcher(path)
	if err != nil {
		logger.Warn("could not create config watcher", "error", err)
		return nil
	}
	if err := w.Start(); err != nil {
		w.Stop()
		logger.Warn("could not watch config", "path", path, "error", err)
		return nil
	}
	logger.Debug("watching config", "path", path)
	return w
}
