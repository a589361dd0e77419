// tetris is a falling-blocks game for the terminal.
//
// Usage:
//
//	tetris list                - List available variants
//	tetris play <variant>      - Play a variant
//	tetris menu                - Start menu to pick a variant interactively
//	tetris serve               - Start SSH server for remote play
//	tetris results <variant>   - Show the best results for a variant
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible piece order
//	--db <path>         - Set database path (default: ~/.tetris/results.db)
//	--log-level <level> - Set log level (debug, info, warn, error)
//
// Global flags can also be set in ~/.tetris.yaml or through TETRIS_* environment
// variables (TETRIS_FPS, TETRIS_SEED, TETRIS_DB, TETRIS_LOG_LEVEL).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-tetris/internal/core"

	// Import games to register them
	_ "github.com/vovakirdan/tui-tetris/internal/games/tetris"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tetris",
	Short: "Tetris - Stack falling blocks in your terminal",
	Long: `Tetris is a terminal falling-blocks game. Pieces drop onto a board,
full rows are cleared and the game ends when a new piece has no room.

Available commands:
  list     - Show all available variants
  play     - Play a specific variant directly
  menu     - Interactive variant picker menu
  serve    - Start SSH server for remote play
  results  - View best results

Examples:
  tetris list
  tetris play tetris
  tetris play tetris_mini --difficulty hard
  tetris menu
  tetris serve --ssh :2222
  tetris results tetris`,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.Int("fps", 60, "Tick rate (frames per second)")
	flags.Int64("seed", 0, "RNG seed (0 = random based on time)")
	flags.String("db", "~/.tetris/results.db", "Path to results database")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")

	for _, name := range []string{"fps", "seed", "db", "log-level"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resultsCmd)
}

// initConfig reads ~/.tetris.yaml (or ./.tetris.yaml) and the TETRIS_*
// environment into viper.
func initConfig() {
	viper.SetConfigName(".tetris")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}

	viper.SetEnvPrefix("TETRIS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// No config file is fine; flags and defaults apply.
	_ = viper.ReadInConfig()
}

// newLogger builds the process logger at the configured level.
func newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	level, err := log.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		logger.Warn("unknown log level, using info", "level", viper.GetString("log-level"))
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// runtimeConfig builds the runtime config from the global settings and the
// current terminal size.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: viper.GetInt("fps"),
		Seed:     viper.GetInt64("seed"),
	}
}

// dbPath is the results database path from flags, file or environment.
func dbPath() string {
	return viper.GetString("db")
}
