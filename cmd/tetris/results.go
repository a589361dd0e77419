package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tetris/internal/platform/tui"
	"github.com/vovakirdan/tui-tetris/internal/registry"
	"github.com/vovakirdan/tui-tetris/internal/storage"
)

var (
	flagLimit int
	flagClear bool
	flagRun   string
)

var resultsCmd = &cobra.Command{
	Use:   "results [variant]",
	Short: "Show the best results for a variant",
	Long: `Display the best results for the specified variant, ranked by cleared
lines and then by placed pieces.

Without a variant, shows a summary of every variant and the latest games.
A finished game prints its run ID; --run shows that game again.

Examples:
  tetris results
  tetris results tetris
  tetris results tetris_mini --limit 20
  tetris results tetris --clear
  tetris results --run 3f0c9e2a-8d47-4c1e-9b8a-2f6d5e4c3b21`,
	Args: cobra.MaximumNArgs(1),
	Run:  runResults,
}

func init() {
	resultsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of results to show")
	resultsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all results for the variant")
	resultsCmd.Flags().StringVar(&flagRun, "run", "", "Show one game by its run ID")
}

func runResults(cmd *cobra.Command, args []string) {
	if flagRun != "" || len(args) == 0 {
		runOverview()
		return
	}
	gameID := args[0]

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown variant %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'tetris list' to see available variants.")
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(dbPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening results database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearResults(gameID); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing results: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared results for %s.\n", game.Title())
		return
	}

	results, err := store.TopResults(gameID, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving results: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Best Results - %s\n", game.Title())
	fmt.Println()

	if len(results) == 0 {
		fmt.Println("No results recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'tetris play %s' to set the first result!\n", gameID)
		return
	}

	fmt.Printf("  %-4s  %-7s  %-7s  %-6s  %s\n", "Rank", "Lines", "Pieces", "Board", "Played")
	fmt.Printf("  %-4s  %-7s  %-7s  %-6s  %s\n", "----", "-----", "------", "-----", "------")

	now := time.Now()
	for i, r := range results {
		board := "-"
		if r.Width > 0 && r.Height > 0 {
			board = fmt.Sprintf("%dx%d", r.Width, r.Height)
		}
		fmt.Printf("  %-4d  %-7s  %-7s  %-6s  %s\n",
			i+1,
			humanize.Comma(int64(r.Lines)),
			humanize.Comma(int64(r.Pieces)),
			board,
			humanize.RelTime(r.CreatedAt, now, "ago", "from now"),
		)
	}

	if stats, err := store.Stats(gameID); err == nil && stats != nil {
		fmt.Println()
		fmt.Printf("Games: %s  Best: %s lines  Average: %.1f lines  Total: %s lines\n",
			humanize.Comma(int64(stats.GamesCount)),
			humanize.Comma(int64(stats.BestLines)),
			stats.AvgLines,
			humanize.Comma(int64(stats.TotalLines)),
		)
	}
}

// runOverview prints one run when --run is set, otherwise a summary of every
// variant followed by the latest games.
func runOverview() {
	store, err := storage.Open(dbPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening results database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagRun != "" {
		out, err := tui.DescribeRun(store, flagRun)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
		return
	}

	all, err := store.AllStats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving stats: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	fmt.Println("Results Summary")
	fmt.Println()
	fmt.Printf("  %-14s  %-6s  %-6s  %-8s  %s\n", "Variant", "Games", "Best", "Average", "Last played")
	fmt.Printf("  %-14s  %-6s  %-6s  %-8s  %s\n", "-------", "-----", "----", "-------", "-----------")
	for _, g := range registry.List() {
		st, ok := all[g.ID]
		if !ok {
			fmt.Printf("  %-14s  %-6d  %-6s  %-8s  %s\n", g.ID, 0, "-", "-", "never")
			continue
		}
		fmt.Printf("  %-14s  %-6s  %-6s  %-8.1f  %s\n",
			g.ID,
			humanize.Comma(int64(st.GamesCount)),
			humanize.Comma(int64(st.BestLines)),
			st.AvgLines,
			humanize.RelTime(st.LastPlayed, now, "ago", "from now"),
		)
	}

	recent, err := store.RecentResults(flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving recent games: %v\n", err)
		os.Exit(1)
	}
	if len(recent) == 0 {
		return
	}

	fmt.Println()
	fmt.Println("Recent games:")
	for _, r := range recent {
		fmt.Printf("  %s  %-12s  %5s lines  %s\n",
			r.RunID,
			r.GameID,
			humanize.Comma(int64(r.Lines)),
			humanize.RelTime(r.CreatedAt, now, "ago", "from now"),
		)
	}
}
