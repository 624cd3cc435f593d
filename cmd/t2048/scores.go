package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/platform/tui"
	"github.com/vovakirdan/tui-2048/internal/registry"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

var (
	flagScoresInteractive bool
	flagScoresSolver      bool
	flagScoresLimit       int
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show high scores",
	Long: `Display the top high scores for a mode (default "2048"), or a summary of
headless solver runs grouped by intelligence.

Examples:
  t2048 scores
  t2048 scores 2048_ai
  t2048 scores --solver
  t2048 scores --interactive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVarP(&flagScoresInteractive, "interactive", "i", false, "Open the interactive scoreboard")
	scoresCmd.Flags().BoolVar(&flagScoresSolver, "solver", false, "Show solver run statistics")
	scoresCmd.Flags().IntVarP(&flagScoresLimit, "limit", "n", 10, "Number of scores to show")
}

func runScores(cmd *cobra.Command, args []string) error {
	gameID := "2048"
	if len(args) > 0 {
		gameID = args[0]
	}

	// Check if mode exists
	if !flagScoresSolver && !registry.Exists(gameID) {
		return fmt.Errorf("unknown mode %q (run 't2048 list' to see available modes)", gameID)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening scores database: %w", err)
	}
	defer store.Close()

	switch {
	case flagScoresInteractive:
		cfg := runtimeConfig()
		if _, err := tui.RunScoreboard(store, cfg.ScreenW, cfg.ScreenH); err != nil {
			return err
		}
	case flagScoresSolver:
		if err := printSolverSummary(store); err != nil {
			return fmt.Errorf("retrieving solver runs: %w", err)
		}
	default:
		if err := printTopScores(store, gameID); err != nil {
			return fmt.Errorf("retrieving scores: %w", err)
		}
	}
	return nil
}

func printTopScores(store *storage.Store, gameID string) error {
	game, err := registry.Create(gameID)
	if err != nil {
		return err
	}

	scores, err := store.TopScores(gameID, flagScoresLimit)
	if err != nil {
		return err
	}

	fmt.Printf("High Scores - %s\n", game.Title())
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 't2048 play %s' to set the first high score!\n", gameID)
		return nil
	}

	fmt.Printf("  %-4s  %-10s  %-8s  %s\n", "Rank", "Score", "Tile", "Date")
	fmt.Printf("  %-4s  %-10s  %-8s  %s\n", "----", "-----", "----", "----")

	for i, entry := range scores {
		dateStr := entry.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-10d  %-8d  %s\n", i+1, entry.Score, entry.MaxTile, dateStr)
	}

	stats, err := store.GetGameStats(gameID)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Best: %d  Best tile: %d  Games: %d\n", stats.HighScore, stats.BestTile, stats.GamesCount)
	return nil
}

func printSolverSummary(store *storage.Store) error {
	sums, err := store.SolverSummaries()
	if err != nil {
		return err
	}

	fmt.Println("Solver runs")
	fmt.Println()

	if len(sums) == 0 {
		fmt.Println("No solver runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 't2048 auto --games 5' to record some.")
		return nil
	}

	fmt.Printf("  %-4s  %-5s  %-9s  %-9s  %-6s  %s\n", "IQ", "Runs", "Avg", "Best", "Tile", "Moves")
	fmt.Printf("  %-4s  %-5s  %-9s  %-9s  %-6s  %s\n", "--", "----", "---", "----", "----", "-----")
	for _, s := range sums {
		fmt.Printf("  %-4d  %-5d  %-9.0f  %-9d  %-6d  %.0f\n",
			s.Intelligence, s.Runs, s.AvgScore, s.BestScore, s.BestTile, s.AvgMoves)
	}

	runs, err := store.SolverRuns(5)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("Latest:")
	for _, r := range runs {
		fmt.Printf("  %s  IQ %-3d  %dx%d  score %-7d  tile %-5d  %d moves in %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Intelligence, r.BoardSize, r.BoardSize,
			r.Score, r.MaxTile, r.Moves, r.Duration)
	}
	return nil
}
