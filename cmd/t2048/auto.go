package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/solver"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

var (
	flagAutoGames        int
	flagAutoIntelligence int
	flagAutoSize         int
	flagAutoMaxMoves     int
	flagAutoWorkers      int
	flagAutoNoSave       bool
	flagAutoShowBoard    bool
)

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Let the solver play headless games",
	Long: `Play one or more games with the Monte-Carlo solver choosing every move,
without a UI. Each finished game is recorded in the solver_runs table and a
summary is printed at the end.

Unset flags fall back to the config file (and --difficulty).

Examples:
  t2048 auto
  t2048 auto --games 10 --intelligence 30
  t2048 auto --size 5 --workers 4 --seed 42 --board
  t2048 auto --max-moves 200 --log-level debug`,
	RunE: runAuto,
}

func init() {
	autoCmd.Flags().IntVar(&flagAutoGames, "games", 1, "Number of games to play")
	autoCmd.Flags().IntVar(&flagAutoIntelligence, "intelligence", 0, "Solver intelligence (default from config)")
	autoCmd.Flags().IntVar(&flagAutoSize, "size", 0, "Board size (default from config)")
	autoCmd.Flags().IntVar(&flagAutoMaxMoves, "max-moves", 0, "Stop each game after this many moves (0 = play to the end)")
	autoCmd.Flags().IntVar(&flagAutoWorkers, "workers", 0, "Rollout workers (default from config)")
	autoCmd.Flags().BoolVar(&flagAutoNoSave, "no-save", false, "Do not record runs in the database")
	autoCmd.Flags().BoolVar(&flagAutoShowBoard, "board", false, "Print the final board of each game")
}

func runAuto(cmd *cobra.Command, _ []string) error {
	logger := newLogger("t2048-auto")

	cfg, err := loadGameConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("intelligence") {
		cfg.Solver.Intelligence = flagAutoIntelligence
	}
	if flagAutoSize > 0 {
		cfg.Board.Size = flagAutoSize
	}
	if cmd.Flags().Changed("workers") {
		cfg.Solver.Workers = flagAutoWorkers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if flagAutoGames < 1 {
		return errors.New("--games must be at least 1")
	}

	var store *storage.Store
	if !flagAutoNoSave {
		store = openStore(logger)
		if store != nil {
			defer store.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting",
		"games", flagAutoGames,
		"size", cfg.Board.Size,
		"intelligence", cfg.Solver.Intelligence,
		"workers", cfg.Solver.Workers,
	)

	var results []solver.Result
	for i := range flagAutoGames {
		seed := flagSeed
		if seed != 0 {
			seed += int64(i)
		}

		res, err := solver.Play(ctx, solver.PlayConfig{
			Size:         cfg.Board.Size,
			InitialTiles: cfg.Board.InitialTiles,
			MaxMoves:     flagAutoMaxMoves,
			Seed:         seed,
			Solver: solver.Config{
				Intelligence: cfg.Solver.Intelligence,
				Workers:      cfg.Solver.Workers,
				Seed:         cfg.Solver.Seed,
				Logger:       logger.WithPrefix("solver"),
			},
		})
		if errors.Is(err, context.Canceled) {
			logger.Warn("interrupted", "game", i+1, "moves", res.Moves, "score", res.Score)
			break
		}
		if err != nil {
			return err
		}

		results = append(results, res)
		logger.Info("game finished",
			"game", i+1,
			"score", res.Score,
			"max", res.MaxTile,
			"moves", res.Moves,
			"over", res.GameOver,
			"elapsed", res.Duration.Round(time.Millisecond),
		)
		if flagAutoShowBoard {
			fmt.Println(res.Board.String())
		}

		if store != nil {
			run := storage.SolverRun{
				Intelligence: cfg.Solver.Intelligence,
				BoardSize:    cfg.Board.Size,
				Score:        res.Score,
				MaxTile:      res.MaxTile,
				Moves:        res.Moves,
				Duration:     res.Duration,
			}
			if _, err := store.SaveSolverRun(run); err != nil {
				logger.Warn("could not record run", "error", err)
			}
		}
	}

	printAutoSummary(results)
	return nil
}

// printAutoSummary prints the aggregate of the finished games.
func printAutoSummary(results []solver.Result) {
	if len(results) == 0 {
		fmt.Println("No games finished.")
		return
	}

	total, best, bestTile, moves := 0, 0, 0, 0
	tiles := map[int]int{}
	for _, r := range results {
		total += r.Score
		best = max(best, r.Score)
		bestTile = max(bestTile, r.MaxTile)
		moves += r.Moves
		tiles[r.MaxTile]++
	}

	fmt.Println()
	fmt.Printf("Games:      %d\n", len(results))
	fmt.Printf("Avg score:  %d\n", total/len(results))
	fmt.Printf("Best score: %d\n", best)
	fmt.Printf("Best tile:  %d\n", bestTile)
	fmt.Printf("Avg moves:  %d\n", moves/len(results))

	fmt.Println()
	fmt.Println("  Max tile  Games")
	for tile := bestTile; tile >= 2; tile /= 2 {
		if n := tiles[tile]; n > 0 {
			fmt.Printf("  %-8d  %d\n", tile, n)
		}
	}
}
