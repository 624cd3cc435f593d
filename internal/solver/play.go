package solver

import (
	"context"
	"math/rand"
	"time"

	"github.com/vovakirdan/tui-2048/internal/games/t2048/engine"
)

// PlayConfig describes one headless solver game.
type PlayConfig struct {
	Size         int   // Board dimension; 0 means engine.DefaultBoardSize
	InitialTiles int   // Tiles spawned before the first move
	MaxMoves     int   // Stop after this many moves; 0 plays to game over
	Seed         int64 // Seeds both the board and the solver; 0 means from the clock
	Solver       Config
}

// Result is the outcome of a headless game.
type Result struct {
	Score    int
	MaxTile  int
	Moves    int
	GameOver bool // false when MaxMoves stopped the game
	Board    engine.Snapshot
	Duration time.Duration
}

// Play runs a game where the solver picks every move. A cancelled ctx stops
// the game between searches and returns the partial result with ctx.Err().
func Play(ctx context.Context, cfg PlayConfig) (Result, error) {
	size := cfg.Size
	if size == 0 {
		size = engine.DefaultBoardSize
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	board := engine.NewEngine(size, rng, nil)
	for range cfg.InitialTiles {
		board.SpawnRandomTile()
	}

	solverCfg := cfg.Solver
	if solverCfg.Seed == 0 {
		solverCfg.Seed = rng.Int63()
	}
	s := New(board, solverCfg)

	start := time.Now()
	res := Result{}
	for !board.IsGameOver() {
		if cfg.MaxMoves > 0 && res.Moves >= cfg.MaxMoves {
			break
		}
		dir, err := s.FindBestMoveContext(ctx)
		if err != nil {
			return finish(res, board, start), err
		}
		// A search whose rollouts all score zero can pick a blocked direction.
		if !board.CanMove(dir) {
			fallback, ok := board.FirstMovable()
			if !ok {
				break
			}
			dir = fallback
		}
		board.Move(dir)
		res.Moves++
	}

	res = finish(res, board, start)
	res.GameOver = board.IsGameOver()
	s.logger.Debug("game finished",
		"score", res.Score,
		"max", res.MaxTile,
		"moves", res.Moves,
		"elapsed", res.Duration,
	)
	return res, nil
}

func finish(res Result, board *engine.Engine, start time.Time) Result {
	res.Score = board.Score()
	res.MaxTile = board.MaxTile()
	res.Board = board.Snapshot()
	res.Duration = time.Since(start)
	return res
}
