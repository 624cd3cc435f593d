// Package solver picks 2048 moves by Monte-Carlo rollouts: every candidate
// direction is scored by the average final score of many random playouts
// started from a copy of the live board.
package solver

import (
	"context"
	"io"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tui-2048/internal/games/t2048/engine"
)

// DefaultIntelligence matches the classic slider's starting position.
const DefaultIntelligence = 50

// BoardSource is the read-only view of the live game the solver needs.
// *engine.Engine satisfies it.
type BoardSource interface {
	Snapshot() engine.Snapshot
	Score() int
}

// Config controls a Solver.
type Config struct {
	Intelligence int         // Search effort; 0 means always pick randomly
	Workers      int         // Rollout goroutines; 0 means runtime.NumCPU()
	Seed         int64       // 0 means seed from the clock
	Logger       *log.Logger // nil discards
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Intelligence: DefaultIntelligence,
	}
}

// Stats describes the most recent search.
type Stats struct {
	NumRuns  int              // Rollouts per direction
	Averages [4]int           // Average final score, indexed by Direction
	Best     engine.Direction // Direction returned
	Random   bool             // No rollouts ran; Best was drawn at random
	Elapsed  time.Duration
}

// Solver chooses directions for a live game. Searches are serialized;
// SetIntelligence may be called from any goroutine.
type Solver struct {
	source       BoardSource
	intelligence atomic.Int64
	workers      int
	logger       *log.Logger

	mu    sync.Mutex // serializes searches; guards rng and stats
	rng   *rand.Rand
	stats Stats
}

// New creates a solver reading positions from source.
func New(source BoardSource, cfg Config) *Solver {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Solver{
		source:  source,
		workers: workers,
		logger:  logger,
		rng:     rand.New(rand.NewSource(seed)),
	}
	s.intelligence.Store(int64(cfg.Intelligence))
	return s
}

// Intelligence returns the current effort setting.
func (s *Solver) Intelligence() int {
	return int(s.intelligence.Load())
}

// SetIntelligence changes the effort used by the next search.
func (s *Solver) SetIntelligence(v int) {
	s.intelligence.Store(int64(v))
}

// Workers returns the size of the rollout pool.
func (s *Solver) Workers() int {
	return s.workers
}

// NumRuns returns how many rollouts per direction a search at the given
// score performs: floor(intelligence * (0.1 + 0.00005 * score)).
func (s *Solver) NumRuns(score int) int {
	return NumRuns(s.Intelligence(), score)
}

// NumRuns is the rollout budget formula. Negative results are reported as 0.
func NumRuns(intelligence, score int) int {
	n := int(float64(intelligence) * (0.1 + 0.00005*float64(score)))
	return max(n, 0)
}

// Stats returns a copy of the last search's statistics.
func (s *Solver) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// EvaluateDirection plays dir and then uniformly random moves on a clone of
// snap until the game ends, returning the clone's final score. If dir moves
// nothing the clone's score (0) is returned at once. snap is never modified.
func EvaluateDirection(snap engine.Snapshot, dir engine.Direction, rng engine.Rand) int {
	game := engine.CloneFrom(snap, rng)
	if !game.Move(dir) {
		return game.Score()
	}
	for !game.IsGameOver() {
		game.Move(engine.RandomDirection(rng))
	}
	return game.Score()
}

// FindBestMove returns the direction with the highest average rollout score.
func (s *Solver) FindBestMove() engine.Direction {
	// Background is never cancelled, so no error is possible.
	dir, _ := s.FindBestMoveContext(context.Background())
	return dir
}

// FindBestMoveContext is FindBestMove with cancellation. Workers stop between
// rollouts once ctx is done and the partial results are discarded.
func (s *Solver) FindBestMoveContext(ctx context.Context) (engine.Direction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	score := s.source.Score()
	numRuns := s.NumRuns(score)

	if numRuns == 0 {
		dir := engine.RandomDirection(s.rng)
		s.stats = Stats{Best: dir, Random: true, Elapsed: time.Since(start)}
		s.logger.Debug("random move", "intelligence", s.Intelligence(), "score", score, "dir", dir)
		return dir, nil
	}

	snap := s.source.Snapshot()
	sums, err := s.rollouts(ctx, snap, numRuns)
	if err != nil {
		s.logger.Debug("search cancelled", "err", err)
		return engine.DirUp, err
	}

	stats := Stats{NumRuns: numRuns}
	best := 0
	for i, dir := range engine.Directions {
		avg := sums[i] / numRuns
		stats.Averages[i] = avg
		// Ties go to the later direction.
		if avg >= best {
			best = avg
			stats.Best = dir
		}
	}
	stats.Elapsed = time.Since(start)
	s.stats = stats

	s.logger.Debug("search complete",
		"score", score,
		"runs", numRuns,
		"best", stats.Best,
		"averages", stats.Averages,
		"elapsed", stats.Elapsed,
	)
	return stats.Best, nil
}

// rollouts runs numRuns playouts for each direction on the worker pool and
// returns the per-direction score sums. Worker w owns rollout indices
// w, w+workers, ... and a private rng seeded from s.rng, so a fixed seed and
// worker count replay the same search.
func (s *Solver) rollouts(ctx context.Context, snap engine.Snapshot, numRuns int) ([4]int, error) {
	total := len(engine.Directions) * numRuns
	workers := min(s.workers, total)

	seeds := make([]int64, workers)
	for w := range seeds {
		seeds[w] = s.rng.Int63()
	}

	partial := make([][4]int, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seeds[w]))
			var local [4]int
			for i := w; i < total; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				d := i % len(engine.Directions)
				local[d] += EvaluateDirection(snap, engine.Directions[d], rng)
			}
			partial[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return [4]int{}, err
	}

	var sums [4]int
	for _, p := range partial {
		for d := range sums {
			sums[d] += p[d]
		}
	}
	return sums, nil
}
