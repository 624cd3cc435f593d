package solver

import (
	"context"
	"errors"
	"math/rand"
	"runtime"
	"testing"

	"github.com/vovakirdan/tui-2048/internal/games/t2048/engine"
)

// countingSource wraps an engine and counts snapshot reads.
type countingSource struct {
	*engine.Engine
	snapshots int
}

func (c *countingSource) Snapshot() engine.Snapshot {
	c.snapshots++
	return c.Engine.Snapshot()
}

func engineFromRows(t *testing.T, rows [][]int, seed int64) *engine.Engine {
	t.Helper()
	snap, err := engine.SnapshotFromRows(rows)
	if err != nil {
		t.Fatalf("SnapshotFromRows: %v", err)
	}
	return engine.CloneFrom(snap, rand.New(rand.NewSource(seed)))
}

func TestNumRuns(t *testing.T) {
	tests := []struct {
		intelligence int
		score        int
		want         int
	}{
		{0, 0, 0},
		{9, 0, 0},
		{10, 0, 1},
		{50, 0, 5},
		{50, 20000, 55},
		{100, 1000, 15},
		{100, 0, 10},
		{-10, 500, 0},
	}

	for _, tt := range tests {
		if got := NumRuns(tt.intelligence, tt.score); got != tt.want {
			t.Errorf("NumRuns(%d, %d) = %d, want %d", tt.intelligence, tt.score, got, tt.want)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	s := New(engine.NewEngine(4, rand.New(rand.NewSource(1)), nil), Config{})
	if s.Workers() != runtime.NumCPU() {
		t.Errorf("Workers() = %d, want %d", s.Workers(), runtime.NumCPU())
	}
	if s.Intelligence() != 0 {
		t.Errorf("Intelligence() = %d, want 0", s.Intelligence())
	}

	s.SetIntelligence(75)
	if s.NumRuns(0) != 7 {
		t.Errorf("NumRuns(0) after SetIntelligence(75) = %d, want 7", s.NumRuns(0))
	}
}

func TestFindBestMoveZeroRunsIsRandom(t *testing.T) {
	src := &countingSource{Engine: engineFromRows(t, [][]int{
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 1)}
	s := New(src, Config{Intelligence: 0, Seed: 5})

	seen := map[engine.Direction]int{}
	for range 400 {
		dir := s.FindBestMove()
		if !dir.Valid() {
			t.Fatalf("FindBestMove() = %v, not a direction", dir)
		}
		seen[dir]++
	}

	if src.snapshots != 0 {
		t.Errorf("zero-run search read the board %d times, want 0", src.snapshots)
	}
	if len(seen) != 4 {
		t.Errorf("random fallback produced %d distinct directions, want 4", len(seen))
	}
	if !s.Stats().Random {
		t.Error("Stats().Random should be set for a zero-run search")
	}
}

func TestEvaluateDirectionNoOpReturnsZero(t *testing.T) {
	snap, _ := engine.SnapshotFromRows([][]int{
		{2, 4},
		{0, 0},
	})
	rng := rand.New(rand.NewSource(3))

	if got := EvaluateDirection(snap, engine.DirUp, rng); got != 0 {
		t.Errorf("EvaluateDirection(Up) on blocked board = %d, want 0", got)
	}
}

func TestEvaluateDirectionPlaysToTheEnd(t *testing.T) {
	snap, _ := engine.SnapshotFromRows([][]int{
		{2, 2, 0},
		{0, 0, 0},
		{0, 0, 0},
	})
	rng := rand.New(rand.NewSource(4))

	got := EvaluateDirection(snap, engine.DirLeft, rng)
	if got < 4 {
		t.Errorf("EvaluateDirection(Left) = %d, want at least the opening merge of 4", got)
	}
}

func TestEvaluateDirectionNeverMutatesSnapshot(t *testing.T) {
	snap, _ := engine.SnapshotFromRows([][]int{
		{2, 2, 4, 8},
		{0, 4, 0, 2},
		{2, 0, 8, 0},
		{4, 0, 0, 2},
	})
	frozen := snap.Clone()
	rng := rand.New(rand.NewSource(6))

	for i := range 200 {
		EvaluateDirection(snap, engine.Directions[i%4], rng)
	}

	if !snap.Equal(frozen) {
		t.Errorf("snapshot changed:\n%v\nwant\n%v", snap, frozen)
	}
}

func TestFindBestMoveLockedBoardPrefersLastDirection(t *testing.T) {
	// Every direction averages 0; ties go to the later direction.
	e := engineFromRows(t, [][]int{
		{2, 4},
		{4, 2},
	}, 1)
	s := New(e, Config{Intelligence: 100, Seed: 1, Workers: 2})

	if got := s.FindBestMove(); got != engine.DirRight {
		t.Errorf("FindBestMove() = %v, want Right", got)
	}
	stats := s.Stats()
	if stats.NumRuns != 10 {
		t.Errorf("Stats().NumRuns = %d, want 10", stats.NumRuns)
	}
	if stats.Averages != [4]int{} {
		t.Errorf("Stats().Averages = %v, want all zero", stats.Averages)
	}
}

func TestFindBestMoveOnlyLegalDirection(t *testing.T) {
	// Only Left moves anything; the others average 0.
	e := engineFromRows(t, [][]int{
		{0, 2},
		{0, 4},
	}, 1)
	s := New(e, Config{Intelligence: 100, Seed: 99, Workers: 3})

	if got := s.FindBestMove(); got != engine.DirLeft {
		t.Errorf("FindBestMove() = %v, want Left (averages %v)", got, s.Stats().Averages)
	}
}

func TestFindBestMoveDoesNotMutateLiveBoard(t *testing.T) {
	e := engineFromRows(t, [][]int{
		{2, 2, 0, 0},
		{4, 0, 4, 0},
		{0, 8, 0, 8},
		{0, 0, 0, 2},
	}, 1)
	before := e.Snapshot()
	s := New(e, Config{Intelligence: 30, Seed: 2})

	s.FindBestMove()

	if !e.Snapshot().Equal(before) {
		t.Error("FindBestMove mutated the live board")
	}
	if e.Score() != 0 {
		t.Errorf("FindBestMove changed the live score to %d", e.Score())
	}
}

func TestFindBestMoveDeterministicForSeed(t *testing.T) {
	rows := [][]int{
		{2, 0, 2, 4},
		{0, 4, 0, 0},
		{8, 0, 0, 2},
		{0, 2, 0, 0},
	}

	run := func() Stats {
		s := New(engineFromRows(t, rows, 1), Config{Intelligence: 40, Seed: 1234, Workers: 4})
		s.FindBestMove()
		return s.Stats()
	}

	a, b := run(), run()
	if a.Averages != b.Averages || a.Best != b.Best {
		t.Errorf("same seed gave different searches: %+v vs %+v", a, b)
	}
}

func TestFindBestMoveContextCancelled(t *testing.T) {
	e := engineFromRows(t, [][]int{
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 1)
	s := New(e, Config{Intelligence: 100, Seed: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FindBestMoveContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("FindBestMoveContext() error = %v, want context.Canceled", err)
	}
}

func TestSolverPlaysFullGame(t *testing.T) {
	rng := rand.New(rand.NewSource(77))
	e := engine.NewEngine(3, rng, nil)
	e.SpawnRandomTile()
	e.SpawnRandomTile()
	s := New(e, Config{Intelligence: 20, Seed: 77, Workers: 2})

	moves := 0
	for !e.IsGameOver() && moves < 10000 {
		e.Move(s.FindBestMove())
		moves++
	}

	if !e.IsGameOver() {
		t.Fatalf("game did not finish after %d moves", moves)
	}
	if e.Score() == 0 {
		t.Error("a finished 3x3 game should have scored")
	}
}
