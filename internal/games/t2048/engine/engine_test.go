package engine

import (
	"math/rand"
	"testing"
)

// seqRand returns a fixed sequence of draws, each reduced modulo n.
type seqRand struct {
	vals []int
	i    int
}

func (s *seqRand) Intn(n int) int {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

type event struct {
	kind  string // "score", "moved", "added"
	from  Coord
	to    Coord
	value int
}

type recorder struct {
	events []event
}

func (r *recorder) ScoreChanged(score int) {
	r.events = append(r.events, event{kind: "score", value: score})
}

func (r *recorder) TileMoved(from, to Coord, value int) {
	r.events = append(r.events, event{kind: "moved", from: from, to: to, value: value})
}

func (r *recorder) TileAdded(at Coord, value int) {
	r.events = append(r.events, event{kind: "added", to: at, value: value})
}

func (r *recorder) count(kind string) int {
	n := 0
	for _, e := range r.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) added() []event {
	var out []event
	for _, e := range r.events {
		if e.kind == "added" {
			out = append(out, e)
		}
	}
	return out
}

// engineFromRows builds an engine with the given grid and a recording listener.
func engineFromRows(t *testing.T, rows [][]int, rng Rand) (*Engine, *recorder) {
	t.Helper()
	snap, err := SnapshotFromRows(rows)
	if err != nil {
		t.Fatalf("SnapshotFromRows: %v", err)
	}
	rec := &recorder{}
	e := CloneFrom(snap, rng)
	e.SetListener(rec)
	return e, rec
}

// withoutSpawn returns the board rows with the tile added after the move removed.
func withoutSpawn(e *Engine, rec *recorder) [][]int {
	rows := e.Snapshot().Rows()
	for _, a := range rec.added() {
		rows[a.to.Row][a.to.Col] = 0
	}
	return rows
}

func rowsEqual(a, b [][]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func TestNewEngine(t *testing.T) {
	e := NewEngine(4, rand.New(rand.NewSource(1)), nil)

	if e.Size() != 4 {
		t.Errorf("Size() = %d, want 4", e.Size())
	}
	if e.Score() != 0 {
		t.Errorf("Score() = %d, want 0", e.Score())
	}
	if e.EmptyCount() != 16 {
		t.Errorf("EmptyCount() = %d, want 16", e.EmptyCount())
	}
}

func TestNewEngineInvalidSizePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewEngine(0) should panic")
		}
	}()
	NewEngine(0, rand.New(rand.NewSource(1)), nil)
}

func TestMoveMergeLeft(t *testing.T) {
	rec := &recorder{}
	// Spawn picks the last empty cell, value 2.
	e := NewEngine(4, &seqRand{vals: []int{14, 0}}, rec)
	e.PlaceTile(Coord{0, 0}, 2)
	e.PlaceTile(Coord{0, 1}, 2)
	rec.events = nil

	if !e.Move(DirLeft) {
		t.Fatal("Move(Left) should report a move")
	}

	if e.Score() != 4 {
		t.Errorf("Score() = %d, want 4", e.Score())
	}

	row := e.Snapshot().Rows()[0]
	want := []int{4, 0, 0, 0}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("row 0 = %v, want %v", row, want)
		}
	}

	if rec.count("moved") != 1 {
		t.Fatalf("expected 1 TileMoved, got %d", rec.count("moved"))
	}
	wantEvents := []event{
		{kind: "score", value: 4},
		{kind: "moved", from: Coord{0, 1}, to: Coord{0, 0}, value: 4},
		{kind: "added", to: Coord{3, 3}, value: 2},
	}
	if len(rec.events) != len(wantEvents) {
		t.Fatalf("events = %+v, want %+v", rec.events, wantEvents)
	}
	for i := range wantEvents {
		if rec.events[i] != wantEvents[i] {
			t.Errorf("event %d = %+v, want %+v", i, rec.events[i], wantEvents[i])
		}
	}
}

func TestMoveSingleTileUp(t *testing.T) {
	e, rec := engineFromRows(t, [][]int{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 2},
	}, rand.New(rand.NewSource(7)))

	if !e.Move(DirUp) {
		t.Fatal("Move(Up) should report a move")
	}
	if e.Score() != 0 {
		t.Errorf("Score() = %d, want 0", e.Score())
	}
	if rec.count("score") != 0 {
		t.Error("a pure slide must not emit ScoreChanged")
	}

	moved := rec.events[0]
	if moved.kind != "moved" || moved.from != (Coord{3, 3}) || moved.to != (Coord{0, 3}) || moved.value != 2 {
		t.Errorf("TileMoved = %+v, want (3,3)->(0,3) value 2", moved)
	}
	if e.Value(Coord{0, 3}) != 2 {
		t.Errorf("Value(0,3) = %d, want 2", e.Value(Coord{0, 3}))
	}
}

func TestMoveRowLeft(t *testing.T) {
	tests := []struct {
		name     string
		input    []int
		expected []int
		score    int
		moved    bool
	}{
		{"simple merge", []int{2, 2, 0, 0}, []int{4, 0, 0, 0}, 4, true},
		{"merge with trailing tile", []int{2, 2, 2, 0}, []int{4, 2, 0, 0}, 4, true},
		{"double merge", []int{2, 2, 2, 2}, []int{4, 4, 0, 0}, 8, true},
		{"no merge possible", []int{2, 4, 8, 16}, []int{2, 4, 8, 16}, 0, false},
		{"slide with gap", []int{0, 0, 2, 2}, []int{4, 0, 0, 0}, 4, true},
		{"slide with multiple gaps", []int{2, 0, 0, 2}, []int{4, 0, 0, 0}, 4, true},
		{"no change needed", []int{4, 2, 0, 0}, []int{4, 2, 0, 0}, 0, false},
		{"single tile", []int{0, 4, 0, 0}, []int{4, 0, 0, 0}, 0, true},
		{"merged tile does not merge again", []int{2, 2, 4, 0}, []int{4, 4, 0, 0}, 4, true},
		{"merge result then slide", []int{4, 4, 8, 0}, []int{8, 8, 0, 0}, 8, true},
		{"three equal pairs first", []int{4, 4, 4, 0}, []int{8, 4, 0, 0}, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := [][]int{tt.input, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}
			e, rec := engineFromRows(t, rows, rand.New(rand.NewSource(3)))

			moved := e.Move(DirLeft)
			if moved != tt.moved {
				t.Errorf("Move(Left) = %v, want %v", moved, tt.moved)
			}
			got := withoutSpawn(e, rec)[0]
			for i := range tt.expected {
				if got[i] != tt.expected[i] {
					t.Fatalf("row = %v, want %v", got, tt.expected)
				}
			}
			if e.Score() != tt.score {
				t.Errorf("score = %d, want %d", e.Score(), tt.score)
			}
		})
	}
}

func TestMoveAllDirections(t *testing.T) {
	start := [][]int{
		{2, 2, 0, 0},
		{4, 0, 4, 0},
		{2, 2, 2, 2},
		{0, 0, 0, 2},
	}

	tests := []struct {
		dir      Direction
		expected [][]int
		score    int
	}{
		{DirLeft, [][]int{
			{4, 0, 0, 0},
			{8, 0, 0, 0},
			{4, 4, 0, 0},
			{2, 0, 0, 0},
		}, 4 + 8 + 8},
		{DirRight, [][]int{
			{0, 0, 0, 4},
			{0, 0, 0, 8},
			{0, 0, 4, 4},
			{0, 0, 0, 2},
		}, 4 + 8 + 8},
		{DirUp, [][]int{
			{2, 4, 4, 4},
			{4, 0, 2, 0},
			{2, 0, 0, 0},
			{0, 0, 0, 0},
		}, 4 + 4},
		{DirDown, [][]int{
			{0, 0, 0, 0},
			{2, 0, 0, 0},
			{4, 0, 4, 0},
			{2, 4, 2, 4},
		}, 4 + 4},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			e, rec := engineFromRows(t, start, rand.New(rand.NewSource(11)))
			if !e.Move(tt.dir) {
				t.Fatalf("Move(%v) should move", tt.dir)
			}
			got := withoutSpawn(e, rec)
			if !rowsEqual(got, tt.expected) {
				t.Errorf("Move(%v): got\n%v\nwant\n%v", tt.dir, got, tt.expected)
			}
			if e.Score() != tt.score {
				t.Errorf("Move(%v) score = %d, want %d", tt.dir, e.Score(), tt.score)
			}
		})
	}
}

func TestMoveNoOpEmitsNothing(t *testing.T) {
	e, rec := engineFromRows(t, [][]int{
		{2, 4, 0, 0},
		{8, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, rand.New(rand.NewSource(1)))

	if e.Move(DirLeft) {
		t.Error("Move(Left) should be a no-op")
	}
	if len(rec.events) != 0 {
		t.Errorf("no-op move emitted %d events", len(rec.events))
	}
	if e.EmptyCount() != 13 {
		t.Error("no-op move must not spawn")
	}
}

func TestMoveInvalidDirection(t *testing.T) {
	e, _ := engineFromRows(t, [][]int{{2, 0}, {0, 0}}, rand.New(rand.NewSource(1)))
	if e.Move(Direction(42)) {
		t.Error("invalid direction should never move")
	}
}

func TestMoveSpawnsExactlyOnce(t *testing.T) {
	e, rec := engineFromRows(t, [][]int{
		{0, 0, 0, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, rand.New(rand.NewSource(5)))

	e.Move(DirLeft)
	if rec.count("added") != 1 {
		t.Errorf("expected 1 TileAdded, got %d", rec.count("added"))
	}
	if e.EmptyCount() != 14 {
		t.Errorf("EmptyCount() = %d, want 14", e.EmptyCount())
	}
}

func TestMoveConservesValueSum(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	rec := &recorder{}
	e := NewEngine(4, rng, rec)
	e.SpawnRandomTile()
	e.SpawnRandomTile()

	for i := 0; i < 500 && !e.IsGameOver(); i++ {
		before := e.Snapshot()
		scoreBefore := e.Score()
		rec.events = nil

		if !e.Move(RandomDirection(rng)) {
			if !e.Snapshot().Equal(before) {
				t.Fatal("no-op move changed the board")
			}
			continue
		}

		spawned := 0
		merges := 0
		mergedSum := 0
		for _, ev := range rec.events {
			switch ev.kind {
			case "added":
				spawned += ev.value
			case "score":
				merges++
			}
		}
		for _, ev := range rec.events {
			if ev.kind == "moved" && ev.value != before.At(ev.from.Row, ev.from.Col) {
				mergedSum += ev.value
			}
		}

		after := e.Snapshot()
		if after.Sum()-spawned != before.Sum() {
			t.Fatalf("value sum %d -> %d (spawned %d)", before.Sum(), after.Sum(), spawned)
		}
		if e.Score()-scoreBefore != mergedSum {
			t.Fatalf("score delta %d, merged values %d", e.Score()-scoreBefore, mergedSum)
		}
		if countTiles(after)-1 != countTiles(before)-merges {
			t.Fatalf("tile count %d -> %d with %d merges", countTiles(before), countTiles(after), merges)
		}
	}
}

func countTiles(s Snapshot) int {
	n := 0
	for _, v := range s.Values {
		if v != 0 {
			n++
		}
	}
	return n
}

func TestScoreIsMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	rec := &recorder{}
	e := NewEngine(4, rng, rec)
	e.SpawnRandomTile()

	for i := 0; i < 300 && !e.IsGameOver(); i++ {
		e.Move(RandomDirection(rng))
	}

	last := 0
	for _, ev := range rec.events {
		if ev.kind != "score" {
			continue
		}
		if ev.value <= last {
			t.Fatalf("score went from %d to %d", last, ev.value)
		}
		last = ev.value
	}
	if last != e.Score() {
		t.Errorf("last ScoreChanged = %d, Score() = %d", last, e.Score())
	}
}

func TestIsGameOver(t *testing.T) {
	tests := []struct {
		name string
		rows [][]int
		want bool
	}{
		{"2x2 no equal neighbours", [][]int{{2, 4}, {4, 2}}, true},
		{"2x2 horizontal pair", [][]int{{2, 2}, {4, 8}}, false},
		{"2x2 vertical pair", [][]int{{2, 4}, {2, 8}}, false},
		{"empty cell", [][]int{{2, 4}, {4, 0}}, false},
		{"empty board", [][]int{{0, 0}, {0, 0}}, false},
		{"4x4 locked", [][]int{
			{2, 4, 2, 4},
			{4, 2, 4, 2},
			{2, 4, 2, 4},
			{4, 2, 4, 2},
		}, true},
		{"4x4 pair in last row", [][]int{
			{2, 4, 2, 4},
			{4, 2, 4, 2},
			{2, 4, 2, 4},
			{4, 2, 8, 8},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := engineFromRows(t, tt.rows, rand.New(rand.NewSource(1)))
			if got := e.IsGameOver(); got != tt.want {
				t.Errorf("IsGameOver() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEngineNilRandSpawns(t *testing.T) {
	e := NewEngine(3, nil, nil)
	e.SpawnRandomTile()
	if e.EmptyCount() != 8 {
		t.Errorf("EmptyCount() = %d, want 8", e.EmptyCount())
	}
	if !e.Move(DirLeft) && !e.Move(DirRight) {
		t.Error("a lone tile should move left or right")
	}
}

func TestCanMove(t *testing.T) {
	tests := []struct {
		name string
		rows [][]int
		want [4]bool // Up, Down, Left, Right
	}{
		{"empty", [][]int{{0, 0}, {0, 0}}, [4]bool{false, false, false, false}},
		{"corner tile", [][]int{{2, 0}, {0, 0}}, [4]bool{false, true, false, true}},
		{"merge only", [][]int{{2, 2}, {4, 8}}, [4]bool{false, false, true, true}},
		{"locked", [][]int{{2, 4}, {4, 2}}, [4]bool{false, false, false, false}},
		{"full column merge", [][]int{{2, 4}, {2, 8}}, [4]bool{true, true, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := engineFromRows(t, tt.rows, rand.New(rand.NewSource(1)))
			for i, d := range Directions {
				if got := e.CanMove(d); got != tt.want[i] {
					t.Errorf("CanMove(%v) = %v, want %v", d, got, tt.want[i])
				}
				if got := CloneFrom(e.Snapshot(), rand.New(rand.NewSource(1))).Move(d); got != tt.want[i] {
					t.Errorf("Move(%v) = %v, disagrees with CanMove", d, got)
				}
			}
			if e.CanMove(Direction(9)) {
				t.Error("CanMove(invalid) = true")
			}
		})
	}
}

func TestFirstMovable(t *testing.T) {
	e, _ := engineFromRows(t, [][]int{{0, 4}, {8, 2}}, rand.New(rand.NewSource(1)))
	if d, ok := e.FirstMovable(); !ok || d != DirUp {
		t.Errorf("FirstMovable() = %v, %v; want Up, true", d, ok)
	}

	e, _ = engineFromRows(t, [][]int{{2, 4}, {4, 2}}, rand.New(rand.NewSource(1)))
	if _, ok := e.FirstMovable(); ok {
		t.Error("FirstMovable() on a locked board reported a move")
	}
}

func TestIsGameOverMatchesNoLegalMove(t *testing.T) {
	rng := rand.New(rand.NewSource(31337))

	for game := 0; game < 20; game++ {
		e := NewEngine(3, rng, nil)
		e.SpawnRandomTile()
		for step := 0; step < 200; step++ {
			snap := e.Snapshot()
			anyMove := false
			for _, d := range Directions {
				if CloneFrom(snap, rng).Move(d) {
					anyMove = true
				}
			}
			if e.IsGameOver() == anyMove {
				t.Fatalf("IsGameOver() = %v but some move legal = %v on\n%v", e.IsGameOver(), anyMove, snap)
			}
			if e.IsGameOver() {
				break
			}
			e.Move(RandomDirection(rng))
		}
	}
}

func TestSpawnRandomTile(t *testing.T) {
	tests := []struct {
		name  string
		draws []int
		at    Coord
		value int
	}{
		{"first empty cell gets a 2", []int{0, 0}, Coord{0, 0}, 2},
		{"draw of 9 gives a 4", []int{3, 9}, Coord{1, 1}, 4},
		{"draw of 8 gives a 2", []int{2, 8}, Coord{1, 0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			e := NewEngine(2, &seqRand{vals: tt.draws}, rec)
			e.SpawnRandomTile()

			added := rec.added()
			if len(added) != 1 {
				t.Fatalf("expected 1 TileAdded, got %d", len(added))
			}
			if added[0].to != tt.at || added[0].value != tt.value {
				t.Errorf("TileAdded(%v, %d), want (%v, %d)", added[0].to, added[0].value, tt.at, tt.value)
			}
			if e.Value(tt.at) != tt.value {
				t.Errorf("Value(%v) = %d, want %d", tt.at, e.Value(tt.at), tt.value)
			}
		})
	}
}

func TestSpawnOnFullBoardIsNoOp(t *testing.T) {
	e, rec := engineFromRows(t, [][]int{{2, 4}, {4, 2}}, rand.New(rand.NewSource(1)))
	before := e.Snapshot()

	e.SpawnRandomTile()

	if len(rec.events) != 0 {
		t.Error("spawn on a full board should not notify")
	}
	if !e.Snapshot().Equal(before) {
		t.Error("spawn on a full board changed it")
	}
}

func TestSpawnDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	fours := 0
	const trials = 5000
	for range trials {
		e := NewEngine(1, rng, nil)
		e.SpawnRandomTile()
		if e.Value(Coord{0, 0}) == 4 {
			fours++
		}
	}
	// Expect ~10% fours.
	if fours < trials/20 || fours > trials*3/20 {
		t.Errorf("got %d fours out of %d spawns", fours, trials)
	}
}

func TestReset(t *testing.T) {
	e, rec := engineFromRows(t, [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, rand.New(rand.NewSource(1)))
	e.Move(DirLeft)
	rec.events = nil

	e.Reset()

	if e.Score() != 0 || e.EmptyCount() != 16 || e.Size() != 4 {
		t.Errorf("after Reset: score=%d empty=%d size=%d", e.Score(), e.EmptyCount(), e.Size())
	}
	if len(rec.events) != 0 {
		t.Error("Reset should not notify")
	}
}

func TestPlaceTile(t *testing.T) {
	rec := &recorder{}
	e := NewEngine(2, rand.New(rand.NewSource(1)), rec)

	if !e.PlaceTile(Coord{1, 1}, 8) {
		t.Fatal("PlaceTile on empty cell should succeed")
	}
	if e.PlaceTile(Coord{1, 1}, 2) {
		t.Error("PlaceTile on occupied cell should fail")
	}
	if e.PlaceTile(Coord{2, 0}, 2) {
		t.Error("PlaceTile off the board should fail")
	}
	if e.PlaceTile(Coord{0, 0}, 3) {
		t.Error("PlaceTile with non power of two should fail")
	}
	if rec.count("added") != 1 {
		t.Errorf("expected 1 TileAdded, got %d", rec.count("added"))
	}
}

func TestCloneIsolation(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	e, _ := engineFromRows(t, [][]int{
		{2, 2, 4, 0},
		{0, 4, 0, 0},
		{0, 0, 8, 0},
		{2, 0, 0, 2},
	}, rng)
	snap := e.Snapshot()
	frozen := snap.Clone()

	clone := CloneFrom(snap, rng)
	clone.Move(DirLeft)
	clone.Move(DirDown)

	if !snap.Equal(frozen) {
		t.Error("moving a clone mutated the snapshot it came from")
	}
	if !e.Snapshot().Equal(frozen) {
		t.Error("moving a clone mutated the source engine")
	}
	if clone.Score() == 0 {
		t.Error("clone should have scored from its own merges")
	}
	if e.Score() != 0 {
		t.Error("source score changed")
	}
}

func TestMaxTile(t *testing.T) {
	e, _ := engineFromRows(t, [][]int{{2, 64}, {16, 0}}, rand.New(rand.NewSource(1)))
	if e.MaxTile() != 64 {
		t.Errorf("MaxTile() = %d, want 64", e.MaxTile())
	}
}
