package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// DefaultBoardSize is the classic board dimension.
const DefaultBoardSize = 4

// Coord identifies a cell. Row 0 is the top, Col 0 is the left.
type Coord struct {
	Row int
	Col int
}

// Rand is the randomness the engine and solver need.
// *math/rand.Rand satisfies it; tests inject a seeded one.
type Rand interface {
	Intn(n int) int
}

// Listener receives engine notifications synchronously, in the order the
// causing operation produced them.
type Listener interface {
	ScoreChanged(score int)
	TileMoved(from, to Coord, value int)
	TileAdded(at Coord, value int)
}

// NopListener ignores every notification.
type NopListener struct{}

func (NopListener) ScoreChanged(int)            {}
func (NopListener) TileMoved(Coord, Coord, int) {}
func (NopListener) TileAdded(Coord, int)        {}

// Cell is one grid position. Value 0 means empty.
type Cell struct {
	Coord  Coord
	Value  int
	merged bool // set while resolving a single move
}

// Empty reports whether the cell holds no tile.
func (c *Cell) Empty() bool {
	return c.Value == 0
}

// mergeable reports whether two cells hold the same non-zero value.
// Two empty cells are never equal.
func mergeable(a, b *Cell) bool {
	return a.Value != 0 && a.Value == b.Value
}

// Engine owns one board and its score. It is not safe for concurrent use:
// a single driver issues Move, SpawnRandomTile and Reset.
type Engine struct {
	size     int
	cells    []Cell // row-major, one per coordinate
	score    int
	rng      Rand
	listener Listener

	// traversal orders indexed by Direction
	rowOrder [4][]int
	colOrder [4][]int

	empty []int // scratch for SpawnRandomTile
}

// NewEngine creates an engine with an empty board of the given size.
// A nil listener is replaced with NopListener and a nil rng with one seeded
// from the clock.
func NewEngine(size int, rng Rand, listener Listener) *Engine {
	if size < 1 {
		panic(fmt.Sprintf("engine: invalid board size %d", size))
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if listener == nil {
		listener = NopListener{}
	}

	e := &Engine{
		size:     size,
		cells:    make([]Cell, size*size),
		rng:      rng,
		listener: listener,
		empty:    make([]int, 0, size*size),
	}
	for i := range e.cells {
		e.cells[i].Coord = Coord{Row: i / size, Col: i % size}
	}
	e.buildTraversals()
	return e
}

// CloneFrom creates a listener-less engine holding the snapshot's values.
// The score starts at 0 and no cell is shared with the snapshot's source.
func CloneFrom(s Snapshot, rng Rand) *Engine {
	e := NewEngine(s.Size, rng, nil)
	for i, v := range s.Values {
		e.cells[i].Value = v
	}
	return e
}

// buildTraversals precomputes the visit order for every direction so that
// tiles nearest the destination edge are resolved first.
func (e *Engine) buildTraversals() {
	asc := make([]int, e.size)
	desc := make([]int, e.size)
	for i := range e.size {
		asc[i] = i
		desc[i] = e.size - 1 - i
	}

	for _, d := range Directions {
		e.rowOrder[d] = asc
		e.colOrder[d] = asc
	}
	e.rowOrder[DirDown] = desc
	e.colOrder[DirRight] = desc
}

// SetListener replaces the notification target. nil means NopListener.
func (e *Engine) SetListener(l Listener) {
	if l == nil {
		l = NopListener{}
	}
	e.listener = l
}

// Size returns the board dimension.
func (e *Engine) Size() int {
	return e.size
}

// Score returns the running score.
func (e *Engine) Score() int {
	return e.score
}

// Value returns the tile value at c, or 0 if c is off the board.
func (e *Engine) Value(c Coord) int {
	if !e.inBounds(c.Row, c.Col) {
		return 0
	}
	return e.cells[c.Row*e.size+c.Col].Value
}

// Snapshot copies the current values out of the board.
func (e *Engine) Snapshot() Snapshot {
	values := make([]int, len(e.cells))
	for i := range e.cells {
		values[i] = e.cells[i].Value
	}
	return Snapshot{Size: e.size, Values: values}
}

// Reset clears the board and zeroes the score without emitting notifications.
func (e *Engine) Reset() {
	e.score = 0
	for i := range e.cells {
		e.cells[i].Value = 0
		e.cells[i].merged = false
	}
}

// SpawnRandomTile places a 2 (90%) or 4 (10%) on a uniformly chosen empty
// cell. It does nothing when the board is full.
func (e *Engine) SpawnRandomTile() {
	e.empty = e.empty[:0]
	for i := range e.cells {
		if e.cells[i].Empty() {
			e.empty = append(e.empty, i)
		}
	}
	if len(e.empty) == 0 {
		return
	}

	cell := &e.cells[e.empty[e.rng.Intn(len(e.empty))]]
	value := 2
	if e.rng.Intn(10) == 9 {
		value = 4
	}
	cell.Value = value
	e.listener.TileAdded(cell.Coord, value)
}

// PlaceTile puts a tile of the given value on an empty cell and emits
// TileAdded. It reports false if the cell is off the board, occupied, or the
// value is not a power of two >= 2.
func (e *Engine) PlaceTile(at Coord, value int) bool {
	if !e.inBounds(at.Row, at.Col) || value == 0 || !validTileValue(value) {
		return false
	}
	cell := e.cell(at.Row, at.Col)
	if !cell.Empty() {
		return false
	}
	cell.Value = value
	e.listener.TileAdded(at, value)
	return true
}

// Move slides every tile toward d, merging equal neighbours at most once per
// tile. If anything moved a random tile is spawned. It reports whether any
// tile moved.
func (e *Engine) Move(d Direction) bool {
	if !d.Valid() {
		return false
	}

	for i := range e.cells {
		e.cells[i].merged = false
	}

	dRow, dCol := d.Step()
	moved := false

	for _, row := range e.rowOrder[d] {
		for _, col := range e.colOrder[d] {
			current := e.cell(row, col)
			if current.Empty() {
				continue
			}

			// Walk through consecutive empty cells.
			tRow, tCol := row, col
			for e.inBounds(tRow+dRow, tCol+dCol) && e.cell(tRow+dRow, tCol+dCol).Empty() {
				tRow += dRow
				tCol += dCol
			}

			if bRow, bCol := tRow+dRow, tCol+dCol; e.inBounds(bRow, bCol) {
				blocker := e.cell(bRow, bCol)
				if mergeable(blocker, current) && !blocker.merged {
					blocker.Value *= 2
					blocker.merged = true
					current.Value = 0
					e.addScore(blocker.Value)
					e.listener.TileMoved(current.Coord, blocker.Coord, blocker.Value)
					moved = true
					continue
				}
			}

			if tRow != row || tCol != col {
				target := e.cell(tRow, tCol)
				target.Value = current.Value
				current.Value = 0
				e.listener.TileMoved(current.Coord, target.Coord, target.Value)
				moved = true
			}
		}
	}

	if moved {
		e.SpawnRandomTile()
	}
	return moved
}

// CanMove reports whether Move(d) would change the board. The board is not
// modified.
func (e *Engine) CanMove(d Direction) bool {
	if !d.Valid() {
		return false
	}
	dRow, dCol := d.Step()
	for row := range e.size {
		for col := range e.size {
			current := e.cell(row, col)
			if current.Empty() || !e.inBounds(row+dRow, col+dCol) {
				continue
			}
			next := e.cell(row+dRow, col+dCol)
			if next.Empty() || mergeable(current, next) {
				return true
			}
		}
	}
	return false
}

// FirstMovable returns the first direction in Directions order that would
// change the board, or false when none does.
func (e *Engine) FirstMovable() (Direction, bool) {
	for _, d := range Directions {
		if e.CanMove(d) {
			return d, true
		}
	}
	return DirUp, false
}

// IsGameOver reports whether the board is full with no equal neighbours.
func (e *Engine) IsGameOver() bool {
	for row := range e.size {
		for col := range e.size {
			current := e.cell(row, col)
			if current.Empty() {
				return false
			}
			if col < e.size-1 && mergeable(current, e.cell(row, col+1)) {
				return false
			}
			if row < e.size-1 && mergeable(current, e.cell(row+1, col)) {
				return false
			}
		}
	}
	return true
}

// MaxTile returns the highest tile value on the board.
func (e *Engine) MaxTile() int {
	maxVal := 0
	for i := range e.cells {
		if e.cells[i].Value > maxVal {
			maxVal = e.cells[i].Value
		}
	}
	return maxVal
}

// EmptyCount returns the number of empty cells.
func (e *Engine) EmptyCount() int {
	n := 0
	for i := range e.cells {
		if e.cells[i].Empty() {
			n++
		}
	}
	return n
}

func (e *Engine) addScore(delta int) {
	e.score += delta
	e.listener.ScoreChanged(e.score)
}

func (e *Engine) cell(row, col int) *Cell {
	return &e.cells[row*e.size+col]
}

func (e *Engine) inBounds(row, col int) bool {
	return row >= 0 && row < e.size && col >= 0 && col < e.size
}
