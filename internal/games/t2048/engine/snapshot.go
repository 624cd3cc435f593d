package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Snapshot is a value copy of a board's cells in row-major order.
// It shares nothing with the engine it was taken from.
type Snapshot struct {
	Size   int
	Values []int
}

// SnapshotFromRows builds a snapshot from a square grid of tile values.
// Every value must be 0 or a power of two >= 2.
func SnapshotFromRows(rows [][]int) (Snapshot, error) {
	size := len(rows)
	if size == 0 {
		return Snapshot{}, fmt.Errorf("engine: empty board")
	}

	values := make([]int, 0, size*size)
	for r, row := range rows {
		if len(row) != size {
			return Snapshot{}, fmt.Errorf("engine: row %d has %d cells, want %d", r, len(row), size)
		}
		for c, v := range row {
			if !validTileValue(v) {
				return Snapshot{}, fmt.Errorf("engine: invalid tile value %d at (%d,%d)", v, r, c)
			}
			values = append(values, v)
		}
	}

	return Snapshot{Size: size, Values: values}, nil
}

// At returns the value at (row, col).
func (s Snapshot) At(row, col int) int {
	return s.Values[row*s.Size+col]
}

// Rows returns the snapshot as a fresh 2D slice.
func (s Snapshot) Rows() [][]int {
	rows := make([][]int, s.Size)
	for r := range rows {
		rows[r] = make([]int, s.Size)
		copy(rows[r], s.Values[r*s.Size:(r+1)*s.Size])
	}
	return rows
}

// Sum returns the total of all tile values.
func (s Snapshot) Sum() int {
	total := 0
	for _, v := range s.Values {
		total += v
	}
	return total
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	values := make([]int, len(s.Values))
	copy(values, s.Values)
	return Snapshot{Size: s.Size, Values: values}
}

// Equal reports whether two snapshots hold the same grid.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.Size != other.Size || len(s.Values) != len(other.Values) {
		return false
	}
	for i := range s.Values {
		if s.Values[i] != other.Values[i] {
			return false
		}
	}
	return true
}

// String renders the grid one row per line.
func (s Snapshot) String() string {
	var sb strings.Builder
	for r := range s.Size {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := range s.Size {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(s.At(r, c)))
		}
	}
	return sb.String()
}

func validTileValue(v int) bool {
	if v == 0 {
		return true
	}
	return v >= 2 && v&(v-1) == 0
}
