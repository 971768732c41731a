package game

import "strings"

// Board holds the 9 cells in row-major order.
type Board [9]PlayerMark

// WinningLines are the 3 rows, 3 columns and 2 diagonals.
var WinningLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// HasLine reports whether mark fully occupies any winning line.
func (b Board) HasLine(mark PlayerMark) bool {
	_, ok := b.LineOf(mark)
	return ok
}

// LineOf returns the first winning line fully occupied by mark.
func (b Board) LineOf(mark PlayerMark) ([3]int, bool) {
	if mark == None {
		return [3]int{}, false
	}
	for _, line := range WinningLines {
		if b[line[0]] == mark && b[line[1]] == mark && b[line[2]] == mark {
			return line, true
		}
	}
	return [3]int{}, false
}

// IsFull reports whether no empty cell is left.
func (b Board) IsFull() bool {
	for _, cell := range b {
		if cell == None {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no mark has been placed yet.
func (b Board) IsEmpty() bool {
	for _, cell := range b {
		if cell != None {
			return false
		}
	}
	return true
}

// EmptyCells returns the empty indices in ascending order.
func (b Board) EmptyCells() []int {
	cells := make([]int, 0, len(b))
	for i, cell := range b {
		if cell == None {
			cells = append(cells, i)
		}
	}
	return cells
}

// Count returns how many cells hold mark.
func (b Board) Count(mark PlayerMark) int {
	n := 0
	for _, cell := range b {
		if cell == mark {
			n++
		}
	}
	return n
}

// Validate checks the invariants of a board reachable by legal play.
func (b Board) Validate() error {
	for _, cell := range b {
		if cell != None && !cell.Valid() {
			return ErrInvalidMark
		}
	}
	diff := b.Count(PlayerX) - b.Count(PlayerO)
	if diff < 0 || diff > 1 {
		return ErrInvalidBoard
	}
	if b.HasLine(PlayerX) && b.HasLine(PlayerO) {
		return ErrInvalidBoard
	}
	return nil
}

// BoardFromSlice builds a board from a 9-element slice.
func BoardFromSlice(cells []PlayerMark) (Board, error) {
	var b Board
	if len(cells) != len(b) {
		return b, ErrInvalidBoard
	}
	for i, cell := range cells {
		cell = PlayerMark(strings.ToUpper(strings.TrimSpace(string(cell))))
		if cell != None && !cell.Valid() {
			return b, ErrInvalidMark
		}
		b[i] = cell
	}
	return b, nil
}

func (b Board) String() string {
	var sb strings.Builder
	for r := range 3 {
		for c := range 3 {
			cell := b[r*3+c]
			if cell == None {
				sb.WriteByte('.')
			} else {
				sb.WriteString(string(cell))
			}
		}
		if r < 2 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}
