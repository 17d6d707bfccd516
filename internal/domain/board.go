package domain

import "fmt"

// Board is a width x height grid. Row 0 is the top row, so pieces fall towards Height-1.
type Board struct {
	width  int
	height int
	cells  [][]PlayerID
}

func NewBoard(width, height int) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}

	cells := make([][]PlayerID, height)
	for i := range cells {
		cells[i] = make([]PlayerID, width)
	}
	return &Board{width: width, height: height, cells: cells}, nil
}

// RestoreBoard rebuilds a board from a snapshot grid. Pieces must rest on the bottom
// row or on another piece.
func RestoreBoard(grid [][]int) (*Board, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, ErrInvalidDimensions
	}

	b, err := NewBoard(len(grid[0]), len(grid))
	if err != nil {
		return nil, err
	}

	for r, row := range grid {
		if len(row) != b.width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidSnapshot, r, len(row), b.width)
		}
		for c, v := range row {
			p := PlayerID(v)
			if p != Empty && !p.Valid() {
				return nil, fmt.Errorf("%w: unknown cell value %d at %d,%d", ErrInvalidSnapshot, v, r, c)
			}
			b.cells[r][c] = p
		}
	}

	for c := 0; c < b.width; c++ {
		for r := 0; r < b.height-1; r++ {
			if b.cells[r][c] != Empty && b.cells[r+1][c] == Empty {
				return nil, fmt.Errorf("%w: floating piece at %d,%d", ErrInvalidSnapshot, r, c)
			}
		}
	}
	return b, nil
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

// Cell returns the owner of (row, col), or Empty when out of bounds.
func (b *Board) Cell(row, col int) PlayerID {
	if !b.inBounds(row, col) {
		return Empty
	}
	return b.cells[row][col]
}

func (b *Board) inBounds(row, col int) bool {
	return row >= 0 && row < b.height && col >= 0 && col < b.width
}

// DropPiece drops a piece for player into column and returns the row it landed on.
func (b *Board) DropPiece(column int, player PlayerID) (int, error) {
	if !player.Valid() {
		return -1, fmt.Errorf("%w: no such player %d", ErrInvalidMove, player)
	}
	if column < 0 || column >= b.width {
		return -1, ErrColumnOutOfRange
	}

	// scanning from the bottom row up until we find a free cell
	for row := b.height - 1; row >= 0; row-- {
		if b.cells[row][column] == Empty {
			b.cells[row][column] = player
			return row, nil
		}
	}

	return -1, ErrColumnFull
}

func (b *Board) pieceCounts() (p1, p2 int) {
	for _, row := range b.cells {
		for _, cell := range row {
			switch cell {
			case Player1:
				p1++
			case Player2:
				p2++
			}
		}
	}
	return p1, p2
}

// IsFull reports whether every cell is taken. Gravity keeps the top row the last to
// fill in every column, so checking it is enough.
func (b *Board) IsFull() bool {
	for c := 0; c < b.width; c++ {
		if b.cells[0][c] == Empty {
			return false
		}
	}
	return true
}

// ValidColumns lists the columns that can still take a piece.
func (b *Board) ValidColumns() []int {
	cols := []int{}
	for c := 0; c < b.width; c++ {
		if b.cells[0][c] == Empty {
			cols = append(cols, c)
		}
	}
	return cols
}

// Cells returns a deep copy of the grid as plain ints, ready to be serialized.
func (b *Board) Cells() [][]int {
	out := make([][]int, b.height)
	for r := range b.cells {
		out[r] = make([]int, b.width)
		for c, v := range b.cells[r] {
			out[r][c] = int(v)
		}
	}
	return out
}

// this creates a deep copy of the board
func (b *Board) Clone() *Board {
	cells := make([][]PlayerID, b.height)
	for r := range b.cells {
		cells[r] = make([]PlayerID, b.width)
		copy(cells[r], b.cells[r])
	}
	return &Board{width: b.width, height: b.height, cells: cells}
}
