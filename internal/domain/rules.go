package domain

// directions a run can extend in: horizontal, vertical, diagonal down-right, diagonal down-left
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// HasFourInARow scans every cell of the board for a run of ToWin pieces owned by player.
func HasFourInARow(b *Board, player PlayerID) bool {
	for r := 0; r < b.height; r++ {
		for c := 0; c < b.width; c++ {
			for _, d := range directions {
				if runFrom(b, r, c, d[0], d[1], player) {
					return true
				}
			}
		}
	}
	return false
}

func runFrom(b *Board, row, col, dr, dc int, player PlayerID) bool {
	for i := 0; i < ToWin; i++ {
		r, c := row+i*dr, col+i*dc
		if !b.inBounds(r, c) || b.cells[r][c] != player {
			return false
		}
	}
	return true
}

// HasFourThrough only checks the lines passing through (row, col). After a move it gives
// the same answer as HasFourInARow, since play stops at the first win.
func HasFourThrough(b *Board, row, col int, player PlayerID) bool {
	if b.Cell(row, col) != player {
		return false
	}
	for _, d := range directions {
		count := 1 + countInDirection(b, row, col, d[0], d[1], player) + countInDirection(b, row, col, -d[0], -d[1], player)
		if count >= ToWin {
			return true
		}
	}
	return false
}

// WinningRun returns the connected line through (row, col) that makes a win, ordered from
// one end to the other. Nil when there is none.
func WinningRun(b *Board, row, col int, player PlayerID) []Position {
	if b.Cell(row, col) != player {
		return nil
	}
	for _, d := range directions {
		back := countInDirection(b, row, col, -d[0], -d[1], player)
		fwd := countInDirection(b, row, col, d[0], d[1], player)
		if 1+back+fwd < ToWin {
			continue
		}

		run := make([]Position, 0, 1+back+fwd)
		for i := -back; i <= fwd; i++ {
			run = append(run, Position{Row: row + i*d[0], Column: col + i*d[1]})
		}
		return run
	}
	return nil
}

// this counts the number of disks in a specific direction, excluding the start cell
func countInDirection(b *Board, row, col, deltaRow, deltaCol int, player PlayerID) int {
	count := 0
	r, c := row+deltaRow, col+deltaCol
	for b.inBounds(r, c) && b.cells[r][c] == player {
		count++
		r += deltaRow
		c += deltaCol
	}
	return count
}
