package domain

import "fmt"

// Game is one hot-seat session: a board, whose turn it is and how it ended.
// Once Won or Tied it accepts no more moves; a new game needs a new Game.
type Game struct {
	Board         *Board
	Players       [2]Player
	CurrentPlayer PlayerID
	Status        GameStatus
	Winner        PlayerID
	MoveCount     int
}

// MoveResult is what the surface needs to render an accepted move.
type MoveResult struct {
	Row        int        `json:"row"`
	Column     int        `json:"column"`
	Player     PlayerID   `json:"player"`
	Status     GameStatus `json:"status"`
	Winner     PlayerID   `json:"winner,omitempty"`
	NextPlayer PlayerID   `json:"nextPlayer,omitempty"`
	WinningRun []Position `json:"winningRun,omitempty"`
}

func NewGame(settings Settings) (*Game, error) {
	board, err := NewBoard(settings.Width, settings.Height)
	if err != nil {
		return nil, err
	}

	return &Game{
		Board:         board,
		Players:       settings.Players(),
		CurrentPlayer: Player1,
		Status:        StatusInProgress,
		Winner:        Empty,
		MoveCount:     0,
	}, nil
}

// SubmitMove drops the current player's piece into column and advances the game.
// Rejected moves leave the game untouched.
func (g *Game) SubmitMove(column int) (MoveResult, error) {
	if g.Status != StatusInProgress {
		return MoveResult{}, ErrInvalidState
	}

	player := g.CurrentPlayer
	row, err := g.Board.DropPiece(column, player)
	if err != nil {
		return MoveResult{}, err
	}

	g.MoveCount++

	result := MoveResult{Row: row, Column: column, Player: player}

	switch {
	case HasFourThrough(g.Board, row, column, player):
		g.Status = StatusWon
		g.Winner = player
		result.Winner = player
		result.WinningRun = WinningRun(g.Board, row, column, player)
	case g.Board.IsFull():
		g.Status = StatusTied
	default:
		g.CurrentPlayer = player.Opponent()
		result.NextPlayer = g.CurrentPlayer
	}

	result.Status = g.Status
	return result, nil
}

func (g *Game) IsFinished() bool {
	return g.Status == StatusWon || g.Status == StatusTied
}

// PlayerColor returns the display color of a seat.
func (g *Game) PlayerColor(p PlayerID) string {
	if !p.Valid() {
		return ""
	}
	return g.Players[p-1].Color
}

// Snapshot is the plain-data form of a Game, used for caching live tables.
type Snapshot struct {
	Board         [][]int    `json:"board"`
	Player1Color  string     `json:"player1Color"`
	Player2Color  string     `json:"player2Color"`
	CurrentPlayer PlayerID   `json:"currentPlayer"`
	Status        GameStatus `json:"status"`
	Winner        PlayerID   `json:"winner"`
	MoveCount     int        `json:"moveCount"`
}

func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Board:         g.Board.Cells(),
		Player1Color:  g.Players[0].Color,
		Player2Color:  g.Players[1].Color,
		CurrentPlayer: g.CurrentPlayer,
		Status:        g.Status,
		Winner:        g.Winner,
		MoveCount:     g.MoveCount,
	}
}

// RestoreGame rebuilds a Game from a snapshot, rejecting inconsistent ones.
func RestoreGame(s Snapshot) (*Game, error) {
	board, err := RestoreBoard(s.Board)
	if err != nil {
		return nil, err
	}
	if !s.CurrentPlayer.Valid() {
		return nil, fmt.Errorf("%w: current player %d", ErrInvalidSnapshot, s.CurrentPlayer)
	}

	p1, p2 := board.pieceCounts()
	if s.MoveCount != p1+p2 {
		return nil, fmt.Errorf("%w: move count %d but %d pieces on the board", ErrInvalidSnapshot, s.MoveCount, p1+p2)
	}
	// player 1 always moves first, so it is level or one piece ahead
	if p1 != p2 && p1 != p2+1 {
		return nil, fmt.Errorf("%w: %d pieces for player 1 against %d for player 2", ErrInvalidSnapshot, p1, p2)
	}

	p1Run := HasFourInARow(board, Player1)
	p2Run := HasFourInARow(board, Player2)

	switch s.Status {
	case StatusWon:
		if !s.Winner.Valid() || !HasFourInARow(board, s.Winner) {
			return nil, fmt.Errorf("%w: won without a winning run", ErrInvalidSnapshot)
		}
		if HasFourInARow(board, s.Winner.Opponent()) {
			return nil, fmt.Errorf("%w: both players have a winning run", ErrInvalidSnapshot)
		}
	case StatusTied:
		if s.Winner != Empty || !board.IsFull() {
			return nil, fmt.Errorf("%w: tie on a board with free cells", ErrInvalidSnapshot)
		}
		if p1Run || p2Run {
			return nil, fmt.Errorf("%w: tie on a board with a winning run", ErrInvalidSnapshot)
		}
	case StatusInProgress:
		if s.Winner != Empty {
			return nil, fmt.Errorf("%w: winner set on a game in progress", ErrInvalidSnapshot)
		}
		if p1Run || p2Run {
			return nil, fmt.Errorf("%w: game in progress already has a winning run", ErrInvalidSnapshot)
		}
		if board.IsFull() {
			return nil, fmt.Errorf("%w: game in progress on a full board", ErrInvalidSnapshot)
		}
		if (s.CurrentPlayer == Player1) != (p1 == p2) {
			return nil, fmt.Errorf("%w: player %d to move with %d/%d pieces", ErrInvalidSnapshot, s.CurrentPlayer, p1, p2)
		}
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidSnapshot, s.Status)
	}

	return &Game{
		Board: board,
		Players: Settings{
			Player1Color: s.Player1Color,
			Player2Color: s.Player2Color,
		}.Players(),
		CurrentPlayer: s.CurrentPlayer,
		Status:        s.Status,
		Winner:        s.Winner,
		MoveCount:     s.MoveCount,
	}, nil
}
