package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tieMoves fills a 7x6 board without either player ever connecting four.
var tieMoves = []int{
	0, 0, 0, 0, 0, 0,
	1, 1, 1, 1, 1, 1,
	4, 2, 2, 2, 2, 2, 2,
	3, 3, 3, 3, 3, 3,
	4, 4, 4, 4, 4,
	5, 5, 5, 5, 5,
	6, 6, 6, 6, 6, 6,
	5,
}

func newTestGame(t *testing.T) *Game {
	t.Helper()
	g, err := NewGame(DefaultSettings())
	require.NoError(t, err)
	return g
}

func TestNewGame(t *testing.T) {
	// When: a game is created with default settings
	g := newTestGame(t)

	// Then: it starts empty, in progress, with player 1 to move
	assert.Equal(t, StatusInProgress, g.Status)
	assert.Equal(t, Player1, g.CurrentPlayer)
	assert.Equal(t, Empty, g.Winner)
	assert.Equal(t, 0, g.MoveCount)
	assert.Equal(t, 7, g.Board.Width())
	assert.Equal(t, 6, g.Board.Height())
	assert.Equal(t, "red", g.PlayerColor(Player1))
	assert.Equal(t, "yellow", g.PlayerColor(Player2))
	assert.False(t, g.IsFinished())

	_, err := NewGame(Settings{Width: 0, Height: 6})
	require.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestGame_SubmitMove(t *testing.T) {
	t.Run("alternates players", func(t *testing.T) {
		g := newTestGame(t)

		res, err := g.SubmitMove(3)
		require.NoError(t, err)

		assert.Equal(t, MoveResult{Row: 5, Column: 3, Player: Player1, Status: StatusInProgress, NextPlayer: Player2}, res)
		assert.Equal(t, Player2, g.CurrentPlayer)

		res, err = g.SubmitMove(3)
		require.NoError(t, err)
		assert.Equal(t, 4, res.Row)
		assert.Equal(t, Player2, res.Player)
		assert.Equal(t, Player1, g.CurrentPlayer)
		assert.Equal(t, 2, g.MoveCount)
	})

	t.Run("vertical win for player 1", func(t *testing.T) {
		// Given: player 1 stacks column 0 while player 2 plays column 1
		g := newTestGame(t)
		for i := 0; i < 3; i++ {
			_, err := g.SubmitMove(0)
			require.NoError(t, err)
			_, err = g.SubmitMove(1)
			require.NoError(t, err)
		}

		// When: player 1 drops a fourth piece into column 0
		res, err := g.SubmitMove(0)

		// Then: player 1 has won
		require.NoError(t, err)
		assert.Equal(t, StatusWon, g.Status)
		assert.Equal(t, Player1, g.Winner)
		assert.Equal(t, StatusWon, res.Status)
		assert.Equal(t, Player1, res.Winner)
		assert.Equal(t, Empty, res.NextPlayer)
		assert.Equal(t, []Position{{2, 0}, {3, 0}, {4, 0}, {5, 0}}, res.WinningRun)
		assert.True(t, g.IsFinished())
	})

	t.Run("full board without a run is a tie", func(t *testing.T) {
		g := newTestGame(t)

		var res MoveResult
		for i, col := range tieMoves {
			var err error
			res, err = g.SubmitMove(col)
			require.NoError(t, err, "move %d", i)
			if i < len(tieMoves)-1 {
				require.Equal(t, StatusInProgress, g.Status, "move %d", i)
			}
		}

		assert.Equal(t, StatusTied, g.Status)
		assert.Equal(t, StatusTied, res.Status)
		assert.Equal(t, Empty, g.Winner)
		assert.True(t, g.Board.IsFull())
		assert.Equal(t, 42, g.MoveCount)
	})

	t.Run("out of range column leaves the game unchanged", func(t *testing.T) {
		g := newTestGame(t)
		_, err := g.SubmitMove(2)
		require.NoError(t, err)
		before := g.Snapshot()

		for _, col := range []int{-1, 7} {
			_, err := g.SubmitMove(col)
			require.ErrorIs(t, err, ErrInvalidMove)
		}

		assert.Equal(t, before, g.Snapshot())
		assert.Equal(t, Player2, g.CurrentPlayer)
	})

	t.Run("full column keeps the same player to move", func(t *testing.T) {
		g := newTestGame(t)
		for i := 0; i < 6; i++ {
			_, err := g.SubmitMove(6)
			require.NoError(t, err)
		}
		before := g.Snapshot()

		_, err := g.SubmitMove(6)

		require.ErrorIs(t, err, ErrColumnFull)
		assert.Equal(t, before, g.Snapshot())
	})

	t.Run("finished game rejects moves", func(t *testing.T) {
		g := newTestGame(t)
		for _, col := range []int{0, 1, 0, 1, 0, 1, 0} {
			_, err := g.SubmitMove(col)
			require.NoError(t, err)
		}
		require.Equal(t, StatusWon, g.Status)
		before := g.Snapshot()

		for col := -1; col <= 7; col++ {
			_, err := g.SubmitMove(col)
			require.ErrorIs(t, err, ErrInvalidState)
		}
		assert.Equal(t, before, g.Snapshot())
	})

	t.Run("tied game rejects moves", func(t *testing.T) {
		g := newTestGame(t)
		for _, col := range tieMoves {
			_, err := g.SubmitMove(col)
			require.NoError(t, err)
		}

		_, err := g.SubmitMove(0)
		require.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("cells never go back to empty", func(t *testing.T) {
		g := newTestGame(t)
		prev := g.Board.Cells()
		for _, col := range tieMoves {
			_, _ = g.SubmitMove(col)
			_, _ = g.SubmitMove(-1)
			next := g.Board.Cells()
			for r := range prev {
				for c := range prev[r] {
					if prev[r][c] != 0 {
						require.Equal(t, prev[r][c], next[r][c])
					}
				}
			}
			prev = next
		}
	})
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  error
	}{
		{name: "defaults", settings: DefaultSettings()},
		{name: "zero width", settings: Settings{Width: 0, Height: 6, Player1Color: "red", Player2Color: "blue"}, wantErr: ErrInvalidDimensions},
		{name: "too tall", settings: Settings{Width: 7, Height: 30, Player1Color: "red", Player2Color: "blue"}, wantErr: ErrInvalidSettings},
		{name: "missing color", settings: Settings{Width: 7, Height: 6, Player1Color: " ", Player2Color: "blue"}, wantErr: ErrInvalidSettings},
		{name: "same color", settings: Settings{Width: 7, Height: 6, Player1Color: "Red", Player2Color: "red"}, wantErr: ErrInvalidSettings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate(20, 20)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRestoreGame(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		g := newTestGame(t)
		for _, col := range []int{3, 3, 4} {
			_, err := g.SubmitMove(col)
			require.NoError(t, err)
		}

		restored, err := RestoreGame(g.Snapshot())

		require.NoError(t, err)
		assert.Equal(t, g.Snapshot(), restored.Snapshot())

		// the restored game keeps playing from where it was
		res, err := restored.SubmitMove(4)
		require.NoError(t, err)
		assert.Equal(t, Player2, res.Player)
		assert.Equal(t, 4, res.Row)
	})

	t.Run("won without a run", func(t *testing.T) {
		s := newTestGame(t).Snapshot()
		s.Status = StatusWon
		s.Winner = Player1

		_, err := RestoreGame(s)
		require.ErrorIs(t, err, ErrInvalidSnapshot)
	})

	t.Run("tie on an empty board", func(t *testing.T) {
		s := newTestGame(t).Snapshot()
		s.Status = StatusTied

		_, err := RestoreGame(s)
		require.ErrorIs(t, err, ErrInvalidSnapshot)
	})

	t.Run("bad current player", func(t *testing.T) {
		s := newTestGame(t).Snapshot()
		s.CurrentPlayer = Empty

		_, err := RestoreGame(s)
		require.ErrorIs(t, err, ErrInvalidSnapshot)
	})

	t.Run("unknown status", func(t *testing.T) {
		s := newTestGame(t).Snapshot()
		s.Status = "paused"

		_, err := RestoreGame(s)
		require.ErrorIs(t, err, ErrInvalidSnapshot)
	})

	t.Run("inconsistent snapshots", func(t *testing.T) {
		won := playedGame(t, 0, 1, 0, 1, 0, 1, 0).Snapshot()
		tied := playedGame(t, tieMoves...).Snapshot()
		midGame := playedGame(t, 3, 3, 4).Snapshot()

		// the same tie with two pairs of pieces swapped: player 1 now fills rows 0-3 of
		// column 0 and the piece counts stay level
		tiedWithRun := playedGame(t, tieMoves...).Snapshot()
		tiedWithRun.Board[0][0], tiedWithRun.Board[0][2] = int(Player1), int(Player2)
		tiedWithRun.Board[2][0], tiedWithRun.Board[0][6] = int(Player1), int(Player2)

		tests := []struct {
			name   string
			modify func(s *Snapshot)
			base   Snapshot
		}{
			{
				name: "won board reported as in progress",
				base: won,
				modify: func(s *Snapshot) {
					s.Status = StatusInProgress
					s.Winner = Empty
					s.CurrentPlayer = Player2
				},
			},
			{
				name: "full board reported as in progress",
				base: tied,
				modify: func(s *Snapshot) {
					s.Status = StatusInProgress
					s.CurrentPlayer = Player1
				},
			},
			{
				name:   "tie with a winning run",
				base:   tiedWithRun,
				modify: func(s *Snapshot) {},
			},
			{
				name:   "move count off",
				base:   midGame,
				modify: func(s *Snapshot) { s.MoveCount = 5 },
			},
			{
				name:   "wrong player to move",
				base:   midGame,
				modify: func(s *Snapshot) { s.CurrentPlayer = Player1 },
			},
			{
				name: "player 2 ahead on pieces",
				base: midGame,
				modify: func(s *Snapshot) {
					s.Board[5][4] = int(Player2)
				},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s := cloneSnapshot(tt.base)
				tt.modify(&s)

				_, err := RestoreGame(s)

				require.ErrorIs(t, err, ErrInvalidSnapshot)
			})
		}
	})

	t.Run("finished games restore", func(t *testing.T) {
		for _, moves := range [][]int{{0, 1, 0, 1, 0, 1, 0}, tieMoves} {
			g := playedGame(t, moves...)

			restored, err := RestoreGame(g.Snapshot())

			require.NoError(t, err)
			assert.Equal(t, g.Status, restored.Status)
			_, err = restored.SubmitMove(3)
			require.ErrorIs(t, err, ErrInvalidState)
		}
	})
}

func playedGame(t *testing.T, moves ...int) *Game {
	t.Helper()
	g := newTestGame(t)
	for _, col := range moves {
		_, err := g.SubmitMove(col)
		require.NoError(t, err)
	}
	return g
}

func cloneSnapshot(s Snapshot) Snapshot {
	board := make([][]int, len(s.Board))
	for i, row := range s.Board {
		board[i] = append([]int(nil), row...)
	}
	s.Board = board
	return s
}
