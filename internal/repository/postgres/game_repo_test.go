package postgres

import (
	"testing"
	"time"

	"github.com/iamasit07/connect4-hotseat/internal/domain"
	"github.com/iamasit07/connect4-hotseat/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedGame(id string, finishedAt time.Time) domain.GameRecord {
	return domain.GameRecord{
		GameID:          id,
		TableID:         "table-" + id,
		Width:           4,
		Height:          4,
		Player1Color:    "red",
		Player2Color:    "yellow",
		Status:          domain.StatusWon,
		Winner:          domain.Player1,
		TotalMoves:      7,
		DurationSeconds: 42,
		CreatedAt:       finishedAt.Add(-42 * time.Second),
		FinishedAt:      finishedAt,
		Board: [][]int{
			{0, 0, 0, 0},
			{1, 0, 0, 0},
			{1, 2, 0, 0},
			{1, 2, 1, 2},
		},
	}
}

func TestGameRepo(t *testing.T) {
	ctx, db := suite.Postgres(t)
	require.NoError(t, RunMigrations(ctx, db))
	// running twice must be harmless
	require.NoError(t, RunMigrations(ctx, db))

	repo := NewGameRepo(db)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("save and get", func(t *testing.T) {
		// Given: a finished game
		game := finishedGame("g1", base)

		// When: it is saved and read back
		require.NoError(t, repo.SaveGame(ctx, game))
		got, err := repo.GetGameByID(ctx, "g1")

		// Then: every field survives
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, game.TableID, got.TableID)
		assert.Equal(t, game.Status, got.Status)
		assert.Equal(t, game.Winner, got.Winner)
		assert.Equal(t, game.Board, got.Board)
		assert.Equal(t, game.TotalMoves, got.TotalMoves)
		assert.WithinDuration(t, game.FinishedAt, got.FinishedAt, time.Second)
	})

	t.Run("upsert overwrites the outcome", func(t *testing.T) {
		game := finishedGame("g2", base.Add(time.Minute))
		require.NoError(t, repo.SaveGame(ctx, game))

		game.Status = domain.StatusTied
		game.Winner = domain.Empty
		require.NoError(t, repo.SaveGame(ctx, game))

		got, err := repo.GetGameByID(ctx, "g2")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusTied, got.Status)
		assert.Equal(t, domain.Empty, got.Winner)
	})

	t.Run("unknown game", func(t *testing.T) {
		got, err := repo.GetGameByID(ctx, "missing")

		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("recent games newest first", func(t *testing.T) {
		require.NoError(t, repo.SaveGame(ctx, finishedGame("g3", base.Add(time.Hour))))

		games, err := repo.ListRecentGames(ctx, 2)

		require.NoError(t, err)
		require.Len(t, games, 2)
		assert.Equal(t, "g3", games[0].GameID)
		assert.Equal(t, "g2", games[1].GameID)
	})
}
