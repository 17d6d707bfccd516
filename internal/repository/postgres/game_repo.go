package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iamasit07/connect4-hotseat/internal/domain"
)

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

const selectGameColumns = `
	SELECT game_id, table_id, width, height, player1_color, player2_color,
	       status, winner, total_moves, duration_seconds, created_at, finished_at, board_state
	FROM finished_game`

// SaveGame stores a finished game. Saving the same game twice overwrites the outcome.
func (r *GameRepo) SaveGame(ctx context.Context, record domain.GameRecord) error {
	boardJSON, err := json.Marshal(record.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %w", err)
	}

	query := `
	INSERT INTO finished_game (game_id, table_id, width, height, player1_color, player2_color,
		status, winner, total_moves, duration_seconds, created_at, finished_at, board_state)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (game_id) DO UPDATE SET
		status = EXCLUDED.status,
		winner = EXCLUDED.winner,
		total_moves = EXCLUDED.total_moves,
		duration_seconds = EXCLUDED.duration_seconds,
		finished_at = EXCLUDED.finished_at,
		board_state = EXCLUDED.board_state;
	`

	_, err = r.DB.ExecContext(ctx, query,
		record.GameID, record.TableID, record.Width, record.Height,
		record.Player1Color, record.Player2Color,
		string(record.Status), int(record.Winner), record.TotalMoves, record.DurationSeconds,
		record.CreatedAt, record.FinishedAt, string(boardJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game record: %w", err)
	}
	return nil
}

// GetGameByID retrieves an archived game. It returns nil, nil when the game is unknown.
func (r *GameRepo) GetGameByID(ctx context.Context, gameID string) (*domain.GameRecord, error) {
	row := r.DB.QueryRowContext(ctx, selectGameColumns+` WHERE game_id = $1;`, gameID)

	record, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}
	return record, nil
}

// ListRecentGames returns the latest finished games, newest first
func (r *GameRepo) ListRecentGames(ctx context.Context, limit int) ([]domain.GameRecord, error) {
	rows, err := r.DB.QueryContext(ctx, selectGameColumns+` ORDER BY finished_at DESC LIMIT $1;`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent games: %w", err)
	}
	defer rows.Close()

	games := []domain.GameRecord{}
	for rows.Next() {
		record, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game rows: %w", err)
	}
	return games, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*domain.GameRecord, error) {
	var (
		record    domain.GameRecord
		status    string
		winner    int
		boardJSON []byte
	)

	err := row.Scan(
		&record.GameID,
		&record.TableID,
		&record.Width,
		&record.Height,
		&record.Player1Color,
		&record.Player2Color,
		&status,
		&winner,
		&record.TotalMoves,
		&record.DurationSeconds,
		&record.CreatedAt,
		&record.FinishedAt,
		&boardJSON,
	)
	if err != nil {
		return nil, err
	}

	record.Status = domain.GameStatus(status)
	record.Winner = domain.PlayerID(winner)
	if boardJSON != nil {
		if err := json.Unmarshal(boardJSON, &record.Board); err != nil {
			return nil, fmt.Errorf("failed to unmarshal board state: %w", err)
		}
	}
	return &record, nil
}
