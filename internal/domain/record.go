package domain

import "time"

// GameRecord is a finished game as kept in the archive: outcome and final board, no moves.
type GameRecord struct {
	GameID          string     `json:"gameId"`
	TableID         string     `json:"tableId"`
	Width           int        `json:"width"`
	Height          int        `json:"height"`
	Player1Color    string     `json:"player1Color"`
	Player2Color    string     `json:"player2Color"`
	Status          GameStatus `json:"status"`
	Winner          PlayerID   `json:"winner,omitempty"`
	TotalMoves      int        `json:"totalMoves"`
	DurationSeconds int        `json:"durationSeconds"`
	CreatedAt       time.Time  `json:"createdAt"`
	FinishedAt      time.Time  `json:"finishedAt"`
	Board           [][]int    `json:"board,omitempty"`
}
