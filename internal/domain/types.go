package domain

import (
	"errors"
	"fmt"
	"strings"
)

type PlayerID int

const (
	Empty   PlayerID = 0
	Player1 PlayerID = 1
	Player2 PlayerID = 2
)

// Opponent returns the other seat at the table.
func (p PlayerID) Opponent() PlayerID {
	if p == Player1 {
		return Player2
	}
	return Player1
}

func (p PlayerID) Valid() bool {
	return p == Player1 || p == Player2
}

const (
	DefaultColumns = 7
	DefaultRows    = 6
	ToWin          = 4
)

// to represent the game status
type GameStatus string

const (
	StatusInProgress GameStatus = "in_progress"
	StatusWon        GameStatus = "won"
	StatusTied       GameStatus = "tied"
)

// Player is one of the two seats. Color is only a display attribute.
type Player struct {
	ID    PlayerID `json:"id"`
	Color string   `json:"color"`
}

type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidMove       Error = "invalid move"
	ErrInvalidState      Error = "game is not in progress"
	ErrInvalidDimensions Error = "board dimensions must be positive"
	ErrInvalidSettings   Error = "invalid game settings"
	ErrInvalidSnapshot   Error = "invalid game snapshot"
	ErrTableNotFound     Error = "table not found"
	ErrArchiveDisabled   Error = "game archive is not configured"
)

var (
	ErrColumnFull       = fmt.Errorf("%w: column is full", ErrInvalidMove)
	ErrColumnOutOfRange = fmt.Errorf("%w: column out of range", ErrInvalidMove)
)

// Settings configure a new game. They come from whatever form the surface shows.
type Settings struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Player1Color string `json:"player1Color"`
	Player2Color string `json:"player2Color"`
}

func DefaultSettings() Settings {
	return Settings{
		Width:        DefaultColumns,
		Height:       DefaultRows,
		Player1Color: "red",
		Player2Color: "yellow",
	}
}

// Validate checks the settings against the given maxima. A zero maximum means unbounded.
func (s Settings) Validate(maxWidth, maxHeight int) error {
	if s.Width <= 0 || s.Height <= 0 {
		return ErrInvalidDimensions
	}
	if maxWidth > 0 && s.Width > maxWidth {
		return fmt.Errorf("%w: width %d exceeds %d", ErrInvalidSettings, s.Width, maxWidth)
	}
	if maxHeight > 0 && s.Height > maxHeight {
		return fmt.Errorf("%w: height %d exceeds %d", ErrInvalidSettings, s.Height, maxHeight)
	}

	c1 := strings.TrimSpace(s.Player1Color)
	c2 := strings.TrimSpace(s.Player2Color)
	if c1 == "" || c2 == "" {
		return fmt.Errorf("%w: both players need a color", ErrInvalidSettings)
	}
	if strings.EqualFold(c1, c2) {
		return fmt.Errorf("%w: players must have different colors", ErrInvalidSettings)
	}
	return nil
}

// Players returns both seats with their colors.
func (s Settings) Players() [2]Player {
	return [2]Player{
		{ID: Player1, Color: strings.TrimSpace(s.Player1Color)},
		{ID: Player2, Color: strings.TrimSpace(s.Player2Color)},
	}
}

// ErrorCode maps an error to the short code surfaces switch on.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidMove):
		return "invalid_move"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrInvalidDimensions), errors.Is(err, ErrInvalidSettings):
		return "invalid_settings"
	case errors.Is(err, ErrTableNotFound):
		return "table_not_found"
	case errors.Is(err, ErrArchiveDisabled):
		return "archive_disabled"
	default:
		return "internal"
	}
}
