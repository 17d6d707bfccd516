package domain

type ClientMessage struct {
	Type     string    `json:"type"`
	Token    string    `json:"token,omitempty"`
	Column   *int      `json:"column,omitempty"`
	Settings *Settings `json:"settings,omitempty"`
}

type ServerMessage struct {
	Type        string      `json:"type"`
	Message     string      `json:"message,omitempty"`
	Code        string      `json:"code,omitempty"`
	TableID     string      `json:"tableId,omitempty"`
	GameID      string      `json:"gameId,omitempty"`
	Move        *MoveResult `json:"move,omitempty"`
	Game        *GameView   `json:"game,omitempty"`
	Winner      PlayerID    `json:"winner,omitempty"`
	WinnerColor string      `json:"winnerColor,omitempty"`
	Reason      string      `json:"reason,omitempty"`
}

// GameView is the read-only picture of a game handed to surfaces.
type GameView struct {
	TableID       string     `json:"tableId"`
	GameID        string     `json:"gameId"`
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	Board         [][]int    `json:"board"`
	Players       [2]Player  `json:"players"`
	CurrentPlayer PlayerID   `json:"currentPlayer"`
	Status        GameStatus `json:"status"`
	Winner        PlayerID   `json:"winner,omitempty"`
	MoveCount     int        `json:"moveCount"`
	ValidColumns  []int      `json:"validColumns"`
}

const (
	MsgGameState = "game_state"
	MsgGameStart = "game_start"
	MsgMoveMade  = "move_made"
	MsgGameOver  = "game_over"
	MsgError     = "error"
)

const (
	ReasonConnectFour = "connect_four"
	ReasonTie         = "tie"
)
