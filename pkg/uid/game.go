package uid

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateGameID returns a random 32 character hex ID for a single game.
func GenerateGameID() string {
	return compact(uuid.New())
}

// GenerateTableID returns a random ID for a hot-seat table. It outlives the games played on it.
func GenerateTableID() string {
	return compact(uuid.New())
}

func compact(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}
