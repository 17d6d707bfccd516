package uid

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexID = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestGenerateIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		for _, id := range []string{GenerateGameID(), GenerateTableID()} {
			assert.Regexp(t, hexID, id)
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
}
