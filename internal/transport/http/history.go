package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-hotseat/internal/service/game"
)

type HistoryHandler struct {
	Service *game.Service
}

func NewHistoryHandler(service *game.Service) *HistoryHandler {
	return &HistoryHandler{Service: service}
}

// GetHistory lists the latest finished games, ?limit=n
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "limit must be an integer")
			return
		}
		limit = n
	}

	games, err := h.Service.RecentGames(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

func (h *HistoryHandler) GetGameDetails(c *gin.Context) {
	gameID := c.Param("id")

	record, err := h.Service.FinishedGame(c.Request.Context(), gameID)
	if err != nil {
		writeError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found", "code": "game_not_found"})
		return
	}
	c.JSON(http.StatusOK, record)
}
