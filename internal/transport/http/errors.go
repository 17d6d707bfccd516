package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-hotseat/internal/domain"
)

var statusByCode = map[string]int{
	"invalid_move":     http.StatusUnprocessableEntity,
	"invalid_state":    http.StatusConflict,
	"invalid_settings": http.StatusBadRequest,
	"table_not_found":  http.StatusNotFound,
	"archive_disabled": http.StatusServiceUnavailable,
}

// writeError maps domain errors to a status and a JSON {error, code} body
func writeError(c *gin.Context, err error) {
	code := domain.ErrorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		log.Printf("[HTTP] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "code": code})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "code": "invalid_request"})
}
