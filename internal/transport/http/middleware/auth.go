package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-hotseat/pkg/auth"
	"github.com/iamasit07/connect4-hotseat/pkg/httputil"
)

// TableAuthMiddleware only lets requests through whose table token was issued for the
// table named by the :id route parameter
func TableAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tableID := c.Param("id")

		// 1. Extract Token (Header or Cookie)
		tokenString, err := httputil.GetTokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing table token", "code": "unauthorized"})
			return
		}

		// 2. Validate signature, expiry and table claim
		if err := auth.AuthorizeTable(tokenString, secret, tableID); err != nil {
			log.Printf("[AUTH] Rejected token for table %s: %v", tableID, err)
			httputil.ClearTableCookie(c.Writer, tableID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid table token", "code": "unauthorized"})
			return
		}

		c.Next()
	}
}
