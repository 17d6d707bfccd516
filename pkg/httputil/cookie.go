package httputil

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const TableCookieName = "table_token"

// SetTableCookie stores the table token in a cookie scoped to that table's routes, so one
// browser can hold tokens for several tables.
func SetTableCookie(w http.ResponseWriter, tableID, token string, ttl time.Duration, secure bool) {
	cookie := &http.Cookie{
		Name:     TableCookieName,
		Value:    token,
		Path:     "/api/tables/" + tableID,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
	}

	// SameSite=None requires Secure=true, so use Lax for development
	if secure {
		cookie.SameSite = http.SameSiteNoneMode
	} else {
		cookie.SameSite = http.SameSiteLaxMode // Works for localhost without HTTPS
	}

	http.SetCookie(w, cookie)
}

func ClearTableCookie(w http.ResponseWriter, tableID string) {
	cookie := &http.Cookie{
		Name:     TableCookieName,
		Value:    "",
		Path:     "/api/tables/" + tableID,
		MaxAge:   -1,
		HttpOnly: true,
	}

	http.SetCookie(w, cookie)
}

// GetTokenFromRequest reads the table token from the Authorization header, falling back
// to the table cookie
func GetTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Support "Bearer <token>" format
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return strings.TrimSpace(token), nil
		}
		return authHeader, nil
	}

	cookie, err := r.Cookie(TableCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", errors.New("no table token found in header or cookie")
}
