package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid table token")
	ErrTableMismatch = errors.New("token was issued for another table")
)

// TableClaims represents the JWT claims handed to the surface that opened a table
type TableClaims struct {
	TableID string `json:"table_id"`
	jwt.RegisteredClaims
}

// GenerateTableToken signs a token allowing its holder to play on tableID
func GenerateTableToken(tableID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &TableClaims{
		TableID: tableID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tableID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateTableToken validates a table token and returns its claims
func ValidateTableToken(tokenString, secret string) (*TableClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TableClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*TableClaims); ok && token.Valid && claims.TableID != "" {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// AuthorizeTable checks that tokenString is valid and was issued for tableID
func AuthorizeTable(tokenString, secret, tableID string) error {
	claims, err := ValidateTableToken(tokenString, secret)
	if err != nil {
		return err
	}
	if claims.TableID != tableID {
		return ErrTableMismatch
	}
	return nil
}
