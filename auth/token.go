// Package auth issues and verifies the bearer tokens sellers authenticate
// with.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kahenya/sales-crm/models"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 24 * time.Hour

// Identity is the acting seller resolved from a verified token. It is passed
// explicitly into every operation that needs to know the caller.
type Identity struct {
	ID      uint   `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// IssueToken signs an HS256 token carrying the user's id, email, name and
// surname.
func IssueToken(user models.User, secret string) (string, error) {
	claims := jwt.MapClaims{
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"surname": user.Surname,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token string and returns the identity it carries.
func ParseToken(tokenString, secret string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("invalid token claims")
	}
	id, ok := claims["id"].(float64)
	if !ok {
		return Identity{}, errors.New("token missing id claim")
	}
	ident := Identity{ID: uint(id)}
	ident.Email, _ = claims["email"].(string)
	ident.Name, _ = claims["name"].(string)
	ident.Surname, _ = claims["surname"].(string)
	return ident, nil
}
