// Package apperr defines the error taxonomy shared by the service and
// handler layers and its mapping to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("invalid credentials")
	ErrConflict          = errors.New("already registered")
	ErrInvalidCredential = errors.New("wrong email or password")
)

// NotFound wraps ErrNotFound with the entity name, e.g. "product not found".
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Conflict wraps ErrConflict, e.g. "client already registered".
func Conflict(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrConflict)
}

// InsufficientStockError names the product whose stock cannot cover the
// requested quantity.
type InsufficientStockError struct {
	Product   string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("item %q exceeds available stock (requested %d, available %d)",
		e.Product, e.Requested, e.Available)
}

// Status maps an error to the HTTP status code it should surface as.
func Status(err error) int {
	var stock *InsufficientStockError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.As(err, &stock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
