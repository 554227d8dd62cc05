package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput    = errors.New("invalid input")                 // 400
	ErrProductNotFound = errors.New("product not found")             // 404
	ErrCartNotFound    = errors.New("cart not found")                // 404
	ErrItemNotFound    = errors.New("item not found in cart")        // 404
	ErrEmptyCart       = errors.New("cannot checkout an empty cart") // 400
	ErrOrderNotFound   = errors.New("order not found")               // 404
	ErrPersistence     = errors.New("persistence error")             // 500
	ErrCatalogSource   = errors.New("catalog source unavailable")    // 500
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
