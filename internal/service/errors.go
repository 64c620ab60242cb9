package service

import (
	"errors"
	"fmt"

	"inventory-service/internal/store"
)

// Error taxonomy surfaced to the HTTP layer. Validation and stock-rule
// failures are detected before any write; storage errors pass through
// wrapped and map to a generic server error.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrNegativeStock     = errors.New("stock cannot go negative")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// translateStoreErr rewraps store sentinels onto the service taxonomy,
// keeping the store's message (which names the offending item/variant).
// Other errors pass through unchanged.
func translateStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrVariantNotFound):
		return fmt.Errorf("%s: %w", err, ErrVariantNotFound)
	case errors.Is(err, store.ErrNegativeStock):
		return fmt.Errorf("%s: %w", err, ErrNegativeStock)
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", err, ErrNotFound)
	default:
		return err
	}
}
