package service

import (
	"errors"
	"fmt"

	"github.com/fjod/go_shop/internal/domain"
)

var (
	ErrEmptyProductList   = fmt.Errorf("%w: products list is empty", domain.ErrValidation)
	ErrMissingProductID   = fmt.Errorf("%w: product id is required", domain.ErrValidation)
	ErrProductNotInCart   = fmt.Errorf("product %w in cart", domain.ErrNotFound)
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
)

// storeErr passes not-found errors through unchanged and marks every other
// store failure as internal.
func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

func errIsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
