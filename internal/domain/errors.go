package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrNotesTooLong     = errors.New("notes exceed 500 characters")
	ErrOrderNumberTaken = errors.New("order number already taken")
)

// MissingField wraps ErrMissingField naming the offending field so the
// handler can surface a field-level reason.
func MissingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

// ProductMissing wraps ErrProductNotFound naming the product reference.
func ProductMissing(id string) error {
	return fmt.Errorf("%w: %s", ErrProductNotFound, id)
}
