package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrCartItemNotFound   = errors.New("item not found in cart")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Role partition violations. Rejected before any read of cart/stock state.
	ErrCustomerOnly = errors.New("customer role required: admin accounts cannot access cart or orders")
	ErrAdminOnly    = errors.New("admin role required")
)

// ValidationError reports malformed input, rejected before any read of shared
// state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientStockError distinguishes "try a smaller quantity" from every
// other failure. Carried all the way to the response body.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// TransientStoreError wraps infrastructure failures of the atomic commit
// (serialization conflict, deadlock, lost connection). The unit rolled back,
// so the whole operation is safe to retry.
type TransientStoreError struct {
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("store temporarily unavailable, retry checkout: %v", e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }
