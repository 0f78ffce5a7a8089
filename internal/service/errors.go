package service

import (
	"errors"
)

// Business rule violations. Handlers map these to status codes and
// user-facing messages with errors.Is.
var (
	ErrNotClient           = errors.New("only clients can use the cart")
	ErrNotSupplier         = errors.New("no supplier is linked to this account")
	ErrInvalidQuantity     = errors.New("quantity must be a positive integer")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductInactive     = errors.New("product is not available")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrCartEmpty           = errors.New("cart is empty")
	ErrLineNotFound        = errors.New("order line not found")
	ErrQuantityBelowZero   = errors.New("quantity would drop below zero")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	ErrUserNotFound        = errors.New("user not found")
	ErrSupplierNotFound    = errors.New("supplier not found")
	ErrNotFound            = errors.New("record not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTooManyAttempts     = errors.New("too many login attempts")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrInUse               = errors.New("record is still referenced")
)

// ValidationError reports a rejected input field. Message is shown to the
// caller as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is an input validation failure
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
