package domain

import (
	"errors"
	"fmt"
)

const (
	ErrMsgShippingRequired = "shipping name and address are required"
	ErrMsgCartEmpty        = "cart is empty, nothing to checkout"
	ErrMsgQuantityPositive = "quantity must be at least 1"
	ErrMsgPriceNegative    = "price must not be negative"
	ErrMsgOrderNoItems     = "order must contain at least one item"
)

// ValidationError is a local input error. It is reported before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError is a failed order submission: network failure or a
// non-success response from the order service.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("order submission failed: %v", e.Err)
	default:
		return "order submission failed"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PersistenceError is a durable storage failure. It is logged and recovered
// from, never surfaced to the user.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}
