package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Category classifies failures so outer layers can react without inspecting
// messages.
type Category string

const (
	CategoryValidation   Category = "validation"
	CategoryNotFound     Category = "not_found"
	CategoryNetwork      Category = "network"
	CategoryRepository   Category = "repository"
	CategoryUnauthorized Category = "unauthorized"
	CategoryCanceled     Category = "canceled"
)

// Sentinels usable with errors.Is. Any *Error matches the sentinel of its
// category.
var (
	ErrValidation   = &Error{Category: CategoryValidation, Message: "validation failed"}
	ErrNotFound     = &Error{Category: CategoryNotFound, Message: "not found"}
	ErrNetwork      = &Error{Category: CategoryNetwork, Message: "network error"}
	ErrRepository   = &Error{Category: CategoryRepository, Message: "repository error"}
	ErrUnauthorized = &Error{Category: CategoryUnauthorized, Message: "unauthorized"}
	ErrCanceled     = &Error{Category: CategoryCanceled, Message: "query canceled"}
)

// Error is the single error type surfaced by use-cases and the coordinator.
type Error struct {
	Category Category
	// Field is set for validation errors.
	Field   string
	Message string
	// Fields holds per-field messages when several fields failed validation.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same category.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Category == e.Category
}

// NewValidationError reports an invalid field.
func NewValidationError(field, message string) *Error {
	return &Error{Category: CategoryValidation, Field: field, Message: message}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(d Domain, id int64) *Error {
	return &Error{Category: CategoryNotFound, Message: fmt.Sprintf("%s %d not found", d, id)}
}

// NewRepositoryError wraps a backing store failure.
func NewRepositoryError(message string, err error) *Error {
	return &Error{Category: CategoryRepository, Message: message, Err: err}
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(message string, err error) *Error {
	return &Error{Category: CategoryNetwork, Message: message, Err: err}
}

// CategoryOf returns the category of err, or "" when err is not classified.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}

// Classify maps a raw repository error into the taxonomy. Already classified
// errors pass through untouched.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewNetworkError(op+" interrupted", err)
	}
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return NewNetworkError(op+" failed to reach the data source", err)
	}
	return NewRepositoryError(op+" failed", err)
}
