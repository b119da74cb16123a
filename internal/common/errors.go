// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is.
var (
	// ErrValidation marks input that was rejected before reaching the database.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an operation that targeted a row which does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a failure inside the database layer.
	ErrStorage = errors.New("storage error")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// Describe maps an error to the short message shown to the user.
func Describe(err error) string {
	var userErr *UserError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &userErr):
		return userErr.UserMessage
	case errors.Is(err, ErrNotFound):
		return "Nothing matched that id"
	case errors.Is(err, ErrValidation):
		return "Please check the values you entered"
	case errors.Is(err, ErrStorage):
		return "The budget database could not complete the request"
	default:
		return "Something went wrong"
	}
}
