package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrStorage           = errors.New("storage failure")
)

// ValidationError is a field-level rejection of caller input. Message is
// safe to show to the caller.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// classify leaves domain errors untouched and marks everything else as a
// storage failure.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var verr *ValidationError
	if errors.As(err, &verr) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrStorage) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrStorage, err)
}
