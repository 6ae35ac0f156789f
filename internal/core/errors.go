package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a notice or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller may not mutate a notice.
	ErrForbidden = errors.New("forbidden")
)

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError rejects malformed input before it reaches the store.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "validation failed"
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// WriteError is a store failure during create, update, delete or view recording.
type WriteError struct {
	Op  string
	Err error
}

func NewWriteError(op string, err error) error {
	return &WriteError{Op: op, Err: err}
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// SubscriptionError terminates a live stream. The consumer must re-subscribe.
type SubscriptionError struct {
	Source string
	Err    error
}

func NewSubscriptionError(source string, err error) error {
	return &SubscriptionError{Source: source, Err: err}
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription %s: %v", e.Source, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

// ResolutionError is a failed directory lookup. It never blocks display.
type ResolutionError struct {
	IDs []string
	Err error
}

func NewResolutionError(ids []string, err error) error {
	return &ResolutionError{IDs: ids, Err: err}
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", strings.Join(e.IDs, ","), e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsWrite(err error) bool {
	var w *WriteError
	return errors.As(err, &w)
}

func IsSubscription(err error) bool {
	var s *SubscriptionError
	return errors.As(err, &s)
}

func IsResolution(err error) bool {
	var r *ResolutionError
	return errors.As(err, &r)
}
