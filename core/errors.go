package core

import (
	"strings"

	"github.com/pkg/errors"
)

// FieldError attaches an error message to a single struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries request-level validation failures: an optional
// top-level error plus zero or more per-field messages. The API layer
// renders it as a 400 with a field→message map.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, fErr := range err.Fields {
		msgs = append(msgs, fErr.Field+": "+fErr.Error)
	}
	return strings.Join(msgs, "; ")
}

// shutdown marks errors that should take the whole service down, e.g. an
// integrity failure detected by a handler. The HTTP error handler checks
// IsShutdown and signals the main goroutine to stop.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
