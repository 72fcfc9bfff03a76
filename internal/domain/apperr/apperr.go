// Package apperr defines the error values the catalog core returns.
//
// Every core error is a value. Callers branch with errors.As / errors.Is and
// HTTPStatus maps each kind to a response code for the JSON handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is returned (wrapped) when a lookup by id, slug or key has no match.
// Callers treat it as "absent", not as a system fault.
var ErrNotFound = errors.New("not found")

// NotFound wraps ErrNotFound with the kind of record and the key that was looked up.
func NotFound(kind string, key any) error {
	return fmt.Errorf("%s %v: %w", kind, key, ErrNotFound)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ValidationError carries field-level messages for a rejected candidate.
// It is recoverable: the caller corrects the input and resubmits.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// ParseError reports structurally malformed CSV input (empty file, missing headers).
type ParseError struct {
	Messages []string
}

func (e *ParseError) Error() string {
	return "csv parse failed: " + strings.Join(e.Messages, "; ")
}

// StateError reports a submission transition that is not allowed from the
// submission's current status. It indicates caller misuse of the workflow.
type StateError struct {
	ID     int64
	From   string
	Action string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s submission %d: status is %s", e.Action, e.ID, e.From)
}

// HTTPStatus maps a core error to the HTTP status a handler should return.
func HTTPStatus(err error) int {
	var ve *ValidationError
	var pe *ParseError
	var se *StateError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve), errors.As(err, &pe):
		return http.StatusBadRequest
	case errors.As(err, &se):
		return http.StatusConflict
	case IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
