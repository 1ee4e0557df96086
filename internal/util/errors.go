package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrPermissionDenied = errors.New("permission denied")
	ErrQuestNotFound    = errors.New("quest not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrDuplicateAttempt = errors.New("attempt already processed")
	ErrInvalidCriteria  = errors.New("invalid selection criteria")
)

// Selection error codes. NO_CANDIDATES and NO_CONTEXTUAL_MATCH are
// recoverable inputs to the fallback ladder; SYSTEM_ERROR and
// DATABASE_ERROR are terminal for the call.
const (
	CodeNoCandidates      = "NO_CANDIDATES"
	CodeNoContextualMatch = "NO_CONTEXTUAL_MATCH"
	CodeSystemError       = "SYSTEM_ERROR"
	CodeDatabaseError     = "DATABASE_ERROR"
)

// SelectionError is a pipeline failure with a machine-readable code.
type SelectionError struct {
	Code    string
	Message string
	Err     error
}

func (e *SelectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}

func NewSelectionError(code, message string) *SelectionError {
	return &SelectionError{Code: code, Message: message}
}

func WrapSelectionError(code, message string, err error) *SelectionError {
	return &SelectionError{Code: code, Message: message, Err: err}
}

// Recoverable reports whether the fallback ladder may retry after this
// error.
func (e *SelectionError) Recoverable() bool {
	return e.Code == CodeNoCandidates || e.Code == CodeNoContextualMatch
}

// AsSelectionError extracts a SelectionError from an error chain.
func AsSelectionError(err error) (*SelectionError, bool) {
	var se *SelectionError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
