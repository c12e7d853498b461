package pipeline

import (
	"errors"
	"fmt"
)

// ErrorCode classifies why a run did not complete
type ErrorCode string

const (
	ErrCodeListingNotReady ErrorCode = "LISTING_NOT_READY"
	ErrCodeBrowser         ErrorCode = "BROWSER"
	ErrCodeNavigation      ErrorCode = "NAVIGATION"
	ErrCodeExtraction      ErrorCode = "EXTRACTION"
	ErrCodeTimeout         ErrorCode = "TIMEOUT"
	ErrCodePanic           ErrorCode = "PANIC"
)

// RunError wraps the failure of a run with its classification
type RunError struct {
	Code       ErrorCode
	RunID      string
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *RunError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.RunID, e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s] %s: %s", e.RunID, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Underlying
}

// Is matches another RunError by code, or the underlying error
func (e *RunError) Is(target error) bool {
	if t, ok := target.(*RunError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

func newRunError(code ErrorCode, runID, message string, err error) *RunError {
	return &RunError{Code: code, RunID: runID, Message: message, Underlying: err}
}
