package navigator

import (
	"errors"
	"fmt"
	"time"

	"github.com/law-makers/dealwatch/internal/diagnostics"
)

// ErrRequiredStepAbsent is returned when a step that is not Optional never appears
var ErrRequiredStepAbsent = errors.New("required interstitial did not appear")

// ListingNotReadyError reports that no listing card appeared within the
// listing wait. The run is recoverable; the next scheduled run may succeed.
type ListingNotReadyError struct {
	URL      string
	Waited   time.Duration
	Snapshot *diagnostics.Snapshot
	Err      error
}

// Error implements the error interface
func (e *ListingNotReadyError) Error() string {
	return fmt.Sprintf("listing not ready at %s after %s: %v", e.URL, e.Waited, e.Err)
}

// Unwrap returns the underlying wait error
func (e *ListingNotReadyError) Unwrap() error {
	return e.Err
}

// StepError wraps the failure of a single popup step
type StepError struct {
	Step    string
	Outcome Outcome
	Err     error
}

// Error implements the error interface
func (e *StepError) Error() string {
	return fmt.Sprintf("step %q %s: %v", e.Step, e.Outcome, e.Err)
}

// Unwrap returns the underlying error
func (e *StepError) Unwrap() error {
	return e.Err
}
