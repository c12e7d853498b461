// internal/retry/retry.go
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxAttempts          int           // Maximum number of attempts, including the first
	InitialBackoff       time.Duration // Initial backoff duration
	MaxBackoff           time.Duration // Upper bound for backoff and Retry-After waits
	Multiplier           float64       // Backoff multiplier
	RetryableStatusCodes []int         // HTTP status codes that should trigger retry
}

// DefaultConfig returns the retry policy used for webhook delivery
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		RetryableStatusCodes: []int{
			http.StatusTooManyRequests,     // 429
			http.StatusInternalServerError, // 500
			http.StatusBadGateway,          // 502
			http.StatusServiceUnavailable,  // 503
			http.StatusGatewayTimeout,      // 504
		},
	}
}

// WithRetry executes fn until it succeeds, fails with a non-retryable error,
// or MaxAttempts is reached. A Retry-After hint on the error replaces the
// computed backoff.
func WithRetry(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				log.Debug().
					Int("attempts", attempt+1).
					Msg("Retry succeeded")
			}
			return nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return err
		}

		if !shouldRetry(err, cfg) {
			log.Debug().
				Err(err).
				Msg("Error is not retryable")
			return err
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxAttempts-1 {
			backoff := waitFor(err, attempt, cfg)

			log.Debug().
				Int("attempt", attempt+1).
				Int("max_attempts", cfg.MaxAttempts).
				Dur("backoff", backoff).
				Err(err).
				Msg("Retrying after backoff")

			t := time.NewTimer(backoff)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("retry aborted: %w", ctx.Err())
			}
		}
	}

	log.Warn().
		Int("attempts", cfg.MaxAttempts).
		Err(lastErr).
		Msg("Max retry attempts exceeded")

	return fmt.Errorf("operation failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// waitFor returns the pause before the next attempt
func waitFor(err error, attempt int, cfg Config) time.Duration {
	var ra RetryAfterer
	if errors.As(err, &ra) {
		if d := ra.RetryAfter(); d > 0 {
			if cfg.MaxBackoff > 0 && d > cfg.MaxBackoff {
				return cfg.MaxBackoff
			}
			return d
		}
	}
	return calculateBackoff(attempt, cfg)
}

// calculateBackoff calculates the backoff duration for the given attempt
func calculateBackoff(attempt int, cfg Config) time.Duration {
	// Exponential backoff: initialBackoff * (multiplier ^ attempt)
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))

	if cfg.MaxBackoff > 0 && backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}

	return time.Duration(backoff)
}

// shouldRetry determines if an error is retryable
func shouldRetry(err error, cfg Config) bool {
	if err == nil {
		return false
	}

	var perm *PermanentError
	if errors.As(err, &perm) {
		return false
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		statusCode := sc.GetStatusCode()
		for _, code := range cfg.RetryableStatusCodes {
			if statusCode == code {
				return true
			}
		}
		return false
	}

	// Timeouts are retryable unless marked permanent above
	if isTimeoutError(err) {
		return true
	}

	// Transport errors without a status are retried
	return true
}

// isTimeoutError checks if an error is a timeout error
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) {
		return timeoutErr.Timeout()
	}

	return false
}

// StatusCoder is an interface for errors that provide an HTTP status code
type StatusCoder interface {
	GetStatusCode() int
}

// RetryAfterer is implemented by errors that carry a server-provided wait
type RetryAfterer interface {
	RetryAfter() time.Duration
}

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
	Wait       time.Duration
}

func (e HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

func (e HTTPError) GetStatusCode() int {
	return e.StatusCode
}

func (e HTTPError) RetryAfter() time.Duration {
	return e.Wait
}

// NewHTTPError builds an HTTPError from a response, reading Retry-After
// when the server sent one
func NewHTTPError(resp *http.Response, message string) HTTPError {
	return HTTPError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Message:    message,
		Wait:       ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}
}

// ParseRetryAfter reads a Retry-After header given in seconds (fractions
// allowed) or as an HTTP date. Unparseable values yield 0.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// PermanentError marks an error that must not be retried
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so WithRetry returns it immediately
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}
