// Package runctx carries the identity and logger of one pipeline run
// through context.Context.
package runctx

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type key int

const runKey key = 0

// RunContext identifies a single pipeline run
type RunContext struct {
	RunID     string
	StartTime time.Time
	Logger    zerolog.Logger
}

// WithRunContext starts a new run scope with a fresh ID and a logger
// tagged with it
func WithRunContext(ctx context.Context) context.Context {
	id := uuid.NewString()
	return context.WithValue(ctx, runKey, &RunContext{
		RunID:     id,
		StartTime: time.Now(),
		Logger:    log.With().Str("run_id", id).Logger(),
	})
}

// Get returns the run scope of ctx, or an "unknown" scope using the
// global logger
func Get(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{
		RunID:     "unknown",
		StartTime: time.Now(),
		Logger:    log.Logger,
	}
}

// Logger returns the run-scoped logger
func Logger(ctx context.Context) *zerolog.Logger {
	return &Get(ctx).Logger
}

// Elapsed reports the time since the run started
func Elapsed(ctx context.Context) time.Duration {
	return time.Since(Get(ctx).StartTime)
}
