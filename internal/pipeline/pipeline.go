// Package pipeline runs one deal check: browser, navigation, extraction,
// filtering and notification.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/law-makers/dealwatch/internal/browser"
	"github.com/law-makers/dealwatch/internal/deals"
	"github.com/law-makers/dealwatch/internal/extract"
	"github.com/law-makers/dealwatch/internal/navigator"
	"github.com/law-makers/dealwatch/internal/notify"
	"github.com/law-makers/dealwatch/internal/runctx"
	"github.com/law-makers/dealwatch/pkg/models"
)

// Outcome is the final state of a run
type Outcome string

const (
	OutcomeCompleted       Outcome = "completed"
	OutcomeListingNotReady Outcome = "listing_not_ready"
	OutcomeFailed          Outcome = "failed"
)

// Launcher acquires a browser session for one run
type Launcher interface {
	Launch(ctx context.Context) (browser.Handle, error)
}

// Navigator brings a page to the stable listing
type Navigator interface {
	Navigate(ctx context.Context, page browser.Page) (*navigator.Result, error)
}

// Options holds the collaborators and parameters of a pipeline
type Options struct {
	Launcher   Launcher
	Navigator  Navigator
	Extractor  *extract.Extractor
	Notifier   notify.Notifier
	Threshold  decimal.Decimal
	PartySize  int
	RunTimeout time.Duration
}

// Result summarizes one run
type Result struct {
	RunID          string                 `json:"run_id"`
	Outcome        Outcome                `json:"outcome"`
	Steps          []navigator.StepResult `json:"steps,omitempty"`
	Cards          int                    `json:"cards"`
	Stats          deals.Stats            `json:"stats"`
	Deals          []models.Deal          `json:"deals"`
	Notified       int                    `json:"notified"`
	NotifyFailures int                    `json:"notify_failures"`
	Duration       time.Duration          `json:"duration"`
	Err            error                  `json:"-"`
}

// Pipeline sequences the stages of a run
type Pipeline struct {
	opts Options
}

// New creates a Pipeline
func New(opts Options) *Pipeline {
	if opts.PartySize <= 0 {
		opts.PartySize = deals.DefaultPartySize
	}
	return &Pipeline{opts: opts}
}

// Run executes one check. It never panics: every failure, including a
// recovered panic, is reported through the Result. The browser session is
// released on every path.
func (p *Pipeline) Run(ctx context.Context) (res *Result) {
	ctx = runctx.WithRunContext(ctx)
	if p.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.RunTimeout)
		defer cancel()
	}

	rc := runctx.Get(ctx)
	logger := &rc.Logger
	res = &Result{RunID: rc.RunID}

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomeFailed
			res.Err = newRunError(ErrCodePanic, rc.RunID, "recovered panic", fmt.Errorf("%v", r))
			logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Run panicked")
		}
		res.Duration = runctx.Elapsed(ctx)

		event := logger.Info()
		if res.Outcome != OutcomeCompleted {
			event = logger.Warn().Err(res.Err)
		}
		event.
			Str("outcome", string(res.Outcome)).
			Int("cards", res.Cards).
			Int("deals", len(res.Deals)).
			Int("notified", res.Notified).
			Int("notify_failures", res.NotifyFailures).
			Dur("duration", res.Duration).
			Msg("Run finished")
	}()

	logger.Info().Str("threshold", p.opts.Threshold.String()).Msg("Run started")

	handle, err := p.opts.Launcher.Launch(ctx)
	if err != nil {
		p.fail(res, ErrCodeBrowser, "browser launch failed", err)
		return res
	}
	defer func() {
		if err := handle.Close(); err != nil {
			logger.Warn().Err(err).Msg("Browser session did not close cleanly")
		}
	}()

	nav, err := p.opts.Navigator.Navigate(ctx, handle.Page())
	if nav != nil {
		res.Steps = nav.Steps
	}
	if err != nil {
		var notReady *navigator.ListingNotReadyError
		if errors.As(err, &notReady) {
			res.Outcome = OutcomeListingNotReady
			res.Err = newRunError(ErrCodeListingNotReady, rc.RunID, "no listing cards", err)
			return res
		}
		p.fail(res, p.classify(ctx, ErrCodeNavigation), "navigation failed", err)
		return res
	}

	doc, err := p.opts.Extractor.Parse(nav.HTML)
	if err != nil {
		p.fail(res, ErrCodeExtraction, "listing html unusable", err)
		return res
	}
	res.Cards = p.opts.Extractor.CardCount(doc)

	// Filter completely before the first notification so a failure above
	// never leaves a half-notified page behind.
	filter := deals.NewFilter(p.opts.Threshold, p.opts.PartySize, deals.NewSeenDeals())
	res.Deals = slices.Collect(filter.Apply(ctx, p.opts.Extractor.Candidates(doc)))
	res.Stats = filter.Stats()
	if err := ctx.Err(); err != nil {
		res.Deals = nil
		p.fail(res, ErrCodeTimeout, "run expired during filtering", err)
		return res
	}

	logger.Info().
		Int("cards", res.Cards).
		Int("malformed", res.Stats.Malformed).
		Int("above_threshold", res.Stats.AboveThreshold).
		Int("duplicates", res.Stats.Duplicates).
		Int("deals", len(res.Deals)).
		Msg("Listing evaluated")

	for _, deal := range res.Deals {
		if err := p.opts.Notifier.Notify(ctx, deal); err != nil {
			res.NotifyFailures++
			continue
		}
		res.Notified++
	}

	res.Outcome = OutcomeCompleted
	return res
}

func (p *Pipeline) fail(res *Result, code ErrorCode, msg string, err error) {
	res.Outcome = OutcomeFailed
	res.Err = newRunError(code, res.RunID, msg, err)
}

// classify reports a run deadline as a timeout rather than a stage failure
func (p *Pipeline) classify(ctx context.Context, code ErrorCode) ErrorCode {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrCodeTimeout
	}
	return code
}
