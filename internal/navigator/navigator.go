// Package navigator drives a browser page from a cold start to a listing
// with at least one visible card, dismissing interstitials on the way.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/law-makers/dealwatch/internal/browser"
	"github.com/law-makers/dealwatch/internal/diagnostics"
	"github.com/law-makers/dealwatch/internal/runctx"
)

// Entry selects how the listing page is reached
type Entry string

const (
	// EntryDirect loads the listing URL straight away
	EntryDirect Entry = "direct"
	// EntryStaged loads the homepage first, handles OnEntry steps there, then the listing
	EntryStaged Entry = "staged"
)

const (
	DefaultStepTimeout     = 5 * time.Second
	DefaultListingTimeout  = 15 * time.Second
	DefaultSnapshotTimeout = 20 * time.Second
)

// Snapshotter captures diagnostics of the current page
type Snapshotter interface {
	Capture(ctx context.Context, page browser.Page, label string) (*diagnostics.Snapshot, error)
}

// Options configures a Navigator
type Options struct {
	ListingURL      string
	HomeURL         string
	Entry           Entry
	Steps           []PopupStep
	CardLocator     browser.Locator
	StepTimeout     time.Duration
	ListingTimeout  time.Duration
	SnapshotTimeout time.Duration
	Snapshotter     Snapshotter
}

// Result is the stable page handed to extraction
type Result struct {
	HTML  string
	Steps []StepResult
}

// Navigator reaches the listing page
type Navigator struct {
	opts  Options
	sleep func(context.Context, time.Duration) error
}

// New creates a Navigator, filling unset timeouts and the card locator with defaults
func New(opts Options) *Navigator {
	if opts.Entry == "" {
		opts.Entry = EntryDirect
	}
	if opts.CardLocator.Expr == "" {
		opts.CardLocator = DefaultCardLocator
	}
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = DefaultStepTimeout
	}
	if opts.ListingTimeout <= 0 {
		opts.ListingTimeout = DefaultListingTimeout
	}
	if opts.SnapshotTimeout <= 0 {
		opts.SnapshotTimeout = DefaultSnapshotTimeout
	}
	return &Navigator{opts: opts, sleep: sleepCtx}
}

// Navigate brings page to a listing with at least one card and returns its HTML.
// Absent optional popups are not errors. When the listing does not show up in
// time a *ListingNotReadyError is returned after a best-effort snapshot.
func (n *Navigator) Navigate(ctx context.Context, page browser.Page) (*Result, error) {
	logger := runctx.Logger(ctx)
	res := &Result{}
	handled := map[string]bool{}

	if n.opts.Entry == EntryStaged {
		logger.Info().Str("url", n.opts.HomeURL).Msg("Loading homepage")
		if err := page.Navigate(ctx, n.opts.HomeURL); err != nil {
			return res, fmt.Errorf("load homepage: %w", err)
		}
		for _, step := range n.opts.Steps {
			if !step.OnEntry {
				continue
			}
			sr := n.runStep(ctx, page, step)
			sr.Entry = true
			res.Steps = append(res.Steps, sr)
			if err := n.stepErr(ctx, step, sr); err != nil {
				return res, err
			}
			handled[step.Name] = sr.Outcome == OutcomeDismissed
		}
	}

	logger.Info().Str("url", n.opts.ListingURL).Str("entry", string(n.opts.Entry)).Msg("Loading listing")
	if err := page.Navigate(ctx, n.opts.ListingURL); err != nil {
		return res, fmt.Errorf("load listing: %w", err)
	}

	for _, step := range n.opts.Steps {
		if handled[step.Name] {
			continue
		}
		sr := n.runStep(ctx, page, step)
		res.Steps = append(res.Steps, sr)
		if err := n.stepErr(ctx, step, sr); err != nil {
			return res, err
		}
	}

	if err := n.waitListing(ctx, page); err != nil {
		return res, err
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return res, fmt.Errorf("read listing html: %w", err)
	}
	res.HTML = html

	logger.Info().Int("steps", len(res.Steps)).Int("html_bytes", len(html)).Msg("Listing ready")
	return res, nil
}

// stepErr decides whether a step result stops navigation. Only required
// steps and an expired run context are fatal.
func (n *Navigator) stepErr(ctx context.Context, step PopupStep, sr StepResult) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("navigation aborted at step %q: %w", step.Name, err)
	}
	if step.Optional || sr.Outcome == OutcomeDismissed || sr.Outcome == OutcomePartial {
		return nil
	}
	return &StepError{Step: step.Name, Outcome: sr.Outcome, Err: sr.Err}
}

func (n *Navigator) waitListing(ctx context.Context, page browser.Page) error {
	waitCtx, cancel := context.WithTimeout(ctx, n.opts.ListingTimeout)
	defer cancel()

	start := time.Now()
	err := page.WaitPresent(waitCtx, n.opts.CardLocator)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("waiting for listing: %w", ctx.Err())
	}
	if !errors.Is(err, browser.ErrNotFound) {
		return fmt.Errorf("waiting for listing: %w", err)
	}

	notReady := &ListingNotReadyError{
		URL:    n.opts.ListingURL,
		Waited: time.Since(start),
		Err:    err,
	}
	notReady.Snapshot = n.snapshot(ctx, page)
	return notReady
}

func (n *Navigator) snapshot(ctx context.Context, page browser.Page) *diagnostics.Snapshot {
	if n.opts.Snapshotter == nil {
		return nil
	}

	snapCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.opts.SnapshotTimeout)
	defer cancel()

	snap, err := n.opts.Snapshotter.Capture(snapCtx, page, "listing-not-ready")
	if err != nil {
		runctx.Logger(ctx).Warn().Err(err).Msg("Diagnostics snapshot incomplete")
	}
	return snap
}
