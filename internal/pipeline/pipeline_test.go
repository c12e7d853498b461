package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/dealwatch/internal/browser"
	"github.com/law-makers/dealwatch/internal/extract"
	"github.com/law-makers/dealwatch/internal/navigator"
	"github.com/law-makers/dealwatch/pkg/models"
)

const listingHTML = `<html><body>
<div data-component="acco-card">
  <h3 data-testid="acco-title"><a href="/a">Sunset Beach</a></h3>
  <span data-testid="price-per-person">€ 999,00</span>
  <ul data-testid="acco-info"><li data-testid="departure-date">1 feb</li><li data-testid="trip-duration">9 dagen</li></ul>
</div>
<div data-component="acco-card">
  <h3 data-testid="acco-title"><a href="/b">Grand Resort</a></h3>
  <span data-testid="price-per-person">€ 1.500,00</span>
</div>
<div data-component="acco-card">
  <h3 data-testid="acco-title"><a href="/c">Lagoon Villas</a></h3>
  <span data-testid="price-per-person">€ 1.099,50</span>
</div>
<div data-component="acco-card">
  <h3 data-testid="acco-title"><a href="/a">Sunset Beach</a></h3>
  <span data-testid="price-per-person">€ 999,00</span>
  <ul data-testid="acco-info"><li data-testid="departure-date">1 feb</li><li data-testid="trip-duration">9 dagen</li></ul>
</div>
</body></html>`

type stubPage struct {
	html   string
	ready  bool
	navErr error
	onWait func()
}

func (p *stubPage) Navigate(context.Context, string) error { return p.navErr }

func (p *stubPage) Click(_ context.Context, loc browser.Locator) error {
	return fmt.Errorf("%s: %w", loc, browser.ErrNotFound)
}

func (p *stubPage) WaitPresent(_ context.Context, loc browser.Locator) error {
	if p.onWait != nil {
		p.onWait()
	}
	if !p.ready {
		return fmt.Errorf("%s: %w", loc, browser.ErrNotFound)
	}
	return nil
}

func (p *stubPage) HTML(context.Context) (string, error) { return p.html, nil }

func (p *stubPage) Screenshot(context.Context) ([]byte, error) { return nil, nil }

type stubHandle struct {
	page   *stubPage
	closed int
}

func (h *stubHandle) Page() browser.Page { return h.page }

func (h *stubHandle) Close() error {
	h.closed++
	return nil
}

type stubLauncher struct {
	handle *stubHandle
	err    error
}

func (l *stubLauncher) Launch(context.Context) (browser.Handle, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.handle, nil
}

type recordingNotifier struct {
	sent []models.Deal
	fail map[string]bool
}

func (n *recordingNotifier) Notify(_ context.Context, d models.Deal) error {
	if n.fail[d.Name] {
		return errors.New("webhook unavailable")
	}
	n.sent = append(n.sent, d)
	return nil
}

type fixture struct {
	handle   *stubHandle
	notifier *recordingNotifier
	pipeline *Pipeline
}

func newFixture(page *stubPage) *fixture {
	f := &fixture{
		handle:   &stubHandle{page: page},
		notifier: &recordingNotifier{fail: map[string]bool{}},
	}
	f.pipeline = New(Options{
		Launcher: &stubLauncher{handle: f.handle},
		Navigator: navigator.New(navigator.Options{
			ListingURL:     "https://www.example.nl/zoekresultaten",
			Steps:          navigator.DefaultSteps()[1:],
			StepTimeout:    time.Millisecond,
			ListingTimeout: 10 * time.Millisecond,
		}),
		Extractor: extract.New(extract.DefaultSelectors(), "https://www.example.nl/"),
		Notifier:  f.notifier,
		Threshold: decimal.NewFromInt(1200),
	})
	return f
}

func TestRun_NotifiesDealsBelowThreshold(t *testing.T) {
	f := newFixture(&stubPage{html: listingHTML, ready: true})

	res := f.pipeline.Run(context.Background())

	require.Equal(t, OutcomeCompleted, res.Outcome, "err: %v", res.Err)
	assert.NoError(t, res.Err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 4, res.Cards)
	assert.Equal(t, 1, res.Stats.Duplicates)
	assert.Equal(t, 1, res.Stats.AboveThreshold)

	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, "Sunset Beach", f.notifier.sent[0].Name)
	assert.Equal(t, "Lagoon Villas", f.notifier.sent[1].Name)
	assert.True(t, f.notifier.sent[1].TotalPrice.Equal(decimal.RequireFromString("2199")))
	assert.Equal(t, "https://www.example.nl/c", f.notifier.sent[1].URL)
	assert.Equal(t, 2, res.Notified)
	assert.Equal(t, 1, f.handle.closed)
	assert.Positive(t, res.Duration)
}

func TestRun_ListingNotReady(t *testing.T) {
	f := newFixture(&stubPage{html: listingHTML})

	res := f.pipeline.Run(context.Background())

	assert.Equal(t, OutcomeListingNotReady, res.Outcome)
	assert.ErrorIs(t, res.Err, &RunError{Code: ErrCodeListingNotReady})
	var notReady *navigator.ListingNotReadyError
	assert.ErrorAs(t, res.Err, &notReady)
	assert.Empty(t, f.notifier.sent)
	assert.Equal(t, 1, f.handle.closed)
}

func TestRun_NotificationFailureContinues(t *testing.T) {
	f := newFixture(&stubPage{html: listingHTML, ready: true})
	f.notifier.fail["Sunset Beach"] = true

	res := f.pipeline.Run(context.Background())

	assert.Equal(t, OutcomeCompleted, res.Outcome)
	assert.Equal(t, 1, res.NotifyFailures)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "Lagoon Villas", f.notifier.sent[0].Name)
}

func TestRun_RecoversPanic(t *testing.T) {
	page := &stubPage{html: listingHTML, ready: true, onWait: func() { panic("boom") }}
	f := newFixture(page)

	var res *Result
	require.NotPanics(t, func() { res = f.pipeline.Run(context.Background()) })

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, &RunError{Code: ErrCodePanic})
	assert.Empty(t, f.notifier.sent)
	assert.Equal(t, 1, f.handle.closed)
}

func TestRun_LaunchFailure(t *testing.T) {
	f := newFixture(&stubPage{})
	f.pipeline.opts.Launcher = &stubLauncher{err: errors.New("chrome not found")}

	res := f.pipeline.Run(context.Background())

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, &RunError{Code: ErrCodeBrowser})
	assert.Equal(t, 0, f.handle.closed)
}

func TestRun_NavigationFailure(t *testing.T) {
	f := newFixture(&stubPage{navErr: errors.New("net::ERR_NAME_NOT_RESOLVED")})

	res := f.pipeline.Run(context.Background())

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, &RunError{Code: ErrCodeNavigation})
	assert.Equal(t, 1, f.handle.closed)
}

func TestRun_EmptyHTML(t *testing.T) {
	f := newFixture(&stubPage{html: " ", ready: true})

	res := f.pipeline.Run(context.Background())

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, extract.ErrEmptyDocument)
}
