// internal/browser/tab.go
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// Tab implements Page on top of a chromedp browser context
type Tab struct {
	ctx context.Context
}

// bind derives a chromedp context that is cancelled together with ctx.
// Timeouts must not be set on the chromedp context itself or they would
// tear down the tab.
func (t *Tab) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(t.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func queryOption(loc Locator) chromedp.QueryOption {
	if loc.By == ByXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// waitErr turns a wait aborted by the caller's deadline into ErrNotFound
func waitErr(ctx context.Context, loc Locator, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w", loc, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", loc, err)
}

// Navigate loads url and waits for the load event
func (t *Tab) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := t.bind(ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Click waits until the element is visible and clicks it
func (t *Tab) Click(ctx context.Context, loc Locator) error {
	runCtx, cancel := t.bind(ctx)
	defer cancel()

	by := queryOption(loc)
	err := chromedp.Run(runCtx,
		chromedp.WaitVisible(loc.Expr, by),
		chromedp.Click(loc.Expr, by, chromedp.NodeVisible),
	)
	return waitErr(ctx, loc, err)
}

// WaitPresent waits until at least one matching element is in the DOM
func (t *Tab) WaitPresent(ctx context.Context, loc Locator) error {
	runCtx, cancel := t.bind(ctx)
	defer cancel()

	err := chromedp.Run(runCtx, chromedp.WaitReady(loc.Expr, queryOption(loc)))
	return waitErr(ctx, loc, err)
}

// HTML returns the serialized document
func (t *Tab) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := t.bind(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}
	return html, nil
}

// Screenshot captures the current viewport as PNG
func (t *Tab) Screenshot(ctx context.Context) ([]byte, error) {
	runCtx, cancel := t.bind(ctx)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(runCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}
