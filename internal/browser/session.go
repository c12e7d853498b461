// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog/log"
)

// Options configures the Chrome process for one run
type Options struct {
	Headless     bool
	UserAgent    string
	Proxy        string
	ChromePath   string
	Stealth      bool
	Headers      map[string]string
	WindowWidth  int
	WindowHeight int
}

// Handle is what a pipeline run holds while the browser is up
type Handle interface {
	Page() Page
	Close() error
}

// Session is a running Chrome instance with a single tab
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	tab         *Tab
	closeOnce   sync.Once
	closeErr    error
	started     time.Time
}

// Launcher starts sessions with fixed options
type Launcher struct {
	opts Options
}

// NewLauncher creates a Launcher
func NewLauncher(opts Options) *Launcher {
	return &Launcher{opts: opts}
}

// Launch starts a new browser session
func (l *Launcher) Launch(ctx context.Context) (Handle, error) {
	s, err := Launch(ctx, l.opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Launch starts Chrome, opens a tab and applies stealth and header settings.
// The session outlives ctx; callers must Close it.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	if opts.WindowWidth <= 0 || opts.WindowHeight <= 0 {
		opts.WindowWidth, opts.WindowHeight = 1920, 1080
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if path := FindChrome(opts.ChromePath); path != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, allocOpts...)
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
		started:     time.Now(),
	}

	// The first Run allocates the browser, so it must not use a timeout
	// child; abort through the session instead if the caller gives up.
	stop := context.AfterFunc(ctx, browserCancel)
	err := chromedp.Run(browserCtx, s.setupTasks(opts)...)
	stop()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	s.tab = &Tab{ctx: browserCtx}

	log.Info().
		Bool("headless", opts.Headless).
		Bool("stealth", opts.Stealth).
		Bool("proxy", opts.Proxy != "").
		Dur("startup", time.Since(s.started)).
		Msg("Browser session started")

	return s, nil
}

func (s *Session) setupTasks(opts Options) chromedp.Tasks {
	tasks := chromedp.Tasks{network.Enable()}

	if opts.Stealth {
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealth.JS).Do(ctx)
			return err
		}))
	}

	if len(opts.Headers) > 0 {
		headers := make(network.Headers, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		tasks = append(tasks, network.SetExtraHTTPHeaders(headers))
	}

	return append(tasks, chromedp.Navigate("about:blank"))
}

// Page returns the session's tab
func (s *Session) Page() Page {
	return s.tab
}

// Close shuts Chrome down. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if err := chromedp.Cancel(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = fmt.Errorf("failed to close browser: %w", err)
		}
		s.cancel()
		s.allocCancel()
		log.Info().Dur("lifetime", time.Since(s.started)).Msg("Browser session closed")
	})
	return s.closeErr
}
