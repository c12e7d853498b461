// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/dealwatch/internal/browser"
	"github.com/law-makers/dealwatch/internal/config"
	"github.com/law-makers/dealwatch/internal/diagnostics"
	"github.com/law-makers/dealwatch/internal/extract"
	"github.com/law-makers/dealwatch/internal/navigator"
	"github.com/law-makers/dealwatch/internal/notify"
	"github.com/law-makers/dealwatch/internal/pipeline"
	"github.com/law-makers/dealwatch/internal/ratelimit"
	"github.com/law-makers/dealwatch/internal/retry"
	"github.com/law-makers/dealwatch/internal/secrets"
	urlutil "github.com/law-makers/dealwatch/internal/utils/url"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per command invocation. Use Close() to release
// idle connections on shutdown.
type Application struct {
	Config     *config.Config
	Logger     *zerolog.Logger
	Secrets    *secrets.Store
	HTTPClient *http.Client
	Launcher   *browser.Launcher
	Snapshots  *diagnostics.Writer
	Navigator  *navigator.Navigator
	Extractor  *extract.Extractor
	Webhook    *notify.Webhook
	Pipeline   *pipeline.Pipeline
	startTime  time.Time
}

// ConfigureLogging sets the global zerolog level and output from cfg
func ConfigureLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var logWriter io.Writer
	if cfg.JSONLog {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}
	log.Logger = zerolog.New(logWriter).With().Timestamp().Logger()
}

// New creates and initializes a new Application with all dependencies.
//
// The webhook URL comes from the configuration; when it is empty the
// URL stored with `dealwatch webhook set` is used instead.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := log.Logger

	store, err := secrets.NewStore()
	if err != nil {
		logger.Warn().Err(err).Msg("Secret store unavailable")
	}

	webhookURL := cfg.WebhookURL
	if webhookURL == "" && store != nil {
		stored, err := store.Get(secrets.WebhookKey)
		switch {
		case err == nil:
			webhookURL = stored
			logger.Debug().Str("backend", store.Backend()).Msg("Using stored webhook URL")
		case !errors.Is(err, secrets.ErrNotFound):
			logger.Warn().Err(err).Msg("Could not read stored webhook URL")
		}
	}
	if webhookURL != "" {
		logger.Debug().Str("webhook", urlutil.Redact(webhookURL)).Msg("Webhook configured")
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	webhook := notify.NewWebhook(notify.WebhookOptions{
		URL:       webhookURL,
		Timeout:   cfg.WebhookTimeout,
		PartySize: cfg.PartySize,
		Retry:     retry.DefaultConfig(),
		Limiter:   ratelimit.NewHostLimiter(ratelimit.DefaultRequests, ratelimit.DefaultWindow),
		Client:    httpClient,
	})

	launcher := browser.NewLauncher(browser.Options{
		Headless:   cfg.Headless,
		UserAgent:  cfg.UserAgent,
		Proxy:      cfg.Proxy,
		ChromePath: cfg.ChromePath,
		Stealth:    cfg.Stealth,
		Headers:    cfg.Headers,
	})

	snapshots := diagnostics.NewWriter(cfg.SnapshotDir)

	nav := navigator.New(navigator.Options{
		ListingURL:     cfg.ListingURL,
		HomeURL:        cfg.BaseURL,
		Entry:          navigator.Entry(cfg.Entry),
		Steps:          navigator.DefaultSteps(),
		CardLocator:    browser.CSS(extract.DefaultSelectors().Card),
		StepTimeout:    cfg.StepTimeout,
		ListingTimeout: cfg.ListingTimeout,
		Snapshotter:    snapshots,
	})

	extractor := extract.New(extract.DefaultSelectors(), cfg.BaseURL)

	p := pipeline.New(pipeline.Options{
		Launcher:   launcher,
		Navigator:  nav,
		Extractor:  extractor,
		Notifier:   webhook,
		Threshold:  cfg.MaxPrice,
		PartySize:  cfg.PartySize,
		RunTimeout: cfg.RunTimeout,
	})

	app := &Application{
		Config:     cfg,
		Logger:     &logger,
		Secrets:    store,
		HTTPClient: httpClient,
		Launcher:   launcher,
		Snapshots:  snapshots,
		Navigator:  nav,
		Extractor:  extractor,
		Webhook:    webhook,
		Pipeline:   p,
		startTime:  time.Now(),
	}

	logger.Debug().
		Str("listing", cfg.ListingURL).
		Str("entry", cfg.Entry).
		Str("max_price", cfg.MaxPrice.String()).
		Bool("headless", cfg.Headless).
		Bool("webhook", webhook.Configured()).
		Msg("Application initialized")
	return app, nil
}

// Close releases the application's resources. Browser sessions are owned
// by individual runs and are already closed at this point.
func (a *Application) Close(ctx context.Context) error {
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
