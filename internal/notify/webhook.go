package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/dealwatch/internal/ratelimit"
	"github.com/law-makers/dealwatch/internal/retry"
	"github.com/law-makers/dealwatch/internal/runctx"
	urlutil "github.com/law-makers/dealwatch/internal/utils/url"
	"github.com/law-makers/dealwatch/pkg/models"
)

// DefaultTimeout bounds a single delivery attempt
const DefaultTimeout = 10 * time.Second

// WebhookOptions configures a Webhook
type WebhookOptions struct {
	URL       string
	Timeout   time.Duration
	PartySize int
	Retry     retry.Config
	Limiter   *ratelimit.HostLimiter
	Client    *http.Client
}

// Webhook posts {"content": "..."} to a chat webhook
type Webhook struct {
	opts WebhookOptions
}

type payload struct {
	Content string `json:"content"`
}

// NewWebhook creates a Webhook. An empty URL yields a notifier whose every
// call fails with ErrNotConfigured.
func NewWebhook(opts WebhookOptions) *Webhook {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PartySize <= 0 {
		opts.PartySize = 2
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultConfig()
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.NewHostLimiter(ratelimit.DefaultRequests, ratelimit.DefaultWindow)
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	return &Webhook{opts: opts}
}

// Configured reports whether a URL is set
func (w *Webhook) Configured() bool {
	return w.opts.URL != ""
}

// Notify formats and delivers the alert for deal
func (w *Webhook) Notify(ctx context.Context, deal models.Deal) error {
	logger := runctx.Logger(ctx)

	if err := w.Send(ctx, Format(deal, w.opts.PartySize)); err != nil {
		// Send already logged the missing URL
		if !errors.Is(err, ErrNotConfigured) {
			logger.Error().Err(err).Str("deal", deal.Name).Msg("Failed to deliver notification")
		}
		return err
	}

	logger.Info().Str("deal", deal.Name).Str("price", deal.PricePerPerson.StringFixed(2)).Msg("Notification sent")
	return nil
}

// Send posts a raw message
func (w *Webhook) Send(ctx context.Context, content string) error {
	if !w.Configured() {
		runctx.Logger(ctx).Error().Msg("WEBHOOK_URL is not set, notification skipped")
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload{Content: truncate(content, MaxContentLength)})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	return retry.WithRetry(ctx, w.opts.Retry, func(ctx context.Context) error {
		if err := w.opts.Limiter.Wait(ctx, w.opts.URL); err != nil {
			return retry.Permanent(fmt.Errorf("rate limit wait: %w", err))
		}
		return w.post(ctx, body)
	})
}

func (w *Webhook) post(ctx context.Context, body []byte) error {
	attemptCtx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, w.opts.URL, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("build webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.opts.Client.Do(req)
	if err != nil {
		err = fmt.Errorf("post to %s: %w", urlutil.Redact(w.opts.URL), err)
		// A timed-out POST may already have been accepted; posting it
		// again would duplicate the message
		if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return retry.Permanent(err)
		}
		return err
	}
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	httpErr := retry.NewHTTPError(resp, strings.TrimSpace(string(snippet)))
	if resp.StatusCode == http.StatusTooManyRequests {
		w.opts.Limiter.Penalize(w.opts.URL, httpErr.Wait)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("retry_after", httpErr.Wait).
		Str("webhook", urlutil.Redact(w.opts.URL)).
		Msg("Webhook rejected message")

	return httpErr
}
