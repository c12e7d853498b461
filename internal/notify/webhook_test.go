package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/dealwatch/internal/retry"
	"github.com/law-makers/dealwatch/pkg/models"
)

func sampleDeal() models.Deal {
	return models.Deal{
		Name:           "Hotel Sunset Beach",
		PricePerPerson: decimal.RequireFromString("1099.50"),
		TotalPrice:     decimal.RequireFromString("2199.00"),
		URL:            "https://www.example.nl/curacao/hotel-sunset",
		DepartureDate:  "zo 1 feb.",
		Duration:       "9 dagen",
	}
}

func fastRetry() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 20 * time.Millisecond
	return cfg
}

func TestFormat(t *testing.T) {
	msg := Format(sampleDeal(), 2)

	for _, want := range []string{
		"Hotel Sunset Beach",
		"zo 1 feb.",
		"9 dagen",
		"€ 1.099,50",
		"€ 2.199,00",
		"(2 pers.)",
		"https://www.example.nl/curacao/hotel-sunset",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestFormat_Truncates(t *testing.T) {
	d := sampleDeal()
	d.Name = strings.Repeat("x", 3000)
	assert.Len(t, []rune(Format(d, 2)), MaxContentLength)
}

func TestWebhook_PostsContent(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(WebhookOptions{URL: srv.URL, Retry: fastRetry()})
	require.NoError(t, wh.Notify(context.Background(), sampleDeal()))

	assert.Equal(t, Format(sampleDeal(), 2), got.Content)
}

func TestWebhook_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := NewWebhook(WebhookOptions{URL: srv.URL, Retry: fastRetry()})
	require.NoError(t, wh.Notify(context.Background(), sampleDeal()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhook_HonoursRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0.05")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := fastRetry()
	cfg.MaxBackoff = time.Second
	wh := NewWebhook(WebhookOptions{URL: srv.URL, Retry: cfg})

	start := time.Now()
	require.NoError(t, wh.Notify(context.Background(), sampleDeal()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhook_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message": "Unknown Webhook"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	wh := NewWebhook(WebhookOptions{URL: srv.URL, Retry: fastRetry()})
	err := wh.Notify(context.Background(), sampleDeal())

	var httpErr retry.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Contains(t, httpErr.Message, "Unknown Webhook")
	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhook_AttemptTimeoutNotRetried(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	wh := NewWebhook(WebhookOptions{URL: srv.URL, Timeout: 20 * time.Millisecond, Retry: fastRetry()})

	err := wh.Notify(context.Background(), sampleDeal())
	require.Error(t, err)

	var perm *retry.PermanentError
	assert.ErrorAs(t, err, &perm)
	assert.Equal(t, int32(1), calls.Load(), "a timed-out post must not be sent again")
}

func TestWebhook_NotConfigured(t *testing.T) {
	var buf bytes.Buffer
	old := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = old })

	wh := NewWebhook(WebhookOptions{})
	assert.False(t, wh.Configured())

	for range 2 {
		assert.ErrorIs(t, wh.Notify(context.Background(), sampleDeal()), ErrNotConfigured)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2, "one configuration error per call: %s", buf.String())
	for _, line := range lines {
		assert.Contains(t, line, `"level":"error"`)
		assert.Contains(t, line, "WEBHOOK_URL is not set")
	}
}
