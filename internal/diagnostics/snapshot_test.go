package diagnostics

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/dealwatch/internal/browser"
)

type stubPage struct {
	html    string
	png     []byte
	htmlErr error
	pngErr  error
}

func (p *stubPage) Navigate(context.Context, string) error             { return nil }
func (p *stubPage) Click(context.Context, browser.Locator) error       { return nil }
func (p *stubPage) WaitPresent(context.Context, browser.Locator) error { return nil }
func (p *stubPage) HTML(context.Context) (string, error)               { return p.html, p.htmlErr }
func (p *stubPage) Screenshot(context.Context) ([]byte, error)         { return p.png, p.pngErr }

func fixedWriter(t *testing.T) *Writer {
	w := NewWriter(t.TempDir())
	w.now = func() time.Time { return time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC) }
	return w
}

func TestCapture_WritesAllArtifacts(t *testing.T) {
	w := fixedWriter(t)
	page := &stubPage{
		png: []byte("\x89PNG"),
		html: `<html><head><script>var x = 1;</script></head>
<body><h1>Toegang geweigerd</h1><p class="msg">Probeer het later opnieuw.</p></body></html>`,
	}

	snap, err := w.Capture(context.Background(), page, "listing not ready")
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if !strings.HasSuffix(snap.Screenshot, "listing-not-ready-20260201T083000Z.png") {
		t.Errorf("unexpected screenshot path: %s", snap.Screenshot)
	}
	for _, path := range []string{snap.Screenshot, snap.HTML, snap.Markdown} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected artifact %s: %v", path, err)
		}
	}

	if !strings.Contains(snap.Excerpt, "Toegang geweigerd") {
		t.Errorf("excerpt should contain page heading, got %q", snap.Excerpt)
	}
	if strings.Contains(snap.Excerpt, "var x") {
		t.Errorf("excerpt should not contain script bodies, got %q", snap.Excerpt)
	}
}

func TestCapture_ScreenshotFailureKeepsHTML(t *testing.T) {
	w := fixedWriter(t)
	page := &stubPage{
		html:   "<html><body><p>ok</p></body></html>",
		pngErr: errors.New("target crashed"),
	}

	snap, err := w.Capture(context.Background(), page, "x")
	if err == nil {
		t.Fatal("expected joined error for failed screenshot")
	}
	if snap == nil || snap.HTML == "" {
		t.Fatal("html artifact should still be written")
	}
	if snap.Screenshot != "" {
		t.Errorf("screenshot path should be empty, got %s", snap.Screenshot)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}
