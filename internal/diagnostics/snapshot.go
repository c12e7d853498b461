// Package diagnostics writes best-effort page snapshots when a run cannot
// reach the listing.
package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/dealwatch/internal/browser"
)

// DefaultExcerptChars bounds the Markdown excerpt written to the log
const DefaultExcerptChars = 1500

// Snapshot lists the artifacts written for one capture
type Snapshot struct {
	Screenshot string
	HTML       string
	Markdown   string
	Excerpt    string
}

// Writer stores snapshots under Dir
type Writer struct {
	Dir          string
	ExcerptChars int
	now          func() time.Time
}

// NewWriter creates a Writer rooted at dir
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{
		Dir:          dir,
		ExcerptChars: DefaultExcerptChars,
		now:          time.Now,
	}
}

// Capture saves a screenshot, the raw HTML and a Markdown rendering of the
// current page. Every artifact is attempted; the joined error lists the ones
// that failed.
func (w *Writer) Capture(ctx context.Context, page browser.Page, label string) (*Snapshot, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	base := filepath.Join(w.Dir, fmt.Sprintf("%s-%s", sanitize(label), w.now().UTC().Format("20060102T150405Z")))
	snap := &Snapshot{}
	var errs []error

	if png, err := page.Screenshot(ctx); err != nil {
		errs = append(errs, err)
	} else if err := os.WriteFile(base+".png", png, 0644); err != nil {
		errs = append(errs, fmt.Errorf("write screenshot: %w", err))
	} else {
		snap.Screenshot = base + ".png"
	}

	raw, err := page.HTML(ctx)
	if err != nil {
		errs = append(errs, err)
	} else {
		if err := os.WriteFile(base+".html", []byte(raw), 0644); err != nil {
			errs = append(errs, fmt.Errorf("write html: %w", err))
		} else {
			snap.HTML = base + ".html"
		}

		text, err := toMarkdown(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("convert html: %w", err))
		} else {
			snap.Excerpt = truncate(text, w.ExcerptChars)
			if err := os.WriteFile(base+".md", []byte(text), 0644); err != nil {
				errs = append(errs, fmt.Errorf("write markdown: %w", err))
			} else {
				snap.Markdown = base + ".md"
			}
		}
	}

	log.Info().
		Str("screenshot", snap.Screenshot).
		Str("html", snap.HTML).
		Str("markdown", snap.Markdown).
		Str("excerpt", snap.Excerpt).
		Msg("Diagnostics snapshot captured")

	return snap, errors.Join(errs...)
}

func toMarkdown(raw string) (string, error) {
	cleaned, err := cleanHTML(raw)
	if err != nil {
		return "", err
	}
	converter := md.NewConverter("", true, nil)
	out, err := converter.ConvertString(cleaned)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func sanitize(label string) string {
	if label == "" {
		return "snapshot"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, label)
}
