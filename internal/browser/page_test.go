package browser

import (
	"context"
	"errors"
	"testing"
)

func TestLocatorString(t *testing.T) {
	if got := XPath("//button[@aria-label='Sluiten']").String(); got != "xpath(//button[@aria-label='Sluiten'])" {
		t.Errorf("unexpected xpath locator string: %s", got)
	}
	if got := CSS("div.card").String(); got != "css(div.card)" {
		t.Errorf("unexpected css locator string: %s", got)
	}
}

func TestWaitErr_DeadlineBecomesNotFound(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitErr(ctx, CSS("#x"), context.Canceled)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWaitErr_OtherFailuresPassThrough(t *testing.T) {
	boom := errors.New("target closed")

	err := waitErr(context.Background(), CSS("#x"), boom)
	if errors.Is(err, ErrNotFound) {
		t.Fatal("live context must not be reported as not found")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}

	if waitErr(context.Background(), CSS("#x"), nil) != nil {
		t.Fatal("nil error must stay nil")
	}
}
