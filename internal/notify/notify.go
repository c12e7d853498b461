// Package notify delivers deal alerts to a chat webhook.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/law-makers/dealwatch/internal/price"
	"github.com/law-makers/dealwatch/pkg/models"
)

// ErrNotConfigured is returned by every Notify call when no webhook URL is set
var ErrNotConfigured = errors.New("webhook URL is not configured")

// MaxContentLength is the longest message the webhook accepts
const MaxContentLength = 2000

// Notifier sends one message per deal
type Notifier interface {
	Notify(ctx context.Context, deal models.Deal) error
}

// Format renders the alert text for a deal
func Format(deal models.Deal, partySize int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Deal found: %s**\n", deal.Name)
	fmt.Fprintf(&b, "Departure: %s\n", deal.DepartureDate)
	fmt.Fprintf(&b, "Duration: %s\n", deal.Duration)
	fmt.Fprintf(&b, "Price per person: %s\n", price.Format(deal.PricePerPerson))
	fmt.Fprintf(&b, "Total (%d pers.): %s\n", partySize, price.Format(deal.TotalPrice))
	b.WriteString(deal.URL)
	return truncate(b.String(), MaxContentLength)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
