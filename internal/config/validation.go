package config

import (
	"fmt"

	"github.com/rs/zerolog"

	urlutil "github.com/law-makers/dealwatch/internal/utils/url"
)

func validate(c *Config) error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if !c.MaxPrice.IsPositive() {
		return fmt.Errorf("max price must be > 0, got %s", c.MaxPrice)
	}
	if c.PartySize <= 0 || c.PartySize > MaxPartySize {
		return fmt.Errorf("party size must be between 1 and %d", MaxPartySize)
	}
	if err := urlutil.ValidateURL(c.ListingURL); err != nil {
		return fmt.Errorf("listing url: %w", err)
	}
	if err := urlutil.ValidateURL(c.BaseURL); err != nil {
		return fmt.Errorf("base url: %w", err)
	}
	if c.WebhookURL != "" {
		if err := urlutil.ValidateURL(c.WebhookURL); err != nil {
			return fmt.Errorf("webhook url: %w", err)
		}
	}
	if c.Entry != "direct" && c.Entry != "staged" {
		return fmt.Errorf("entry must be direct or staged, got %q", c.Entry)
	}
	if c.StepTimeout <= 0 || c.ListingTimeout <= 0 || c.WebhookTimeout <= 0 {
		return fmt.Errorf("step, listing and webhook timeouts must be > 0")
	}
	if c.RunTimeout < c.ListingTimeout {
		return fmt.Errorf("run timeout (%s) must not be shorter than the listing timeout (%s)", c.RunTimeout, c.ListingTimeout)
	}
	return nil
}
