package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel       = "info"
	DefaultJSONLog        = false
	DefaultEnvFile        = ".env"
	DefaultMaxPrice       = "1200"
	DefaultPartySize      = 2
	DefaultListingURL     = "https://www.vakantiediscounter.nl/zoekresultaten?arrivaldateend=2026-04-30&countrycode=AN&departuredatestart=2026-02-01&region=curacao&room=2_0_0&transporttype=VL&trip_duration=9"
	DefaultEntry          = "direct"
	DefaultStepTimeout    = 5 * time.Second
	DefaultListingTimeout = 15 * time.Second
	DefaultRunTimeout     = 3 * time.Minute
	DefaultWebhookTimeout = 10 * time.Second
	DefaultHeadless       = true
	DefaultStealth        = true
	DefaultSnapshotDir    = "snapshots"
	MaxPartySize          = 12
)
