package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("json", false, "Log in JSON format only")
	cmd.PersistentFlags().String("env-file", DefaultEnvFile, "Environment file to load if present")
	cmd.PersistentFlags().Duration("webhook-timeout", DefaultWebhookTimeout, "Timeout for a single webhook post")
}

// RegisterRunFlags registers the flags that shape a pipeline run
func RegisterRunFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	f := cmd.Flags()
	f.String("max-price", DefaultMaxPrice, "Notify deals priced per person strictly below this amount")
	f.Int("party-size", DefaultPartySize, "Number of travellers used for the total price")
	f.String("listing-url", DefaultListingURL, "Listing page to check")
	f.String("base-url", "", "Base for relative deal links (default: origin of the listing URL)")
	f.String("entry", DefaultEntry, "How to reach the listing: direct or staged (homepage first)")
	f.Duration("step-timeout", DefaultStepTimeout, "Wait for each popup to appear")
	f.Duration("listing-timeout", DefaultListingTimeout, "Wait for the first listing card")
	f.Duration("run-timeout", DefaultRunTimeout, "Hard limit for the whole run")
	f.Bool("headful", false, "Show the browser window")
	f.Bool("no-stealth", false, "Disable the automation evasion script")
	f.StringArrayP("header", "H", nil, "Extra request header for the browser (\"Key: Value\", repeatable)")
	f.String("proxy", "", "Browser proxy (e.g., http://localhost:8080)")
	f.String("user-agent", "", "Custom user agent string")
	f.String("chrome-path", "", "Chrome/Chromium executable")
	f.String("snapshot-dir", DefaultSnapshotDir, "Directory for failure snapshots")
}
