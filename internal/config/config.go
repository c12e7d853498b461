package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/law-makers/dealwatch/internal/utils/headers"
	urlutil "github.com/law-makers/dealwatch/internal/utils/url"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Notification
	WebhookURL     string
	WebhookTimeout time.Duration

	// Filtering
	MaxPrice  decimal.Decimal
	PartySize int

	// Navigation
	ListingURL     string
	BaseURL        string
	Entry          string
	StepTimeout    time.Duration
	ListingTimeout time.Duration
	RunTimeout     time.Duration

	// Browser
	Headless   bool
	Stealth    bool
	ChromePath string
	UserAgent  string
	Proxy      string
	Headers    map[string]string

	// Diagnostics
	SnapshotDir string
}

// Load builds a Config by combining defaults, an optional .env file, environment variables, and CLI flags.
// Caller should pass the executing *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:       DefaultLogLevel,
		JSONLog:        DefaultJSONLog,
		WebhookTimeout: DefaultWebhookTimeout,
		MaxPrice:       decimal.RequireFromString(DefaultMaxPrice),
		PartySize:      DefaultPartySize,
		ListingURL:     DefaultListingURL,
		Entry:          DefaultEntry,
		StepTimeout:    DefaultStepTimeout,
		ListingTimeout: DefaultListingTimeout,
		RunTimeout:     DefaultRunTimeout,
		Headless:       DefaultHeadless,
		Stealth:        DefaultStealth,
		SnapshotDir:    DefaultSnapshotDir,
	}

	if err := loadEnvFile(cmd); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if cmd != nil {
		if err := applyFlags(cfg, cmd); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}

	if cfg.BaseURL == "" {
		if origin, err := urlutil.Origin(cfg.ListingURL); err == nil {
			cfg.BaseURL = origin
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadEnvFile reads KEY=value pairs into the process environment without
// overriding variables that are already set
func loadEnvFile(cmd *cobra.Command) error {
	path := DefaultEnvFile
	if cmd != nil {
		if f := cmd.Flags().Lookup("env-file"); f != nil && f.Value.String() != "" {
			path = f.Value.String()
		}
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	log.Debug().Str("file", path).Msg("Loaded environment file")
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.WebhookURL = v
	}
	if v := os.Getenv("MAX_PRICE"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("MAX_PRICE %q: %w", v, err)
		}
		cfg.MaxPrice = d
	}
	if v := os.Getenv("DEALWATCH_PARTY_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DEALWATCH_PARTY_SIZE %q: %w", v, err)
		}
		cfg.PartySize = n
	}
	if v := os.Getenv("DEALWATCH_LISTING_URL"); v != "" {
		cfg.ListingURL = v
	}
	if v := os.Getenv("DEALWATCH_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("DEALWATCH_ENTRY"); v != "" {
		cfg.Entry = v
	}
	if v := os.Getenv("DEALWATCH_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("DEALWATCH_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("DEALWATCH_SNAPSHOT_DIR"); v != "" {
		cfg.SnapshotDir = v
	}
	if v := os.Getenv("CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	return nil
}

func applyFlags(cfg *Config, cmd *cobra.Command) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	var err error
	if changed("verbose") {
		if v, _ := flags.GetBool("verbose"); v {
			cfg.LogLevel = "debug"
		}
	}
	if changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if changed("json") {
		cfg.JSONLog, _ = flags.GetBool("json")
	}
	if changed("max-price") {
		s, _ := flags.GetString("max-price")
		if cfg.MaxPrice, err = decimal.NewFromString(s); err != nil {
			return fmt.Errorf("--max-price %q: %w", s, err)
		}
	}
	if changed("party-size") {
		cfg.PartySize, _ = flags.GetInt("party-size")
	}
	if changed("listing-url") {
		cfg.ListingURL, _ = flags.GetString("listing-url")
	}
	if changed("base-url") {
		cfg.BaseURL, _ = flags.GetString("base-url")
	}
	if changed("entry") {
		cfg.Entry, _ = flags.GetString("entry")
	}
	if changed("step-timeout") {
		cfg.StepTimeout, _ = flags.GetDuration("step-timeout")
	}
	if changed("listing-timeout") {
		cfg.ListingTimeout, _ = flags.GetDuration("listing-timeout")
	}
	if changed("run-timeout") {
		cfg.RunTimeout, _ = flags.GetDuration("run-timeout")
	}
	if changed("webhook-timeout") {
		cfg.WebhookTimeout, _ = flags.GetDuration("webhook-timeout")
	}
	if changed("headful") {
		if v, _ := flags.GetBool("headful"); v {
			cfg.Headless = false
		}
	}
	if changed("no-stealth") {
		if v, _ := flags.GetBool("no-stealth"); v {
			cfg.Stealth = false
		}
	}
	if changed("proxy") {
		cfg.Proxy, _ = flags.GetString("proxy")
	}
	if changed("user-agent") {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}
	if changed("chrome-path") {
		cfg.ChromePath, _ = flags.GetString("chrome-path")
	}
	if changed("snapshot-dir") {
		cfg.SnapshotDir, _ = flags.GetString("snapshot-dir")
	}
	if changed("header") {
		raw, _ := flags.GetStringArray("header")
		if cfg.Headers, err = headers.ParseHeaders(raw); err != nil {
			return err
		}
	}
	return nil
}
