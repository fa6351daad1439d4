package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Source struct {
		BaseURL string `yaml:"base_url"`
		Proxy   string `yaml:"proxy"`
	} `yaml:"source"`
	Scrape struct {
		Cron               string `yaml:"cron"`
		TimeoutSeconds     int    `yaml:"timeout_seconds"`
		RequestDelayMillis int    `yaml:"request_delay_millis"`
		MaxRetries         int    `yaml:"max_retries"`
		RetryWaitSeconds   int    `yaml:"retry_wait_seconds"`
		RateLimitRequests  int    `yaml:"rate_limit_requests"`
		RateLimitWindowSec int    `yaml:"rate_limit_window_seconds"`
		MaxSymbolsPerBatch int    `yaml:"max_symbols_per_batch"`
		Market             string `yaml:"market"`
	} `yaml:"scrape"`
	Validation struct {
		MinPrice  float64 `yaml:"min_price"`
		MaxPrice  float64 `yaml:"max_price"`
		MinVolume int64   `yaml:"min_volume"`
	} `yaml:"validation"`
	History struct {
		Cron       string `yaml:"cron"`
		SyncDays   int    `yaml:"sync_days"`
		Source     string `yaml:"source"` // "page" scrapes markup, "api" hits the JSON price API
		APIBaseURL string `yaml:"api_base_url"`
		APIToken   string `yaml:"api_token"`
	} `yaml:"history"`
	Health struct {
		Cron string `yaml:"cron"`
	} `yaml:"health"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	SymbolsFile string `yaml:"symbols_file"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SENTINEL_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Source.Proxy = v
	}
	if v := os.Getenv("CRON_SCRAPE"); v != "" {
		cfg.Scrape.Cron = v
	}
	if v := os.Getenv("SCRAPE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scrape.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("REQUEST_DELAY_MILLIS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scrape.RequestDelayMillis = n
		}
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scrape.MaxRetries = n
		}
	}
	if v := os.Getenv("HISTORY_SOURCE"); v != "" {
		cfg.History.Source = v
	}
	if v := os.Getenv("HISTORY_API_TOKEN"); v != "" {
		cfg.History.APIToken = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SYMBOLS_FILE"); v != "" {
		cfg.SymbolsFile = v
	}

	// Defaults
	if cfg.Source.BaseURL == "" {
		cfg.Source.BaseURL = "https://finance.yahoo.com/quote"
	}
	if cfg.Scrape.Cron == "" {
		// Every 15 minutes during US trading hours (UTC), weekdays.
		cfg.Scrape.Cron = "0 */15 13-21 * * 1-5"
	}
	if cfg.Scrape.TimeoutSeconds == 0 {
		cfg.Scrape.TimeoutSeconds = 30
	}
	if cfg.Scrape.RequestDelayMillis == 0 {
		cfg.Scrape.RequestDelayMillis = 2000
	}
	if cfg.Scrape.MaxRetries == 0 {
		cfg.Scrape.MaxRetries = 3
	}
	if cfg.Scrape.RetryWaitSeconds == 0 {
		cfg.Scrape.RetryWaitSeconds = 2
	}
	if cfg.Scrape.RateLimitRequests == 0 {
		cfg.Scrape.RateLimitRequests = 30
	}
	if cfg.Scrape.RateLimitWindowSec == 0 {
		cfg.Scrape.RateLimitWindowSec = 60
	}
	if cfg.Scrape.MaxSymbolsPerBatch == 0 {
		cfg.Scrape.MaxSymbolsPerBatch = 150
	}
	if cfg.Scrape.Market == "" {
		cfg.Scrape.Market = "NASDAQ"
	}
	if cfg.Validation.MinPrice == 0 {
		cfg.Validation.MinPrice = 0.01
	}
	if cfg.Validation.MaxPrice == 0 {
		cfg.Validation.MaxPrice = 100000
	}
	if cfg.History.Cron == "" {
		// Nightly, after the US close.
		cfg.History.Cron = "0 30 22 * * 1-5"
	}
	if cfg.History.SyncDays == 0 {
		cfg.History.SyncDays = 365
	}
	if cfg.History.Source == "" {
		cfg.History.Source = "page"
	}
	if cfg.History.APIBaseURL == "" {
		cfg.History.APIBaseURL = "https://api.tiingo.com/tiingo/daily"
	}
	if cfg.Health.Cron == "" {
		cfg.Health.Cron = "0 */5 * * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/quote_sentinel.db"
	}
	if cfg.SymbolsFile == "" {
		cfg.SymbolsFile = "data/symbols.json"
	}

	return cfg, nil
}

// ScrapeTimeout returns the per-request timeout as a duration.
func (c *Config) ScrapeTimeout() time.Duration {
	return time.Duration(c.Scrape.TimeoutSeconds) * time.Second
}

// RequestDelay returns the inter-request delay as a duration.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.Scrape.RequestDelayMillis) * time.Millisecond
}

// RetryWait returns the base retry backoff as a duration.
func (c *Config) RetryWait() time.Duration {
	return time.Duration(c.Scrape.RetryWaitSeconds) * time.Second
}

// RateLimitWindow returns the rate-limiter window as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.Scrape.RateLimitWindowSec) * time.Second
}

// Validate checks that all required fields are consistent.
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}
	if c.Scrape.TimeoutSeconds <= 0 {
		return fmt.Errorf("scrape.timeout_seconds must be positive")
	}
	if c.Scrape.MaxRetries < 0 {
		return fmt.Errorf("scrape.max_retries must not be negative")
	}
	if c.Scrape.RateLimitRequests <= 0 {
		return fmt.Errorf("scrape.rate_limit_requests must be positive")
	}
	if c.Scrape.MaxSymbolsPerBatch <= 0 {
		return fmt.Errorf("scrape.max_symbols_per_batch must be positive")
	}
	if c.Validation.MinPrice <= 0 {
		return fmt.Errorf("validation.min_price must be positive")
	}
	if c.Validation.MaxPrice <= c.Validation.MinPrice {
		return fmt.Errorf("validation.max_price must exceed min_price")
	}
	if c.Validation.MinVolume < 0 {
		return fmt.Errorf("validation.min_volume must not be negative")
	}
	if c.History.SyncDays <= 0 {
		return fmt.Errorf("history.sync_days must be positive")
	}
	switch c.History.Source {
	case "page":
	case "api":
		if c.History.APIToken == "" {
			return fmt.Errorf("history.api_token is required when history.source is api")
		}
	default:
		return fmt.Errorf("history.source must be page or api, got %q", c.History.Source)
	}
	return nil
}
