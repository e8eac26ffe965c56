// Package config loads the settings of the perf tool: a YAML file, overlaid
// by environment variables (and a .env file when present).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/etnz/perfledger"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	LogLevel     string    `yaml:"log_level"`
	Pretty       bool      `yaml:"pretty"`
	MarketDB     string    `yaml:"market_db"`
	Listen       string    `yaml:"listen"`
	BaseCurrency string    `yaml:"base_currency"`
	Engine       Engine    `yaml:"engine"`
	Accounts     []Account `yaml:"accounts"`

	dir string // folder of the config file, relative paths start there
}

// Engine holds the tunable parts of a computation.
type Engine struct {
	Anomaly          perfledger.AnomalyOptions `yaml:"anomaly"`
	TrailingMonths   []int                     `yaml:"trailing_months"`
	MaxQuoteAge      int                       `yaml:"max_quote_age"`
	IncludePreAnchor bool                      `yaml:"include_pre_anchor"`
}

// Account describes one brokerage account.
type Account struct {
	ID              string          `yaml:"id"`
	Currency        string          `yaml:"currency"`
	CAGRStart       perfledger.Date `yaml:"cagr_start"`
	EarliestFunding perfledger.Date `yaml:"earliest_funding"`
	Activities      string          `yaml:"activities"` // JSONL file
	Balance         string          `yaml:"balance"`
	BalanceCurrency string          `yaml:"balance_currency"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Engine: Engine{Anomaly: perfledger.DefaultAnomalyOptions()},
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
		cfg.dir = filepath.Dir(path)
	}

	// Environment variable overrides
	cfg.LogLevel = getEnv("PERF_LOG_LEVEL", cfg.LogLevel)
	cfg.MarketDB = getEnv("PERF_MARKET_DB", cfg.MarketDB)
	cfg.Listen = getEnv("PERF_LISTEN", cfg.Listen)
	cfg.BaseCurrency = getEnv("PERF_BASE_CURRENCY", cfg.BaseCurrency)
	cfg.Pretty = getEnvAsBool("PERF_PRETTY", cfg.Pretty)
	cfg.Engine.MaxQuoteAge = getEnvAsInt("PERF_MAX_QUOTE_AGE", cfg.Engine.MaxQuoteAge)

	// Defaults
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MarketDB == "" {
		cfg.MarketDB = "market.db"
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = "CAD"
	}
	if cfg.Engine.MaxQuoteAge == 0 {
		cfg.Engine.MaxQuoteAge = perfledger.DefaultMaxQuoteAge
	}
	if len(cfg.Engine.TrailingMonths) == 0 {
		cfg.Engine.TrailingMonths = perfledger.DefaultTrailingMonths
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := perfledger.ValidateCurrency(c.BaseCurrency); err != nil {
		return fmt.Errorf("base_currency: %w", err)
	}
	if c.Engine.Anomaly.MinAmount < 0 || c.Engine.Anomaly.MinRatio < 0 {
		return fmt.Errorf("engine.anomaly thresholds must not be negative")
	}
	for _, m := range c.Engine.TrailingMonths {
		if m <= 0 {
			return fmt.Errorf("engine.trailing_months: %d is not a positive number of months", m)
		}
	}
	seen := map[string]bool{}
	for i, a := range c.Accounts {
		if a.ID == "" {
			return fmt.Errorf("accounts[%d].id is required", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("accounts[%d]: duplicate id %q", i, a.ID)
		}
		seen[a.ID] = true
		if a.Activities == "" {
			return fmt.Errorf("accounts[%d].activities is required", i)
		}
		if _, err := a.balance(); err != nil {
			return fmt.Errorf("accounts[%d].balance: %w", i, err)
		}
	}
	return nil
}

// Options returns the engine options.
func (c *Config) Options() perfledger.Options {
	opt := perfledger.DefaultOptions()
	opt.Anomaly = c.Engine.Anomaly
	opt.TrailingMonths = c.Engine.TrailingMonths
	opt.MaxQuoteAge = c.Engine.MaxQuoteAge
	opt.IncludePreAnchor = c.Engine.IncludePreAnchor
	return opt
}

// Account returns the account with that id.
func (c *Config) Account(id string) (Account, bool) {
	for _, a := range c.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// Path resolves a path relative to the config file.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

func (a Account) balance() (decimal.Decimal, error) {
	if a.Balance == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(a.Balance)
}

// Context returns the engine context of the account, as of a given time.
func (a Account) Context(asOf time.Time, defaultCurrency string) perfledger.AccountContext {
	currency := a.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	return perfledger.AccountContext{
		AccountID:           a.ID,
		BaseCurrency:        currency,
		CAGRStartDate:       a.CAGRStart,
		EarliestFundingDate: a.EarliestFunding,
		AsOf:                asOf,
	}
}

// Snapshot returns the configured balance of the account.
func (a Account) Snapshot() perfledger.BalanceSnapshot {
	total, _ := a.balance() // checked by Validate
	return perfledger.BalanceSnapshot{TotalEquity: total, Currency: a.BalanceCurrency}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
