// Package config loads backtest configuration from YAML or JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Config is the complete backtest configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Ticks    TicksConfig    `json:"ticks,omitempty" yaml:"ticks,omitempty"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	LogLevel string         `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// AccountConfig contains ledger initialization parameters.
type AccountConfig struct {
	Balance float64 `json:"balance" yaml:"balance"`
}

// DataConfig names the daily dataset and cache behavior.
type DataConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
	Cache  bool   `json:"cache" yaml:"cache"`
}

// TicksConfig points at the optional ClickHouse tick store. An empty addr
// disables tick access.
type TicksConfig struct {
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// StrategyConfig selects and parameterizes the strategy.
type StrategyConfig struct {
	Name            string  `json:"name" yaml:"name"`
	MinChangePct    float64 `json:"min_change_pct" yaml:"min_change_pct"`
	MinVolumeLots   float64 `json:"min_volume_lots" yaml:"min_volume_lots"`
	MaxHoldingDays  int     `json:"max_holding_days" yaml:"max_holding_days"`
	ProfitTargetPct float64 `json:"profit_target_pct" yaml:"profit_target_pct"`
	StopLossPct     float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	MaxHoldings     int     `json:"max_holdings" yaml:"max_holdings"`
}

// BacktestConfig bounds the run.
type BacktestConfig struct {
	Start        string `json:"start" yaml:"start"` // YYYY-MM-DD
	End          string `json:"end" yaml:"end"`
	MaxPositions int    `json:"max_positions" yaml:"max_positions"`
}

// StartDate parses the start bound.
func (b BacktestConfig) StartDate() (time.Time, error) {
	return time.Parse(dateLayout, b.Start)
}

// EndDate parses the end bound.
func (b BacktestConfig) EndDate() (time.Time, error) {
	return time.Parse(dateLayout, b.End)
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite", or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	RunsFile   string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, choosing the format by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Data.DBPath == "" {
		return fmt.Errorf("data.db_path is required")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}

	start, err := c.Backtest.StartDate()
	if err != nil {
		return fmt.Errorf("backtest.start: %w", err)
	}
	end, err := c.Backtest.EndDate()
	if err != nil {
		return fmt.Errorf("backtest.end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("backtest.end %s is before backtest.start %s", c.Backtest.End, c.Backtest.Start)
	}
	if c.Backtest.MaxPositions < 0 {
		return fmt.Errorf("backtest.max_positions must not be negative")
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" || c.Journal.RunsFile == "" {
			return fmt.Errorf("journal trades_file, equity_file, and runs_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite', or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Balance: 1_000_000,
		},
		Data: DataConfig{
			DBPath: "./backtest.db",
			Cache:  true,
		},
		Strategy: StrategyConfig{
			Name:            "simple-long",
			MinChangePct:    8,
			MinVolumeLots:   1000,
			MaxHoldingDays:  5,
			ProfitTargetPct: 10,
			StopLossPct:     5,
			MaxHoldings:     10,
		},
		Backtest: BacktestConfig{
			Start:        "2024-01-02",
			End:          "2024-12-31",
			MaxPositions: 10,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./journal.db",
		},
		LogLevel: "info",
	}
}
