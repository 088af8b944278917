// Package config provides configuration management for the hedging analyzer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"portfolio-hedger/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Hedging HedgeConfig  `mapstructure:"hedging"`
	Market  MarketConfig `mapstructure:"market"`
	UI      UIConfig     `mapstructure:"ui"`
}

// HedgeConfig holds the hedging preferences. It is read once per invocation
// and immutable thereafter; analysis code receives it by value.
type HedgeConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Instrument string `mapstructure:"instrument"` // "puts", "inverse", "both"

	MonthlyBudget         float64  `mapstructure:"monthly_budget"`
	TargetDTE             int      `mapstructure:"target_dte"`
	OTMMinPercent         float64  `mapstructure:"otm_min_percent"`
	OTMMaxPercent         float64  `mapstructure:"otm_max_percent"`
	Underlyings           []string `mapstructure:"underlyings"`
	ContractsPer50K       float64  `mapstructure:"contracts_per_50k"`
	DefaultPortfolioValue float64  `mapstructure:"default_portfolio_value"`

	NearExpiryDTE     int     `mapstructure:"near_expiry_dte"`
	InverseTicker     string  `mapstructure:"inverse_ticker"`
	Leverage          float64 `mapstructure:"leverage"`
	TieEpsilonPercent float64 `mapstructure:"tie_epsilon_percent"`
}

// MarketConfig holds market parameters used when a snapshot omits them.
type MarketConfig struct {
	RiskFreeRate  float64 `mapstructure:"risk_free_rate"`
	DefaultIV     float64 `mapstructure:"default_iv"`
	VolIndexBase  float64 `mapstructure:"vol_index_base"`
	ScenarioDays  int     `mapstructure:"scenario_days"`
}

// UIConfig holds output-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// OTMMidpoint returns the midpoint of the configured OTM band as a decimal,
// e.g. min 10 / max 20 -> 0.15.
func (h HedgeConfig) OTMMidpoint() float64 {
	return (h.OTMMinPercent + h.OTMMaxPercent) / 2 / 100
}

// PrimaryUnderlying returns the first configured underlying, which absorbs
// any allocation remainder.
func (h HedgeConfig) PrimaryUnderlying() string {
	if len(h.Underlyings) == 0 {
		return ""
	}
	return h.Underlyings[0]
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/portfolio-hedger"
	}
	return filepath.Join(home, ".config", "portfolio-hedger")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
// Validation runs before Load returns: a structurally invalid configuration
// never reaches any computation.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if werr := writeTemplateConfig(configDir); werr != nil {
				return nil, fmt.Errorf("creating config template: %w", werr)
			}
		} else {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("hedging.enabled", true)
	v.SetDefault("hedging.instrument", "both")
	v.SetDefault("hedging.monthly_budget", 500.0)
	v.SetDefault("hedging.target_dte", 60)
	v.SetDefault("hedging.otm_min_percent", 10.0)
	v.SetDefault("hedging.otm_max_percent", 20.0)
	v.SetDefault("hedging.underlyings", []string{"QQQ"})
	v.SetDefault("hedging.contracts_per_50k", 1.0)
	v.SetDefault("hedging.near_expiry_dte", 7)
	v.SetDefault("hedging.inverse_ticker", "SQQQ")
	v.SetDefault("hedging.leverage", 3.0)
	v.SetDefault("hedging.tie_epsilon_percent", 1.0)

	v.SetDefault("market.risk_free_rate", 0.04)
	v.SetDefault("market.default_iv", 0.25)
	v.SetDefault("market.vol_index_base", 16.0)
	v.SetDefault("market.scenario_days", 30)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HEDGER_PORTFOLIO_VALUE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Hedging.DefaultPortfolioValue = f
		}
	}
	if v := os.Getenv("HEDGER_MONTHLY_BUDGET"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Hedging.MonthlyBudget = f
		}
	}
	if v := os.Getenv("HEDGER_UNDERLYINGS"); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.ToUpper(strings.TrimSpace(parts[i]))
		}
		cfg.Hedging.Underlyings = parts
	}
}

// Validate validates the configuration. Every failure names the offending
// field and value and carries a remediation hint.
func (c *Config) Validate() error {
	h := c.Hedging

	switch h.Instrument {
	case "puts", "inverse", "both":
	default:
		return errors.NewValidationError("hedging.instrument", h.Instrument,
			"must be one of: puts, inverse, both")
	}
	if h.MonthlyBudget < 0 {
		return errors.NewValidationError("hedging.monthly_budget", h.MonthlyBudget,
			"set a non-negative monthly budget in dollars")
	}
	if h.OTMMinPercent < 0 || h.OTMMaxPercent < 0 {
		return errors.NewValidationError("hedging.otm_min_percent/otm_max_percent",
			fmt.Sprintf("%.1f/%.1f", h.OTMMinPercent, h.OTMMaxPercent),
			"OTM percentages must be non-negative")
	}
	if h.OTMMinPercent > h.OTMMaxPercent {
		return errors.NewValidationError("hedging.otm_min_percent", h.OTMMinPercent,
			fmt.Sprintf("must not exceed otm_max_percent (%.1f); swap the band bounds", h.OTMMaxPercent))
	}
	if h.TargetDTE <= 0 {
		return errors.NewValidationError("hedging.target_dte", h.TargetDTE,
			"set a positive target days-to-expiration, e.g. 60")
	}
	if h.ContractsPer50K <= 0 {
		return errors.NewValidationError("hedging.contracts_per_50k", h.ContractsPer50K,
			"set a positive contracts-per-$50,000 ratio, e.g. 1.0")
	}
	if len(h.Underlyings) == 0 {
		return errors.NewValidationError("hedging.underlyings", h.Underlyings,
			"configure at least one underlying ticker, e.g. [\"QQQ\"]")
	}
	if h.Leverage <= 0 {
		return errors.NewValidationError("hedging.leverage", h.Leverage,
			"leveraged inverse fund factor must be positive, e.g. 3.0")
	}
	if h.NearExpiryDTE < 0 {
		return errors.NewValidationError("hedging.near_expiry_dte", h.NearExpiryDTE,
			"near-expiration threshold must be non-negative days")
	}
	if c.Market.DefaultIV < 0 {
		return errors.NewValidationError("market.default_iv", c.Market.DefaultIV,
			"implied volatility must be non-negative, e.g. 0.25")
	}

	return nil
}
