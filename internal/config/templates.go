package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Portfolio Hedger Configuration

[hedging]
# Enable hedging analysis
enabled = true
# Instrument family: "puts", "inverse", or "both"
instrument = "both"
# Monthly hedge budget in dollars
monthly_budget = 500.0
# Target days-to-expiration for new put positions
target_dte = 60
# Out-of-the-money band (percent below spot)
otm_min_percent = 10.0
otm_max_percent = 20.0
# Underlyings to hedge with; the first absorbs any allocation remainder
underlyings = ["QQQ"]
# Protective put contracts per $50,000 of portfolio value
contracts_per_50k = 1.0
# Default portfolio value when a command omits --portfolio-value
default_portfolio_value = 0.0
# Positions at or below this DTE are flagged near-expiration
near_expiry_dte = 7
# Leveraged inverse fund ticker and daily leverage factor
inverse_ticker = "SQQQ"
leverage = 3.0
# Comparison winner tie band, in return percentage points
tie_epsilon_percent = 1.0

[market]
# Annualized risk-free rate used for pricing
risk_free_rate = 0.04
# Fallback implied volatility when a snapshot omits one
default_iv = 0.25
# Calm-market volatility index level for the stress model
vol_index_base = 16.0
# Default scenario horizon in trading days
scenario_days = 30

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
`

// writeTemplateConfig writes a starter config.toml so a first run leaves the
// user with something to edit instead of an error.
func writeTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil // never overwrite an existing file
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}
