package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-hedger/internal/errors"
)

func validConfig() *Config {
	return &Config{
		Hedging: HedgeConfig{
			Enabled:         true,
			Instrument:      "both",
			MonthlyBudget:   500,
			TargetDTE:       60,
			OTMMinPercent:   10,
			OTMMaxPercent:   20,
			Underlyings:     []string{"QQQ"},
			ContractsPer50K: 1,
			NearExpiryDTE:   7,
			InverseTicker:   "SQQQ",
			Leverage:        3,
		},
		Market: MarketConfig{
			RiskFreeRate: 0.04,
			DefaultIV:    0.25,
			VolIndexBase: 16,
			ScenarioDays: 30,
		},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsInvertedOTMBand(t *testing.T) {
	cfg := validConfig()
	cfg.Hedging.OTMMinPercent = 25
	cfg.Hedging.OTMMaxPercent = 15

	err := cfg.Validate()
	require.Error(t, err)

	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "hedging.otm_min_percent", verr.Field)
	assert.Contains(t, verr.Hint, "otm_max_percent")
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad instrument", func(c *Config) { c.Hedging.Instrument = "futures" }, "hedging.instrument"},
		{"negative budget", func(c *Config) { c.Hedging.MonthlyBudget = -1 }, "hedging.monthly_budget"},
		{"zero dte", func(c *Config) { c.Hedging.TargetDTE = 0 }, "hedging.target_dte"},
		{"zero ratio", func(c *Config) { c.Hedging.ContractsPer50K = 0 }, "hedging.contracts_per_50k"},
		{"no underlyings", func(c *Config) { c.Hedging.Underlyings = nil }, "hedging.underlyings"},
		{"zero leverage", func(c *Config) { c.Hedging.Leverage = 0 }, "hedging.leverage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verr *errors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoadCreatesTemplate(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	// First run writes an annotated template and still returns defaults.
	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, err)
	assert.Equal(t, 60, cfg.Hedging.TargetDTE)
	assert.Equal(t, []string{"QQQ"}, cfg.Hedging.Underlyings)
	assert.Equal(t, "SQQQ", cfg.Hedging.InverseTicker)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	toml := "[hedging]\notm_min_percent = 30.0\notm_max_percent = 10.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	_, err := Load(dir)
	require.Error(t, err)

	var verr *errors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HEDGER_PORTFOLIO_VALUE", "250000")
	t.Setenv("HEDGER_UNDERLYINGS", "spy, iwm")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 250000.0, cfg.Hedging.DefaultPortfolioValue)
	assert.Equal(t, []string{"SPY", "IWM"}, cfg.Hedging.Underlyings)
}

func TestOTMMidpoint(t *testing.T) {
	h := HedgeConfig{OTMMinPercent: 10, OTMMaxPercent: 20}
	assert.InDelta(t, 0.15, h.OTMMidpoint(), 1e-12)
}
