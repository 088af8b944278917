package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-hedger/internal/config"
	"portfolio-hedger/internal/marketdata"
	"portfolio-hedger/internal/simulation"
)

func testCLIConfig() *config.Config {
	return &config.Config{
		Hedging: config.HedgeConfig{
			Enabled:           true,
			Instrument:        "both",
			MonthlyBudget:     500,
			TargetDTE:         60,
			OTMMinPercent:     10,
			OTMMaxPercent:     20,
			Underlyings:       []string{"QQQ"},
			ContractsPer50K:   1,
			NearExpiryDTE:     7,
			InverseTicker:     "SQQQ",
			Leverage:          3,
			TieEpsilonPercent: 1,
		},
		Market: config.MarketConfig{
			RiskFreeRate: 0.03,
			DefaultIV:    0.25,
			VolIndexBase: 16,
			ScenarioDays: 30,
		},
	}
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	root := NewRootCmd(testCLIConfig(), zerolog.Nop())
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), "output: %s", buf.String())
	return buf.String()
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testSnapshotFile(t *testing.T) string {
	return writeTestFile(t, "quotes.json", `{
		"as_of": "2026-02-02T00:00:00Z",
		"quotes": {"QQQ": {"spot": 500, "iv": 0.22}}
	}`)
}

func TestCompareNoisyScaleFromPriceHistory(t *testing.T) {
	snapshot := testSnapshotFile(t)
	prices := writeTestFile(t, "closes.csv",
		"date,close\n2026-01-05,100\n2026-01-06,102\n2026-01-07,99.96\n2026-01-08,101.9592\n2026-01-09,99.92\n")

	// The command must derive the noise scale from the same series.
	points, err := marketdata.LoadPriceHistory(prices)
	require.NoError(t, err)
	derived := simulation.DailyVolatility(marketdata.DailyReturns(points))
	require.Greater(t, derived, 0.0)

	common := []string{
		"compare", "--json",
		"--snapshot", snapshot,
		"--portfolio-value", "200000",
		"--scenarios", "-15",
		"--path", "noisy",
		"--seed", "42",
		"--as-of", "2026-02-02",
	}

	fromHistory := runCLI(t, append(common, "--price-history", prices)...)
	fromFlag := runCLI(t, append(common,
		"--daily-vol", strconv.FormatFloat(derived, 'g', -1, 64))...)

	assert.Equal(t, fromFlag, fromHistory)
	assert.Contains(t, fromHistory, `"path_strategy": "noisy"`)
}

func TestCompareDailyVolFlagOverridesHistory(t *testing.T) {
	snapshot := testSnapshotFile(t)
	prices := writeTestFile(t, "closes.csv",
		"date,close\n2026-01-05,100\n2026-01-06,105\n2026-01-07,98\n2026-01-08,104\n")

	common := []string{
		"compare", "--json",
		"--snapshot", snapshot,
		"--portfolio-value", "200000",
		"--scenarios", "-15",
		"--path", "noisy",
		"--seed", "42",
		"--as-of", "2026-02-02",
	}

	withBoth := runCLI(t, append(common, "--price-history", prices, "--daily-vol", "0.012")...)
	flagOnly := runCLI(t, append(common, "--daily-vol", "0.012")...)

	assert.Equal(t, flagOnly, withBoth)
}
