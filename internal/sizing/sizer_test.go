package sizing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-hedger/internal/config"
	"portfolio-hedger/internal/errors"
	"portfolio-hedger/internal/marketdata"
	"portfolio-hedger/internal/models"
)

var sizeAsOf = time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

func testHedgeConfig() config.HedgeConfig {
	return config.HedgeConfig{
		Enabled:         true,
		MonthlyBudget:   1000,
		TargetDTE:       45,
		OTMMinPercent:   10,
		OTMMaxPercent:   20,
		Underlyings:     []string{"QQQ", "SPY"},
		ContractsPer50K: 1,
	}
}

func testMarketConfig() config.MarketConfig {
	return config.MarketConfig{
		RiskFreeRate: 0.03,
		DefaultIV:    0.25,
		VolIndexBase: 16,
		ScenarioDays: 30,
	}
}

func testSnapshot() *marketdata.Snapshot {
	return &marketdata.Snapshot{
		AsOf: sizeAsOf,
		Quotes: map[string]models.Quote{
			"QQQ": {Underlying: "QQQ", Spot: 500, IV: 0.22},
			"SPY": {Underlying: "SPY", Spot: 600, IV: 0.18},
		},
	}
}

func TestSizeEvenSplit(t *testing.T) {
	result, warning, err := Size(testHedgeConfig(), testMarketConfig(), testSnapshot(),
		sizeAsOf, Options{PortfolioValue: 200_000})
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalContracts)
	require.Len(t, result.Allocations, 2)
	assert.Equal(t, 2, result.Allocations[0].Contracts)
	assert.Equal(t, 2, result.Allocations[1].Contracts)
	assert.Greater(t, result.TotalMonthlyCost, 0.0)
	assert.Nil(t, warning)
}

func TestSizeRemainderToPrimary(t *testing.T) {
	h := testHedgeConfig()
	h.Underlyings = []string{"QQQ", "SPY", "IWM"}
	snap := testSnapshot()
	snap.Quotes["IWM"] = models.Quote{Underlying: "IWM", Spot: 220, IV: 0.28}

	result, _, err := Size(h, testMarketConfig(), snap,
		sizeAsOf, Options{PortfolioValue: 200_000})
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalContracts)
	assert.Equal(t, "QQQ", result.Allocations[0].Underlying)
	assert.Equal(t, 2, result.Allocations[0].Contracts)
	assert.Equal(t, 1, result.Allocations[1].Contracts)
	assert.Equal(t, 1, result.Allocations[2].Contracts)
}

func TestSizePortfolioTooSmall(t *testing.T) {
	result, warning, err := Size(testHedgeConfig(), testMarketConfig(), testSnapshot(),
		sizeAsOf, Options{PortfolioValue: 40_000})
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalContracts)
	assert.Nil(t, warning)
}

func TestSizeNoPortfolioValue(t *testing.T) {
	_, _, err := Size(testHedgeConfig(), testMarketConfig(), testSnapshot(),
		sizeAsOf, Options{})
	require.Error(t, err)

	var insufficient *errors.InsufficientInputError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "portfolio_value", insufficient.Field)
}

func TestSizeDefaultPortfolioValue(t *testing.T) {
	h := testHedgeConfig()
	h.DefaultPortfolioValue = 100_000

	result, _, err := Size(h, testMarketConfig(), testSnapshot(), sizeAsOf, Options{})
	require.NoError(t, err)
	assert.Equal(t, 100_000.0, result.PortfolioValue)
	assert.Equal(t, 2, result.TotalContracts)
}

func TestSizeMissingQuoteIsolated(t *testing.T) {
	snap := &marketdata.Snapshot{
		AsOf: sizeAsOf,
		Quotes: map[string]models.Quote{
			"QQQ": {Underlying: "QQQ", Spot: 500, IV: 0.22},
		},
	}

	result, _, err := Size(testHedgeConfig(), testMarketConfig(), snap,
		sizeAsOf, Options{PortfolioValue: 200_000})
	require.NoError(t, err)

	require.Len(t, result.Allocations, 2)
	assert.False(t, result.Allocations[0].NoData)
	assert.True(t, result.Allocations[1].NoData)
	assert.NotEmpty(t, result.Allocations[1].Reason)
	// The contract count survives; only the cost estimate is missing.
	assert.Equal(t, 2, result.Allocations[1].Contracts)
	assert.Equal(t, 0.0, result.Allocations[1].MonthlyCost)
}

func TestSizeBudgetWarning(t *testing.T) {
	h := testHedgeConfig()
	h.MonthlyBudget = 50

	result, warning, err := Size(h, testMarketConfig(), testSnapshot(),
		sizeAsOf, Options{PortfolioValue: 500_000})
	require.NoError(t, err)

	require.NotNil(t, warning)
	assert.True(t, result.BudgetExceeded)
	assert.Greater(t, result.BudgetUtilization, 100.0)
	assert.Equal(t, result.TotalMonthlyCost, warning.MonthlyCost)
	// The result is still usable; the warning is advisory.
	assert.Equal(t, 10, result.TotalContracts)
}

func TestSizeOverrides(t *testing.T) {
	snap := testSnapshot()
	snap.Quotes["IWM"] = models.Quote{Underlying: "IWM", Spot: 220, IV: 0.28}

	result, _, err := Size(testHedgeConfig(), testMarketConfig(), snap, sizeAsOf, Options{
		PortfolioValue: 100_000,
		TargetDTE:      60,
		Underlyings:    []string{"IWM"},
	})
	require.NoError(t, err)

	require.Len(t, result.Allocations, 1)
	assert.Equal(t, "IWM", result.Allocations[0].Underlying)
	assert.Equal(t, sizeAsOf.AddDate(0, 0, 60), result.Allocations[0].Spec.Expiry)
}

func TestRepresentativeSpecStrikeAtBandMidpoint(t *testing.T) {
	quote := models.Quote{Underlying: "QQQ", Spot: 500, IV: 0.22}
	spec := RepresentativeSpec(testHedgeConfig(), testMarketConfig(), quote, sizeAsOf)

	// 10-20% OTM band, midpoint 15% below spot.
	assert.Equal(t, 425.0, spec.Strike)
	assert.Equal(t, 0.22, spec.IV)
	assert.Equal(t, sizeAsOf.AddDate(0, 0, 45), spec.Expiry)
}

func TestRepresentativeSpecDefaultIV(t *testing.T) {
	quote := models.Quote{Underlying: "QQQ", Spot: 500}
	spec := RepresentativeSpec(testHedgeConfig(), testMarketConfig(), quote, sizeAsOf)
	assert.Equal(t, 0.25, spec.IV)
}

func TestDistribute(t *testing.T) {
	assert.Equal(t, []int{3, 2}, distribute(5, 2))
	assert.Equal(t, []int{2, 1, 1}, distribute(4, 3))
	assert.Equal(t, []int{0, 0}, distribute(0, 2))
	assert.Equal(t, []int{7}, distribute(7, 1))
}
