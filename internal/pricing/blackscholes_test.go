package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-hedger/internal/errors"
	"portfolio-hedger/internal/models"
)

var testAsOf = time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

func atmSpec() models.OptionContractSpec {
	return models.OptionContractSpec{
		Underlying: "QQQ",
		Strike:     100,
		Expiry:     testAsOf.AddDate(0, 0, 30),
		Spot:       100,
		IV:         0.30,
		RiskFree:   0.03,
	}
}

// Reference values computed independently for an at-the-money put,
// 30 days out, 30% vol, 3% rate, no dividend.
func TestPriceATMKnownValue(t *testing.T) {
	res, err := Price(atmSpec(), testAsOf)
	require.NoError(t, err)

	assert.InDelta(t, 3.304186, res.Price, 1e-4)
	assert.InDelta(t, -0.471431, res.Delta, 1e-4)
	assert.InDelta(t, 0.046266, res.Gamma, 1e-4)
	assert.InDelta(t, 11.407981, res.Vega, 1e-4)
	assert.InDelta(t, -0.052894, res.Theta, 1e-4)
	assert.InDelta(t, -4.146354, res.Rho, 1e-4)

	assert.False(t, res.FloorApplied)
	assert.Equal(t, 0.0, res.Intrinsic)
	assert.InDelta(t, res.Price, res.TimeValue, 1e-12)
}

func TestPriceDividendYieldLowersPutLess(t *testing.T) {
	base := atmSpec()
	withDiv := base
	withDiv.DividendYield = 0.02

	noDiv, err := Price(base, testAsOf)
	require.NoError(t, err)
	div, err := Price(withDiv, testAsOf)
	require.NoError(t, err)

	// A dividend yield depresses the forward, which raises a put.
	assert.Greater(t, div.Price, noDiv.Price)
}

func TestPriceDeepITMFloor(t *testing.T) {
	spec := models.OptionContractSpec{
		Underlying: "QQQ",
		Strike:     100,
		Expiry:     testAsOf.AddDate(0, 0, 2),
		Spot:       50,
		IV:         0.30,
		RiskFree:   0.03,
	}

	res, err := Price(spec, testAsOf)
	require.NoError(t, err)

	// Closed-form value is 49.9836, below the 50.00 exercise value.
	assert.True(t, res.FloorApplied)
	assert.Equal(t, 50.0, res.Price)
	assert.Equal(t, 50.0, res.Intrinsic)
	assert.Equal(t, 0.0, res.TimeValue)
	assert.Equal(t, -1.0, res.Delta)
	assert.Equal(t, 0.0, res.Gamma)
	assert.Equal(t, 0.0, res.Vega)
	assert.Equal(t, 0.0, res.Theta)
}

func TestPriceZeroVol(t *testing.T) {
	spec := atmSpec()
	spec.IV = 0
	spec.Spot = 90

	res, err := Price(spec, testAsOf)
	require.NoError(t, err)

	t30 := 30.0 / DaysPerYear
	want := 100*math.Exp(-0.03*t30) - 90
	assert.InDelta(t, want, res.Price, 1e-9)
	assert.Equal(t, -1.0, res.Delta)
}

func TestPriceInvalidSpecs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.OptionContractSpec)
		field  string
	}{
		{"negative strike", func(s *models.OptionContractSpec) { s.Strike = -5 }, "strike"},
		{"zero spot", func(s *models.OptionContractSpec) { s.Spot = 0 }, "spot"},
		{"negative iv", func(s *models.OptionContractSpec) { s.IV = -0.1 }, "iv"},
		{"expired", func(s *models.OptionContractSpec) { s.Expiry = testAsOf.AddDate(0, 0, -1) }, "expiry"},
		{"expires today", func(s *models.OptionContractSpec) { s.Expiry = testAsOf }, "expiry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := atmSpec()
			tt.mutate(&spec)

			_, err := Price(spec, testAsOf)
			require.Error(t, err)

			var specErr *errors.InvalidSpecError
			require.ErrorAs(t, err, &specErr)
			assert.Equal(t, tt.field, specErr.Field)
		})
	}
}

func TestPremiumMatchesPrice(t *testing.T) {
	res, err := Price(atmSpec(), testAsOf)
	require.NoError(t, err)
	p, err := Premium(atmSpec(), testAsOf)
	require.NoError(t, err)
	assert.Equal(t, res.Price, p)
}
