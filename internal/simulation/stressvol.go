package simulation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"portfolio-hedger/internal/errors"
	"portfolio-hedger/internal/marketdata"
)

// StressModel estimates the implied volatility of an underlying during a
// market drop. Holding IV constant through a selloff is unrealistic; the
// model links the drop magnitude to a broad volatility-index level, then
// maps that level to the underlying's IV with a linear regression.
//
// The model is a replaceable, versioned component: DefaultStressModel ships
// calibrated constants, Calibrate refits from a supplied history.
type StressModel struct {
	Version string `json:"version"`
	// BaseIndex is the calm-market volatility-index level.
	BaseIndex float64 `json:"base_index"`
	// IndexPerDropPct is the index-point expansion per 1% of market drop.
	IndexPerDropPct float64 `json:"index_per_drop_pct"`
	// Intercept and Slope map an index level to the underlying's IV.
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// DefaultStressModel returns the shipped v1 calibration: the volatility
// index expands by roughly 1.2 points per 1% drop from a base of 16, and
// the underlying's IV tracks the index level at about 0.9 vol points per
// index point.
func DefaultStressModel(baseIndex float64) StressModel {
	if baseIndex <= 0 {
		baseIndex = 16
	}
	return StressModel{
		Version:         "v1-default",
		BaseIndex:       baseIndex,
		IndexPerDropPct: 1.2,
		Intercept:       0.02,
		Slope:           0.009,
	}
}

// StressIV returns the stressed implied volatility for a drop of dropPct
// percent (positive magnitude). The estimate never falls below the current
// base IV; volatility expands in selloffs.
func (m StressModel) StressIV(baseIV, dropPct float64) float64 {
	level := m.BaseIndex + m.IndexPerDropPct*math.Abs(dropPct)
	predicted := m.Intercept + m.Slope*level
	return math.Max(baseIV, predicted)
}

// Calibrate refits the index-to-IV regression from a supplied history of
// (volatility-index level, underlying IV) observations and stamps a derived
// version. The drop-to-index coupling is retained from the receiver.
func (m StressModel) Calibrate(history []marketdata.VolPoint, version string) (StressModel, error) {
	if len(history) < 2 {
		return StressModel{}, errors.NewInsufficientInputError("vol_history",
			"calibration needs at least two (vix, iv) observations")
	}

	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	for i, p := range history {
		xs[i] = p.IndexLevel
		ys[i] = p.IV
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(intercept) || math.IsNaN(slope) {
		return StressModel{}, errors.NewInsufficientInputError("vol_history",
			"degenerate history: index levels must vary")
	}

	calibrated := m
	calibrated.Intercept = intercept
	calibrated.Slope = slope
	calibrated.BaseIndex = stat.Mean(xs, nil)
	if version == "" {
		version = fmt.Sprintf("calibrated-n%d", len(history))
	}
	calibrated.Version = version
	return calibrated, nil
}

// DailyVolatility computes the sample standard deviation of daily returns,
// the noise scale a NoisyPath draws from.
func DailyVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) < 2 {
		return 0
	}
	return stat.StdDev(dailyReturns, nil)
}

// AnnualizedVolatility computes annualized volatility from daily returns,
// using the 252-trading-day convention.
func AnnualizedVolatility(dailyReturns []float64) float64 {
	return DailyVolatility(dailyReturns) * math.Sqrt(252)
}
