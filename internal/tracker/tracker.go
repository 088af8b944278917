// Package tracker maintains currently-held hedge positions: valuation
// reports, near-expiration detection, and roll suggestions against an
// externally supplied options-chain snapshot.
package tracker

import (
	"math"
	"time"

	"portfolio-hedger/internal/config"
	"portfolio-hedger/internal/marketdata"
	"portfolio-hedger/internal/models"
	"portfolio-hedger/internal/pricing"
)

// PositionStatus is one row of a status report.
type PositionStatus struct {
	Position     models.HedgePosition `json:"position"`
	State        models.PositionState `json:"state"`
	DTE          int                  `json:"dte"`
	CurrentValue float64              `json:"current_value"`
	UnrealizedPL float64              `json:"unrealized_pl"`
	// NoData marks a position whose underlying had no quote in the
	// snapshot. It is still reported; only the valuation is missing.
	NoData bool   `json:"no_data,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// StatusReport is a read-only valuation of the active positions as of a
// given date. Calling Status twice on identical input yields identical
// output; nothing is mutated.
type StatusReport struct {
	AsOf      time.Time        `json:"as_of"`
	Positions []PositionStatus `json:"positions"`
}

// RollReport is the outcome of a roll scan: one suggestion per rollable
// position, plus the positions skipped for missing data, in input order.
type RollReport struct {
	AsOf        time.Time                `json:"as_of"`
	Suggestions []models.RollSuggestion  `json:"suggestions"`
	Skipped     []models.SkippedPosition `json:"skipped,omitempty"`
}

// Status re-values each position against the snapshot as of the given date.
// Results preserve input order. A missing quote never blocks the remaining
// positions.
func Status(positions []models.HedgePosition, snap *marketdata.Snapshot,
	market config.MarketConfig, asOf time.Time, nearDTE int) StatusReport {

	report := StatusReport{AsOf: asOf}

	for _, p := range positions {
		ps := PositionStatus{
			Position: p,
			State:    p.State(asOf, nearDTE),
			DTE:      p.DTE(asOf),
		}

		quote, err := snap.Quote(p.Underlying)
		if err != nil {
			ps.NoData = true
			ps.Reason = err.Error()
			report.Positions = append(report.Positions, ps)
			continue
		}

		switch p.Instrument {
		case models.InstrumentPut:
			perShare := putValue(p, quote, market, asOf)
			ps.CurrentValue = perShare * float64(p.Contracts) * ContractMultiplier
			ps.UnrealizedPL = (perShare - p.EntryPremium) * float64(p.Contracts) * ContractMultiplier
		case models.InstrumentInverseFund:
			ps.CurrentValue = quote.Spot * p.Shares
			ps.UnrealizedPL = (quote.Spot - p.EntryNAV) * p.Shares
		}

		report.Positions = append(report.Positions, ps)
	}

	return report
}

// ContractMultiplier mirrors the sizing multiplier; per-share premiums scale
// by contracts * 100.
const ContractMultiplier = 100

// putValue returns the per-share value of a held put as of asOf. An expired
// contract is worth its intrinsic value at the current spot.
func putValue(p models.HedgePosition, quote models.Quote,
	market config.MarketConfig, asOf time.Time) float64 {

	if !p.Expiry.After(asOf) {
		return math.Max(p.Strike-quote.Spot, 0)
	}

	iv := quote.IV
	if iv <= 0 {
		iv = market.DefaultIV
	}
	res, err := pricing.Price(models.OptionContractSpec{
		Underlying:    p.Underlying,
		Strike:        p.Strike,
		Expiry:        p.Expiry,
		Spot:          quote.Spot,
		IV:            iv,
		RiskFree:      market.RiskFreeRate,
		DividendYield: quote.DividendYield,
	}, asOf)
	if err != nil {
		return math.Max(p.Strike-quote.Spot, 0)
	}
	return res.Price
}
