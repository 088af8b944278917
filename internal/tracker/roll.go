package tracker

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"portfolio-hedger/internal/config"
	"portfolio-hedger/internal/logging"
	"portfolio-hedger/internal/marketdata"
	"portfolio-hedger/internal/models"
	"portfolio-hedger/internal/pricing"
	"portfolio-hedger/internal/store"
)

// Tracker owns the persisted position store and performs roll operations
// against it. Analysis entry points (Status, SuggestRoll) are free functions
// so they stay trivially pure.
type Tracker struct {
	Store  store.PositionStore
	Logger zerolog.Logger
}

// SuggestRoll scans the chain snapshot for replacement candidates for every
// put position at or below the DTE threshold. A position whose underlying
// has no chain data is recorded in Skipped and never blocks the rest of the
// batch. Suggestions preserve the input position order.
func SuggestRoll(positions []models.HedgePosition, chains marketdata.ChainSet,
	h config.HedgeConfig, market config.MarketConfig,
	asOf time.Time, dteThreshold int) RollReport {

	report := RollReport{AsOf: asOf}

	for _, p := range positions {
		if p.Instrument != models.InstrumentPut {
			continue
		}
		if p.DTE(asOf) > dteThreshold {
			continue
		}

		chain, err := chains.Chain(p.Underlying)
		if err != nil {
			report.Skipped = append(report.Skipped, models.SkippedPosition{
				Key:    p.Key(),
				Reason: err.Error(),
			})
			continue
		}

		candidate, ok := selectCandidate(chain, h, asOf)
		if !ok {
			report.Skipped = append(report.Skipped, models.SkippedPosition{
				Key:    p.Key(),
				Reason: "no contract matching target DTE and OTM band in chain snapshot",
			})
			continue
		}

		newPremium := candidate.Premium
		spec := models.OptionContractSpec{
			Underlying:    p.Underlying,
			Strike:        candidate.Strike,
			Expiry:        candidate.Expiry,
			Spot:          chain.Spot,
			IV:            candidateIV(candidate, market),
			RiskFree:      market.RiskFreeRate,
			DividendYield: 0,
		}
		if newPremium <= 0 {
			if est, err := pricing.Premium(spec, asOf); err == nil {
				newPremium = est
			}
		}

		oldResidual := residualValue(p, chain, market, asOf)
		costToRoll := newPremium - oldResidual

		report.Suggestions = append(report.Suggestions, models.RollSuggestion{
			Position:    p,
			Candidate:   spec,
			NewPremium:  newPremium,
			OldResidual: oldResidual,
			CostToRoll:  costToRoll,
			NetCost:     costToRoll * float64(p.Contracts) * ContractMultiplier,
		})
	}

	return report
}

// selectCandidate picks the chain contract nearest the target DTE whose
// strike falls inside the OTM band, preferring the strike closest to the
// band midpoint.
func selectCandidate(chain models.OptionChain, h config.HedgeConfig, asOf time.Time) (models.ChainQuote, bool) {
	bandLow := chain.Spot * (1 - h.OTMMaxPercent/100)
	bandHigh := chain.Spot * (1 - h.OTMMinPercent/100)
	target := chain.Spot * (1 - h.OTMMidpoint())

	var best models.ChainQuote
	found := false
	bestExpiryGap := math.MaxFloat64
	bestStrikeGap := math.MaxFloat64

	for _, q := range chain.Puts {
		dte := int(q.Expiry.Sub(asOf).Hours() / 24)
		if dte <= 0 {
			continue
		}
		if q.Strike < bandLow || q.Strike > bandHigh {
			continue
		}

		expiryGap := math.Abs(float64(dte - h.TargetDTE))
		strikeGap := math.Abs(q.Strike - target)
		if expiryGap < bestExpiryGap ||
			(expiryGap == bestExpiryGap && strikeGap < bestStrikeGap) {
			best = q
			found = true
			bestExpiryGap = expiryGap
			bestStrikeGap = strikeGap
		}
	}

	return best, found
}

// residualValue is the per-share value recovered by closing the old
// position: the listed premium when the contract is still quoted in the
// snapshot, otherwise a kernel re-valuation, falling back to intrinsic at
// or past expiry.
func residualValue(p models.HedgePosition, chain models.OptionChain,
	market config.MarketConfig, asOf time.Time) float64 {

	for _, q := range chain.Puts {
		if q.Strike == p.Strike && sameDay(q.Expiry, p.Expiry) && q.Premium > 0 {
			return q.Premium
		}
	}

	if !p.Expiry.After(asOf) {
		return math.Max(p.Strike-chain.Spot, 0)
	}

	res, err := pricing.Price(models.OptionContractSpec{
		Underlying: p.Underlying,
		Strike:     p.Strike,
		Expiry:     p.Expiry,
		Spot:       chain.Spot,
		IV:         market.DefaultIV,
		RiskFree:   market.RiskFreeRate,
	}, asOf)
	if err != nil {
		return math.Max(p.Strike-chain.Spot, 0)
	}
	return res.Price
}

func candidateIV(q models.ChainQuote, market config.MarketConfig) float64 {
	if q.IV > 0 {
		return q.IV
	}
	return market.DefaultIV
}

func sameDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.Date()
	y2, m2, d2 := t2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// LogRoll records an executed roll: history entry appended, old position
// archived, replacement activated, all in one store transaction.
func (t *Tracker) LogRoll(ctx context.Context, old models.HedgePosition,
	replacement models.HedgePosition, actualCost float64, reason string, now time.Time) error {

	if err := t.Store.LogRoll(ctx, old.ID, replacement, actualCost, reason, now); err != nil {
		return err
	}
	logging.LogRoll(t.Logger, old.Key(), replacement.Key(), actualCost)
	return nil
}
