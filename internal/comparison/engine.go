// Package comparison composes the sizer, the decay simulator, and the
// pricing kernel into a scenario-by-scenario payoff table for protective
// puts versus a leveraged inverse fund.
package comparison

import (
	"fmt"
	"math"
	"time"

	"portfolio-hedger/internal/config"
	"portfolio-hedger/internal/errors"
	"portfolio-hedger/internal/marketdata"
	"portfolio-hedger/internal/models"
	"portfolio-hedger/internal/pricing"
	"portfolio-hedger/internal/simulation"
	"portfolio-hedger/internal/sizing"
)

// Inputs carries everything a comparison run needs, pre-resolved so the run
// itself is deterministic and I/O-free.
type Inputs struct {
	PutSpec      models.OptionContractSpec
	EntryPremium float64 // per share, kernel-priced at entry
	Contracts    int
	PutCapital   float64 // EntryPremium * Contracts * 100
	FundCapital  float64 // same committed capital, spent on inverse-fund shares
	Days         int
	Leverage     float64
	Path         simulation.PathStrategy
	Stress       simulation.StressModel
	AsOf         time.Time
}

// BuildInputs resolves comparison inputs from configuration, a market
// snapshot, and the portfolio value. Both instruments commit the same
// capital (the cost of the sized put position) so their returns are
// directly comparable.
func BuildInputs(h config.HedgeConfig, market config.MarketConfig,
	snap *marketdata.Snapshot, portfolioValue float64, days int,
	path simulation.PathStrategy, stress simulation.StressModel,
	asOf time.Time) (Inputs, error) {

	sized, _, err := sizing.Size(h, market, snap, asOf, sizing.Options{PortfolioValue: portfolioValue})
	if err != nil {
		return Inputs{}, err
	}

	primary := h.PrimaryUnderlying()
	quote, err := snap.Quote(primary)
	if err != nil {
		return Inputs{}, err
	}

	spec := sizing.RepresentativeSpec(h, market, quote, asOf)

	premium, err := pricing.Premium(spec, asOf)
	if err != nil {
		return Inputs{}, err
	}

	contracts := sized.TotalContracts
	if contracts < 1 {
		contracts = 1
	}
	capital := premium * float64(contracts) * sizing.ContractMultiplier

	if days <= 0 {
		days = market.ScenarioDays
	}

	return Inputs{
		PutSpec:      spec,
		EntryPremium: premium,
		Contracts:    contracts,
		PutCapital:   capital,
		FundCapital:  capital,
		Days:         days,
		Leverage:     h.Leverage,
		Path:         path,
		Stress:       stress,
		AsOf:         asOf,
	}, nil
}

// Compare builds one ScenarioResult per requested drop, in input order. A
// malformed scenario yields an invalid row and never aborts the rest of the
// batch. The report always carries the decay-approximation note and the
// educational disclaimer.
func Compare(h config.HedgeConfig, scenarios []float64, in Inputs) (models.ComparisonReport, error) {
	if in.Path == nil {
		in.Path = simulation.LinearPath{}
	}
	if in.EntryPremium <= 0 || in.PutCapital <= 0 {
		return models.ComparisonReport{}, errors.NewInsufficientInputError(
			"entry_premium", "comparison inputs must be built with BuildInputs")
	}

	report := models.ComparisonReport{
		StressModel:  in.Stress.Version,
		PathStrategy: in.Path.Name(),
		DecayNote:    models.DecayNote,
		Disclaimer:   models.Disclaimer,
	}

	for _, drop := range scenarios {
		report.Results = append(report.Results, runScenario(h, drop, in))
	}

	report.FundBreakevenPct = breakeven(func(d float64) float64 {
		return fundPL(-d, in)
	})
	report.PutBreakevenPct = breakeven(func(d float64) float64 {
		return putPL(-d, in)
	})

	return report, nil
}

func runScenario(h config.HedgeConfig, drop float64, in Inputs) models.ScenarioResult {
	res := models.ScenarioResult{DropPercent: drop, Days: in.Days}

	if drop >= 0 || drop <= -100 {
		res.Invalid = true
		res.Reason = fmt.Sprintf("drop percent %.1f out of range: must be in (-100, 0)", drop)
		return res
	}

	path := simulation.SimulateInverseFund(drop/100, in.Days, in.Leverage, in.Path, 1.0)
	res.FundPL = in.FundCapital * path.FundReturn
	res.FundReturnPct = path.FundReturn * 100
	res.FundDragPct = path.Drag * 100

	stressedIV := in.Stress.StressIV(in.PutSpec.IV, math.Abs(drop))
	res.StressedIV = stressedIV

	value := putValueAfterDrop(drop, stressedIV, in)
	res.PutPL = (value - in.EntryPremium) * float64(in.Contracts) * sizing.ContractMultiplier
	res.PutReturnPct = res.PutPL / in.PutCapital * 100

	res.Winner = winner(res.FundReturnPct, res.PutReturnPct, h.TieEpsilonPercent)
	return res
}

// putValueAfterDrop re-prices the put per share after the scenario plays
// out: spot down by the drop, the clock advanced, IV stressed. At or past
// expiry the put is worth its intrinsic value.
func putValueAfterDrop(dropPct, stressedIV float64, in Inputs) float64 {
	spot := in.PutSpec.Spot * (1 + dropPct/100)
	then := in.AsOf.AddDate(0, 0, in.Days)

	if !in.PutSpec.Expiry.After(then) {
		return math.Max(in.PutSpec.Strike-spot, 0)
	}

	spec := in.PutSpec
	spec.Spot = spot
	spec.IV = stressedIV
	res, err := pricing.Price(spec, then)
	if err != nil {
		return math.Max(in.PutSpec.Strike-spot, 0)
	}
	return res.Price
}

func fundPL(dropPct float64, in Inputs) float64 {
	path := simulation.SimulateInverseFund(dropPct/100, in.Days, in.Leverage, in.Path, 1.0)
	return in.FundCapital * path.FundReturn
}

func putPL(dropPct float64, in Inputs) float64 {
	stressedIV := in.Stress.StressIV(in.PutSpec.IV, math.Abs(dropPct))
	value := putValueAfterDrop(dropPct, stressedIV, in)
	return (value - in.EntryPremium) * float64(in.Contracts) * sizing.ContractMultiplier
}

// winner tags the better instrument, with a tie inside the epsilon band on
// return percentage points.
func winner(fundReturnPct, putReturnPct, epsilonPct float64) string {
	if epsilonPct <= 0 {
		epsilonPct = 1.0
	}
	diff := fundReturnPct - putReturnPct
	switch {
	case math.Abs(diff) <= epsilonPct:
		return models.WinnerTie
	case diff > 0:
		return models.WinnerSQQQ
	default:
		return models.WinnerPuts
	}
}

// breakeven binary-searches the drop magnitude (percent, positive) at which
// the instrument's P/L crosses zero. Returns -1 when no crossing exists
// below a 95% drop.
func breakeven(pl func(dropMagnitudePct float64) float64) float64 {
	const lo0, hi0 = 0.01, 95.0

	if pl(lo0) >= 0 {
		return 0
	}
	if pl(hi0) < 0 {
		return -1
	}

	lo, hi := lo0, hi0
	for i := 0; i < 80; i++ {
		mid := (lo + hi) / 2
		if pl(mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
