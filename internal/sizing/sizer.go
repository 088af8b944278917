// Package sizing turns a portfolio value and hedging preferences into a
// recommended protective-put allocation.
package sizing

import (
	"math"
	"time"

	"portfolio-hedger/internal/config"
	"portfolio-hedger/internal/errors"
	"portfolio-hedger/internal/marketdata"
	"portfolio-hedger/internal/models"
	"portfolio-hedger/internal/pricing"
)

const (
	// ContractMultiplier is the standard US equity-option multiplier.
	ContractMultiplier = 100
	// BaseUnit is the portfolio slice one ratio unit of contracts covers.
	BaseUnit = 50_000.0
	// MonthDays normalizes premiums to a 30-day month.
	MonthDays = 30.0
)

// Options are call-level overrides. A non-zero field replaces the
// corresponding configuration value wholesale; there is no per-field merge
// beyond that boundary.
type Options struct {
	PortfolioValue float64
	TargetDTE      int
	Underlyings    []string
	MonthlyBudget  float64
}

// Size computes the recommended contract allocation. Underlyings missing
// from the snapshot are still allocated contracts but carry a no-data marker
// instead of a cost estimate; the rest of the batch is unaffected.
//
// The result is returned even when the budget is exceeded; in that case the
// returned warning is an *errors.BudgetWarning and the caller decides how to
// surface it.
func Size(cfg config.HedgeConfig, market config.MarketConfig, snap *marketdata.Snapshot,
	asOf time.Time, opts Options) (models.HedgeSizeResult, *errors.BudgetWarning, error) {

	h := applyOverrides(cfg, opts)

	portfolioValue := opts.PortfolioValue
	if portfolioValue <= 0 {
		portfolioValue = h.DefaultPortfolioValue
	}
	if portfolioValue <= 0 {
		return models.HedgeSizeResult{}, nil, errors.NewInsufficientInputError(
			"portfolio_value",
			"pass --portfolio-value or set hedging.default_portfolio_value in config.toml")
	}

	total := int(math.Floor(portfolioValue / (h.ContractsPer50K * BaseUnit)))

	result := models.HedgeSizeResult{
		PortfolioValue: portfolioValue,
		TotalContracts: total,
		MonthlyBudget:  h.MonthlyBudget,
	}

	counts := distribute(total, len(h.Underlyings))

	for i, underlying := range h.Underlyings {
		alloc := models.UnderlyingAllocation{
			Underlying: underlying,
			Contracts:  counts[i],
		}

		quote, err := snap.Quote(underlying)
		if err != nil {
			alloc.NoData = true
			alloc.Reason = err.Error()
			result.Allocations = append(result.Allocations, alloc)
			continue
		}

		spec := RepresentativeSpec(h, market, quote, asOf)
		alloc.Spec = spec

		premium, err := pricing.Premium(spec, asOf)
		if err != nil {
			alloc.NoData = true
			alloc.Reason = err.Error()
			result.Allocations = append(result.Allocations, alloc)
			continue
		}

		alloc.EstimatedPremium = premium
		// A target-DTE premium scaled to a 30-day month.
		alloc.MonthlyCost = premium * float64(alloc.Contracts) * ContractMultiplier *
			(MonthDays / float64(h.TargetDTE))
		result.TotalMonthlyCost += alloc.MonthlyCost

		result.Allocations = append(result.Allocations, alloc)
	}

	var warning *errors.BudgetWarning
	if h.MonthlyBudget > 0 {
		result.BudgetUtilization = result.TotalMonthlyCost / h.MonthlyBudget * 100
		if result.BudgetUtilization > 100 {
			result.BudgetExceeded = true
			warning = errors.NewBudgetWarning(result.TotalMonthlyCost, h.MonthlyBudget,
				result.BudgetUtilization)
		}
	}

	return result, warning, nil
}

// RepresentativeSpec builds the contract spec the sizer prices for an
// underlying: target DTE out, strike at the OTM-band midpoint.
func RepresentativeSpec(h config.HedgeConfig, market config.MarketConfig,
	quote models.Quote, asOf time.Time) models.OptionContractSpec {

	iv := quote.IV
	if iv <= 0 {
		iv = market.DefaultIV
	}

	return models.OptionContractSpec{
		Underlying:    quote.Underlying,
		Strike:        math.Round(quote.Spot * (1 - h.OTMMidpoint())),
		Expiry:        asOf.AddDate(0, 0, h.TargetDTE),
		Spot:          quote.Spot,
		IV:            iv,
		RiskFree:      market.RiskFreeRate,
		DividendYield: quote.DividendYield,
	}
}

// distribute splits total contracts across n underlyings by integer
// division, assigning the remainder to the first (primary) underlying:
// 5 contracts over two underlyings yields 3/2, not 2.5/2.5.
func distribute(total, n int) []int {
	counts := make([]int, n)
	if n == 0 || total <= 0 {
		return counts
	}
	base := total / n
	for i := range counts {
		counts[i] = base
	}
	counts[0] += total % n
	return counts
}

func applyOverrides(cfg config.HedgeConfig, opts Options) config.HedgeConfig {
	h := cfg
	if opts.TargetDTE > 0 {
		h.TargetDTE = opts.TargetDTE
	}
	if len(opts.Underlyings) > 0 {
		h.Underlyings = opts.Underlyings
	}
	if opts.MonthlyBudget > 0 {
		h.MonthlyBudget = opts.MonthlyBudget
	}
	return h
}
