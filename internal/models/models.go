// Package models defines the shared value types used across the hedging core.
package models

import (
	"fmt"
	"time"
)

// Disclaimer is the fixed educational disclaimer carried by every output,
// human-readable or machine-parsable, successful or partial.
const Disclaimer = "Educational analysis only. Not investment advice. " +
	"Options and leveraged inverse funds carry substantial risk of loss."

// DecayNote is the required statement attached to every comparison output:
// the decay simulation approximates a path-dependent phenomenon and is not
// a guarantee.
const DecayNote = "Inverse-fund results use a simulated day-by-day compounding path. " +
	"Volatility drag is path-dependent; this is a deliberate approximation, not a guarantee."

// OptionContractSpec describes a put contract for valuation.
// Time inputs are dates; year fractions are derived as days/365.
type OptionContractSpec struct {
	Underlying    string    `json:"underlying"`
	Strike        float64   `json:"strike"`
	Expiry        time.Time `json:"expiry"`
	Spot          float64   `json:"spot"`
	IV            float64   `json:"iv"`             // annualized decimal, e.g. 0.30
	RiskFree      float64   `json:"risk_free"`      // annualized decimal
	DividendYield float64   `json:"dividend_yield"` // annualized decimal
}

// DTE returns whole days to expiration from asOf.
func (s OptionContractSpec) DTE(asOf time.Time) int {
	return int(s.Expiry.Sub(asOf).Hours() / 24)
}

// PricingResult holds a theoretical valuation and its sensitivities.
// Invariants: Price >= Intrinsic and Price == Intrinsic + TimeValue.
type PricingResult struct {
	Price     float64 `json:"price"`
	Intrinsic float64 `json:"intrinsic"`
	TimeValue float64 `json:"time_value"`
	Delta     float64 `json:"delta"`
	Gamma     float64 `json:"gamma"`
	Theta     float64 `json:"theta"` // per calendar day
	Vega      float64 `json:"vega"`  // per 1.00 change in IV
	Rho       float64 `json:"rho"`
	// FloorApplied reports that the American-exercise intrinsic floor was
	// active, i.e. the closed-form value fell below intrinsic.
	FloorApplied bool `json:"floor_applied"`
}

// HedgeSizeResult is the outcome of a sizing run.
type HedgeSizeResult struct {
	PortfolioValue    float64                `json:"portfolio_value"`
	TotalContracts    int                    `json:"total_contracts"`
	Allocations       []UnderlyingAllocation `json:"allocations"`
	TotalMonthlyCost  float64                `json:"total_monthly_cost"`
	MonthlyBudget     float64                `json:"monthly_budget"`
	BudgetUtilization float64                `json:"budget_utilization_percent"`
	BudgetExceeded    bool                   `json:"budget_exceeded"`
}

// UnderlyingAllocation is the per-underlying share of a sizing run.
type UnderlyingAllocation struct {
	Underlying       string             `json:"underlying"`
	Contracts        int                `json:"contracts"`
	Spec             OptionContractSpec `json:"spec"`
	EstimatedPremium float64            `json:"estimated_premium"`
	MonthlyCost      float64            `json:"monthly_cost"`
	// NoData marks an underlying with no usable market quote. The contract
	// allocation still counts; the cost estimate is simply unavailable.
	NoData bool   `json:"no_data,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Quote is a point-in-time market snapshot for one ticker, supplied by the
// caller. The numeric core never fetches data itself.
type Quote struct {
	Underlying    string  `json:"underlying"`
	Spot          float64 `json:"spot"`
	IV            float64 `json:"iv"`
	DividendYield float64 `json:"dividend_yield"`
}

// ChainQuote is one listed put contract in an options-chain snapshot.
type ChainQuote struct {
	Strike  float64   `json:"strike"`
	Expiry  time.Time `json:"expiry"`
	Premium float64   `json:"premium"`
	IV      float64   `json:"iv"`
}

// OptionChain is an options-chain snapshot for a single underlying.
type OptionChain struct {
	Underlying string       `json:"underlying"`
	AsOf       time.Time    `json:"as_of"`
	Spot       float64      `json:"spot"`
	Puts       []ChainQuote `json:"puts"`
}

// PositionKey identifies a position in the active store.
func PositionKey(underlying string, strike float64, expiry time.Time) string {
	return fmt.Sprintf("%s|%.2f|%s", underlying, strike, expiry.Format("2006-01-02"))
}
