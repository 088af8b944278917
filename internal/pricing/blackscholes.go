// Package pricing implements the option pricing kernel: closed-form put
// valuation with dividend-yield carry, analytic Greeks, and an
// American-exercise intrinsic floor.
//
// The closed-form formula assumes European exercise. Every contract modeled
// here is American-style, so the kernel floors the result at intrinsic value:
// a deep in-the-money put near expiration can otherwise price below what
// immediate exercise pays, a state that is arbitraged away in real markets.
// True American pricing needs a lattice or finite-difference method; the
// floor is a deliberate, documented simplification.
package pricing

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"portfolio-hedger/internal/errors"
	"portfolio-hedger/internal/models"
)

// DaysPerYear converts day counts to year fractions.
const DaysPerYear = 365.0

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// ValidateSpec checks a contract spec against the valuation date. It returns
// an *errors.InvalidSpecError naming the offending field.
func ValidateSpec(spec models.OptionContractSpec, asOf time.Time) error {
	if spec.Strike <= 0 {
		return errors.NewInvalidSpecError("strike", spec.Strike, "strike must be positive")
	}
	if spec.Spot <= 0 {
		return errors.NewInvalidSpecError("spot", spec.Spot, "spot price must be positive")
	}
	if spec.IV < 0 {
		return errors.NewInvalidSpecError("iv", spec.IV, "implied volatility must be non-negative")
	}
	if !spec.Expiry.After(asOf) {
		return errors.NewInvalidSpecError("expiry", spec.Expiry.Format("2006-01-02"),
			"expiration must be after the valuation date "+asOf.Format("2006-01-02"))
	}
	return nil
}

// Price values a put contract as of the given date.
func Price(spec models.OptionContractSpec, asOf time.Time) (models.PricingResult, error) {
	if err := ValidateSpec(spec, asOf); err != nil {
		return models.PricingResult{}, err
	}

	t := spec.Expiry.Sub(asOf).Hours() / 24 / DaysPerYear
	intrinsic := math.Max(spec.Strike-spec.Spot, 0)

	s, k := spec.Spot, spec.Strike
	r, q, sigma := spec.RiskFree, spec.DividendYield, spec.IV
	sqrtT := math.Sqrt(t)
	volT := sigma * sqrtT

	var formula float64
	var res models.PricingResult

	if volT < 1e-12 {
		// Degenerate diffusion: the put collapses to its discounted
		// forward intrinsic value.
		formula = math.Max(k*math.Exp(-r*t)-s*math.Exp(-q*t), 0)
		res = models.PricingResult{
			Price: formula,
			Rho:   -k * t * math.Exp(-r*t),
		}
		if k*math.Exp(-r*t) > s*math.Exp(-q*t) {
			res.Delta = -math.Exp(-q * t)
		}
	} else {
		d1 := (math.Log(s/k) + (r-q+sigma*sigma/2)*t) / volT
		d2 := d1 - volT

		nNegD1 := stdNormal.CDF(-d1)
		nNegD2 := stdNormal.CDF(-d2)
		pdfD1 := stdNormal.Prob(d1)

		discR := math.Exp(-r * t)
		discQ := math.Exp(-q * t)

		formula = k*discR*nNegD2 - s*discQ*nNegD1

		thetaAnnual := -s*discQ*pdfD1*sigma/(2*sqrtT) + r*k*discR*nNegD2 - q*s*discQ*nNegD1

		res = models.PricingResult{
			Price: formula,
			Delta: -discQ * nNegD1,
			Gamma: discQ * pdfD1 / (s * volT),
			Theta: thetaAnnual / DaysPerYear,
			Vega:  s * discQ * pdfD1 * sqrtT,
			Rho:   -k * t * discR * nNegD2,
		}
	}

	if res.Price < intrinsic {
		// American floor. A position pinned at intrinsic value has no
		// residual time-value sensitivity.
		res.Price = intrinsic
		res.Delta = -1
		res.Gamma = 0
		res.Vega = 0
		res.Theta = 0
		res.Rho = -k * t * math.Exp(-r*t)
		res.FloorApplied = true
	}

	res.Intrinsic = intrinsic
	res.TimeValue = res.Price - intrinsic
	return res, nil
}

// Premium is a convenience wrapper returning only the theoretical price.
func Premium(spec models.OptionContractSpec, asOf time.Time) (float64, error) {
	res, err := Price(spec, asOf)
	if err != nil {
		return 0, err
	}
	return res.Price, nil
}
