// Package simulation models the path-dependent behavior of a leveraged
// inverse fund and the volatility expansion of a market selloff.
package simulation

import (
	"math"
	"math/rand"
)

// PathStrategy decomposes a target cumulative index move into day-by-day
// returns. The decomposition matters: daily compounding of an inverse fund
// over a choppy path erodes value (volatility drag) in a way the smooth path
// does not.
type PathStrategy interface {
	// DailyReturns returns per-day index returns whose compounded product
	// equals 1 + targetMove (targetMove as a decimal, e.g. -0.10).
	DailyReturns(targetMove float64, days int) []float64
	Name() string
}

// LinearPath is the deterministic default: a constant daily return that
// compounds exactly to the target move.
type LinearPath struct{}

// DailyReturns returns days identical returns of (1+target)^(1/days) - 1.
func (LinearPath) DailyReturns(targetMove float64, days int) []float64 {
	if days <= 0 {
		return nil
	}
	daily := math.Pow(1+targetMove, 1/float64(days)) - 1
	returns := make([]float64, days)
	for i := range returns {
		returns[i] = daily
	}
	return returns
}

func (LinearPath) Name() string { return "linear" }

// NoisyPath overlays random daily volatility around the same cumulative
// target, for a more realistic drag estimate. The overlay is deterministic
// only under an explicit seed; callers opt in knowingly.
type NoisyPath struct {
	Seed     int64
	DailyVol float64 // stddev of the daily noise, e.g. 0.012
}

// DailyReturns draws noise around the smooth path, then renormalizes so the
// compounded product still hits the cumulative target exactly.
func (n NoisyPath) DailyReturns(targetMove float64, days int) []float64 {
	if days <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(n.Seed))
	base := math.Pow(1+targetMove, 1/float64(days)) - 1

	returns := make([]float64, days)
	product := 1.0
	for i := range returns {
		r := base + rng.NormFloat64()*n.DailyVol
		if r <= -0.99 {
			r = -0.99
		}
		returns[i] = r
		product *= 1 + r
	}

	// Renormalize multiplicatively; the noise shape survives, the endpoint
	// is exact.
	correction := math.Pow((1+targetMove)/product, 1/float64(days))
	for i := range returns {
		returns[i] = (1+returns[i])*correction - 1
	}

	return returns
}

func (n NoisyPath) Name() string { return "noisy" }
