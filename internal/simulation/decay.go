package simulation

// FundPath is a simulated inverse-fund position path.
type FundPath struct {
	StartNAV     float64   `json:"start_nav"`
	EndNAV       float64   `json:"end_nav"`
	IndexReturn  float64   `json:"index_return"`
	FundReturn   float64   `json:"fund_return"`
	Drag         float64   `json:"drag"` // actual minus naive -leverage*index
	DailyReturns []float64 `json:"-"`
}

// CompoundInverse compounds an inverse fund's NAV over explicit daily index
// returns. For each trading day with index return r, the fund's daily
// return is -leverage*r; the NAV compounds day by day. The tempting
// shortcut -leverage*totalReturn ignores this compounding and is wrong on
// any non-smooth path.
func CompoundInverse(indexReturns []float64, leverage float64) float64 {
	nav := 1.0
	for _, r := range indexReturns {
		nav *= 1 - leverage*r
		if nav <= 0 {
			return -1 // wiped out; the position cannot lose more than everything
		}
	}
	return nav - 1
}

// SimulateInverseFund decomposes the target cumulative index move with the
// given path strategy and compounds an inverse fund position along it.
func SimulateInverseFund(targetMove float64, days int, leverage float64,
	strategy PathStrategy, startNAV float64) FundPath {

	returns := strategy.DailyReturns(targetMove, days)
	fundReturn := CompoundInverse(returns, leverage)

	naive := -leverage * targetMove

	return FundPath{
		StartNAV:     startNAV,
		EndNAV:       startNAV * (1 + fundReturn),
		IndexReturn:  targetMove,
		FundReturn:   fundReturn,
		Drag:         fundReturn - naive,
		DailyReturns: returns,
	}
}
