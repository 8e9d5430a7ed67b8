package backtest

import (
	"math"

	"github.com/rustyeddy/minitrade/feed"
)

// Sizer resolves an order size when the strategy did not specify one.
// Returned sizes are whole units, never negative.
type Sizer interface {
	Size(strat *Base, data *feed.Feed, isBuy bool) float64
}

// FixedSizer always stakes the same number of units.
type FixedSizer struct {
	Stake int
}

func (s FixedSizer) Size(_ *Base, _ *feed.Feed, _ bool) float64 {
	if s.Stake < 0 {
		return 0
	}
	return float64(s.Stake)
}

// PercentSizer allocates a percentage of available cash at the current
// close. Buys reserve room for the commission so the resulting order is
// affordable at the matched price.
type PercentSizer struct {
	Percent float64 // 0.95 allocates 95% of cash
}

func (s PercentSizer) Size(strat *Base, data *feed.Feed, isBuy bool) float64 {
	if s.Percent <= 0 {
		return 0
	}

	price := data.Close().At(0)
	if price <= 0 {
		return 0
	}

	alloc := strat.Brokr.Cash() * s.Percent
	denom := price
	if isBuy {
		denom = price * (1 + strat.Brokr.Commission())
	}

	units := math.Floor(alloc / denom)
	if units < 0 {
		return 0
	}
	return units
}
