package analyzers

import (
	"math"

	"github.com/rustyeddy/minitrade/backtest"
	"github.com/rustyeddy/minitrade/broker"
)

// Sharpe computes the annualized Sharpe ratio from per-bar equity returns.
type Sharpe struct {
	// RiskFree is the annual risk-free rate subtracted from the annualized
	// return; defaults to 2%.
	RiskFree float64

	ratio float64
}

func NewSharpe() backtest.Analyzer { return &Sharpe{RiskFree: 0.02} }

func (a *Sharpe) Name() string { return "sharpe" }

func (a *Sharpe) Run(curve []backtest.EquityPoint, _ []broker.Trade) {
	if len(curve) < 2 || curve[0].Equity == 0 {
		return
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		returns = append(returns, curve[i].Equity/curve[i-1].Equity-1)
	}
	if len(returns) < 2 {
		return
	}

	total := curve[len(curve)-1].Equity/curve[0].Equity - 1
	annual := math.Pow(1+total, periodsPerYear/float64(len(returns))) - 1

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	// Sample standard deviation, then annualized.
	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	vol := math.Sqrt(variance) * math.Sqrt(periodsPerYear)
	if vol == 0 {
		return
	}

	a.ratio = (annual - a.RiskFree) / vol
}

func (a *Sharpe) Analysis() map[string]float64 {
	return map[string]float64{"sharpe_ratio": a.ratio}
}
