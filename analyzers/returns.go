// Package analyzers provides the built-in post-run analyzers: returns,
// Sharpe ratio, drawdown, and trade statistics. All annualization assumes
// 252 daily bars per year.
package analyzers

import (
	"math"

	"github.com/rustyeddy/minitrade/backtest"
	"github.com/rustyeddy/minitrade/broker"
)

const periodsPerYear = 252.0

// Returns computes total and annualized return from the equity curve.
type Returns struct {
	total  float64
	annual float64
	perBar []float64
}

func NewReturns() backtest.Analyzer { return &Returns{} }

func (a *Returns) Name() string { return "returns" }

func (a *Returns) Run(curve []backtest.EquityPoint, _ []broker.Trade) {
	if len(curve) < 2 || curve[0].Equity == 0 {
		return
	}

	a.perBar = make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		a.perBar = append(a.perBar, curve[i].Equity/curve[i-1].Equity-1)
	}

	a.total = curve[len(curve)-1].Equity/curve[0].Equity - 1
	a.annual = math.Pow(1+a.total, periodsPerYear/float64(len(a.perBar))) - 1
}

func (a *Returns) Analysis() map[string]float64 {
	return map[string]float64{
		"total_return":  a.total,
		"annual_return": a.annual,
	}
}

// PerBar returns the simple per-bar return series.
func (a *Returns) PerBar() []float64 { return a.perBar }
