package analyzers

import (
	"github.com/rustyeddy/minitrade/backtest"
	"github.com/rustyeddy/minitrade/broker"
)

// Drawdown measures peak-to-trough equity decline: the deepest drawdown as
// a fraction of the running peak, and the longest run of consecutive bars
// spent below a peak.
type Drawdown struct {
	maxDrawdown float64
	maxDuration int
	series      []float64
}

func NewDrawdown() backtest.Analyzer { return &Drawdown{} }

func (a *Drawdown) Name() string { return "drawdown" }

func (a *Drawdown) Run(curve []backtest.EquityPoint, _ []broker.Trade) {
	if len(curve) == 0 {
		return
	}

	a.series = make([]float64, len(curve))
	peak := curve[0].Equity
	duration := 0
	for i, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		dd := 0.0
		if peak > 0 {
			dd = 1 - p.Equity/peak
		}
		a.series[i] = dd
		if dd > a.maxDrawdown {
			a.maxDrawdown = dd
		}

		if dd > 0 {
			duration++
			if duration > a.maxDuration {
				a.maxDuration = duration
			}
		} else {
			duration = 0
		}
	}
}

func (a *Drawdown) Analysis() map[string]float64 {
	return map[string]float64{
		"max_drawdown":          a.maxDrawdown,
		"max_drawdown_duration": float64(a.maxDuration),
	}
}

// Series returns the per-bar drawdown fractions.
func (a *Drawdown) Series() []float64 { return a.series }
