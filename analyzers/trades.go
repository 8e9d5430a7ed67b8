package analyzers

import (
	"math"

	"github.com/rustyeddy/minitrade/backtest"
	"github.com/rustyeddy/minitrade/broker"
)

// Trades aggregates closed-trade statistics: counts, win rate, average and
// extreme PnL, profit factor, and average holding time.
type Trades struct {
	analysis map[string]float64
}

func NewTrades() backtest.Analyzer { return &Trades{} }

func (a *Trades) Name() string { return "trades" }

func (a *Trades) Run(_ []backtest.EquityPoint, trades []broker.Trade) {
	var (
		won, lost               int
		grossProfit, grossLoss  float64
		largestWin, largestLoss float64
		totalDuration           float64
	)

	for _, t := range trades {
		switch {
		case t.PnL > 0:
			won++
			grossProfit += t.PnL
		case t.PnL < 0:
			lost++
			grossLoss += t.PnL
		}
		if t.PnL > largestWin {
			largestWin = t.PnL
		}
		if t.PnL < largestLoss {
			largestLoss = t.PnL
		}
		totalDuration += t.Duration.Seconds()
	}

	total := len(trades)
	out := map[string]float64{
		"total":        float64(total),
		"won":          float64(won),
		"lost":         float64(lost),
		"largest_win":  largestWin,
		"largest_loss": largestLoss,
	}

	if total > 0 {
		out["win_rate"] = float64(won) / float64(total)
		out["avg_duration_seconds"] = totalDuration / float64(total)
	}
	if won > 0 {
		out["avg_profit"] = grossProfit / float64(won)
	}
	if lost > 0 {
		out["avg_loss"] = grossLoss / float64(lost)
	}

	switch {
	case grossLoss < 0:
		out["profit_factor"] = grossProfit / -grossLoss
	case grossProfit > 0:
		out["profit_factor"] = math.Inf(1)
	default:
		out["profit_factor"] = 0
	}

	a.analysis = out
}

func (a *Trades) Analysis() map[string]float64 { return a.analysis }
