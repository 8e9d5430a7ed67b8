package backtest

import (
	"time"

	"github.com/rustyeddy/minitrade/broker"
)

// EquityPoint is one sample of the equity curve: account value after a bar
// was fully processed.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// Analyzer post-processes a finished run: the equity curve plus the
// strategy's closed-trade log. Analyzers never see a run in progress.
type Analyzer interface {
	Name() string
	Run(curve []EquityPoint, trades []broker.Trade)
	Analysis() map[string]float64
}
