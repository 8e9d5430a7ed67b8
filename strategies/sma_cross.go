package strategies

import (
	"github.com/rustyeddy/minitrade/backtest"
	"github.com/rustyeddy/minitrade/indicators"
)

func init() {
	Register("sma-cross", NewSMACross)
}

// SMACross trades a fast/slow SMA crossover on the primary feed:
// - enters long when the fast average crosses above the slow one
// - closes the position on the opposite cross
// It is long-only and enters only on a fresh cross.
type SMACross struct {
	backtest.Base

	FastPeriod int
	SlowPeriod int

	cross *indicators.CrossOver
}

// NewSMACross builds an SMACross from params "fast" (default 10) and
// "slow" (default 30).
func NewSMACross(p backtest.Params) backtest.Strategy {
	return &SMACross{
		FastPeriod: p.Int("fast", 10),
		SlowPeriod: p.Int("slow", 30),
	}
}

func (s *SMACross) Init() {
	fast := indicators.NewSMA(s.FastPeriod)
	slow := indicators.NewSMA(s.SlowPeriod)
	s.cross = indicators.NewCrossOver(fast, slow)
	s.Attach(fast, slow, s.cross)
}

func (s *SMACross) Next() {
	if !s.cross.Ready() {
		return
	}

	switch {
	case s.cross.Value() > 0 && s.Position().Size == 0:
		s.Buy(backtest.OrderSpec{})
	case s.cross.Value() < 0 && s.Position().Size > 0:
		s.ClosePosition(nil)
	}
}
