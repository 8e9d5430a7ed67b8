package strategies

import (
	"github.com/rustyeddy/minitrade/backtest"
	"github.com/rustyeddy/minitrade/indicators"
)

func init() {
	Register("rsi-reversal", NewRSIReversal)
}

// RSIReversal is a mean-reversion strategy: it buys when RSI drops below
// the oversold line and exits once RSI recovers past the overbought line.
type RSIReversal struct {
	backtest.Base

	Period     int
	Oversold   float64
	Overbought float64

	rsi *indicators.RSI
}

// NewRSIReversal builds an RSIReversal from params "period" (default 14),
// "oversold" (default 30) and "overbought" (default 70).
func NewRSIReversal(p backtest.Params) backtest.Strategy {
	return &RSIReversal{
		Period:     p.Int("period", 14),
		Oversold:   p.Float("oversold", 30),
		Overbought: p.Float("overbought", 70),
	}
}

func (s *RSIReversal) Init() {
	s.rsi = indicators.NewRSI(s.Period)
	s.Attach(s.rsi)
}

func (s *RSIReversal) Next() {
	if !s.rsi.Ready() {
		return
	}

	switch {
	case s.rsi.Value() < s.Oversold && s.Position().Size == 0:
		s.Buy(backtest.OrderSpec{})
	case s.rsi.Value() > s.Overbought && s.Position().Size > 0:
		s.ClosePosition(nil)
	}
}
