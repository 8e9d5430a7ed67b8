package indicators

import (
	"fmt"

	"github.com/rustyeddy/minitrade/market"
)

// EMA is a streaming exponential moving average over closing prices. It is
// seeded with the first value and smoothed with alpha = 2/(period+1), so a
// long enough series converges to the standard span-based EMA.
type EMA struct {
	period int
	alpha  float64
	ema    float64
	count  int
}

func NewEMA(period int) *EMA {
	if period < 1 {
		period = 1
	}
	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1),
	}
}

func (e *EMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }
func (e *EMA) Warmup() int  { return e.period }

func (e *EMA) Update(c market.Candle) {
	if e.count == 0 {
		e.ema = c.Close
	} else {
		e.ema += e.alpha * (c.Close - e.ema)
	}
	e.count++
}

func (e *EMA) Ready() bool { return e.count >= e.period }

func (e *EMA) Value() float64 {
	if e.count == 0 {
		return 0
	}
	return e.ema
}

func (e *EMA) Reset() {
	e.ema = 0
	e.count = 0
}
