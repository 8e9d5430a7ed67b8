package indicators

import (
	"fmt"

	"github.com/rustyeddy/minitrade/market"
)

// RSI is a streaming relative strength index. Average gain and loss are
// exponentially smoothed with alpha = 2/(period+1).
type RSI struct {
	period    int
	alpha     float64
	avgGain   float64
	avgLoss   float64
	prevClose float64
	count     int
}

func NewRSI(period int) *RSI {
	if period < 1 {
		period = 1
	}
	return &RSI{
		period: period,
		alpha:  2.0 / float64(period+1),
	}
}

func (r *RSI) Name() string { return fmt.Sprintf("RSI(%d)", r.period) }
func (r *RSI) Warmup() int  { return r.period }

func (r *RSI) Update(c market.Candle) {
	if r.count == 0 {
		// First bar has no delta; seed the averages at zero.
		r.prevClose = c.Close
		r.count++
		return
	}

	delta := c.Close - r.prevClose
	r.prevClose = c.Close

	var gain, loss float64
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	r.avgGain += r.alpha * (gain - r.avgGain)
	r.avgLoss += r.alpha * (loss - r.avgLoss)
	r.count++
}

func (r *RSI) Ready() bool { return r.count >= r.period }

// Value returns the RSI in [0, 100]. With no observed losses the index
// saturates at 100.
func (r *RSI) Value() float64 {
	if r.count == 0 {
		return 0
	}
	if r.avgLoss == 0 {
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}

func (r *RSI) Reset() {
	r.avgGain = 0
	r.avgLoss = 0
	r.prevClose = 0
	r.count = 0
}
