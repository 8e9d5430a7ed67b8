package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/minitrade/market"
)

// ATR is a streaming average true range: the simple mean of the last
// `period` true ranges.
type ATR struct {
	period    int
	window    []float64
	sum       float64
	head      int
	count     int
	prevClose float64
}

func NewATR(period int) *ATR {
	if period < 1 {
		period = 1
	}
	return &ATR{
		period: period,
		window: make([]float64, period),
	}
}

func (a *ATR) Name() string { return fmt.Sprintf("ATR(%d)", a.period) }
func (a *ATR) Warmup() int  { return a.period }

func (a *ATR) Update(c market.Candle) {
	prev := a.prevClose
	if a.count == 0 {
		prev = c.Close
	}

	tr := math.Max(c.High-c.Low,
		math.Max(math.Abs(c.High-prev), math.Abs(c.Low-prev)))

	if a.count >= a.period {
		a.sum -= a.window[a.head]
	}
	a.window[a.head] = tr
	a.sum += tr
	a.head = (a.head + 1) % a.period
	if a.count < a.period {
		a.count++
	}

	a.prevClose = c.Close
}

func (a *ATR) Ready() bool { return a.count >= a.period }

func (a *ATR) Value() float64 {
	if !a.Ready() {
		return 0
	}
	return a.sum / float64(a.period)
}

func (a *ATR) Reset() {
	a.sum = 0
	a.head = 0
	a.count = 0
	a.prevClose = 0
	for i := range a.window {
		a.window[i] = 0
	}
}
