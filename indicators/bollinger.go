package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/minitrade/market"
)

// Bollinger computes Bollinger Bands over closing prices. Value is the
// middle band (SMA); Top and Bottom are devFactor population standard
// deviations away.
type Bollinger struct {
	period    int
	devFactor float64
	window    []float64
	head      int
	count     int
}

func NewBollinger(period int, devFactor float64) *Bollinger {
	if period < 1 {
		period = 1
	}
	if devFactor <= 0 {
		devFactor = 2.0
	}
	return &Bollinger{
		period:    period,
		devFactor: devFactor,
		window:    make([]float64, period),
	}
}

func (b *Bollinger) Name() string {
	return fmt.Sprintf("Bollinger(%d,%.1f)", b.period, b.devFactor)
}

func (b *Bollinger) Warmup() int { return b.period }

func (b *Bollinger) Update(c market.Candle) {
	b.window[b.head] = c.Close
	b.head = (b.head + 1) % b.period
	if b.count < b.period {
		b.count++
	}
}

func (b *Bollinger) Ready() bool { return b.count >= b.period }

func (b *Bollinger) Value() float64 { return b.mean() }

func (b *Bollinger) Top() float64 { return b.mean() + b.devFactor*b.stddev() }

func (b *Bollinger) Bottom() float64 { return b.mean() - b.devFactor*b.stddev() }

func (b *Bollinger) mean() float64 {
	if !b.Ready() {
		return 0
	}
	sum := 0.0
	for _, v := range b.window {
		sum += v
	}
	return sum / float64(b.period)
}

func (b *Bollinger) stddev() float64 {
	if !b.Ready() {
		return 0
	}
	mean := b.mean()
	variance := 0.0
	for _, v := range b.window {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(b.period))
}

func (b *Bollinger) Reset() {
	b.head = 0
	b.count = 0
	for i := range b.window {
		b.window[i] = 0
	}
}
