package indicators

import (
	"fmt"

	"github.com/rustyeddy/minitrade/market"
)

// SMA is a streaming simple moving average over closing prices.
type SMA struct {
	period int
	window []float64
	sum    float64
	head   int
	count  int
}

func NewSMA(period int) *SMA {
	if period < 1 {
		period = 1
	}
	return &SMA{
		period: period,
		window: make([]float64, period),
	}
}

func (s *SMA) Name() string { return fmt.Sprintf("SMA(%d)", s.period) }
func (s *SMA) Warmup() int  { return s.period }

func (s *SMA) Update(c market.Candle) {
	if s.count >= s.period {
		s.sum -= s.window[s.head]
	}
	s.window[s.head] = c.Close
	s.sum += c.Close
	s.head = (s.head + 1) % s.period
	if s.count < s.period {
		s.count++
	}
}

func (s *SMA) Ready() bool { return s.count >= s.period }

func (s *SMA) Value() float64 {
	if !s.Ready() {
		return 0
	}
	return s.sum / float64(s.period)
}

func (s *SMA) Reset() {
	s.sum = 0
	s.head = 0
	s.count = 0
	for i := range s.window {
		s.window[i] = 0
	}
}
