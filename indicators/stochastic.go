package indicators

import (
	"fmt"

	"github.com/rustyeddy/minitrade/market"
)

// Stochastic is a streaming stochastic oscillator. Value is %K over the last
// kPeriod bars; D is the dPeriod simple average of %K.
type Stochastic struct {
	kPeriod int
	dPeriod int

	highs  []float64
	lows   []float64
	closes []float64
	head   int
	count  int

	ks     []float64
	kHead  int
	kCount int
}

func NewStochastic(kPeriod, dPeriod int) *Stochastic {
	if kPeriod < 1 {
		kPeriod = 1
	}
	if dPeriod < 1 {
		dPeriod = 1
	}
	return &Stochastic{
		kPeriod: kPeriod,
		dPeriod: dPeriod,
		highs:   make([]float64, kPeriod),
		lows:    make([]float64, kPeriod),
		closes:  make([]float64, kPeriod),
		ks:      make([]float64, dPeriod),
	}
}

func (s *Stochastic) Name() string {
	return fmt.Sprintf("Stochastic(%d,%d)", s.kPeriod, s.dPeriod)
}

func (s *Stochastic) Warmup() int { return s.kPeriod }

func (s *Stochastic) Update(c market.Candle) {
	s.highs[s.head] = c.High
	s.lows[s.head] = c.Low
	s.closes[s.head] = c.Close
	s.head = (s.head + 1) % s.kPeriod
	if s.count < s.kPeriod {
		s.count++
	}

	if s.count >= s.kPeriod {
		s.ks[s.kHead] = s.k()
		s.kHead = (s.kHead + 1) % s.dPeriod
		if s.kCount < s.dPeriod {
			s.kCount++
		}
	}
}

func (s *Stochastic) Ready() bool { return s.count >= s.kPeriod }

// Value returns %K. A flat high-low window yields 0.
func (s *Stochastic) Value() float64 {
	if !s.Ready() {
		return 0
	}
	return s.k()
}

// D returns %D, the dPeriod average of %K, or 0 until enough %K values have
// been observed.
func (s *Stochastic) D() float64 {
	if s.kCount < s.dPeriod {
		return 0
	}
	sum := 0.0
	for _, v := range s.ks {
		sum += v
	}
	return sum / float64(s.dPeriod)
}

func (s *Stochastic) k() float64 {
	hi := s.highs[0]
	lo := s.lows[0]
	for i := 1; i < s.kPeriod; i++ {
		if s.highs[i] > hi {
			hi = s.highs[i]
		}
		if s.lows[i] < lo {
			lo = s.lows[i]
		}
	}

	denom := hi - lo
	if denom == 0 {
		return 0
	}

	// The newest close is the slot just before head.
	last := s.closes[(s.head+s.kPeriod-1)%s.kPeriod]
	return (last - lo) * 100 / denom
}

func (s *Stochastic) Reset() {
	s.head = 0
	s.count = 0
	s.kHead = 0
	s.kCount = 0
	for i := range s.highs {
		s.highs[i] = 0
		s.lows[i] = 0
		s.closes[i] = 0
	}
	for i := range s.ks {
		s.ks[i] = 0
	}
}
