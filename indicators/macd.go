package indicators

import (
	"fmt"

	"github.com/rustyeddy/minitrade/market"
)

// MACD is a streaming moving average convergence/divergence indicator.
// Value is the MACD line (fast EMA - slow EMA); Signal and Histogram expose
// the companion lines.
type MACD struct {
	fast      *EMA
	slow      *EMA
	signal    float64
	sigAlpha  float64
	sigPeriod int
	count     int
}

func NewMACD(fastPeriod, slowPeriod, signalPeriod int) *MACD {
	if signalPeriod < 1 {
		signalPeriod = 1
	}
	return &MACD{
		fast:      NewEMA(fastPeriod),
		slow:      NewEMA(slowPeriod),
		sigAlpha:  2.0 / float64(signalPeriod+1),
		sigPeriod: signalPeriod,
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fast.period, m.slow.period, m.sigPeriod)
}

func (m *MACD) Warmup() int { return m.slow.period }

func (m *MACD) Update(c market.Candle) {
	m.fast.Update(c)
	m.slow.Update(c)

	macd := m.fast.Value() - m.slow.Value()
	if m.count == 0 {
		m.signal = macd
	} else {
		m.signal += m.sigAlpha * (macd - m.signal)
	}
	m.count++
}

func (m *MACD) Ready() bool { return m.count >= m.slow.period }

func (m *MACD) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.fast.Value() - m.slow.Value()
}

func (m *MACD) Signal() float64 { return m.signal }

func (m *MACD) Histogram() float64 { return m.Value() - m.signal }

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal = 0
	m.count = 0
}
