package indicators

import (
	"fmt"

	"github.com/rustyeddy/minitrade/market"
)

// CrossOver signals when one indicator crosses another: +1 on an up-cross,
// -1 on a down-cross, 0 otherwise.
//
// CrossOver reads its inputs but does not drive them; attach the inputs to
// the strategy before the crossover so they are updated first each bar.
type CrossOver struct {
	a, b Indicator

	prev     float64
	havePrev bool
	signal   float64
}

func NewCrossOver(a, b Indicator) *CrossOver {
	return &CrossOver{a: a, b: b}
}

func (c *CrossOver) Name() string {
	return fmt.Sprintf("CrossOver(%s,%s)", c.a.Name(), c.b.Name())
}

// Warmup covers both inputs: a cross is meaningful only once both sides are
// warmed up.
func (c *CrossOver) Warmup() int {
	if w := c.a.Warmup(); w > c.b.Warmup() {
		return w
	}
	return c.b.Warmup()
}

func (c *CrossOver) Update(_ market.Candle) {
	if !c.a.Ready() || !c.b.Ready() {
		return
	}

	diff := c.a.Value() - c.b.Value()
	if !c.havePrev {
		c.prev = diff
		c.havePrev = true
		c.signal = 0
		return
	}

	switch {
	case c.prev <= 0 && diff > 0:
		c.signal = 1
	case c.prev >= 0 && diff < 0:
		c.signal = -1
	default:
		c.signal = 0
	}
	c.prev = diff
}

func (c *CrossOver) Ready() bool { return c.havePrev }

func (c *CrossOver) Value() float64 { return c.signal }

func (c *CrossOver) Reset() {
	c.prev = 0
	c.havePrev = false
	c.signal = 0
}
