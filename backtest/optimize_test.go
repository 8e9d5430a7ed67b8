package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sizedBuyer buys "size" units on its first decision bar. With rising test
// data, bigger sizes finish with more equity.
type sizedBuyer struct {
	Base
	size   float64
	bought bool
}

func newSizedBuyer(p Params) Strategy {
	return &sizedBuyer{size: float64(p.Int("size", 0))}
}

func (s *sizedBuyer) Next() {
	if s.size > 0 && !s.bought {
		s.bought = true
		s.Buy(OrderSpec{Size: s.size})
	}
}

func TestOptimizeCombinationCount(t *testing.T) {
	e := New()
	e.AddData(testFeed(t, 5), "")
	e.OptStrategy(newSizedBuyer, Grid{
		{Name: "size", Values: Ints(1, 2, 3)},
		{Name: "mode", Values: Ints(0, 1)},
	})

	results, err := e.Optimize()
	require.NoError(t, err)
	assert.Len(t, results, 6)
}

func TestOptimizeRanksByFinalEquity(t *testing.T) {
	e := New()
	e.SetCommission(0)
	e.AddData(testFeed(t, 10), "")
	e.OptStrategy(newSizedBuyer, Grid{
		{Name: "size", Values: Ints(1, 5, 3)},
	})

	results, err := e.Optimize()
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Rising prices: the biggest position wins.
	assert.Equal(t, 5, results[0].Params.Int("size", 0))
	assert.Equal(t, 3, results[1].Params.Int("size", 0))
	assert.Equal(t, 1, results[2].Params.Int("size", 0))

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].FinalEquity, results[i].FinalEquity)
	}
}

func TestOptimizeStableTieOrder(t *testing.T) {
	e := New()
	e.AddData(testFeed(t, 5), "")

	// size 0 never trades: every combination ties at starting cash, so the
	// ranking must preserve grid generation order.
	e.OptStrategy(newSizedBuyer, Grid{
		{Name: "x", Values: Ints(1, 2, 3, 4)},
	})

	results, err := e.Optimize()
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, i+1, r.Params.Int("x", 0))
		assert.Equal(t, 10000.0, r.FinalEquity)
	}
}

func TestOptimizeIsolation(t *testing.T) {
	e := New()
	e.SetCommission(0)
	f := e.AddData(testFeed(t, 8), "")
	e.OptStrategy(newSizedBuyer, Grid{
		{Name: "size", Values: Ints(2, 4)},
	})

	results, err := e.Optimize()
	require.NoError(t, err)

	// The registered feed is cloned per combination, never consumed.
	assert.False(t, f.Started())

	// Each combination ran against its own broker and kept its own state.
	for _, r := range results {
		s, ok := r.Strategy.(*sizedBuyer)
		require.True(t, ok)
		assert.True(t, s.bought)
		assert.Equal(t, r.Params.Float("size", 0), s.Brokr.Position("data0").Size)
	}
	assert.NotSame(t, results[0].Strategy, results[1].Strategy)
}

func TestOptimizeSingleCombination(t *testing.T) {
	e := New()
	e.AddData(testFeed(t, 5), "")
	e.OptStrategy(newSizedBuyer, Grid{
		{Name: "size", Values: Ints(1)},
	})

	results, err := e.Optimize()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Params.Int("size", 0))
}
