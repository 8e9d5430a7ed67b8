package backtest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/minitrade/broker"
	"github.com/rustyeddy/minitrade/feed"
	"github.com/rustyeddy/minitrade/indicators"
	"github.com/rustyeddy/minitrade/journal"
	"github.com/rustyeddy/minitrade/market"
)

func testFeed(t *testing.T, n int) *feed.Feed {
	t.Helper()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]market.Candle, n)
	for i := range candles {
		px := 100.0 + float64(i)
		candles[i] = market.Candle{
			Open:   px,
			High:   px + 1,
			Low:    px - 1,
			Close:  px + 0.5,
			Volume: 1000,
			Time:   base.Add(time.Duration(i) * time.Hour),
		}
	}

	f, err := feed.New("test", candles)
	require.NoError(t, err)
	return f
}

// probe counts lifecycle calls and records every order notification. Its
// warmup comes from an attached SMA.
type probe struct {
	Base

	warmupPeriod int
	buySize      float64 // buy this many units on the first Next, 0 = never

	initCalls  int
	startCalls int
	stopCalls  int
	nextCalls  int
	statuses   []broker.Status

	bought bool
}

func (p *probe) Init() {
	p.initCalls++
	if p.warmupPeriod > 0 {
		p.Attach(indicators.NewSMA(p.warmupPeriod))
	}
}

func (p *probe) Start() { p.startCalls++ }
func (p *probe) Stop()  { p.stopCalls++ }

func (p *probe) Next() {
	p.nextCalls++
	if p.buySize > 0 && !p.bought {
		p.bought = true
		p.Buy(OrderSpec{Size: p.buySize})
	}
}

func (p *probe) NotifyOrder(o *broker.Order) {
	p.statuses = append(p.statuses, o.Status)
}

func TestRunConfigErrors(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		e := New()
		e.AddStrategy(func(Params) Strategy { return &probe{} }, nil)
		_, err := e.Run()
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("no strategy", func(t *testing.T) {
		e := New()
		e.AddData(testFeed(t, 5), "")
		_, err := e.Run()
		assert.ErrorIs(t, err, ErrNoStrategy)
	})

	t.Run("grid registered", func(t *testing.T) {
		e := New()
		e.AddData(testFeed(t, 5), "")
		e.OptStrategy(func(Params) Strategy { return &probe{} }, Grid{
			{Name: "x", Values: Ints(1, 2)},
		})
		_, err := e.Run()
		assert.ErrorIs(t, err, ErrGridSet)
	})

	t.Run("optimize without grid", func(t *testing.T) {
		e := New()
		e.AddData(testFeed(t, 5), "")
		_, err := e.Optimize()
		assert.ErrorIs(t, err, ErrNoGrid)
	})
}

func TestRegistrationIsExclusive(t *testing.T) {
	factory := func(Params) Strategy { return &probe{} }

	t.Run("AddStrategy clears grid", func(t *testing.T) {
		e := New()
		e.AddData(testFeed(t, 5), "")
		e.OptStrategy(factory, Grid{{Name: "x", Values: Ints(1)}})
		e.AddStrategy(factory, nil)

		_, err := e.Run()
		assert.NoError(t, err)
	})

	t.Run("OptStrategy clears strategies", func(t *testing.T) {
		e := New()
		e.AddData(testFeed(t, 5), "")
		e.AddStrategy(factory, nil)
		e.OptStrategy(factory, Grid{{Name: "x", Values: Ints(1)}})

		_, err := e.Optimize()
		assert.NoError(t, err)
	})
}

func TestDataNaming(t *testing.T) {
	e := New()
	f0 := e.AddData(testFeed(t, 5), "")
	f1 := e.AddData(testFeed(t, 5), "spy")
	f2 := e.AddData(testFeed(t, 5), "")

	assert.Equal(t, "data0", f0.Name())
	assert.Equal(t, "spy", f1.Name())
	assert.Equal(t, "data2", f2.Name())
}

func TestLifecycleAndWarmup(t *testing.T) {
	var p *probe
	e := New()
	e.AddData(testFeed(t, 10), "")
	e.AddStrategy(func(Params) Strategy {
		p = &probe{warmupPeriod: 4}
		return p
	}, nil)

	_, err := e.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, p.initCalls)
	assert.Equal(t, 1, p.startCalls)
	assert.Equal(t, 1, p.stopCalls)

	// Bars are 0..9; Next runs once bar index i satisfies i+1 >= 4.
	assert.Equal(t, 7, p.nextCalls)

	// Equity is sampled on every bar, warmup included.
	assert.Len(t, e.EquityCurve(), 10)
}

func TestEquityCurveFlatWithoutTrades(t *testing.T) {
	e := New()
	e.SetCash(5000)
	e.AddData(testFeed(t, 6), "")
	e.AddStrategy(func(Params) Strategy { return &probe{} }, nil)

	_, err := e.Run()
	require.NoError(t, err)

	curve := e.EquityCurve()
	require.Len(t, curve, 6)
	for _, pt := range curve {
		assert.Equal(t, 5000.0, pt.Equity)
	}

	// Timestamps follow the primary feed.
	assert.True(t, curve[1].Time.After(curve[0].Time))
}

func TestOrderLifecycleAcrossBars(t *testing.T) {
	var p *probe
	e := New()
	e.SetCommission(0)
	e.AddData(testFeed(t, 5), "")
	e.AddStrategy(func(Params) Strategy {
		p = &probe{buySize: 10}
		return p
	}, nil)

	_, err := e.Run()
	require.NoError(t, err)

	// Accepted is dispatched on the submit bar, Completed on the next bar
	// when the market order matches at the open.
	require.Len(t, p.statuses, 2)
	assert.Equal(t, broker.Accepted, p.statuses[0])
	assert.Equal(t, broker.Completed, p.statuses[1])

	orders := p.Orders()
	require.Len(t, orders, 2)
	assert.Same(t, orders[0], orders[1], "both notifications carry the same order")

	// Submitted during bar 0's Next, filled at bar 1's open of 101.
	assert.Equal(t, 101.0, orders[1].ExecPrice)

	bk := e.Broker()
	assert.Equal(t, 10.0, bk.Position("data0").Size)
	assert.InDelta(t, 10000.0-10*101.0, bk.Cash(), 1e-9)

	// Final equity marks the position at the last close of 104.5.
	assert.InDelta(t, 8990.0+10*104.5, bk.Value(), 1e-9)
}

func TestBroadcastToAllStrategies(t *testing.T) {
	var buyer, watcher *probe
	e := New()
	e.AddData(testFeed(t, 5), "")
	e.AddStrategy(func(Params) Strategy {
		buyer = &probe{buySize: 1}
		return buyer
	}, nil)
	e.AddStrategy(func(Params) Strategy {
		watcher = &probe{}
		return watcher
	}, nil)

	_, err := e.Run()
	require.NoError(t, err)

	// The watcher never ordered but observes the buyer's events.
	assert.Equal(t, buyer.statuses, watcher.statuses)
	assert.Len(t, watcher.statuses, 2)
}

func TestRunReturnsStrategies(t *testing.T) {
	e := New()
	e.AddData(testFeed(t, 5), "")
	e.AddStrategy(func(Params) Strategy { return &probe{} }, nil)
	e.AddStrategy(func(Params) Strategy { return &probe{} }, nil)

	strats, err := e.Run()
	require.NoError(t, err)
	assert.Len(t, strats, 2)
}

func TestShortestFeedBoundsRun(t *testing.T) {
	e := New()
	e.AddData(testFeed(t, 10), "long")
	e.AddData(testFeed(t, 6), "short")
	e.AddStrategy(func(Params) Strategy { return &probe{} }, nil)

	_, err := e.Run()
	require.NoError(t, err)
	assert.Len(t, e.EquityCurve(), 6)
}

// roundTrip opens on its first decision bar and flattens on its third.
type roundTrip struct {
	Base
	calls int
}

func (r *roundTrip) Next() {
	r.calls++
	switch r.calls {
	case 1:
		r.Buy(OrderSpec{Size: 2})
	case 3:
		r.ClosePosition(nil)
	}
}

func TestRunPersistsToJournal(t *testing.T) {
	j, err := journal.NewSQLite(filepath.Join(t.TempDir(), "run.db"))
	require.NoError(t, err)
	defer j.Close()

	e := New()
	e.SetCommission(0)
	e.SetJournal(j)
	e.AddData(testFeed(t, 6), "")
	e.AddStrategy(func(Params) Strategy { return &roundTrip{} }, nil)

	_, err = e.Run()
	require.NoError(t, err)

	snaps, err := j.EquityCurve()
	require.NoError(t, err)
	assert.Len(t, snaps, 6, "one snapshot per bar")

	trades, err := j.Trades()
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "data0", trades[0].Symbol)
	assert.Equal(t, 2.0, trades[0].Size)
}

type fakeAnalyzer struct {
	bars   int
	trades int
}

func (a *fakeAnalyzer) Name() string { return "fake" }

func (a *fakeAnalyzer) Run(curve []EquityPoint, trades []broker.Trade) {
	a.bars = len(curve)
	a.trades = len(trades)
}

func (a *fakeAnalyzer) Analysis() map[string]float64 {
	return map[string]float64{"bars": float64(a.bars), "trades": float64(a.trades)}
}

func TestAnalyzersRunAfterLoop(t *testing.T) {
	e := New()
	e.SetCommission(0)
	e.AddData(testFeed(t, 6), "")
	e.AddStrategy(func(Params) Strategy { return &probe{buySize: 1} }, nil)
	e.AddAnalyzer(func() Analyzer { return &fakeAnalyzer{} })

	strats, err := e.Run()
	require.NoError(t, err)

	p := strats[0].(*probe)
	require.Contains(t, p.Analyzers, "fake")

	got := p.AnalyzerResults()["fake"]
	assert.Equal(t, 6.0, got["bars"], "analyzer sees the full equity curve")
}

func TestParamsReachFactory(t *testing.T) {
	var got Params
	e := New()
	e.AddData(testFeed(t, 3), "")
	e.AddStrategy(func(p Params) Strategy {
		got = p
		return &probe{}
	}, Params{"fast": 7})

	_, err := e.Run()
	require.NoError(t, err)
	assert.Equal(t, 7, got.Int("fast", 0))
}
