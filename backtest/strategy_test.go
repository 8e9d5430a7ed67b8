package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/minitrade/broker"
	"github.com/rustyeddy/minitrade/feed"
	"github.com/rustyeddy/minitrade/indicators"
)

func boundBase(t *testing.T) (*Base, *broker.Broker, *feed.Feed) {
	t.Helper()

	f := testFeed(t, 5)
	f.Advance()

	bk := broker.New(10000, 0)
	b := &Base{}
	b.bind([]*feed.Feed{f}, bk, FixedSizer{Stake: 2})
	return b, bk, f
}

func TestBaseBind(t *testing.T) {
	b, bk, f := boundBase(t)

	assert.Same(t, f, b.Data, "primary feed is the first registered")
	assert.Len(t, b.Datas, 1)
	assert.Same(t, bk, b.Brokr)
}

func TestBaseOrders(t *testing.T) {
	t.Run("buy resolves size through sizer", func(t *testing.T) {
		b, _, _ := boundBase(t)
		o := b.Buy(OrderSpec{})

		assert.Equal(t, 2.0, o.Size)
		assert.Equal(t, broker.Buy, o.Side)
		assert.Equal(t, broker.Market, o.Kind)
		assert.Equal(t, "test", o.Symbol)
		assert.Equal(t, broker.Accepted, o.Status)
	})

	t.Run("explicit size bypasses sizer", func(t *testing.T) {
		b, _, _ := boundBase(t)
		o := b.Sell(OrderSpec{Size: 7})
		assert.Equal(t, 7.0, o.Size)
	})

	t.Run("limit order carries trigger", func(t *testing.T) {
		b, _, _ := boundBase(t)
		o := b.Buy(OrderSpec{Size: 1, Kind: broker.Limit, Price: 98})
		assert.Equal(t, broker.Limit, o.Kind)
		assert.Equal(t, 98.0, o.Price)
	})
}

func TestClosePosition(t *testing.T) {
	t.Run("flat position closes nothing", func(t *testing.T) {
		b, _, _ := boundBase(t)
		assert.Nil(t, b.ClosePosition(nil))
	})

	t.Run("long position sells full size", func(t *testing.T) {
		b, bk, _ := boundBase(t)
		bk.Position("test").Update(5, 100)

		o := b.ClosePosition(nil)
		require.NotNil(t, o)
		assert.Equal(t, broker.Sell, o.Side)
		assert.Equal(t, 5.0, o.Size)
	})

	t.Run("short position buys back", func(t *testing.T) {
		b, bk, _ := boundBase(t)
		bk.Position("test").Update(-3, 100)

		o := b.ClosePosition(nil)
		require.NotNil(t, o)
		assert.Equal(t, broker.Buy, o.Side)
		assert.Equal(t, 3.0, o.Size)
	})
}

func TestPositionReturnsCopy(t *testing.T) {
	b, bk, _ := boundBase(t)
	bk.Position("test").Update(5, 100)

	pos := b.Position()
	pos.Size = 999

	assert.Equal(t, 5.0, bk.Position("test").Size, "mutating the copy never leaks")
}

func TestAttachAndWarmup(t *testing.T) {
	b, _, f := boundBase(t)

	b.Attach(indicators.NewSMA(3), indicators.NewSMA(8))
	b.AttachTo(f, indicators.NewSMA(5))

	assert.Equal(t, 8, b.maxWarmup())

	// updateIndicators drives every attached indicator once per call.
	sma := indicators.NewSMA(1)
	b.Attach(sma)
	b.updateIndicators()
	assert.True(t, sma.Ready())
}
