package backtest

import (
	"github.com/rustyeddy/minitrade/broker"
	"github.com/rustyeddy/minitrade/feed"
	"github.com/rustyeddy/minitrade/indicators"
)

// Strategy is the contract the engine drives once per bar. Implementations
// embed Base, which provides the order helpers and satisfies the engine's
// internal binding hooks.
//
// Lifecycle: Init (after feeds/broker are bound, attach indicators here),
// Start (before the first bar), Next (every bar past warmup), Stop (after
// the last bar). NotifyOrder and NotifyTrade receive broker events; an order
// can be notified twice in one bar — once when accepted or rejected at
// submit, and again when it completes at a fill.
type Strategy interface {
	Init()
	Start()
	Next()
	Stop()
	NotifyOrder(o *broker.Order)
	NotifyTrade(t broker.Trade)
}

// runtimeHooks is the engine-facing side of Base. Strategies get it for free
// by embedding Base; the unexported methods keep it closed to this package.
type runtimeHooks interface {
	bind(datas []*feed.Feed, bk *broker.Broker, sizer Sizer)
	updateIndicators()
	maxWarmup() int
	recordOrder(o *broker.Order)
	recordTrade(t broker.Trade)
	history() ([]*broker.Order, []broker.Trade)
	setAnalyzers(m map[string]Analyzer)
}

type attachedIndicator struct {
	ind  indicators.Indicator
	data *feed.Feed
}

// Base carries the per-run strategy state: bound feeds, the broker, the
// sizer, registered indicators, and the order/trade history the dispatcher
// appends to. Embed it in every strategy.
type Base struct {
	Datas []*feed.Feed
	Data  *feed.Feed // primary feed
	Brokr *broker.Broker
	Sizer Sizer

	// Analyzers holds named analyzer results, populated after the run when
	// analyzers were registered on the engine.
	Analyzers map[string]Analyzer

	attached []attachedIndicator
	orders   []*broker.Order
	trades   []broker.Trade
}

func (b *Base) bind(datas []*feed.Feed, bk *broker.Broker, sizer Sizer) {
	b.Datas = datas
	if len(datas) > 0 {
		b.Data = datas[0]
	}
	b.Brokr = bk
	b.Sizer = sizer
}

// Attach registers indicators against the primary feed. The engine updates
// indicators each bar in attach order and sizes the warmup window from the
// largest registered warmup.
func (b *Base) Attach(inds ...indicators.Indicator) {
	b.AttachTo(b.Data, inds...)
}

// AttachTo registers indicators against a specific feed.
func (b *Base) AttachTo(data *feed.Feed, inds ...indicators.Indicator) {
	for _, ind := range inds {
		b.attached = append(b.attached, attachedIndicator{ind: ind, data: data})
	}
}

func (b *Base) updateIndicators() {
	for _, a := range b.attached {
		a.ind.Update(a.data.Candle())
	}
}

func (b *Base) maxWarmup() int {
	max := 0
	for _, a := range b.attached {
		if w := a.ind.Warmup(); w > max {
			max = w
		}
	}
	return max
}

func (b *Base) recordOrder(o *broker.Order) { b.orders = append(b.orders, o) }
func (b *Base) recordTrade(t broker.Trade)  { b.trades = append(b.trades, t) }

func (b *Base) history() ([]*broker.Order, []broker.Trade) {
	return b.orders, b.trades
}

func (b *Base) setAnalyzers(m map[string]Analyzer) { b.Analyzers = m }

// AnalyzerResults returns every registered analyzer's result map keyed by
// analyzer name. Empty until a run has finished.
func (b *Base) AnalyzerResults() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(b.Analyzers))
	for name, a := range b.Analyzers {
		out[name] = a.Analysis()
	}
	return out
}

// Orders returns every order event dispatched to this strategy, in arrival
// order. An order appears once per notification.
func (b *Base) Orders() []*broker.Order { return b.orders }

// Trades returns the closed-trade records dispatched to this strategy.
func (b *Base) Trades() []broker.Trade { return b.trades }

// OrderSpec describes an order to place. The zero value is a market order
// sized by the strategy's sizer on the primary feed.
type OrderSpec struct {
	Size  float64     // 0 resolves through the sizer
	Kind  broker.Kind // Market unless set
	Price float64     // trigger, required for Limit/Stop
	Data  *feed.Feed  // nil targets the primary feed
}

// Buy submits a buy order and returns the broker's read view of it.
func (b *Base) Buy(spec OrderSpec) *broker.Order {
	return b.submit(broker.Buy, spec)
}

// Sell submits a sell order and returns the broker's read view of it.
func (b *Base) Sell(spec OrderSpec) *broker.Order {
	return b.submit(broker.Sell, spec)
}

func (b *Base) submit(side broker.Side, spec OrderSpec) *broker.Order {
	data := spec.Data
	if data == nil {
		data = b.Data
	}

	size := spec.Size
	if size == 0 && b.Sizer != nil {
		size = b.Sizer.Size(b, data, side == broker.Buy)
	}

	o := b.Brokr.NewOrder(data.Name(), spec.Kind, side, size, spec.Price)
	return b.Brokr.Submit(o)
}

// ClosePosition flattens the position on a feed (primary when nil) with a
// market order. It returns nil when there is nothing to close.
func (b *Base) ClosePosition(data *feed.Feed) *broker.Order {
	if data == nil {
		data = b.Data
	}
	pos := b.Brokr.Position(data.Name())
	if pos.Size == 0 {
		return nil
	}
	spec := OrderSpec{Size: abs(pos.Size), Data: data}
	if pos.Size > 0 {
		return b.Sell(spec)
	}
	return b.Buy(spec)
}

// Position returns a copy of the position on the primary feed.
func (b *Base) Position() broker.Position {
	return b.PositionFor(b.Data)
}

// PositionFor returns a copy of the position on the given feed.
func (b *Base) PositionFor(data *feed.Feed) broker.Position {
	return *b.Brokr.Position(data.Name())
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Default no-op hooks so strategies only implement what they need.
func (b *Base) Init()                     {}
func (b *Base) Start()                    {}
func (b *Base) Next()                     {}
func (b *Base) Stop()                     {}
func (b *Base) NotifyOrder(*broker.Order) {}
func (b *Base) NotifyTrade(broker.Trade)  {}
