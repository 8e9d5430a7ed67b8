package broker

import (
	"time"

	"github.com/rustyeddy/minitrade/market"
)

// Broker simulates a single cash account: it validates and queues orders,
// matches them against bar data, keeps per-symbol positions, and emits order
// and trade events for the engine to dispatch.
//
// A Broker is confined to one backtest run and is not safe for concurrent
// use; the engine drives it strictly in bar order.
type Broker struct {
	cash       float64
	commission float64
	value      float64

	positions  map[string]*Position
	pending    []*Order
	entryTimes map[string]time.Time

	orderEvents []*Order
	tradeEvents []Trade

	nextRef int64
}

// New creates a broker with starting cash and a commission rate
// (0.001 means 0.1% of trade value per fill).
func New(cash, commission float64) *Broker {
	return &Broker{
		cash:       cash,
		commission: commission,
		value:      cash,
		positions:  make(map[string]*Position),
		entryTimes: make(map[string]time.Time),
	}
}

func (b *Broker) Cash() float64       { return b.cash }
func (b *Broker) Commission() float64 { return b.commission }

// Value returns the last computed account equity: cash plus mark-to-market
// value of open positions.
func (b *Broker) Value() float64 { return b.value }

// SetCash resets available cash (and equity) before a run.
func (b *Broker) SetCash(amount float64) {
	b.cash = amount
	b.value = amount
}

// SetCommission sets the commission rate.
func (b *Broker) SetCommission(rate float64) { b.commission = rate }

// Position returns the ledger slot for a symbol, creating an empty one on
// first use. The slot is reused if the position closes and reopens later.
func (b *Broker) Position(symbol string) *Position {
	p, ok := b.positions[symbol]
	if !ok {
		p = &Position{}
		b.positions[symbol] = p
	}
	return p
}

// NewOrder builds an order with the next reference id. The counter is owned
// by this broker, so concurrent optimization runs never share ids.
func (b *Broker) NewOrder(symbol string, kind Kind, side Side, size, price float64) *Order {
	b.nextRef++
	return &Order{
		Ref:    b.nextRef,
		Symbol: symbol,
		Kind:   kind,
		Side:   side,
		Size:   size,
		Price:  price,
		Status: Created,
	}
}

// Submit validates an order and queues it for matching on a future bar.
// Invalid orders (size <= 0, or Limit/Stop without a trigger price) are
// rejected immediately and never queued. Either way an order event is
// emitted carrying the post-validation status, so observers learn acceptance
// independently of execution.
func (b *Broker) Submit(o *Order) *Order {
	if o.Size <= 0 {
		o.Status = Rejected
		b.orderEvents = append(b.orderEvents, o)
		return o
	}
	if (o.Kind == Limit || o.Kind == Stop) && o.Price == 0 {
		o.Status = Rejected
		b.orderEvents = append(b.orderEvents, o)
		return o
	}

	// Submitted is transient here: the simulated broker accepts instantly.
	o.Status = Accepted
	b.pending = append(b.pending, o)
	b.orderEvents = append(b.orderEvents, o)
	return o
}

// ExecuteMatching tries to fill every accepted pending order against the
// current bars, then recomputes account equity. Orders whose symbol has no
// bar this tick stay queued; that is a deferral, never an error. Orders that
// left the Accepted state (canceled) are dropped from the queue.
func (b *Broker) ExecuteMatching(bars map[string]market.Candle, now time.Time) {
	var still []*Order

	for _, o := range b.pending {
		if o.Status != Accepted {
			continue
		}

		bar, ok := bars[o.Symbol]
		if !ok {
			still = append(still, o)
			continue
		}

		price, matched := matchPrice(o, bar)
		if !matched {
			still = append(still, o)
			continue
		}

		b.fill(o, price, now)
	}

	b.pending = still
	b.value = b.equity(bars)
}

// matchPrice computes the candidate fill price for an order on a bar.
//
//	Market:          bar open
//	Limit buy/sell:  trigger if low <= trigger / high >= trigger
//	Stop buy/sell:   trigger if high >= trigger / low <= trigger
func matchPrice(o *Order, bar market.Candle) (float64, bool) {
	switch o.Kind {
	case Market:
		return bar.Open, true

	case Limit:
		if o.IsBuy() && bar.Low <= o.Price {
			return o.Price, true
		}
		if o.IsSell() && bar.High >= o.Price {
			return o.Price, true
		}

	case Stop:
		if o.IsBuy() && bar.High >= o.Price {
			return o.Price, true
		}
		if o.IsSell() && bar.Low <= o.Price {
			return o.Price, true
		}
	}
	return 0, false
}

// fill executes a matched order: moves cash, updates the position ledger,
// marks the order Completed, and emits order/trade events. A buy whose total
// cost exceeds available cash is rejected here, at fill time, with cash
// untouched.
func (b *Broker) fill(o *Order, price float64, now time.Time) {
	tradeValue := price * o.Size
	commission := tradeValue * b.commission

	var signed float64
	if o.IsBuy() {
		totalCost := tradeValue + commission
		if b.cash < totalCost {
			o.Status = Rejected
			b.orderEvents = append(b.orderEvents, o)
			return
		}
		b.cash -= totalCost
		signed = o.Size
	} else {
		b.cash += tradeValue - commission
		signed = -o.Size
	}

	pos := b.Position(o.Symbol)
	prev := pos.Size
	realized := pos.Update(signed, price)
	next := pos.Size

	o.execute(price, o.Size, now, commission)
	b.orderEvents = append(b.orderEvents, o)

	closed := closedQty(prev, signed)
	if closed > 0 {
		entry := b.entryTimes[o.Symbol]
		b.tradeEvents = append(b.tradeEvents, Trade{
			Symbol:    o.Symbol,
			Size:      closed,
			PnL:       realized - commission,
			EntryTime: entry,
			ExitTime:  now,
			Duration:  now.Sub(entry),
		})
	}

	// Track when the open position for this symbol was entered.
	switch {
	case prev == 0 && next != 0:
		b.entryTimes[o.Symbol] = now
	case next == 0:
		delete(b.entryTimes, o.Symbol)
	case (prev > 0) != (next > 0):
		b.entryTimes[o.Symbol] = now
	}
}

func closedQty(prev, signed float64) float64 {
	if prev == 0 || (prev > 0) == (signed > 0) {
		return 0
	}
	abs := func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return v
	}
	if abs(prev) < abs(signed) {
		return abs(prev)
	}
	return abs(signed)
}

// equity values every position at the current close, falling back to the
// position's cost basis when the symbol has no bar this tick.
func (b *Broker) equity(bars map[string]market.Candle) float64 {
	total := b.cash
	for symbol, pos := range b.positions {
		price := pos.Price
		if bar, ok := bars[symbol]; ok {
			price = bar.Close
		}
		total += pos.Size * price
	}
	return total
}

// ConsumeOrderEvents returns and clears the accumulated order updates, in
// the order the broker generated them.
func (b *Broker) ConsumeOrderEvents() []*Order {
	events := b.orderEvents
	b.orderEvents = nil
	return events
}

// ConsumeTradeEvents returns and clears the accumulated trade records.
func (b *Broker) ConsumeTradeEvents() []Trade {
	events := b.tradeEvents
	b.tradeEvents = nil
	return events
}

// Pending returns a snapshot of the queued orders.
func (b *Broker) Pending() []*Order {
	out := make([]*Order, len(b.pending))
	copy(out, b.pending)
	return out
}
