package broker

import "time"

// Trade records a closing fill: quantity taken off an open position together
// with the P&L it locked in, net of the fill's commission. Trades are
// produced by the broker, dispatched once to the running strategies, and not
// retained here.
type Trade struct {
	Symbol    string
	Size      float64 // closed quantity, always positive
	PnL       float64 // realized P&L net of commission
	EntryTime time.Time
	ExitTime  time.Time
	Duration  time.Duration
}
