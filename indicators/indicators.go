// Package indicators provides streaming technical indicators. Each
// indicator consumes one candle per bar through Update and exposes its
// current value once enough bars have been seen.
package indicators

import "github.com/rustyeddy/minitrade/market"

// Indicator is the incremental-update contract the backtest engine relies
// on. Warmup reports how many leading bars the indicator needs before its
// value is meaningful; the engine holds back strategy decisions until the
// longest attached warmup is satisfied.
type Indicator interface {
	Name() string
	Warmup() int
	Update(c market.Candle)
	Ready() bool
	Value() float64
	Reset()
}
