// Package journal persists the output of a backtest run: closed trades and
// per-bar equity snapshots. Two backends are provided, SQLite and CSV.
package journal

import "time"

// TradeRecord is one closed (or partially closed) trade. ID is assigned by
// the backend when left empty.
type TradeRecord struct {
	ID        string
	Symbol    string
	Size      float64
	PnL       float64
	EntryTime time.Time
	ExitTime  time.Time
}

// EquitySnapshot is the account state after one bar was fully processed.
type EquitySnapshot struct {
	Time   time.Time
	Cash   float64
	Equity float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}
