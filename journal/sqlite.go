package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	if t.ID == "" {
		t.ID = ulid.Make().String()
	}
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, size, pnl, entry_time, exit_time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Symbol, t.Size, t.PnL, t.EntryTime, t.ExitTime,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (time, cash, equity) VALUES (?, ?, ?)`,
		e.Time, e.Cash, e.Equity,
	)
	return err
}

// Trades loads every recorded trade, oldest exit first.
func (j *SQLiteJournal) Trades() ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, symbol, size, pnl, entry_time, exit_time
		FROM trades ORDER BY exit_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Size, &t.PnL, &t.EntryTime, &t.ExitTime); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// EquityCurve loads every recorded snapshot in time order.
func (j *SQLiteJournal) EquityCurve() ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`SELECT time, cash, equity FROM equity ORDER BY time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.Time, &e.Cash, &e.Equity); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
