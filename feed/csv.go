package feed

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/minitrade/market"
)

var requiredColumns = []string{"datetime", "open", "high", "low", "close", "volume"}

// Accepted datetime layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FromCSV loads a feed from an OHLCV CSV file. The header row must contain
// the columns datetime, open, high, low, close, and volume (case
// insensitive, any order). Missing columns or unparsable values fail at
// construction, before any bar is replayed.
func FromCSV(name, path string) (*Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("feed: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("feed: read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s has no data rows", ErrInvalidData, path)
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	candles := make([]market.Candle, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		c, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("feed: %s row %d: %w", path, i+2, err)
		}
		candles = append(candles, c)
	}

	return New(name, candles)
}

func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range requiredColumns {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", ErrInvalidData, want)
		}
	}
	return cols, nil
}

func parseRow(row []string, cols map[string]int) (market.Candle, error) {
	field := func(name string) (string, error) {
		i := cols[name]
		if i >= len(row) {
			return "", fmt.Errorf("%w: short row, no %s value", ErrInvalidData, name)
		}
		return strings.TrimSpace(row[i]), nil
	}

	ts, err := field("datetime")
	if err != nil {
		return market.Candle{}, err
	}
	t, err := parseTime(ts)
	if err != nil {
		return market.Candle{}, err
	}

	var c market.Candle
	c.Time = t

	for _, pf := range []struct {
		name string
		dst  *float64
	}{
		{"open", &c.Open},
		{"high", &c.High},
		{"low", &c.Low},
		{"close", &c.Close},
		{"volume", &c.Volume},
	} {
		raw, err := field(pf.name)
		if err != nil {
			return market.Candle{}, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return market.Candle{}, fmt.Errorf("%w: bad %s value %q", ErrInvalidData, pf.name, raw)
		}
		*pf.dst = v
	}

	return c, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: bad datetime %q", ErrInvalidData, s)
}
