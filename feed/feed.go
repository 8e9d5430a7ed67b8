package feed

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/minitrade/market"
)

// ErrInvalidData reports a feed that cannot be constructed from its input
// (missing columns, unparsable values, no rows).
var ErrInvalidData = errors.New("feed: invalid data")

// Feed replays a named OHLCV series bar by bar. The cursor starts before the
// first bar; each Advance moves it forward by one. All line accessors share
// the cursor, so feed.Close().At(0) and feed.Open().At(0) always describe the
// same bar.
type Feed struct {
	name string

	candles []market.Candle
	times   []time.Time

	open   *Series
	high   *Series
	low    *Series
	close  *Series
	volume *Series

	idx int
}

// New builds a feed from in-memory candles. The candles are copied so the
// caller's slice stays independent of the replay.
func New(name string, candles []market.Candle) (*Feed, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: feed %q has no bars", ErrInvalidData, name)
	}

	f := &Feed{
		name:    name,
		candles: make([]market.Candle, len(candles)),
		times:   make([]time.Time, len(candles)),
		idx:     -1,
	}
	copy(f.candles, candles)

	open := make([]float64, len(candles))
	high := make([]float64, len(candles))
	low := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	volume := make([]float64, len(candles))

	for i, c := range candles {
		open[i] = c.Open
		high[i] = c.High
		low[i] = c.Low
		closes[i] = c.Close
		volume[i] = c.Volume
		f.times[i] = c.Time
	}

	f.open = newSeries(open, &f.idx)
	f.high = newSeries(high, &f.idx)
	f.low = newSeries(low, &f.idx)
	f.close = newSeries(closes, &f.idx)
	f.volume = newSeries(volume, &f.idx)

	return f, nil
}

func (f *Feed) Name() string { return f.name }

// SetName renames the feed. The engine assigns "dataN" defaults when no name
// was given at registration.
func (f *Feed) SetName(name string) { f.name = name }

// Len returns the total number of bars in the feed, independent of the
// cursor.
func (f *Feed) Len() int { return len(f.candles) }

// Advance moves the cursor forward one bar. It returns false at end of data,
// leaving the cursor on the last bar.
func (f *Feed) Advance() bool {
	if f.idx+1 >= len(f.candles) {
		return false
	}
	f.idx++
	return true
}

func (f *Feed) Open() *Series   { return f.open }
func (f *Feed) High() *Series   { return f.high }
func (f *Feed) Low() *Series    { return f.low }
func (f *Feed) Close() *Series  { return f.close }
func (f *Feed) Volume() *Series { return f.volume }

// Time returns the bar timestamp at relative offset n (n <= 0), with the
// same guards as Series.At.
func (f *Feed) Time(n int) time.Time {
	if n > 0 {
		panic(fmt.Errorf("%w: offset %d", ErrLookAhead, n))
	}
	if f.idx < 0 {
		panic(ErrNotStarted)
	}
	target := f.idx + n
	if target < 0 || target >= len(f.times) {
		panic(fmt.Errorf("%w: offset %d at bar %d", ErrOutOfRange, n, f.idx))
	}
	return f.times[target]
}

// Candle returns the bar under the cursor.
func (f *Feed) Candle() market.Candle {
	if f.idx < 0 {
		panic(ErrNotStarted)
	}
	return f.candles[f.idx]
}

// Started reports whether the cursor has advanced at least once.
func (f *Feed) Started() bool { return f.idx >= 0 }

// Clone returns an independent copy of the feed with a fresh cursor.
// Optimization runs clone every feed so combinations never share mutable
// state.
func (f *Feed) Clone() *Feed {
	clone, err := New(f.name, f.candles)
	if err != nil {
		// f was already validated at construction.
		panic(err)
	}
	return clone
}
