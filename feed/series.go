package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrLookAhead is the panic cause when a strategy asks for a bar that has
	// not been replayed yet.
	ErrLookAhead = errors.New("feed: future bar access is not allowed")

	// ErrNotStarted is the panic cause when a line is read before the feed
	// cursor has advanced at least once.
	ErrNotStarted = errors.New("feed: no current bar, call Advance first")

	// ErrOutOfRange is the panic cause when a negative offset reaches before
	// the start of the data.
	ErrOutOfRange = errors.New("feed: bar offset out of range")
)

// Series is a read-only view of one data line (open, close, ...) positioned
// at the feed cursor. Offset 0 is the current bar, -1 the previous bar, and
// so on. Positive offsets are forbidden so a strategy can never peek at bars
// the replay has not reached.
//
// Indexing violations are defects in the calling strategy, not runtime
// conditions, so At panics with one of the sentinel errors above. The panic
// propagates out of the engine's Run to the caller.
type Series struct {
	data []float64
	idx  *int
}

func newSeries(data []float64, idx *int) *Series {
	return &Series{data: data, idx: idx}
}

// At returns the value at relative offset n (n <= 0).
func (s *Series) At(n int) float64 {
	if n > 0 {
		panic(fmt.Errorf("%w: offset %d", ErrLookAhead, n))
	}
	cur := *s.idx
	if cur < 0 {
		panic(ErrNotStarted)
	}
	target := cur + n
	if target < 0 {
		panic(fmt.Errorf("%w: offset %d at bar %d", ErrOutOfRange, n, cur))
	}
	if target >= len(s.data) {
		panic(fmt.Errorf("%w: offset %d at bar %d", ErrOutOfRange, n, cur))
	}
	return s.data[target]
}

// Len reports how many values are visible at the current cursor position.
func (s *Series) Len() int {
	cur := *s.idx
	if cur < 0 {
		return 0
	}
	if cur+1 > len(s.data) {
		return len(s.data)
	}
	return cur + 1
}
