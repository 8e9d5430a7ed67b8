package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/minitrade/market"
)

func testCandles(n int) []market.Candle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]market.Candle, n)
	for i := range candles {
		px := 100.0 + float64(i)
		candles[i] = market.Candle{
			Open:   px,
			High:   px + 1,
			Low:    px - 1,
			Close:  px + 0.5,
			Volume: 1000,
			Time:   base.Add(time.Duration(i) * time.Hour),
		}
	}
	return candles
}

func TestNewFeed(t *testing.T) {
	t.Run("empty input rejected", func(t *testing.T) {
		_, err := New("empty", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidData)
	})

	t.Run("copies caller slice", func(t *testing.T) {
		candles := testCandles(3)
		f, err := New("test", candles)
		require.NoError(t, err)

		candles[0].Open = -1
		f.Advance()
		assert.Equal(t, 100.0, f.Open().At(0))
	})
}

func TestFeedReplay(t *testing.T) {
	f, err := New("test", testCandles(5))
	require.NoError(t, err)

	assert.Equal(t, 5, f.Len())
	assert.False(t, f.Started())

	require.True(t, f.Advance())
	assert.True(t, f.Started())
	assert.Equal(t, 100.0, f.Open().At(0))
	assert.Equal(t, 100.5, f.Close().At(0))
	assert.Equal(t, 1, f.Close().Len())

	require.True(t, f.Advance())
	assert.Equal(t, 101.0, f.Open().At(0))
	assert.Equal(t, 100.0, f.Open().At(-1))
	assert.Equal(t, 2, f.Open().Len())

	// Shared cursor: every line points at the same bar.
	assert.Equal(t, 102.0, f.High().At(0))
	assert.Equal(t, 100.0, f.Low().At(0))
	assert.Equal(t, 1000.0, f.Volume().At(0))

	c := f.Candle()
	assert.Equal(t, 101.0, c.Open)
	assert.Equal(t, c.Time, f.Time(0))
}

func TestFeedExhaustion(t *testing.T) {
	f, err := New("test", testCandles(2))
	require.NoError(t, err)

	assert.True(t, f.Advance())
	assert.True(t, f.Advance())
	assert.False(t, f.Advance(), "advance past end returns false")

	// Cursor stays on the last bar.
	assert.Equal(t, 101.0, f.Open().At(0))
}

func TestIndexingViolationsPanic(t *testing.T) {
	t.Run("lookahead", func(t *testing.T) {
		f, _ := New("test", testCandles(3))
		f.Advance()

		defer func() {
			err, ok := recover().(error)
			require.True(t, ok)
			assert.ErrorIs(t, err, ErrLookAhead)
		}()
		f.Close().At(1)
	})

	t.Run("not started", func(t *testing.T) {
		f, _ := New("test", testCandles(3))

		defer func() {
			err, ok := recover().(error)
			require.True(t, ok)
			assert.ErrorIs(t, err, ErrNotStarted)
		}()
		f.Close().At(0)
	})

	t.Run("before start of data", func(t *testing.T) {
		f, _ := New("test", testCandles(3))
		f.Advance()

		defer func() {
			err, ok := recover().(error)
			require.True(t, ok)
			assert.ErrorIs(t, err, ErrOutOfRange)
		}()
		f.Close().At(-1)
	})

	t.Run("time guards match series guards", func(t *testing.T) {
		f, _ := New("test", testCandles(3))

		defer func() {
			err, ok := recover().(error)
			require.True(t, ok)
			assert.ErrorIs(t, err, ErrNotStarted)
		}()
		f.Time(0)
	})

	t.Run("candle before advance", func(t *testing.T) {
		f, _ := New("test", testCandles(3))

		defer func() {
			err, ok := recover().(error)
			require.True(t, ok)
			assert.ErrorIs(t, err, ErrNotStarted)
		}()
		f.Candle()
	})
}

func TestClone(t *testing.T) {
	f, err := New("test", testCandles(4))
	require.NoError(t, err)

	f.Advance()
	f.Advance()

	clone := f.Clone()
	assert.Equal(t, f.Name(), clone.Name())
	assert.Equal(t, f.Len(), clone.Len())
	assert.False(t, clone.Started(), "clone starts with a fresh cursor")

	// Advancing the clone never moves the original.
	clone.Advance()
	assert.Equal(t, 100.0, clone.Open().At(0))
	assert.Equal(t, 101.0, f.Open().At(0))
}
