package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxboard/rates/mock"
	"github.com/sig-0/fxboard/rates/types"
)

// manualClock is an adjustable time source for expiry tests
type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time {
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newManualClock() *manualClock {
	return &manualClock{
		now: time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestCache_Symbols(t *testing.T) {
	t.Parallel()

	t.Run("second lookup within TTL is served from cache", func(t *testing.T) {
		t.Parallel()

		var (
			clock      = newManualClock()
			fetchCount atomic.Int32

			source = &mock.Source{
				SymbolsFn: func(_ context.Context) (map[types.Currency]types.Symbol, error) {
					fetchCount.Add(1)

					return map[types.Currency]types.Symbol{
						"USD": {Code: "USD", Description: "United States Dollar"},
					}, nil
				},
			}
		)

		c := New(source, WithClock(clock.Now))

		first, err := c.Symbols(context.Background())
		require.NoError(t, err)

		clock.Advance(DefaultSymbolsTTL - time.Second)

		second, err := c.Symbols(context.Background())
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int32(1), fetchCount.Load())
	})

	t.Run("expired entry triggers a re-fetch", func(t *testing.T) {
		t.Parallel()

		var (
			clock      = newManualClock()
			fetchCount atomic.Int32

			source = &mock.Source{
				SymbolsFn: func(_ context.Context) (map[types.Currency]types.Symbol, error) {
					count := fetchCount.Add(1)

					if count == 1 {
						return map[types.Currency]types.Symbol{
							"USD": {Code: "USD"},
						}, nil
					}

					return map[types.Currency]types.Symbol{
						"USD": {Code: "USD"},
						"EUR": {Code: "EUR"},
					}, nil
				},
			}
		)

		c := New(source, WithClock(clock.Now))

		_, err := c.Symbols(context.Background())
		require.NoError(t, err)

		clock.Advance(DefaultSymbolsTTL)

		refreshed, err := c.Symbols(context.Background())
		require.NoError(t, err)

		// The new fetch is served, not the stale value
		assert.Equal(t, int32(2), fetchCount.Load())
		assert.Len(t, refreshed, 2)
	})

	t.Run("fetch error is not cached", func(t *testing.T) {
		t.Parallel()

		var (
			clock      = newManualClock()
			fetchCount atomic.Int32

			source = &mock.Source{
				SymbolsFn: func(_ context.Context) (map[types.Currency]types.Symbol, error) {
					if fetchCount.Add(1) == 1 {
						return nil, errors.New("provider down")
					}

					return map[types.Currency]types.Symbol{
						"USD": {Code: "USD"},
					}, nil
				},
			}
		)

		c := New(source, WithClock(clock.Now))

		_, err := c.Symbols(context.Background())
		require.Error(t, err)

		symbols, err := c.Symbols(context.Background())
		require.NoError(t, err)

		assert.Len(t, symbols, 1)
		assert.Equal(t, int32(2), fetchCount.Load())
	})
}

func TestCache_Latest(t *testing.T) {
	t.Parallel()

	t.Run("keyed per base", func(t *testing.T) {
		t.Parallel()

		var (
			clock      = newManualClock()
			fetchCount atomic.Int32

			source = &mock.Source{
				LatestFn: func(_ context.Context, base types.Currency) (*types.RateSnapshot, error) {
					fetchCount.Add(1)

					return &types.RateSnapshot{
						Base:  base,
						Rates: map[types.Currency]float64{"EUR": 0.91},
					}, nil
				},
			}
		)

		c := New(source, WithClock(clock.Now))

		_, err := c.Latest(context.Background(), "USD")
		require.NoError(t, err)

		_, err = c.Latest(context.Background(), "GBP")
		require.NoError(t, err)

		_, err = c.Latest(context.Background(), "USD")
		require.NoError(t, err)

		assert.Equal(t, int32(2), fetchCount.Load())
	})

	t.Run("shorter TTL than symbols", func(t *testing.T) {
		t.Parallel()

		var (
			clock      = newManualClock()
			fetchCount atomic.Int32

			source = &mock.Source{
				LatestFn: func(_ context.Context, base types.Currency) (*types.RateSnapshot, error) {
					fetchCount.Add(1)

					return &types.RateSnapshot{Base: base}, nil
				},
			}
		)

		c := New(source, WithClock(clock.Now))

		_, err := c.Latest(context.Background(), "USD")
		require.NoError(t, err)

		clock.Advance(DefaultLatestTTL)

		_, err = c.Latest(context.Background(), "USD")
		require.NoError(t, err)

		assert.Equal(t, int32(2), fetchCount.Load())
	})
}

func TestCache_TimeSeries(t *testing.T) {
	t.Parallel()

	t.Run("keyed by full parameter tuple", func(t *testing.T) {
		t.Parallel()

		var (
			clock      = newManualClock()
			fetchCount atomic.Int32

			source = &mock.Source{
				TimeSeriesFn: func(
					_ context.Context,
					_ types.Currency,
					_ types.Currency,
					_ types.Date,
					_ types.Date,
				) ([]types.TimeSeriesPoint, error) {
					fetchCount.Add(1)

					return []types.TimeSeriesPoint{}, nil
				},
			}
		)

		c := New(source, WithClock(clock.Now))

		var (
			start = types.NewDate(2026, time.January, 1)
			end   = types.NewDate(2026, time.January, 31)
		)

		_, err := c.TimeSeries(context.Background(), "USD", "EUR", start, end)
		require.NoError(t, err)

		// Same tuple, cached
		_, err = c.TimeSeries(context.Background(), "USD", "EUR", start, end)
		require.NoError(t, err)

		assert.Equal(t, int32(1), fetchCount.Load())

		// Different range, cached independently
		_, err = c.TimeSeries(context.Background(), "USD", "EUR", start.AddDays(1), end)
		require.NoError(t, err)

		assert.Equal(t, int32(2), fetchCount.Load())
	})
}

func TestCache_Convert(t *testing.T) {
	t.Parallel()

	var (
		clock      = newManualClock()
		fetchCount atomic.Int32

		source = &mock.Source{
			ConvertFn: func(
				_ context.Context,
				amount float64,
				from types.Currency,
				to types.Currency,
			) (*types.ConversionResult, error) {
				fetchCount.Add(1)

				return &types.ConversionResult{
					Request: types.ConversionRequest{Amount: amount, From: from, To: to},
					Result:  amount * 0.91,
				}, nil
			},
		}
	)

	c := New(source, WithClock(clock.Now))

	// Conversions are never cached
	for i := 0; i < 3; i++ {
		_, err := c.Convert(context.Background(), 500, "USD", "EUR")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(3), fetchCount.Load())
}

func TestCache_Invalidate(t *testing.T) {
	t.Parallel()

	var (
		clock      = newManualClock()
		fetchCount atomic.Int32

		source = &mock.Source{
			SymbolsFn: func(_ context.Context) (map[types.Currency]types.Symbol, error) {
				fetchCount.Add(1)

				return map[types.Currency]types.Symbol{"USD": {Code: "USD"}}, nil
			},
			LatestFn: func(_ context.Context, base types.Currency) (*types.RateSnapshot, error) {
				fetchCount.Add(1)

				return &types.RateSnapshot{Base: base}, nil
			},
		}
	)

	c := New(source, WithClock(clock.Now))

	_, err := c.Symbols(context.Background())
	require.NoError(t, err)

	_, err = c.Latest(context.Background(), "USD")
	require.NoError(t, err)

	require.Equal(t, int32(2), fetchCount.Load())

	// Fresh entries, but a manual refresh drops them all
	c.Invalidate()

	_, err = c.Symbols(context.Background())
	require.NoError(t, err)

	_, err = c.Latest(context.Background(), "USD")
	require.NoError(t, err)

	assert.Equal(t, int32(4), fetchCount.Load())
}

func TestCache_InvalidateDuringFetch(t *testing.T) {
	t.Parallel()

	var (
		c *Cache

		clock      = newManualClock()
		fetchCount atomic.Int32
	)

	source := &mock.Source{
		SymbolsFn: func(_ context.Context) (map[types.Currency]types.Symbol, error) {
			count := fetchCount.Add(1)

			if count == 1 {
				// Refresh lands while the first fetch is still in flight
				c.Invalidate()

				return map[types.Currency]types.Symbol{
					"USD": {Code: "USD", Description: "stale"},
				}, nil
			}

			return map[types.Currency]types.Symbol{
				"USD": {Code: "USD", Description: "fresh"},
			}, nil
		},
	}

	c = New(source, WithClock(clock.Now))

	// The in-flight result is still returned to its caller
	first, err := c.Symbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stale", first["USD"].Description)

	// But it was never stored, the next lookup re-fetches
	second, err := c.Symbols(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "fresh", second["USD"].Description)
	assert.Equal(t, int32(2), fetchCount.Load())
}

func TestCache_CustomTTL(t *testing.T) {
	t.Parallel()

	var (
		clock      = newManualClock()
		fetchCount atomic.Int32

		source = &mock.Source{
			LatestFn: func(_ context.Context, base types.Currency) (*types.RateSnapshot, error) {
				fetchCount.Add(1)

				return &types.RateSnapshot{Base: base}, nil
			},
		}
	)

	c := New(
		source,
		WithClock(clock.Now),
		WithLatestTTL(time.Minute),
	)

	_, err := c.Latest(context.Background(), "USD")
	require.NoError(t, err)

	clock.Advance(time.Second * 59)

	_, err = c.Latest(context.Background(), "USD")
	require.NoError(t, err)

	require.Equal(t, int32(1), fetchCount.Load())

	clock.Advance(time.Second)

	_, err = c.Latest(context.Background(), "USD")
	require.NoError(t, err)

	assert.Equal(t, int32(2), fetchCount.Load())
}
