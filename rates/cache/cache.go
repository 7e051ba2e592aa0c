package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sig-0/fxboard/rates"
	"github.com/sig-0/fxboard/rates/types"
)

// Default TTLs, per operation kind. Symbols rarely change, latest rates
// are volatile, a historical range is effectively settled
const (
	DefaultSymbolsTTL = time.Minute * 15
	DefaultLatestTTL  = time.Minute * 5
	DefaultSeriesTTL  = time.Hour
)

// Clock yields the current time. Injectable so expiry is
// deterministically testable
type Clock func() time.Time

// entry is a single cached value with its fetch timestamp and TTL
type entry[T any] struct {
	fetchedAt time.Time
	value     T
	ttl       time.Duration
}

// valid reports whether the entry can still be served
func (e *entry[T]) valid(now time.Time) bool {
	return now.Sub(e.fetchedAt) < e.ttl
}

// Cache is a time-bounded memoization layer in front of a rate Source.
// Each operation kind carries an independent TTL, keyed by the call's
// full parameter tuple. Convert calls are never cached.
//
// Entries are immutable once stored, readers observe either the previous
// valid entry or the freshly fetched one. Concurrent same-key misses are
// collapsed into a single underlying fetch
type Cache struct {
	source rates.Source
	clock  Clock

	symbolsTTL time.Duration
	latestTTL  time.Duration
	seriesTTL  time.Duration

	symbols *entry[map[types.Currency]types.Symbol]
	latest  map[types.Currency]*entry[*types.RateSnapshot]
	series  map[string]*entry[[]types.TimeSeriesPoint]

	// gen increments on Invalidate, fetches started under an
	// older generation are returned but never stored
	gen uint64

	group singleflight.Group
	mu    sync.RWMutex
}

// New creates a new cache in front of the given source
func New(source rates.Source, opts ...Option) *Cache {
	c := &Cache{
		source:     source,
		clock:      func() time.Time { return time.Now().UTC() },
		symbolsTTL: DefaultSymbolsTTL,
		latestTTL:  DefaultLatestTTL,
		seriesTTL:  DefaultSeriesTTL,
		latest:     make(map[types.Currency]*entry[*types.RateSnapshot]),
		series:     make(map[string]*entry[[]types.TimeSeriesPoint]),
	}

	// Apply the options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Invalidate drops all cached entries, forcing a re-fetch
// on the next lookup of any key
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.symbols = nil
	c.latest = make(map[types.Currency]*entry[*types.RateSnapshot])
	c.series = make(map[string]*entry[[]types.TimeSeriesPoint])
	c.gen++
}

func (c *Cache) Symbols(ctx context.Context) (map[types.Currency]types.Symbol, error) {
	c.mu.RLock()

	if e := c.symbols; e != nil && e.valid(c.clock()) {
		v := e.value
		c.mu.RUnlock()

		return v, nil
	}

	c.mu.RUnlock()

	v, err, _ := c.group.Do("symbols", func() (any, error) {
		// Check again, another flight may have just stored a fresh entry
		c.mu.RLock()
		if e := c.symbols; e != nil && e.valid(c.clock()) {
			v := e.value
			c.mu.RUnlock()

			return v, nil
		}

		gen := c.gen
		c.mu.RUnlock()

		fetched, err := c.source.Symbols(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.symbols = &entry[map[types.Currency]types.Symbol]{
				value:     fetched,
				fetchedAt: c.clock(),
				ttl:       c.symbolsTTL,
			}
		}
		c.mu.Unlock()

		return fetched, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(map[types.Currency]types.Symbol), nil
}

func (c *Cache) Latest(ctx context.Context, base types.Currency) (*types.RateSnapshot, error) {
	c.mu.RLock()

	if e := c.latest[base]; e != nil && e.valid(c.clock()) {
		v := e.value
		c.mu.RUnlock()

		return v, nil
	}

	c.mu.RUnlock()

	v, err, _ := c.group.Do("latest|"+base.String(), func() (any, error) {
		c.mu.RLock()
		if e := c.latest[base]; e != nil && e.valid(c.clock()) {
			v := e.value
			c.mu.RUnlock()

			return v, nil
		}

		gen := c.gen
		c.mu.RUnlock()

		fetched, err := c.source.Latest(ctx, base)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.latest[base] = &entry[*types.RateSnapshot]{
				value:     fetched,
				fetchedAt: c.clock(),
				ttl:       c.latestTTL,
			}
		}
		c.mu.Unlock()

		return fetched, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*types.RateSnapshot), nil
}

func (c *Cache) TimeSeries(
	ctx context.Context,
	base types.Currency,
	target types.Currency,
	start types.Date,
	end types.Date,
) ([]types.TimeSeriesPoint, error) {
	// Different ranges are cached independently, never merged or sub-queried
	key := fmt.Sprintf("%s|%s|%s|%s", base, target, start, end)

	c.mu.RLock()

	if e := c.series[key]; e != nil && e.valid(c.clock()) {
		v := e.value
		c.mu.RUnlock()

		return v, nil
	}

	c.mu.RUnlock()

	v, err, _ := c.group.Do("series|"+key, func() (any, error) {
		c.mu.RLock()
		if e := c.series[key]; e != nil && e.valid(c.clock()) {
			v := e.value
			c.mu.RUnlock()

			return v, nil
		}

		gen := c.gen
		c.mu.RUnlock()

		fetched, err := c.source.TimeSeries(ctx, base, target, start, end)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.series[key] = &entry[[]types.TimeSeriesPoint]{
				value:     fetched,
				fetchedAt: c.clock(),
				ttl:       c.seriesTTL,
			}
		}
		c.mu.Unlock()

		return fetched, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]types.TimeSeriesPoint), nil
}

// Convert is a cache passthrough, conversions are always live
func (c *Cache) Convert(
	ctx context.Context,
	amount float64,
	from types.Currency,
	to types.Currency,
) (*types.ConversionResult, error) {
	return c.source.Convert(ctx, amount, from, to)
}
